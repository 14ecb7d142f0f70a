package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

type toolRetrieverFake struct {
	results []domain.ScoredCandidate
	stats   domain.RetrievalStats
	err     error

	gotQuery    string
	gotK        int
	gotStrategy string
}

func (f *toolRetrieverFake) Retrieve(_ context.Context, query string, k int, strategy string) ([]domain.ScoredCandidate, error) {
	f.gotQuery = query
	f.gotK = k
	f.gotStrategy = strategy
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *toolRetrieverFake) Stats(context.Context) (domain.RetrievalStats, error) {
	if f.err != nil {
		return domain.RetrievalStats{}, f.err
	}
	return f.stats, nil
}

func newTestServer(retriever *toolRetrieverFake) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(retriever, logger)
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("tool result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result content is %T, want text", result.Content[0])
	}
	return text.Text
}

func TestRetrievePassagesTool(t *testing.T) {
	retriever := &toolRetrieverFake{
		results: []domain.ScoredCandidate{
			{
				Chunk:              domain.Chunk{ID: "c-1", Text: "营业收入为120亿元", Channel: domain.ChannelText},
				SemanticScore:      0.9,
				ComprehensiveScore: 0.84,
				Strategy:           domain.StrategyTableFirst,
			},
		},
	}
	srv := newTestServer(retriever)

	result, err := srv.handleRetrievePassages(context.Background(), callToolRequest("retrieve_passages", map[string]any{
		"query":    "2023年营业收入",
		"k":        float64(3),
		"strategy": "table_first",
	}))
	if err != nil {
		t.Fatalf("handleRetrievePassages() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textContent(t, result))
	}
	if retriever.gotQuery != "2023年营业收入" || retriever.gotK != 3 || retriever.gotStrategy != "table_first" {
		t.Fatalf("retriever args: %q k=%d strategy=%q", retriever.gotQuery, retriever.gotK, retriever.gotStrategy)
	}

	var resp toolRetrieveResponse
	if err := json.Unmarshal([]byte(textContent(t, result)), &resp); err != nil {
		t.Fatalf("decode tool payload: %v", err)
	}
	if resp.Strategy != "table_first" || resp.Count != 1 || resp.Results[0].Chunk.ID != "c-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRetrievePassagesToolRequiresQuery(t *testing.T) {
	srv := newTestServer(&toolRetrieverFake{})

	result, err := srv.handleRetrievePassages(context.Background(), callToolRequest("retrieve_passages", map[string]any{
		"k": float64(5),
	}))
	if err != nil {
		t.Fatalf("handleRetrievePassages() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing query")
	}
}

func TestRetrievePassagesToolReportsRetrievalFailure(t *testing.T) {
	retriever := &toolRetrieverFake{
		err: domain.WrapError(domain.ErrInvalidStrategy, "parse strategy", errors.New(`unknown strategy "graph_first"`)),
	}
	srv := newTestServer(retriever)

	result, err := srv.handleRetrievePassages(context.Background(), callToolRequest("retrieve_passages", map[string]any{
		"query":    "净利润",
		"strategy": "graph_first",
	}))
	if err != nil {
		t.Fatalf("handleRetrievePassages() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for invalid strategy")
	}
	if !strings.Contains(textContent(t, result), "graph_first") {
		t.Fatalf("error detail lost: %s", textContent(t, result))
	}
}

func TestRetrievalStatsTool(t *testing.T) {
	retriever := &toolRetrieverFake{
		stats: domain.RetrievalStats{
			TextIndexReady:  true,
			TextCount:       12,
			Weights:         domain.DefaultScoreWeights(),
			MetricTermCount: 26,
		},
	}
	srv := newTestServer(retriever)

	result, err := srv.handleRetrievalStats(context.Background(), callToolRequest("retrieval_stats", nil))
	if err != nil {
		t.Fatalf("handleRetrievalStats() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textContent(t, result))
	}

	var stats domain.RetrievalStats
	if err := json.Unmarshal([]byte(textContent(t, result)), &stats); err != nil {
		t.Fatalf("decode stats payload: %v", err)
	}
	if !stats.TextIndexReady || stats.TextCount != 12 || stats.Weights.Semantic != 0.6 {
		t.Fatalf("unexpected stats payload: %+v", stats)
	}
}
