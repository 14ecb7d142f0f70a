package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
)

// Server exposes the retrieval engine as MCP tools over stdio, so agent
// runtimes can call it without going through the HTTP API.
type Server struct {
	mcp       *server.MCPServer
	retriever ports.PassageRetriever
	logger    *slog.Logger
}

func NewServer(retriever ports.PassageRetriever, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"llamareport-retrieval",
			"1.0.0",
			server.WithToolCapabilities(false),
		),
		retriever: retriever,
		logger:    logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	retrieveTool := mcp.NewTool("retrieve_passages",
		mcp.WithDescription("Retrieve ranked passages from the financial report corpus. "+
			"Queries are expanded with financial synonyms and scored by semantic, metric, and year signals."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language question, e.g. 2023年营业收入是多少"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum candidates to return; server default when omitted"),
		),
		mcp.WithString("strategy",
			mcp.Description("Channel selection; omit or use auto to infer from the query"),
			mcp.Enum("auto", "text_first", "table_first", "hybrid"),
		),
	)
	s.mcp.AddTool(retrieveTool, s.handleRetrievePassages)

	statsTool := mcp.NewTool("retrieval_stats",
		mcp.WithDescription("Report index readiness, corpus sizes, and scoring configuration."),
	)
	s.mcp.AddTool(statsTool, s.handleRetrievalStats)
}

type toolRetrieveResponse struct {
	Strategy string                   `json:"strategy"`
	Count    int                      `json:"count"`
	Results  []domain.ScoredCandidate `json:"results"`
}

func (s *Server) handleRetrievePassages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	k := request.GetInt("k", 0)
	strategy := request.GetString("strategy", "")

	results, err := s.retriever.Retrieve(ctx, query, k, strategy)
	if err != nil {
		s.logger.Warn("mcp_tool_error", "tool", "retrieve_passages", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved := strategy
	if resolved == "" {
		resolved = string(domain.StrategyAuto)
	}
	if len(results) > 0 {
		resolved = string(results[0].Strategy)
	}

	payload, err := json.Marshal(toolRetrieveResponse{
		Strategy: resolved,
		Count:    len(results),
		Results:  results,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal retrieve response: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleRetrievalStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.retriever.Stats(ctx)
	if err != nil {
		s.logger.Warn("mcp_tool_error", "tool", "retrieval_stats", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats response: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks until the client closes the stream.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcp); err != nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}
