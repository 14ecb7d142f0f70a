package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

type rebuildRepoFake struct {
	chunks  []domain.Chunk
	err     error
	channel domain.Channel
}

func (f *rebuildRepoFake) SaveChunks(context.Context, []domain.Chunk) error {
	return errors.New("not implemented")
}

func (f *rebuildRepoFake) ListByChannel(_ context.Context, channel domain.Channel) ([]domain.Chunk, error) {
	f.channel = channel
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func (f *rebuildRepoFake) CountByChannel(context.Context, domain.Channel) (int, error) {
	return len(f.chunks), nil
}

type rebuildEmbedderFake struct {
	texts   []string
	vectors [][]float32
	err     error
}

func (f *rebuildEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

func (f *rebuildEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

type rebuildIndexFake struct {
	channel domain.Channel
	err     error

	chunks  []domain.Chunk
	vectors [][]float32
	calls   int
}

func (f *rebuildIndexFake) Channel() domain.Channel { return f.channel }

func (f *rebuildIndexFake) Rebuild(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.chunks = chunks
	f.vectors = vectors
	return nil
}

func (f *rebuildIndexFake) Search(context.Context, []float32, int) ([]domain.SemanticHit, error) {
	return nil, errors.New("not implemented")
}

func (f *rebuildIndexFake) Ready() bool { return f.calls > 0 }
func (f *rebuildIndexFake) Count() int  { return len(f.chunks) }

func TestRebuildChannelSwapsIndex(t *testing.T) {
	repo := &rebuildRepoFake{chunks: []domain.Chunk{
		{ID: "t-1", Text: "营业收入 120亿", Channel: domain.ChannelTable, TableID: "tab-1"},
		{ID: "t-2", Text: "净利润 10亿", Channel: domain.ChannelTable, TableID: "tab-2"},
	}}
	embedder := &rebuildEmbedderFake{}
	text := &rebuildIndexFake{channel: domain.ChannelText}
	table := &rebuildIndexFake{channel: domain.ChannelTable}
	uc := NewRebuildIndexUseCase(repo, embedder, text, table)

	if err := uc.RebuildChannel(context.Background(), domain.ChannelTable); err != nil {
		t.Fatalf("RebuildChannel() error = %v", err)
	}
	if repo.channel != domain.ChannelTable {
		t.Fatalf("listed channel = %s, want table", repo.channel)
	}
	if len(embedder.texts) != 2 || embedder.texts[0] != "营业收入 120亿" {
		t.Fatalf("embedded texts = %v", embedder.texts)
	}
	if table.calls != 1 || len(table.chunks) != 2 || len(table.vectors) != 2 {
		t.Fatalf("table rebuild calls=%d chunks=%d vectors=%d", table.calls, len(table.chunks), len(table.vectors))
	}
	if text.calls != 0 {
		t.Fatalf("text index must stay untouched, got %d calls", text.calls)
	}
}

func TestRebuildChannelEmptyCorpus(t *testing.T) {
	text := &rebuildIndexFake{channel: domain.ChannelText}
	uc := NewRebuildIndexUseCase(&rebuildRepoFake{}, &rebuildEmbedderFake{}, text,
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.ChannelText)
	if !domain.IsKind(err, domain.ErrEmptyInput) {
		t.Fatalf("expected empty input error, got %v", err)
	}
	if text.calls != 0 {
		t.Fatalf("live index must not be swapped on empty corpus")
	}
}

func TestRebuildChannelUnknownChannel(t *testing.T) {
	uc := NewRebuildIndexUseCase(&rebuildRepoFake{}, &rebuildEmbedderFake{},
		&rebuildIndexFake{channel: domain.ChannelText},
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.Channel("graph"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestRebuildChannelRepoError(t *testing.T) {
	uc := NewRebuildIndexUseCase(&rebuildRepoFake{err: errors.New("db down")}, &rebuildEmbedderFake{},
		&rebuildIndexFake{channel: domain.ChannelText},
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.ChannelText)
	if err == nil || !strings.Contains(err.Error(), "list text chunks") {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestRebuildChannelEmbedError(t *testing.T) {
	repo := &rebuildRepoFake{chunks: []domain.Chunk{{ID: "c-1", Text: "内容", Channel: domain.ChannelText}}}
	uc := NewRebuildIndexUseCase(repo, &rebuildEmbedderFake{err: errors.New("ollama down")},
		&rebuildIndexFake{channel: domain.ChannelText},
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.ChannelText)
	if err == nil || !strings.Contains(err.Error(), "embed text corpus") {
		t.Fatalf("expected embed error, got %v", err)
	}
}

func TestRebuildChannelVectorMismatch(t *testing.T) {
	repo := &rebuildRepoFake{chunks: []domain.Chunk{
		{ID: "c-1", Text: "第一段", Channel: domain.ChannelText},
		{ID: "c-2", Text: "第二段", Channel: domain.ChannelText},
	}}
	embedder := &rebuildEmbedderFake{vectors: [][]float32{{0.1}}}
	text := &rebuildIndexFake{channel: domain.ChannelText}
	uc := NewRebuildIndexUseCase(repo, embedder, text,
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.ChannelText)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if text.calls != 0 {
		t.Fatalf("mismatched embeddings must not reach the index")
	}
}

func TestRebuildChannelIndexError(t *testing.T) {
	repo := &rebuildRepoFake{chunks: []domain.Chunk{{ID: "c-1", Text: "内容", Channel: domain.ChannelText}}}
	text := &rebuildIndexFake{channel: domain.ChannelText, err: errors.New("swap failed")}
	uc := NewRebuildIndexUseCase(repo, &rebuildEmbedderFake{}, text,
		&rebuildIndexFake{channel: domain.ChannelTable})

	err := uc.RebuildChannel(context.Background(), domain.ChannelText)
	if err == nil || !strings.Contains(err.Error(), "swap text index") {
		t.Fatalf("expected swap error, got %v", err)
	}
}
