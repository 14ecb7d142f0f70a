package chromemdb

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

func generationChunks(gen string) ([]domain.Chunk, [][]float32) {
	chunks := []domain.Chunk{
		{ID: gen + "-1", Text: "营业收入为120亿元", Channel: domain.ChannelText},
		{ID: gen + "-2", Text: "经营情况良好", Channel: domain.ChannelText},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	return chunks, vectors
}

func mustRebuild(t *testing.T, index *Index, gen string) {
	t.Helper()
	chunks, vectors := generationChunks(gen)
	if err := index.Rebuild(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("Rebuild(%s) error = %v", gen, err)
	}
}

func TestIndexLifecycle(t *testing.T) {
	index := NewIndex(domain.ChannelText, 0)

	if index.Ready() || index.Count() != 0 {
		t.Fatalf("fresh index ready=%v count=%d, want false/0", index.Ready(), index.Count())
	}
	hits, err := index.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil || len(hits) != 0 {
		t.Fatalf("unbuilt Search() = %v, %v, want empty and no error", hits, err)
	}

	mustRebuild(t, index, "a")

	if !index.Ready() || index.Count() != 2 {
		t.Fatalf("built index ready=%v count=%d, want true/2", index.Ready(), index.Count())
	}

	hits, err = index.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.ID != "a-1" {
		t.Fatalf("top hit = %s, want a-1", hits[0].Chunk.ID)
	}
	if hits[0].SemanticScore < 0.9 || hits[1].SemanticScore > 0.1 {
		t.Fatalf("similarities = %v/%v, want ~1 and ~0", hits[0].SemanticScore, hits[1].SemanticScore)
	}
	if hits[0].Chunk.Text != "营业收入为120亿元" {
		t.Fatalf("hit carries wrong chunk: %+v", hits[0].Chunk)
	}
}

func TestIndexSearchClampsTopN(t *testing.T) {
	index := NewIndex(domain.ChannelText, 0)
	mustRebuild(t, index, "a")

	hits, err := index.Search(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected all 2 hits for oversized topN, got %d", len(hits))
	}
}

func TestIndexSearchSimilarityFloor(t *testing.T) {
	index := NewIndex(domain.ChannelText, 0.5)
	mustRebuild(t, index, "a")

	hits, err := index.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.ID != "a-1" {
		t.Fatalf("expected only the near hit above the floor, got %+v", hits)
	}
}

func TestIndexRebuildRejectsEmpty(t *testing.T) {
	index := NewIndex(domain.ChannelTable, 0)
	mustRebuild(t, index, "a")

	err := index.Rebuild(context.Background(), nil, nil)
	if !domain.IsKind(err, domain.ErrEmptyInput) {
		t.Fatalf("expected empty input error, got %v", err)
	}
	// The live snapshot survives a rejected rebuild.
	if !index.Ready() || index.Count() != 2 {
		t.Fatalf("live snapshot lost: ready=%v count=%d", index.Ready(), index.Count())
	}
}

func TestIndexRebuildRejectsBadInput(t *testing.T) {
	index := NewIndex(domain.ChannelText, 0)
	chunks, vectors := generationChunks("a")

	err := index.Rebuild(context.Background(), chunks, vectors[:1])
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for mismatched vectors, got %v", err)
	}

	missingID := []domain.Chunk{{Text: "无编号"}}
	err = index.Rebuild(context.Background(), missingID, [][]float32{{1, 0}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing id, got %v", err)
	}

	err = index.Rebuild(context.Background(), chunks[:1], [][]float32{nil})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty vector, got %v", err)
	}
	if index.Ready() {
		t.Fatalf("failed rebuilds must not publish a snapshot")
	}
}

func TestIndexRebuildSwapsAtomically(t *testing.T) {
	index := NewIndex(domain.ChannelText, 0)
	mustRebuild(t, index, "a")

	var torn atomic.Bool
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				hits, err := index.Search(context.Background(), []float32{1, 0}, 2)
				if err != nil || len(hits) != 2 {
					torn.Store(true)
					return
				}
				// Both hits must come from the same snapshot generation.
				gen := hits[0].Chunk.ID[:1]
				if !strings.HasPrefix(hits[1].Chunk.ID, gen) {
					torn.Store(true)
					return
				}
			}
		}()
	}

	generations := []string{"b", "c", "d", "e", "f"}
	for i := 0; i < 4; i++ {
		for _, gen := range generations {
			mustRebuild(t, index, gen)
		}
	}
	close(stop)
	wg.Wait()

	if torn.Load() {
		t.Fatalf("search observed a mixed or missing snapshot during rebuild")
	}
	if index.Count() != 2 {
		t.Fatalf("final count = %d, want 2", index.Count())
	}
}
