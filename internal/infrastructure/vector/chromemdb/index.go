package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/philippgille/chromem-go"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// Index is one channel's embedding index backed by an in-memory chromem
// collection. Rebuild assembles a complete replacement snapshot and swaps
// it in atomically; searches running during a rebuild finish against the
// snapshot they started with.
type Index struct {
	channel         domain.Channel
	similarityFloor float32

	live atomic.Pointer[snapshot]
}

type snapshot struct {
	collection *chromem.Collection
	chunks     map[string]domain.Chunk
	count      int
}

func NewIndex(channel domain.Channel, similarityFloor float64) *Index {
	return &Index{
		channel:         channel,
		similarityFloor: float32(similarityFloor),
	}
}

func (x *Index) Channel() domain.Channel { return x.channel }

func (x *Index) Ready() bool { return x.live.Load() != nil }

func (x *Index) Count() int {
	snap := x.live.Load()
	if snap == nil {
		return 0
	}
	return snap.count
}

func (x *Index) Rebuild(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrEmptyInput, "rebuild index",
			fmt.Errorf("no %s chunks to index", x.channel))
	}
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrInvalidInput, "rebuild index",
			fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors)))
	}

	next, err := x.buildSnapshot(ctx, chunks, vectors)
	if err != nil {
		return err
	}
	x.live.Store(next)
	return nil
}

func (x *Index) buildSnapshot(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (*snapshot, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(fmt.Sprintf("chunks-%s", x.channel), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s collection: %w", x.channel, err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	byID := make(map[string]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "rebuild index",
				fmt.Errorf("chunk %d has no id", i))
		}
		if len(vectors[i]) == 0 {
			return nil, domain.WrapError(domain.ErrInvalidInput, "rebuild index",
				fmt.Errorf("chunk %q has an empty vector", chunk.ID))
		}
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Embedding: vectors[i],
		})
		byID[chunk.ID] = chunk
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add %s documents: %w", x.channel, err)
	}

	return &snapshot{
		collection: collection,
		chunks:     byID,
		count:      collection.Count(),
	}, nil
}

func (x *Index) Search(ctx context.Context, queryVector []float32, topN int) ([]domain.SemanticHit, error) {
	snap := x.live.Load()
	if snap == nil || snap.count == 0 || topN <= 0 {
		return nil, nil
	}
	// chromem rejects result counts above the collection size.
	if topN > snap.count {
		topN = snap.count
	}

	results, err := snap.collection.QueryEmbedding(ctx, queryVector, topN, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s collection: %w", x.channel, err)
	}

	hits := make([]domain.SemanticHit, 0, len(results))
	for _, result := range results {
		if result.Similarity < x.similarityFloor {
			continue
		}
		chunk, ok := snap.chunks[result.ID]
		if !ok {
			continue
		}
		hits = append(hits, domain.SemanticHit{
			Chunk:         chunk,
			SemanticScore: float64(result.Similarity),
		})
	}
	return hits, nil
}
