package ports

import (
	"context"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// PassageRetriever is the inbound contract for ranked passage retrieval.
// Strategy is the caller's raw value; "auto" or empty triggers inference.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, k int, strategy string) ([]domain.ScoredCandidate, error)
	Stats(ctx context.Context) (domain.RetrievalStats, error)
}

// ChunkIngestor is the inbound contract for corpus updates. It returns the
// accepted chunks with assigned identifiers.
type ChunkIngestor interface {
	SubmitChunks(ctx context.Context, channel domain.Channel, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// IndexRebuilder is the inbound contract for asynchronous index rebuilds.
type IndexRebuilder interface {
	RebuildChannel(ctx context.Context, channel domain.Channel) error
}
