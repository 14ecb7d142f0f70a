package ports

import (
	"context"
	"io"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// Embedder builds vectors for corpus chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChannelIndex owns one channel's embedding index. Rebuild publishes a
// fully-built replacement index; Search reads whichever snapshot is live.
type ChannelIndex interface {
	Channel() domain.Channel
	Rebuild(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, topN int) ([]domain.SemanticHit, error)
	Ready() bool
	Count() int
}

// ChunkRepository persists ingested chunks and serves as the rebuild
// source of truth.
type ChunkRepository interface {
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error
	ListByChannel(ctx context.Context, channel domain.Channel) ([]domain.Chunk, error)
	CountByChannel(ctx context.Context, channel domain.Channel) (int, error)
}

// MessageQueue publishes/consumes channel-dirty rebuild events.
type MessageQueue interface {
	PublishChannelDirty(ctx context.Context, channel domain.Channel) error
	SubscribeChannelDirty(ctx context.Context, handler func(context.Context, domain.Channel) error) error
}

// DocumentStore enumerates and opens raw report files for corpus seeding.
// Keys are store-relative paths.
type DocumentStore interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentExtractor turns one raw report file into indexable chunks.
// Supports gates on the key alone so unopened files can be skipped.
type DocumentExtractor interface {
	Supports(key string) bool
	Extract(ctx context.Context, key string, r io.Reader) ([]domain.Chunk, error)
}
