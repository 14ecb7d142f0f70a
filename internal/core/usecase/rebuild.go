package usecase

import (
	"context"
	"fmt"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
)

// RebuildIndexUseCase rebuilds one channel's embedding index wholesale from
// the persisted corpus. The live index stays in service until the
// replacement is fully built; a failed rebuild leaves it untouched.
type RebuildIndexUseCase struct {
	repo     ports.ChunkRepository
	embedder ports.Embedder
	text     ports.ChannelIndex
	table    ports.ChannelIndex
}

func NewRebuildIndexUseCase(
	repo ports.ChunkRepository,
	embedder ports.Embedder,
	textIndex ports.ChannelIndex,
	tableIndex ports.ChannelIndex,
) *RebuildIndexUseCase {
	return &RebuildIndexUseCase{
		repo:     repo,
		embedder: embedder,
		text:     textIndex,
		table:    tableIndex,
	}
}

func (uc *RebuildIndexUseCase) RebuildChannel(ctx context.Context, channel domain.Channel) error {
	index, err := uc.indexFor(channel)
	if err != nil {
		return err
	}

	chunks, err := uc.repo.ListByChannel(ctx, channel)
	if err != nil {
		return fmt.Errorf("list %s chunks: %w", channel, err)
	}
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrEmptyInput, "rebuild index",
			fmt.Errorf("no %s chunks ingested", channel))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %s corpus: %w", channel, err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(domain.ErrInvalidInput, "rebuild index",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)))
	}

	if err := index.Rebuild(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("swap %s index: %w", channel, err)
	}
	return nil
}

func (uc *RebuildIndexUseCase) indexFor(channel domain.Channel) (ports.ChannelIndex, error) {
	switch channel {
	case domain.ChannelText:
		return uc.text, nil
	case domain.ChannelTable:
		return uc.table, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "rebuild index",
			fmt.Errorf("unknown channel %q", channel))
	}
}
