package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
)

// SubmitChunksUseCase accepts extracted chunks from the document-processing
// collaborator, persists them, and signals the index builder.
type SubmitChunksUseCase struct {
	repo  ports.ChunkRepository
	queue ports.MessageQueue
}

func NewSubmitChunksUseCase(repo ports.ChunkRepository, queue ports.MessageQueue) *SubmitChunksUseCase {
	return &SubmitChunksUseCase{
		repo:  repo,
		queue: queue,
	}
}

func (uc *SubmitChunksUseCase) SubmitChunks(
	ctx context.Context,
	channel domain.Channel,
	chunks []domain.Chunk,
) ([]domain.Chunk, error) {
	if channel != domain.ChannelText && channel != domain.ChannelTable {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit chunks",
			fmt.Errorf("unknown channel %q", channel))
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyInput, "submit chunks",
			errors.New("no chunks supplied"))
	}

	accepted := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		normalized, err := normalizeChunk(channel, chunk)
		if err != nil {
			return nil, err
		}
		accepted[i] = normalized
	}

	if err := uc.repo.SaveChunks(ctx, accepted); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	if err := uc.queue.PublishChannelDirty(ctx, channel); err != nil {
		return nil, fmt.Errorf("publish rebuild event: %w", err)
	}

	return accepted, nil
}

// normalizeChunk assigns a missing id and enforces the chunk shape
// invariants for the target channel.
func normalizeChunk(channel domain.Channel, chunk domain.Chunk) (domain.Chunk, error) {
	if chunk.Channel == "" {
		chunk.Channel = channel
	}
	if chunk.Channel != channel {
		return domain.Chunk{}, domain.WrapError(domain.ErrInvalidInput, "submit chunks",
			fmt.Errorf("chunk %q belongs to channel %q, submitted to %q", chunk.ID, chunk.Channel, channel))
	}
	if strings.TrimSpace(chunk.Text) == "" {
		return domain.Chunk{}, domain.WrapError(domain.ErrInvalidInput, "submit chunks",
			fmt.Errorf("chunk %q has empty text", chunk.ID))
	}
	if chunk.Channel == domain.ChannelTable && chunk.TableID == "" {
		return domain.Chunk{}, domain.WrapError(domain.ErrInvalidInput, "submit chunks",
			fmt.Errorf("table chunk %q requires table_id", chunk.ID))
	}
	if chunk.Channel == domain.ChannelText && chunk.TableID != "" {
		return domain.Chunk{}, domain.WrapError(domain.ErrInvalidInput, "submit chunks",
			fmt.Errorf("text chunk %q must not carry table_id %q", chunk.ID, chunk.TableID))
	}
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	return chunk, nil
}
