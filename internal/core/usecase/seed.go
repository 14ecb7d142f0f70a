package usecase

import (
	"context"
	"fmt"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
)

// SeedCorpusUseCase walks a document store, extracts chunks from every
// supported file, and submits them through chunk ingestion in one batch
// per channel. A bad document is reported and skipped; it never aborts
// the run.
type SeedCorpusUseCase struct {
	store      ports.DocumentStore
	extractors []ports.DocumentExtractor
	ingestor   ports.ChunkIngestor
}

// SeedResult records the outcome for one document. Skipped covers both
// unsupported formats and documents that yielded no content.
type SeedResult struct {
	Key         string
	TextChunks  int
	TableChunks int
	Skipped     bool
	Err         error
}

// SeedSummary aggregates one seeding run. Accepted counts chunks the
// ingestion layer stored, per channel.
type SeedSummary struct {
	Results  []SeedResult
	Accepted map[domain.Channel]int
}

func NewSeedCorpusUseCase(
	store ports.DocumentStore,
	extractors []ports.DocumentExtractor,
	ingestor ports.ChunkIngestor,
) *SeedCorpusUseCase {
	return &SeedCorpusUseCase{
		store:      store,
		extractors: extractors,
		ingestor:   ingestor,
	}
}

func (uc *SeedCorpusUseCase) SeedAll(ctx context.Context) (SeedSummary, error) {
	keys, err := uc.store.List(ctx)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("list documents: %w", err)
	}

	summary := SeedSummary{
		Results:  make([]SeedResult, 0, len(keys)),
		Accepted: make(map[domain.Channel]int),
	}

	var pending []domain.Chunk
	for _, key := range keys {
		result, chunks := uc.extractOne(ctx, key)
		summary.Results = append(summary.Results, result)
		pending = append(pending, chunks...)
	}

	// One submit per channel keeps the rebuild signal to at most two
	// events per run instead of two per document.
	for _, channel := range []domain.Channel{domain.ChannelText, domain.ChannelTable} {
		batch := filterByChannel(pending, channel)
		if len(batch) == 0 {
			continue
		}
		accepted, err := uc.ingestor.SubmitChunks(ctx, channel, batch)
		if err != nil {
			return summary, fmt.Errorf("submit %s chunks: %w", channel, err)
		}
		summary.Accepted[channel] = len(accepted)
	}

	return summary, nil
}

func (uc *SeedCorpusUseCase) extractOne(ctx context.Context, key string) (SeedResult, []domain.Chunk) {
	result := SeedResult{Key: key}

	extractor := uc.extractorFor(key)
	if extractor == nil {
		result.Skipped = true
		return result, nil
	}

	chunks, err := uc.extract(ctx, extractor, key)
	if err != nil {
		result.Err = err
		return result, nil
	}
	if len(chunks) == 0 {
		result.Skipped = true
		return result, nil
	}

	for _, chunk := range chunks {
		switch chunk.Channel {
		case domain.ChannelTable:
			result.TableChunks++
		default:
			result.TextChunks++
		}
	}
	return result, chunks
}

func (uc *SeedCorpusUseCase) extract(ctx context.Context, extractor ports.DocumentExtractor, key string) ([]domain.Chunk, error) {
	reader, err := uc.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer reader.Close()

	chunks, err := extractor.Extract(ctx, key, reader)
	if err != nil {
		return nil, fmt.Errorf("extract chunks: %w", err)
	}
	return chunks, nil
}

func (uc *SeedCorpusUseCase) extractorFor(key string) ports.DocumentExtractor {
	for _, extractor := range uc.extractors {
		if extractor.Supports(key) {
			return extractor
		}
	}
	return nil
}

func filterByChannel(chunks []domain.Chunk, channel domain.Channel) []domain.Chunk {
	var out []domain.Chunk
	for _, chunk := range chunks {
		if chunk.Channel == channel {
			out = append(out, chunk)
		}
	}
	return out
}
