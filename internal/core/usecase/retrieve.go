package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
)

// RetrieveUseCase runs the full retrieval pipeline: expand the query,
// resolve the strategy, search the channel indices, score every candidate
// against the original query, and rank.
type RetrieveUseCase struct {
	expander *QueryExpander
	selector *StrategySelector
	scorer   *HybridScorer
	embedder ports.Embedder
	text     ports.ChannelIndex
	table    ports.ChannelIndex

	defaultTopK int
	hybridSplit float64
}

func NewRetrieveUseCase(
	expander *QueryExpander,
	selector *StrategySelector,
	scorer *HybridScorer,
	embedder ports.Embedder,
	textIndex ports.ChannelIndex,
	tableIndex ports.ChannelIndex,
	defaultTopK int,
	hybridSplit float64,
) *RetrieveUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	if hybridSplit <= 0 || hybridSplit > 1 {
		hybridSplit = 0.5
	}
	return &RetrieveUseCase{
		expander:    expander,
		selector:    selector,
		scorer:      scorer,
		embedder:    embedder,
		text:        textIndex,
		table:       tableIndex,
		defaultTopK: defaultTopK,
		hybridSplit: hybridSplit,
	}
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	k int,
	strategy string,
) ([]domain.ScoredCandidate, error) {
	if k <= 0 {
		k = uc.defaultTopK
	}

	resolved, err := domain.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	if resolved == domain.StrategyAuto {
		resolved = uc.selector.Select(query)
	}

	// Retrieval against an uninitialized corpus is a valid, empty answer.
	indices := uc.indicesFor(resolved)
	if !anyReady(indices) {
		return []domain.ScoredCandidate{}, nil
	}

	expanded := uc.expander.Expand(query)
	queryVector, err := uc.embedder.EmbedQuery(ctx, expanded)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.collectHits(ctx, indices, queryVector, k, resolved)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		candidate := uc.scorer.Score(query, hit.Chunk, hit.SemanticScore)
		candidate.Strategy = resolved
		candidates = append(candidates, candidate)
	}

	sortCandidates(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (uc *RetrieveUseCase) Stats(_ context.Context) (domain.RetrievalStats, error) {
	return domain.RetrievalStats{
		TextIndexReady:  uc.text.Ready(),
		TableIndexReady: uc.table.Ready(),
		TextCount:       uc.text.Count(),
		TableCount:      uc.table.Count(),
		Weights:         uc.scorer.Weights(),
		MetricTermCount: uc.scorer.MetricTermCount(),
	}, nil
}

func (uc *RetrieveUseCase) indicesFor(strategy domain.Strategy) []ports.ChannelIndex {
	switch strategy {
	case domain.StrategyTextFirst:
		return []ports.ChannelIndex{uc.text}
	case domain.StrategyTableFirst:
		return []ports.ChannelIndex{uc.table}
	default:
		return []ports.ChannelIndex{uc.text, uc.table}
	}
}

func (uc *RetrieveUseCase) collectHits(
	ctx context.Context,
	indices []ports.ChannelIndex,
	queryVector []float32,
	k int,
	strategy domain.Strategy,
) ([]domain.SemanticHit, error) {
	topN := k
	if strategy == domain.StrategyHybrid {
		topN = uc.hybridTopN(k)
	}

	var hits []domain.SemanticHit
	for _, index := range indices {
		if !index.Ready() {
			continue
		}
		channelHits, err := index.Search(ctx, queryVector, topN)
		if err != nil {
			return nil, fmt.Errorf("search %s index: %w", index.Channel(), err)
		}
		hits = append(hits, channelHits...)
	}
	return hits, nil
}

// hybridTopN sizes the per-channel fetch so two channels together cover k
// even when one side comes back short.
func (uc *RetrieveUseCase) hybridTopN(k int) int {
	topN := int(math.Ceil(float64(k) * uc.hybridSplit))
	if topN < 1 {
		topN = 1
	}
	return topN
}

func anyReady(indices []ports.ChannelIndex) bool {
	for _, index := range indices {
		if index.Ready() {
			return true
		}
	}
	return false
}

// sortCandidates orders by comprehensive score, breaking ties on semantic
// score and then chunk id so repeated queries return identical rankings.
func sortCandidates(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ComprehensiveScore != candidates[j].ComprehensiveScore {
			return candidates[i].ComprehensiveScore > candidates[j].ComprehensiveScore
		}
		if candidates[i].SemanticScore != candidates[j].SemanticScore {
			return candidates[i].SemanticScore > candidates[j].SemanticScore
		}
		return candidates[i].Chunk.ID < candidates[j].Chunk.ID
	})
}
