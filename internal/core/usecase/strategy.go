package usecase

import (
	"strings"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// StrategySelector classifies a query into a retrieval strategy with a
// cheap lexical heuristic. Numeric cues point at table data and win over
// semantic cues; queries with neither fan out to both channels.
type StrategySelector struct {
	numericKeywords  []string
	semanticKeywords []string
}

func NewStrategySelector(vocabulary domain.Vocabulary) *StrategySelector {
	return &StrategySelector{
		numericKeywords:  vocabulary.NumericKeywords,
		semanticKeywords: vocabulary.SemanticKeywords,
	}
}

func (s *StrategySelector) Select(query string) domain.Strategy {
	for _, keyword := range s.numericKeywords {
		if keyword != "" && strings.Contains(query, keyword) {
			return domain.StrategyTableFirst
		}
	}
	for _, keyword := range s.semanticKeywords {
		if keyword != "" && strings.Contains(query, keyword) {
			return domain.StrategyTextFirst
		}
	}
	return domain.StrategyHybrid
}
