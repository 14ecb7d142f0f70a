package domain

import "fmt"

// Strategy is the choice of which channel(s) to query for a request.
type Strategy string

const (
	StrategyAuto       Strategy = "auto"
	StrategyTextFirst  Strategy = "text_first"
	StrategyTableFirst Strategy = "table_first"
	StrategyHybrid     Strategy = "hybrid"
)

// ParseStrategy validates a caller-supplied strategy. An empty value falls
// back to auto; anything else unknown is rejected before retrieval starts.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyTextFirst, StrategyTableFirst, StrategyHybrid:
		return Strategy(raw), nil
	default:
		return "", WrapError(ErrInvalidStrategy, "parse strategy", fmt.Errorf("unknown strategy %q", raw))
	}
}

// ScoreWeights blends the three ranking signals into the comprehensive
// score. The components must sum to 1.
type ScoreWeights struct {
	Semantic float64 `json:"semantic"`
	Metric   float64 `json:"metric"`
	Year     float64 `json:"year"`
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Semantic: 0.6, Metric: 0.3, Year: 0.1}
}

// SemanticHit is one nearest-neighbor lookup result from a channel index.
type SemanticHit struct {
	Chunk         Chunk   `json:"chunk"`
	SemanticScore float64 `json:"semantic_score"`
}

// ScoredCandidate is the transient per-query ranking record for one chunk.
type ScoredCandidate struct {
	Chunk              Chunk    `json:"chunk"`
	SemanticScore      float64  `json:"semantic_score"`
	MetricScore        float64  `json:"metric_score"`
	YearScore          float64  `json:"year_score"`
	ComprehensiveScore float64  `json:"comprehensive_score"`
	Strategy           Strategy `json:"strategy"`
}

// RetrievalStats reports the operational state of the two channel indices.
type RetrievalStats struct {
	TextIndexReady  bool         `json:"text_index_ready"`
	TableIndexReady bool         `json:"table_index_ready"`
	TextCount       int          `json:"text_count"`
	TableCount      int          `json:"table_count"`
	Weights         ScoreWeights `json:"weights"`
	MetricTermCount int          `json:"metric_term_count"`
}
