package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

const (
	// Score granted when the query names no financial metric at all;
	// absence of metric terms is not evidence against relevance.
	metricNeutralScore = 0.5

	weightSumTolerance = 1e-9

	// Relative ranges wider than this are treated as malformed and skipped.
	maxYearSpan = 100
)

var (
	yearRangeDashRe  = regexp.MustCompile(`(\d{4})-(\d{4})年`)
	yearRangeToRe    = regexp.MustCompile(`(\d{4})年?到(\d{4})`)
	yearRangeUntilRe = regexp.MustCompile(`(\d{4})年?至(\d{4})`)
	yearSingleRe     = regexp.MustCompile(`(\d{4})年`)
	yearRecentRe     = regexp.MustCompile(`近(\d{1,2})年`)
)

// HybridScorer combines semantic similarity, metric-keyword matching and
// year consistency into one comprehensive score per candidate.
type HybridScorer struct {
	weights     domain.ScoreWeights
	metricTerms []string
	tableBonus  float64

	now func() time.Time
}

func NewHybridScorer(vocabulary domain.Vocabulary, weights domain.ScoreWeights, tableBonus float64) (*HybridScorer, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	if tableBonus < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "new hybrid scorer",
			fmt.Errorf("table bonus must be non-negative, got %v", tableBonus))
	}

	// Metric matching is case-insensitive on both sides, so the
	// vocabulary is folded once here.
	terms := make([]string, 0, len(vocabulary.MetricTerms))
	for _, term := range vocabulary.MetricTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			terms = append(terms, term)
		}
	}

	return &HybridScorer{
		weights:     weights,
		metricTerms: terms,
		tableBonus:  tableBonus,
		now:         time.Now,
	}, nil
}

func validateWeights(weights domain.ScoreWeights) error {
	if weights.Semantic < 0 || weights.Metric < 0 || weights.Year < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate score weights",
			fmt.Errorf("weights must be non-negative: %+v", weights))
	}
	sum := weights.Semantic + weights.Metric + weights.Year
	if math.Abs(sum-1.0) > weightSumTolerance {
		return domain.WrapError(domain.ErrInvalidInput, "validate score weights",
			fmt.Errorf("weights must sum to 1.0, got %v", sum))
	}
	return nil
}

func (s *HybridScorer) Weights() domain.ScoreWeights {
	return s.weights
}

func (s *HybridScorer) MetricTermCount() int {
	return len(s.metricTerms)
}

// Score builds the ranking record for one candidate chunk. The query is
// the user's original, unexpanded input.
func (s *HybridScorer) Score(query string, chunk domain.Chunk, semanticScore float64) domain.ScoredCandidate {
	semantic := clamp01(semanticScore)
	metric := s.metricScore(query, chunk)
	year := s.yearScore(query, chunk)

	return domain.ScoredCandidate{
		Chunk:              chunk,
		SemanticScore:      semantic,
		MetricScore:        metric,
		YearScore:          year,
		ComprehensiveScore: semantic*s.weights.Semantic + metric*s.weights.Metric + year*s.weights.Year,
	}
}

func (s *HybridScorer) metricScore(query string, chunk domain.Chunk) float64 {
	queryLower := strings.ToLower(query)
	queryMetrics := make([]string, 0, 4)
	for _, term := range s.metricTerms {
		if strings.Contains(queryLower, term) {
			queryMetrics = append(queryMetrics, term)
		}
	}
	if len(queryMetrics) == 0 {
		return metricNeutralScore
	}

	textLower := strings.ToLower(chunk.Text)
	matched := 0
	for _, term := range queryMetrics {
		if strings.Contains(textLower, term) {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryMetrics))
	if chunk.Channel == domain.ChannelTable && matched > 0 {
		score += s.tableBonus
	}
	if score > 1 {
		return 1
	}
	return score
}

func (s *HybridScorer) yearScore(query string, chunk domain.Chunk) float64 {
	if chunk.Year == nil {
		return 0
	}
	years := extractQueryYears(query, s.now().Year())
	if len(years) == 0 {
		return 0
	}
	if _, ok := years[chunk.YearString()]; ok {
		return 1
	}
	return 0
}

// extractQueryYears collects every fiscal year the query references:
// explicit years, inclusive ranges, and relative ranges anchored at
// currentYear. Malformed expressions are skipped so one bad range cannot
// sink the whole score.
func extractQueryYears(query string, currentYear int) map[string]struct{} {
	years := make(map[string]struct{})

	addRange := func(from, to int) {
		if to < from || to-from > maxYearSpan {
			return
		}
		for year := from; year <= to; year++ {
			years[strconv.Itoa(year)] = struct{}{}
		}
	}
	addRangeMatches := func(re *regexp.Regexp) {
		for _, match := range re.FindAllStringSubmatch(query, -1) {
			from, errFrom := strconv.Atoi(match[1])
			to, errTo := strconv.Atoi(match[2])
			if errFrom == nil && errTo == nil {
				addRange(from, to)
			}
		}
	}

	addRangeMatches(yearRangeDashRe)
	addRangeMatches(yearRangeToRe)
	addRangeMatches(yearRangeUntilRe)

	for _, match := range yearSingleRe.FindAllStringSubmatch(query, -1) {
		if year, err := strconv.Atoi(match[1]); err == nil {
			years[strconv.Itoa(year)] = struct{}{}
		}
	}

	for _, match := range yearRecentRe.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		addRange(currentYear-n+1, currentYear)
	}

	return years
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
