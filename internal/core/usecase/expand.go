package usecase

import (
	"strings"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// QueryExpander appends known aliases for every canonical financial term
// found in a query. The expanded form feeds embedding lookup only; scoring
// always runs against the original query.
type QueryExpander struct {
	synonyms []domain.SynonymEntry
}

func NewQueryExpander(vocabulary domain.Vocabulary) *QueryExpander {
	return &QueryExpander{synonyms: vocabulary.Synonyms}
}

func (e *QueryExpander) Expand(query string) string {
	if query == "" {
		return query
	}

	var expanded []string
	for _, entry := range e.synonyms {
		if entry.Term == "" {
			continue
		}
		if strings.Contains(query, entry.Term) {
			expanded = append(expanded, entry.Synonyms...)
		}
	}
	if len(expanded) == 0 {
		return query
	}
	return query + " " + strings.Join(expanded, " ")
}
