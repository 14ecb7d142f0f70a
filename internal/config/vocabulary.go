package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// LoadVocabulary returns the built-in vocabulary when path is empty,
// otherwise the YAML file at path replaces it wholesale. A file that
// omits a section is rejected rather than silently merged.
func LoadVocabulary(path string) (domain.Vocabulary, error) {
	if path == "" {
		return domain.DefaultVocabulary(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	var vocabulary domain.Vocabulary
	if err := yaml.Unmarshal(raw, &vocabulary); err != nil {
		return domain.Vocabulary{}, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}
	if err := validateVocabulary(vocabulary); err != nil {
		return domain.Vocabulary{}, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return vocabulary, nil
}

func validateVocabulary(v domain.Vocabulary) error {
	if len(v.MetricTerms) == 0 {
		return fmt.Errorf("missing metric_terms")
	}
	if len(v.Synonyms) == 0 {
		return fmt.Errorf("missing synonyms")
	}
	if len(v.NumericKeywords) == 0 {
		return fmt.Errorf("missing numeric_keywords")
	}
	if len(v.SemanticKeywords) == 0 {
		return fmt.Errorf("missing semantic_keywords")
	}
	for i, entry := range v.Synonyms {
		if entry.Term == "" {
			return fmt.Errorf("synonym entry %d has no term", i)
		}
		if len(entry.Synonyms) == 0 {
			return fmt.Errorf("synonym entry %q has no aliases", entry.Term)
		}
	}
	return nil
}
