package plaintext

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/chunking"
)

// Extractor handles narrative report files: UTF-8 text split into
// overlapping text-channel chunks.
type Extractor struct {
	splitter *chunking.Splitter
}

func NewExtractor(splitter *chunking.Splitter) *Extractor {
	return &Extractor{splitter: splitter}
}

func (e *Extractor) Supports(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

func (e *Extractor) Extract(_ context.Context, key string, r io.Reader) ([]domain.Chunk, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("document %s is not valid utf-8", key)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return e.splitter.SplitDocument(key, text), nil
}
