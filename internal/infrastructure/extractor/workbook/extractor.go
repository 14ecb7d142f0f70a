package workbook

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/tabular"
)

// Extractor handles spreadsheet reports: every sheet becomes one
// table-channel chunk carrying the rendered tabular text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Supports(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

func (e *Extractor) Extract(_ context.Context, key string, r io.Reader) ([]domain.Chunk, error) {
	tables, err := tabular.ReadWorkbook(key, r)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(tables))
	for _, table := range tables {
		chunks = append(chunks, table.Chunk())
	}
	return chunks, nil
}
