package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

const (
	// Rendered output caps the row count so one oversized table cannot
	// dominate its embedding.
	maxRenderedRows = 30

	// Cells are full of figures; only values in this window count as
	// fiscal years.
	minPlausibleYear = 2000
	maxPlausibleYear = 2030
)

var yearRe = regexp.MustCompile(`(\d{4})`)

// Table is one extracted table plus the derived signals the retrieval
// side needs: a prose summary, the financial flag, and a fiscal year.
type Table struct {
	ID             string
	SourceDocument string
	Page           int
	Columns        []string
	Rows           [][]string
	Summary        string
	IsFinancial    bool
}

// New derives the summary and financial flag eagerly so the table can be
// rendered and indexed without re-analysis.
func New(id, sourceDocument string, page int, columns []string, rows [][]string) Table {
	table := Table{
		ID:             id,
		SourceDocument: sourceDocument,
		Page:           page,
		Columns:        columns,
		Rows:           rows,
	}
	table.IsFinancial = DetectFinancial(columns, rows)
	table.Summary = summarize(table)
	return table
}

// RenderText flattens the table into the markdown-ish text that gets
// embedded into the table channel.
func (t Table) RenderText() string {
	parts := []string{
		fmt.Sprintf("表格数据 - %s", t.ID),
		fmt.Sprintf("来源页码: 第%d页", t.Page),
	}
	if t.IsFinancial {
		parts = append(parts, "类型: 财务数据表格")
	}
	if t.Summary != "" {
		parts = append(parts, fmt.Sprintf("表格摘要: %s", t.Summary))
	}

	if len(t.Columns) > 0 {
		parts = append(parts, "\n**表格内容：**\n")
		parts = append(parts, "| "+strings.Join(t.Columns, " | ")+" |")

		separators := make([]string, len(t.Columns))
		for i := range separators {
			separators[i] = "---"
		}
		parts = append(parts, "|"+strings.Join(separators, "|")+"|")

		maxRows := len(t.Rows)
		if maxRows > maxRenderedRows {
			maxRows = maxRenderedRows
		}
		for _, row := range t.Rows[:maxRows] {
			parts = append(parts, "| "+strings.Join(row, " | ")+" |")
		}
		if len(t.Rows) > maxRows {
			parts = append(parts, fmt.Sprintf("\n... (表格共有 %d 行数据)", len(t.Rows)))
		}
	}

	return strings.Join(parts, "\n")
}

// ExtractYear looks for a fiscal year in the summary first, then in the
// cell data where only plausible values count.
func (t Table) ExtractYear() *int {
	if match := yearRe.FindStringSubmatch(t.Summary); match != nil {
		year, err := strconv.Atoi(match[1])
		if err == nil {
			return &year
		}
	}

	for _, row := range t.Rows {
		for _, cell := range row {
			match := yearRe.FindStringSubmatch(cell)
			if match == nil {
				continue
			}
			year, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if year >= minPlausibleYear && year <= maxPlausibleYear {
				return &year
			}
		}
	}
	return nil
}

// Chunk converts the table into its table-channel retrieval form. The id
// is left empty for the ingestion layer to assign.
func (t Table) Chunk() domain.Chunk {
	return domain.Chunk{
		Text:           t.RenderText(),
		Channel:        domain.ChannelTable,
		SourceDocument: t.SourceDocument,
		Year:           t.ExtractYear(),
		IsFinancial:    t.IsFinancial,
		TableID:        t.ID,
	}
}

func summarize(t Table) string {
	parts := []string{fmt.Sprintf("%d行 x %d列的表格", len(t.Rows), len(t.Columns))}

	if numeric := countNumericColumns(t.Columns, t.Rows); numeric > 0 {
		parts = append(parts, fmt.Sprintf("包含%d个数值列", numeric))
	}
	if t.IsFinancial {
		parts = append(parts, "疑似财务数据表格")
	}
	if len(t.Columns) > 0 {
		sample := t.Columns
		if len(sample) > 3 {
			sample = sample[:3]
		}
		parts = append(parts, fmt.Sprintf("主要列: %s", strings.Join(sample, ", ")))
	}

	return strings.Join(parts, "，")
}

// countNumericColumns treats a column as numeric when every non-empty
// cell parses as a number once separators are stripped.
func countNumericColumns(columns []string, rows [][]string) int {
	numeric := 0
	for col := range columns {
		seen := false
		allNumeric := true
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err != nil {
				allNumeric = false
				break
			}
		}
		if seen && allNumeric {
			numeric++
		}
	}
	return numeric
}
