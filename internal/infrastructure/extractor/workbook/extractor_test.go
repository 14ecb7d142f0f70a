package workbook

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

func TestSupportsSpreadsheetExtensions(t *testing.T) {
	e := NewExtractor()
	for key, want := range map[string]bool{
		"tables/q3.xlsx": true,
		"macro.XLSM":     true,
		"annual.txt":     false,
		"legacy.xls":     false,
	} {
		if got := e.Supports(key); got != want {
			t.Fatalf("Supports(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestExtractBuildsTableChunks(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "指标", "B1": "金额",
		"A2": "营业收入", "B2": "¥ 1,200,000",
		"A3": "净利润", "B3": "¥ 300,000",
	}
	for ref, value := range cells {
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}

	e := NewExtractor()
	chunks, err := e.Extract(context.Background(), "tables/q3.xlsx", buf)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	chunk := chunks[0]
	if chunk.Channel != domain.ChannelTable {
		t.Fatalf("channel = %q", chunk.Channel)
	}
	if chunk.TableID != "tables/q3.xlsx#"+sheet {
		t.Fatalf("table id = %q", chunk.TableID)
	}
	if chunk.SourceDocument != "tables/q3.xlsx" {
		t.Fatalf("source = %q", chunk.SourceDocument)
	}
	if !strings.Contains(chunk.Text, "营业收入") {
		t.Fatalf("rendered text missing table content: %q", chunk.Text)
	}
	if chunk.ID != "" {
		t.Fatalf("extractor must leave ids for ingestion, got %q", chunk.ID)
	}
}

func TestExtractRejectsCorruptWorkbook(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(context.Background(), "broken.xlsx", strings.NewReader("junk")); err == nil {
		t.Fatalf("expected error for corrupt workbook")
	}
}
