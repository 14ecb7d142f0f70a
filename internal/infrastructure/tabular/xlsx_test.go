package tabular

import (
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadWorkbookReadsSheets(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "指标", "B1": "2023年",
		"A2": "营业收入", "B2": "1,200,000",
		"A3": "净利润",
	}
	for ref, value := range cells {
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}
	// A header alone is not a table.
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetCellValue("Empty", "A1", "lonely"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}

	tables, err := ReadWorkbook("report.xlsx", buf)
	if err != nil {
		t.Fatalf("ReadWorkbook() error = %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.ID != "report.xlsx#"+sheet {
		t.Fatalf("id = %q", table.ID)
	}
	if table.SourceDocument != "report.xlsx" || table.Page != 1 {
		t.Fatalf("source = %q page = %d", table.SourceDocument, table.Page)
	}
	if !reflect.DeepEqual(table.Columns, []string{"指标", "2023年"}) {
		t.Fatalf("columns = %v", table.Columns)
	}
	want := [][]string{
		{"营业收入", "1,200,000"},
		{"净利润", ""},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("rows = %v, want %v", table.Rows, want)
	}
}

func TestReadWorkbookRejectsCorruptStream(t *testing.T) {
	if _, err := ReadWorkbook("broken.xlsx", strings.NewReader("not a workbook")); err == nil {
		t.Fatalf("expected error for corrupt workbook stream")
	}
}

func TestCleanGridPadsAndDropsEmptyRows(t *testing.T) {
	raw := [][]string{
		{"  指标  ", "2023   年"},
		{"", "   "},
		{"营业收入"},
	}
	got := cleanGrid(raw)
	want := [][]string{
		{"指标", "2023 年"},
		{"营业收入", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cleanGrid() = %v, want %v", got, want)
	}
}
