package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/chunking"
)

func TestSupportsNarrativeExtensions(t *testing.T) {
	e := NewExtractor(chunking.NewSplitter(0, 0))
	for key, want := range map[string]bool{
		"annual.txt":        true,
		"notes/summary.MD":  true,
		"tables/q3.xlsx":    false,
		"archive/report.gz": false,
	} {
		if got := e.Supports(key); got != want {
			t.Fatalf("Supports(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestExtractSplitsNarrativeText(t *testing.T) {
	e := NewExtractor(chunking.NewSplitter(10, 0))
	body := "2023年公司营业收入增长,净利润率保持稳定水平"

	chunks, err := e.Extract(context.Background(), "reports/annual.txt", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple windows for a 10-rune splitter, got %d", len(chunks))
	}
	first := chunks[0]
	if first.Channel != domain.ChannelText {
		t.Fatalf("channel = %q", first.Channel)
	}
	if first.SourceDocument != "reports/annual.txt" {
		t.Fatalf("source = %q", first.SourceDocument)
	}
	if first.Year == nil || *first.Year != 2023 {
		t.Fatalf("year = %v, want 2023", first.Year)
	}
	if first.ID != "" {
		t.Fatalf("extractor must leave ids for ingestion, got %q", first.ID)
	}
}

func TestExtractEmptyDocumentYieldsNoChunks(t *testing.T) {
	e := NewExtractor(chunking.NewSplitter(0, 0))
	chunks, err := e.Extract(context.Background(), "blank.txt", strings.NewReader("   \n\t  "))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestExtractRejectsBinaryContent(t *testing.T) {
	e := NewExtractor(chunking.NewSplitter(0, 0))
	if _, err := e.Extract(context.Background(), "binary.txt", strings.NewReader("\xff\xfe\x00")); err == nil {
		t.Fatalf("expected error for non-utf8 content")
	}
}
