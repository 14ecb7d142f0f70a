package chunking

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

const (
	defaultChunkSize = 900

	minPlausibleYear = 2000
	maxPlausibleYear = 2030
)

var (
	// A 年-suffixed number is a stronger fiscal-year signal than a bare
	// four-digit run, so it is checked first.
	suffixedYearRe = regexp.MustCompile(`(\d{4})年`)
	bareYearRe     = regexp.MustCompile(`(\d{4})`)
)

// Splitter cuts narrative report text into overlapping rune windows.
// Overlap keeps sentences that straddle a window boundary retrievable
// from both sides.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split returns the trimmed text windows. Window boundaries count runes,
// not bytes, so CJK report text is not cut mid-character.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// SplitDocument converts one narrative document into text-channel chunks,
// tagging each window with the first plausible fiscal year it mentions.
// Chunk IDs are left empty; ingestion assigns them.
func (s *Splitter) SplitDocument(source, text string) []domain.Chunk {
	windows := s.Split(text)
	if len(windows) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(windows))
	for _, window := range windows {
		chunks = append(chunks, domain.Chunk{
			Text:           window,
			Channel:        domain.ChannelText,
			SourceDocument: source,
			Year:           extractYear(window),
		})
	}
	return chunks
}

func extractYear(text string) *int {
	if year, ok := firstPlausibleYear(suffixedYearRe, text); ok {
		return &year
	}
	if year, ok := firstPlausibleYear(bareYearRe, text); ok {
		return &year
	}
	return nil
}

func firstPlausibleYear(re *regexp.Regexp, text string) (int, bool) {
	for _, match := range re.FindAllStringSubmatch(text, -1) {
		year, err := strconv.Atoi(match[1])
		if err != nil || year < minPlausibleYear || year > maxPlausibleYear {
			continue
		}
		return year, true
	}
	return 0, false
}
