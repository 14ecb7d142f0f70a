package domain

import (
	"fmt"
	"strconv"
)

// Channel identifies which of the two retrieval corpora a chunk belongs to:
// narrative report text or rendered table extracts.
type Channel string

const (
	ChannelText  Channel = "text"
	ChannelTable Channel = "table"
)

func ParseChannel(raw string) (Channel, error) {
	switch Channel(raw) {
	case ChannelText:
		return ChannelText, nil
	case ChannelTable:
		return ChannelTable, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse channel", fmt.Errorf("unknown channel %q", raw))
	}
}

// Chunk is one indexable unit of report content. For a table chunk, Text
// holds the rendered tabular-to-text form. Chunks are immutable after
// ingestion; TableID is set iff Channel == ChannelTable.
type Chunk struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	Channel        Channel `json:"channel"`
	SourceDocument string  `json:"source_document"`
	Year           *int    `json:"year,omitempty"`
	IsFinancial    bool    `json:"is_financial"`
	TableID        string  `json:"table_id,omitempty"`
}

// YearString renders the fiscal year the way year matching compares it.
// Empty when the chunk carries no year metadata.
func (c Chunk) YearString() string {
	if c.Year == nil {
		return ""
	}
	return strconv.Itoa(*c.Year)
}
