package domain

import (
	"fmt"
	"time"
)

// SummaryLengthBounds are the generation limits passed to a summarizer.
type SummaryLengthBounds struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

func (b SummaryLengthBounds) Validate() error {
	if b.MinLength < 1 || b.MinLength >= b.MaxLength {
		return fmt.Errorf("bounds must satisfy 0 < min_length < max_length, got (%d, %d)", b.MaxLength, b.MinLength)
	}
	return nil
}

// SummaryLengthRange describes the target lengths a host may offer.
type SummaryLengthRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

type SummaryResult struct {
	DocumentID   string              `json:"document_id"`
	Text         string              `json:"text"`
	TargetLength int                 `json:"target_length"`
	Bounds       SummaryLengthBounds `json:"bounds"`
	Duration     time.Duration       `json:"duration_ns"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (r SummaryResult) WordCount() int {
	return CountWords(r.Text)
}
