package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrSessionNotFound       = errors.New("session not found")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")
	ErrSummarizationRejected = errors.New("summarization rejected")
	ErrStaleDocument         = errors.New("document replaced")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

const (
	KindInvalidInput             = "invalid_input"
	KindSessionNotFound          = "session_not_found"
	KindStaleDocument            = "stale_document"
	KindExtractionFailure        = "extraction_failure"
	KindSummarizationUnavailable = "summarization_unavailable"
	KindSummarizationRejected    = "summarization_rejected"
	KindTemporary                = "temporary"
	KindInternal                 = "internal"
)

// Failure is the structured form of an error handed to callers that render it.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"error"`
}

// DescribeError maps err onto the most specific known kind.
// Unavailable is checked before temporary since breaker errors carry both.
func DescribeError(err error) Failure {
	if err == nil {
		return Failure{}
	}
	kind := KindInternal
	switch {
	case IsKind(err, ErrInvalidInput):
		kind = KindInvalidInput
	case IsKind(err, ErrSessionNotFound):
		kind = KindSessionNotFound
	case IsKind(err, ErrStaleDocument):
		kind = KindStaleDocument
	case IsKind(err, ErrExtractionFailed):
		kind = KindExtractionFailure
	case IsKind(err, ErrSummarizerUnavailable):
		kind = KindSummarizationUnavailable
	case IsKind(err, ErrSummarizationRejected):
		kind = KindSummarizationRejected
	case IsKind(err, ErrTemporary):
		kind = KindTemporary
	}
	return Failure{Kind: kind, Message: err.Error()}
}
