package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type summarizeRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
}

type summarizeReply struct {
	Summary string          `json:"summary,omitempty"`
	Failure *domain.Failure `json:"failure,omitempty"`
}

func encodeRequest(text string, bounds domain.SummaryLengthBounds) ([]byte, error) {
	data, err := json.Marshal(summarizeRequest{Text: text, MaxLength: bounds.MaxLength, MinLength: bounds.MinLength})
	if err != nil {
		return nil, fmt.Errorf("marshal summarize request: %w", err)
	}
	return data, nil
}

func decodeRequest(data []byte) (string, domain.SummaryLengthBounds, error) {
	var req summarizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", domain.SummaryLengthBounds{}, domain.WrapError(domain.ErrSummarizationRejected, "decode summarize request", err)
	}
	return req.Text, domain.SummaryLengthBounds{MaxLength: req.MaxLength, MinLength: req.MinLength}, nil
}

func encodeReply(summary string, err error) []byte {
	reply := summarizeReply{Summary: summary}
	if err != nil {
		failure := domain.DescribeError(err)
		reply = summarizeReply{Failure: &failure}
	}
	data, marshalErr := json.Marshal(reply)
	if marshalErr != nil {
		return []byte(`{"failure":{"kind":"internal","error":"encode reply"}}`)
	}
	return data
}

// decodeReply restores the worker's failure kind so callers classify remote
// failures the same way as local ones.
func decodeReply(data []byte) (string, error) {
	var reply summarizeReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "decode summarize reply", err)
	}
	if reply.Failure != nil {
		return "", domain.WrapError(kindSentinel(reply.Failure.Kind), "remote summarize", errors.New(reply.Failure.Message))
	}
	return reply.Summary, nil
}

func kindSentinel(kind string) error {
	switch kind {
	case domain.KindSummarizationUnavailable:
		return domain.ErrSummarizerUnavailable
	case domain.KindInvalidInput:
		return domain.ErrInvalidInput
	case domain.KindTemporary:
		return domain.ErrTemporary
	default:
		return domain.ErrSummarizationRejected
	}
}
