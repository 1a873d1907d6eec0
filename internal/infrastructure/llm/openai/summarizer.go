// Package openai summarizes through any OpenAI compatible chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/llm"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

const summarizeOperation = "openai_summarize"

type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float32
	MaxInputChars int
}

type Summarizer struct {
	client   *goopenai.Client
	cfg      Config
	breakers *resilience.Breakers
}

func NewSummarizer(cfg Config, breakers *resilience.Breakers) *Summarizer {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientConfig.BaseURL = base
	}
	if breakers == nil {
		breakers = resilience.NewBreakers(resilience.DefaultConfig())
	}
	return &Summarizer{
		client:   goopenai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		breakers: breakers,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "openai summarize", fmt.Errorf("empty input text"))
	}
	if err := bounds.Validate(); err != nil {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "openai summarize", err)
	}

	input, truncated := llm.TruncateInput(text, s.cfg.MaxInputChars)
	if truncated {
		slog.Info("summarizer_input_truncated", "backend", "openai", "max_chars", s.cfg.MaxInputChars)
	}

	request := goopenai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.SummaryPrompt(input, bounds)},
		},
		MaxTokens:   llm.TokenBudget(bounds),
		Temperature: s.cfg.Temperature,
	}

	var summary string
	err := s.breakers.Call(ctx, summarizeOperation, func(callCtx context.Context) error {
		resp, err := s.client.CreateChatCompletion(callCtx, request)
		if err != nil {
			return err
		}
		if len(resp.Choices) > 0 {
			summary = strings.TrimSpace(resp.Choices[0].Message.Content)
		}
		return nil
	}, countsAgainstProvider)
	if err != nil {
		return "", classifySummarizeFailure(err)
	}
	if summary == "" {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "openai summarize", fmt.Errorf("model returned an empty summary"))
	}
	return summary, nil
}

func statusCode(err error) (int, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

func unavailableStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests:
		return true
	default:
		return code >= http.StatusInternalServerError
	}
}

func countsAgainstProvider(err error) bool {
	if code, ok := statusCode(err); ok {
		return unavailableStatus(code)
	}
	return true
}

func classifySummarizeFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resilience.IsOpen(err) {
		return domain.WrapError(domain.ErrSummarizerUnavailable, "openai summarize", err)
	}
	if code, ok := statusCode(err); ok {
		if unavailableStatus(code) {
			return domain.WrapError(domain.ErrSummarizerUnavailable, "openai summarize", err)
		}
		return domain.WrapError(domain.ErrSummarizationRejected, "openai summarize", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return domain.WrapError(domain.ErrSummarizerUnavailable, "openai summarize", err)
	}
	return domain.WrapError(domain.ErrSummarizationRejected, "openai summarize", err)
}
