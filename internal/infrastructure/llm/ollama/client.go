package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/llm"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

const summarizeOperation = "ollama_summarize"

type Options struct {
	MaxInputChars int
	Breakers      *resilience.Breakers
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Summarizer calls /api/generate once per request.
type Summarizer struct {
	client        *Client
	breakers      *resilience.Breakers
	maxInputChars int
}

func NewSummarizer(client *Client, opts Options) *Summarizer {
	breakers := opts.Breakers
	if breakers == nil {
		breakers = resilience.NewBreakers(resilience.DefaultConfig())
	}
	return &Summarizer{
		client:        client,
		breakers:      breakers,
		maxInputChars: opts.MaxInputChars,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", fmt.Errorf("empty input text"))
	}
	if err := bounds.Validate(); err != nil {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", err)
	}

	input, truncated := llm.TruncateInput(text, s.maxInputChars)
	if truncated {
		slog.Info("summarizer_input_truncated", "backend", "ollama", "max_chars", s.maxInputChars)
	}

	request := generateRequest{
		Model:   s.client.model,
		System:  llm.SystemInstruction,
		Prompt:  llm.SummaryPrompt(input, bounds),
		Options: generateOptions{NumPredict: llm.TokenBudget(bounds)},
	}

	var summary string
	err := s.breakers.Call(ctx, summarizeOperation, func(callCtx context.Context) error {
		out, err := s.client.generate(callCtx, request)
		if err != nil {
			return err
		}
		summary = out
		return nil
	}, countsAgainstOllama)
	if err != nil {
		return "", classifySummarizeFailure(err)
	}
	if summary == "" {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", fmt.Errorf("model returned an empty summary"))
	}
	return summary, nil
}
