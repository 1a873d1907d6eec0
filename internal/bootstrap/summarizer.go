package bootstrap

import (
	"fmt"
	"strings"

	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/llm/openai"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendNATS   = "nats"
)

// NewSummarizer builds the backend named by backend behind its own circuit
// breaker. The returned close func releases backend connections.
func NewSummarizer(cfg config.Config, backend string) (ports.Summarizer, func(), error) {
	breakers := resilience.NewBreakers(cfg.SummarizerBreaker())
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendOllama:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaSummaryModel, cfg.SummarizeTimeout)
		return ollama.NewSummarizer(client, ollama.Options{
			MaxInputChars: cfg.SummarizerMaxInputChars,
			Breakers:      breakers,
		}), noop, nil
	case BackendOpenAI:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && strings.TrimSpace(cfg.OpenAIBaseURL) == "" {
			return nil, nil, fmt.Errorf("openai backend requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return openai.NewSummarizer(openai.Config{
			BaseURL:       cfg.OpenAIBaseURL,
			APIKey:        cfg.OpenAIAPIKey,
			Model:         cfg.OpenAIModel,
			Temperature:   float32(cfg.OpenAITemperature),
			MaxInputChars: cfg.SummarizerMaxInputChars,
		}, breakers), noop, nil
	case BackendNATS:
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSummarizeSubject, nats.Options{
			RequestTimeout: cfg.SummarizeTimeout,
			ClientName:     "pdf-digest-api",
			Breakers:       breakers,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init nats summarizer: %w", err)
		}
		return queue, queue.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown summarizer backend %q", backend)
	}
}
