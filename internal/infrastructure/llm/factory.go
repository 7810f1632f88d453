package llm

import (
	"fmt"
	"net/http"
	"strings"

	"ResearchAgent/internal/config"
	"ResearchAgent/internal/infrastructure/ml"
	"ResearchAgent/internal/ports"
)

// New selects the summarizer backend named by cfg.Model. It returns a nil
// Summarizer when the selected provider has no credentials, which the
// pipeline treats as "summarization not configured".
func New(cfg config.SummarizerConfig, httpClient *http.Client) (ports.Summarizer, error) {
	ep := cfg.Endpoint()

	switch strings.ToLower(cfg.Model) {
	case config.ModelTemplate:
		return TemplateSummarizer{}, nil
	case config.ModelService:
		if ep.Endpoint == "" {
			return nil, nil
		}
		return ml.NewClient(ep.Endpoint, ep.APIKey, httpClient), nil
	case config.ModelGemini:
		if ep.APIKey == "" {
			return nil, nil
		}
		return NewGeminiClient(ep, cfg.MaxTokens, cfg.Temperature, httpClient), nil
	case config.ModelKimi, config.ModelGPT:
		if ep.APIKey == "" {
			return nil, nil
		}
		return NewChatClient(ep, cfg.MaxTokens, cfg.Temperature, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown summarizer model %q", cfg.Model)
	}
}
