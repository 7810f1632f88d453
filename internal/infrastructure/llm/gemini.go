package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ResearchAgent/internal/config"
	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

// GeminiClient implements ports.Summarizer with the Gemini generateContent
// endpoint.
type GeminiClient struct {
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

var _ ports.Summarizer = (*GeminiClient)(nil)

// NewGeminiClient builds a client; ep.Endpoint is the API root such as
// https://generativelanguage.googleapis.com/v1beta.
func NewGeminiClient(ep config.EndpointConfig, maxTokens int, temperature float64, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &GeminiClient{
		baseURL:     strings.TrimRight(ep.Endpoint, "/"),
		model:       ep.Model,
		apiKey:      ep.APIKey,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  httpClient,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// apiKeyHeader carries the key so it never appears in request URLs or the
// transport errors that quote them.
const apiKeyHeader = "x-goog-api-key"

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Summarize sends the prompt as a single-turn generateContent request.
func (g *GeminiClient) Summarize(ctx context.Context, candidate domain.Candidate) (string, error) {
	if g.apiKey == "" || g.baseURL == "" || g.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	var payload geminiRequest
	payload.Contents = []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(candidate)}}}}
	payload.GenerationConfig.MaxOutputTokens = g.maxTokens
	payload.GenerationConfig.Temperature = g.temperature

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return strings.TrimSpace(text.String()), nil
}
