package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smartsquash/cli/internal/tokens"
)

// ErrUnreachable indicates the Ollama server could not be reached
// (connection refused, timeout, or an HTTP status other than 200).
var ErrUnreachable = errors.New("ollama server unreachable")

const _defaultOllamaBaseURL = "http://localhost:11434"

// ollamaProvider talks to a local Ollama server via /api/generate.
type ollamaProvider struct {
	baseURL      string
	model        string
	contextLimit int
	temperature  float64
	httpClient   *http.Client
}

func newOllama(opts Options) *ollamaProvider {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = _defaultOllamaBaseURL
	}
	return &ollamaProvider{
		baseURL:      baseURL,
		model:        opts.Model,
		contextLimit: opts.ContextLimit,
		temperature:  opts.Temperature,
		httpClient:   opts.httpClient(),
	}
}

func (p *ollamaProvider) Name() string { return "local (" + p.model + ")" }

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumCtx      int     `json:"num_ctx"`
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate POSTs /api/generate with stream=false. The context window is
// sized to the prompt so small diffs do not pay for a full-size KV cache.
func (p *ollamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	numCtx := tokens.ContextSize(tokens.Estimate(prompt), tokens.DefaultResponseReserve, p.contextLimit)
	payload, err := json.Marshal(ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			NumCtx:      numCtx,
			NumPredict:  tokens.DefaultResponseReserve,
			Temperature: p.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama generate: %w: HTTP %d: %s", ErrUnreachable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ollama generate: parse response: %w", err)
	}
	if !body.Done {
		return "", fmt.Errorf("ollama generate: response truncated at %d context tokens; use a larger model or reduce the diff", numCtx)
	}
	return body.Response, nil
}
