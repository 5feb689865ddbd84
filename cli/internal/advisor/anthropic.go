package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	_anthropicEndpoint  = "https://api.anthropic.com/v1/messages"
	_anthropicKeyEnv    = "ANTHROPIC_API_KEY"
	_anthropicVersion   = "2023-06-01"
	_anthropicMaxTokens = 4096
)

// anthropicProvider calls the Anthropic messages API.
type anthropicProvider struct {
	model      string
	apiKey     string
	httpClient *http.Client
}

func newAnthropic(opts Options) (*anthropicProvider, error) {
	key, err := apiKey(opts.APIKeyEnv, _anthropicKeyEnv)
	if err != nil {
		return nil, err
	}
	return &anthropicProvider{model: opts.Model, apiKey: key, httpClient: opts.httpClient()}, nil
}

func (p *anthropicProvider) Name() string { return "anthropic (" + p.model + ")" }

func (p *anthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model":      p.model,
		"max_tokens": _anthropicMaxTokens,
		"messages":   []map[string]string{{"role": "user", "content": prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, _anthropicEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("anthropic generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", _anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("anthropic generate: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("anthropic generate: parse response: %w", err)
	}
	if len(body.Content) == 0 {
		return "", fmt.Errorf("anthropic generate: empty response")
	}
	if body.StopReason == "max_tokens" {
		return "", fmt.Errorf("anthropic generate: response truncated at %d tokens; reduce the diff size", _anthropicMaxTokens)
	}
	return body.Content[0].Text, nil
}
