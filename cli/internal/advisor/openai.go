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
	_openAIEndpoint  = "https://api.openai.com/v1/chat/completions"
	_openAIKeyEnv    = "OPENAI_API_KEY"
	_openAIMaxTokens = 4096
)

// openAIProvider calls the OpenAI chat-completions API.
type openAIProvider struct {
	model      string
	apiKey     string
	httpClient *http.Client
}

func newOpenAI(opts Options) (*openAIProvider, error) {
	key, err := apiKey(opts.APIKeyEnv, _openAIKeyEnv)
	if err != nil {
		return nil, err
	}
	return &openAIProvider{model: opts.Model, apiKey: key, httpClient: opts.httpClient()}, nil
}

func (p *openAIProvider) Name() string { return "openai (" + p.model + ")" }

func (p *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model":      p.model,
		"messages":   []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens": _openAIMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, _openAIEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai generate: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("openai generate: parse response: %w", err)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("openai generate: empty response")
	}
	choice := body.Choices[0]
	if choice.FinishReason == "length" {
		return "", fmt.Errorf("openai generate: response truncated at %d tokens; reduce the diff size", _openAIMaxTokens)
	}
	return choice.Message.Content, nil
}
