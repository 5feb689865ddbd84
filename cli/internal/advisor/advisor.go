// Package advisor asks a language model to partition a diff's hunks into
// commit groups. Three providers share one interface: a local Ollama server,
// the OpenAI chat-completions API, and the Anthropic messages API. The
// engine treats the advisor as a pure function from diff to grouping; keys
// and transport quirks stay on this side of the boundary. Each plan makes a
// single request; a failed request is returned as an error, not retried.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"smartsquash/cli/internal/plan"
	"smartsquash/cli/internal/tokens"
	"smartsquash/cli/internal/trace"
)

// Provider generates one completion for one prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrMissingAPIKey indicates the configured API key environment variable is
// unset or empty.
var ErrMissingAPIKey = errors.New("api key environment variable not set")

const _defaultTimeout = 5 * time.Minute

// Options selects and configures a provider.
type Options struct {
	Provider     string // "local", "openai", or "anthropic"
	Model        string
	BaseURL      string // Ollama server root; ignored by hosted providers
	APIKeyEnv    string // environment variable holding the key for hosted providers
	Timeout      time.Duration
	ContextLimit int     // model context window, in tokens
	Temperature  float64 // sampling temperature for generation
	HTTPClient   *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = _defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// New builds the provider named in opts.
func New(opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "local", "ollama":
		return newOllama(opts), nil
	case "openai":
		return newOpenAI(opts)
	case "anthropic":
		return newAnthropic(opts)
	default:
		return nil, fmt.Errorf("unsupported provider %q (use local, openai, or anthropic)", opts.Provider)
	}
}

// apiKey resolves the provider key from the configured environment
// variable, falling back to fallbackEnv when none is configured.
func apiKey(configuredEnv, fallbackEnv string) (string, error) {
	env := configuredEnv
	if env == "" {
		env = fallbackEnv
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingAPIKey, env)
	}
	return key, nil
}

// Plan runs the full advisory step: build the grouping prompt, size-check
// it, query the provider, and parse the response into groups. The returned
// groups are not yet validated against the hunk set; the engine does that
// before mutating anything.
func Plan(ctx context.Context, p Provider, req PromptRequest, contextLimit int, tr *trace.Tracer) ([]plan.Group, error) {
	prompt := BuildPrompt(req)
	promptTokens := tokens.Estimate(prompt)
	tr.Section("advisor")
	tr.Printf("provider=%s prompt_tokens=%d\n", p.Name(), promptTokens)
	if warn := tokens.WarnIfOver(promptTokens, tokens.DefaultResponseReserve, contextLimit, 1.0); warn != "" {
		return nil, fmt.Errorf("diff too large for the model: %s", warn)
	}

	raw, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	tr.Printf("response_bytes=%d\n", len(raw))

	groups, err := plan.ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("advisor returned unusable grouping: %w", err)
	}
	return groups, nil
}
