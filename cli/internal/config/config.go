// Package config provides smartsquash configuration with a defined load
// order: CLI flags > environment variables > repo config > global config >
// defaults.
//
// Paths:
//   - Repo: .smartsquash.toml (at the repository root)
//   - Global: XDG config dir, e.g. ~/.config/smartsquash/config.toml
//
// Environment variables (override config files when set):
//   - SMARTSQUASH_PROVIDER, SMARTSQUASH_MODEL, SMARTSQUASH_API_KEY_ENV,
//   - SMARTSQUASH_OLLAMA_BASE_URL, SMARTSQUASH_CONTEXT_LIMIT,
//   - SMARTSQUASH_TIMEOUT (Go duration string or integer seconds),
//   - SMARTSQUASH_TEMPERATURE, SMARTSQUASH_BASE, SMARTSQUASH_AUTO_APPLY.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"smartsquash/cli/internal/erruser"
)

// Config holds all smartsquash configuration.
type Config struct {
	Provider      string        `toml:"provider"`
	Model         string        `toml:"model"`
	APIKeyEnv     string        `toml:"api_key_env"`
	OllamaBaseURL string        `toml:"ollama_base_url"`
	ContextLimit  int           `toml:"context_limit"`
	Timeout       time.Duration `toml:"timeout"`
	Temperature   float64       `toml:"temperature"`
	// Base is the default base ref when --base is not given.
	Base string `toml:"base"`
	// AutoApply skips the confirmation prompt before rewriting the branch.
	AutoApply bool `toml:"auto_apply"`
	// CommitTypes restricts advisor messages to these conventional-commit
	// types when EnforceTypes is set.
	CommitTypes      []string `toml:"commit_types"`
	EnforceTypes     bool     `toml:"enforce_types"`
	MaxSubjectLength int      `toml:"max_subject_length"`
	// IgnoredUntracked extends the generated-file patterns that never block
	// the clean-worktree check (gitignore syntax).
	IgnoredUntracked []string `toml:"ignored_untracked"`
}

// Overrides represents optional CLI flag overrides. A non-nil pointer means
// "override with this value", except that pointers to empty strings are
// ignored and an invalid Provider leaves the provider unchanged.
type Overrides struct {
	Provider    *string
	Model       *string
	Base        *string
	AutoApply   *bool
	Timeout     *time.Duration
	Temperature *float64
}

// LoadOptions configures Load. All fields are optional.
type LoadOptions struct {
	// RepoRoot is the repository root; if set, repo config is RepoRoot/.smartsquash.toml.
	RepoRoot string
	// GlobalConfigPath is the global config file path; if empty, the XDG path is used.
	GlobalConfigPath string
	// Env is the environment key=value slice; if nil, os.Environ() is used.
	Env []string
	// Overrides are applied last (highest precedence).
	Overrides *Overrides
}

const (
	_defaultProvider      = "local"
	_defaultModel         = "devstral"
	_defaultOllamaBaseURL = "http://localhost:11434"
	_defaultContextLimit  = 32768
	_defaultTimeout       = 5 * time.Minute
	_defaultTemperature   = 0.2
	_defaultBase          = "main"
)

// validProviders is the set of allowed provider values (normalized lowercase).
var validProviders = map[string]struct{}{
	"local": {}, "ollama": {}, "openai": {}, "anthropic": {},
}

func validateProvider(s string) (string, error) {
	norm := strings.TrimSpace(strings.ToLower(s))
	if _, ok := validProviders[norm]; !ok {
		return "", erruser.New("Invalid provider; use local, openai, or anthropic.", nil)
	}
	return norm, nil
}

// DefaultConfig returns the default configuration (no I/O).
func DefaultConfig() Config {
	return Config{
		Provider:         _defaultProvider,
		Model:            _defaultModel,
		OllamaBaseURL:    _defaultOllamaBaseURL,
		ContextLimit:     _defaultContextLimit,
		Timeout:          _defaultTimeout,
		Temperature:      _defaultTemperature,
		Base:             _defaultBase,
		MaxSubjectLength: 0, // commitmsg default applies
	}
}

// Load loads configuration with precedence: defaults < global file < repo
// file < env < overrides. Missing config files are ignored; invalid TOML or
// invalid env values return an error.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	cfg := DefaultConfig()

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, erruser.New("Could not determine config directory.", err)
		}
		globalPath = filepath.Join(dir, "smartsquash", "config.toml")
	}
	if err := mergeFile(&cfg, globalPath); err != nil {
		return nil, err
	}

	if opts.RepoRoot != "" {
		if err := mergeFile(&cfg, filepath.Join(opts.RepoRoot, ".smartsquash.toml")); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, opts.Env); err != nil {
		return nil, err
	}

	applyOverrides(&cfg, opts.Overrides)
	return &cfg, nil
}

// mergeFile reads path and merges into cfg. Fields present in the file
// overwrite earlier layers, except empty provider, model, ollama_base_url,
// timeout, and base strings, non-positive context_limit and
// max_subject_length values, and a temperature outside [0, 2], which are
// skipped. A missing file is skipped.
func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return erruser.New("Could not read configuration file.", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return erruser.New("Could not read configuration file.", err)
	}
	var file struct {
		Provider         *string   `toml:"provider"`
		Model            *string   `toml:"model"`
		APIKeyEnv        *string   `toml:"api_key_env"`
		OllamaBaseURL    *string   `toml:"ollama_base_url"`
		ContextLimit     *int64    `toml:"context_limit"`
		Timeout          *string   `toml:"timeout"`
		Temperature      *float64  `toml:"temperature"`
		Base             *string   `toml:"base"`
		AutoApply        *bool     `toml:"auto_apply"`
		CommitTypes      *[]string `toml:"commit_types"`
		EnforceTypes     *bool     `toml:"enforce_types"`
		MaxSubjectLength *int64    `toml:"max_subject_length"`
		IgnoredUntracked *[]string `toml:"ignored_untracked"`
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		return erruser.Newf(err, "Invalid configuration in %s.", filepath.Base(path))
	}
	if file.Provider != nil && *file.Provider != "" {
		norm, err := validateProvider(*file.Provider)
		if err != nil {
			return err
		}
		cfg.Provider = norm
	}
	if file.Model != nil && *file.Model != "" {
		cfg.Model = *file.Model
	}
	if file.APIKeyEnv != nil {
		cfg.APIKeyEnv = *file.APIKeyEnv
	}
	if file.OllamaBaseURL != nil && *file.OllamaBaseURL != "" {
		cfg.OllamaBaseURL = *file.OllamaBaseURL
	}
	if file.ContextLimit != nil && *file.ContextLimit > 0 {
		cfg.ContextLimit = int(*file.ContextLimit)
	}
	if file.Timeout != nil && *file.Timeout != "" {
		d, err := parseDuration(*file.Timeout)
		if err != nil {
			return erruser.New("Configuration timeout is invalid.", err)
		}
		cfg.Timeout = d
	}
	if file.Temperature != nil && *file.Temperature >= 0 && *file.Temperature <= 2 {
		cfg.Temperature = *file.Temperature
	}
	if file.Base != nil && *file.Base != "" {
		cfg.Base = *file.Base
	}
	if file.AutoApply != nil {
		cfg.AutoApply = *file.AutoApply
	}
	if file.CommitTypes != nil {
		cfg.CommitTypes = *file.CommitTypes
	}
	if file.EnforceTypes != nil {
		cfg.EnforceTypes = *file.EnforceTypes
	}
	if file.MaxSubjectLength != nil && *file.MaxSubjectLength > 0 {
		cfg.MaxSubjectLength = int(*file.MaxSubjectLength)
	}
	if file.IgnoredUntracked != nil {
		cfg.IgnoredUntracked = *file.IgnoredUntracked
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(n) * time.Second, nil
}

// env key names for config
const (
	envProvider      = "SMARTSQUASH_PROVIDER"
	envModel         = "SMARTSQUASH_MODEL"
	envAPIKeyEnv     = "SMARTSQUASH_API_KEY_ENV"
	envOllamaBaseURL = "SMARTSQUASH_OLLAMA_BASE_URL"
	envContextLimit  = "SMARTSQUASH_CONTEXT_LIMIT"
	envTimeout       = "SMARTSQUASH_TIMEOUT"
	envTemperature   = "SMARTSQUASH_TEMPERATURE"
	envBase          = "SMARTSQUASH_BASE"
	envAutoApply     = "SMARTSQUASH_AUTO_APPLY"
)

func applyEnv(cfg *Config, env []string) error {
	vals := make(map[string]string)
	for _, e := range env {
		idx := strings.Index(e, "=")
		if idx <= 0 {
			continue
		}
		vals[strings.TrimSpace(e[:idx])] = strings.TrimSpace(e[idx+1:])
	}
	if v, ok := vals[envProvider]; ok && v != "" {
		norm, err := validateProvider(v)
		if err != nil {
			return err
		}
		cfg.Provider = norm
	}
	if v, ok := vals[envModel]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := vals[envAPIKeyEnv]; ok {
		cfg.APIKeyEnv = v
	}
	if v, ok := vals[envOllamaBaseURL]; ok && v != "" {
		cfg.OllamaBaseURL = v
	}
	if v, ok := vals[envContextLimit]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return erruser.New("SMARTSQUASH_CONTEXT_LIMIT must be a positive number.", err)
		}
		cfg.ContextLimit = n
	}
	if v, ok := vals[envTimeout]; ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return erruser.New("SMARTSQUASH_TIMEOUT must be a valid duration.", err)
		}
		cfg.Timeout = d
	}
	if v, ok := vals[envTemperature]; ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return erruser.New("SMARTSQUASH_TEMPERATURE must be a valid number.", err)
		}
		if f < 0 || f > 2 {
			return erruser.New("SMARTSQUASH_TEMPERATURE must be between 0 and 2.", nil)
		}
		cfg.Temperature = f
	}
	if v, ok := vals[envBase]; ok && v != "" {
		cfg.Base = v
	}
	if v, ok := vals[envAutoApply]; ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return erruser.New("SMARTSQUASH_AUTO_APPLY must be 1/true/yes/on or 0/false/no/off.", err)
		}
		cfg.AutoApply = b
	}
	return nil
}

// parseBool parses common boolean env values: 1/true/yes/on = true,
// 0/false/no/off = false (case-insensitive).
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o == nil {
		return
	}
	if o.Provider != nil && *o.Provider != "" {
		if norm, err := validateProvider(*o.Provider); err == nil {
			cfg.Provider = norm
		}
	}
	if o.Model != nil && *o.Model != "" {
		cfg.Model = *o.Model
	}
	if o.Base != nil && *o.Base != "" {
		cfg.Base = *o.Base
	}
	if o.AutoApply != nil {
		cfg.AutoApply = *o.AutoApply
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
}
