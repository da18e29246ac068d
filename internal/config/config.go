// Package config loads browserpilot.yaml: the model catalog, browser
// pool, DOM cleaning, and trace store settings, with environment
// variables overriding secrets.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/browserpilot/agent/internal/browserstate"
	"github.com/browserpilot/agent/internal/domclean"
	"github.com/browserpilot/agent/internal/gateway"
	"github.com/browserpilot/agent/internal/gateway/providers"
	"github.com/browserpilot/agent/pkg/models"
)

// Config is the root configuration for the browserpilot CLI, adapted
// from the teacher's internal/config/config.go Config struct: one
// top-level struct of yaml-tagged sections, loaded from a single file,
// with defaults and environment overrides applied after decode.
type Config struct {
	Models  ModelsConfig  `yaml:"models"`
	Browser BrowserConfig `yaml:"browser"`
	DOM     DOMConfig     `yaml:"dom"`
	Trace   TraceConfig   `yaml:"trace"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelsConfig is the per-intelligence-tier model cascade catalog the
// gateway selects from (spec §4.2's cascading selection).
type ModelsConfig struct {
	High   []ModelEntry `yaml:"high"`
	Medium []ModelEntry `yaml:"medium"`
	Low    []ModelEntry `yaml:"low"`
}

// ModelEntry mirrors pkg/models.ModelDescriptor's yaml-authored form.
type ModelEntry struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	ProviderHint string `yaml:"provider_hint"`
	NoToolChoice bool   `yaml:"no_tool_choice"`
	NoToolUse    bool   `yaml:"no_tool_use"`

	// APIKey is normally left empty in the file and supplied via
	// ANTHROPIC_API_KEY / OPENAI_API_KEY at load time.
	APIKey string `yaml:"api_key"`
}

// BrowserConfig configures the shared playwright pool.
type BrowserConfig struct {
	MaxInstances   int           `yaml:"max_instances"`
	Timeout        time.Duration `yaml:"timeout"`
	Headless       bool          `yaml:"headless"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	RemoteURL      string        `yaml:"remote_url"`
}

// DOMConfig configures the cleaning pipeline's size envelope.
type DOMConfig struct {
	MaxHTMLBytes int  `yaml:"max_html_bytes"`
	TargetSize   int  `yaml:"target_size"`
	Debug        bool `yaml:"debug"`
}

// TraceConfig configures the sqlite-backed trace store.
type TraceConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig matches the teacher's own LoggingConfig shape exactly.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, expands environment variables in, decodes, defaults, and
// validates the config file at path, following the teacher's Load
// pipeline (expand -> strict decode -> env overrides -> defaults ->
// validate).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := decoder.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("config: expected a single yaml document")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Browser.MaxInstances == 0 {
		cfg.Browser.MaxInstances = 5
	}
	if cfg.Browser.Timeout == 0 {
		cfg.Browser.Timeout = 30 * time.Second
	}
	if cfg.Browser.ViewportWidth == 0 {
		cfg.Browser.ViewportWidth = 1920
	}
	if cfg.Browser.ViewportHeight == 0 {
		cfg.Browser.ViewportHeight = 1080
	}
	if cfg.DOM.MaxHTMLBytes == 0 {
		cfg.DOM.MaxHTMLBytes = 50_000
	}
	if cfg.DOM.TargetSize == 0 {
		cfg.DOM.TargetSize = 45_000
	}
	if cfg.Trace.Path == "" {
		cfg.Trace.Path = "browserpilot.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides fills in ModelEntry.APIKey from ANTHROPIC_API_KEY /
// OPENAI_API_KEY for entries whose provider_hint names that provider and
// whose api_key is still empty, matching the teacher's convention of
// letting environment variables override file-level secrets.
func applyEnvOverrides(cfg *Config) {
	anthropicKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	for _, tier := range [][]ModelEntry{cfg.Models.High, cfg.Models.Medium, cfg.Models.Low} {
		for i := range tier {
			if tier[i].APIKey != "" {
				continue
			}
			switch strings.ToLower(tier[i].ProviderHint) {
			case "anthropic":
				tier[i].APIKey = anthropicKey
			case "openai":
				tier[i].APIKey = openaiKey
			}
		}
	}

	if value := strings.TrimSpace(os.Getenv("BROWSERPILOT_REMOTE_URL")); value != "" {
		cfg.Browser.RemoteURL = value
	}
	if value := strings.TrimSpace(os.Getenv("BROWSERPILOT_TRACE_PATH")); value != "" {
		cfg.Trace.Path = value
	}
	if value := strings.TrimSpace(os.Getenv("BROWSERPILOT_LOG_LEVEL")); value != "" {
		cfg.Logging.Level = value
	}
}

// ValidationError collects every config issue found, matching the
// teacher's ConfigValidationError: one error listing every problem
// rather than failing on the first.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validate(cfg *Config) error {
	var issues []string

	if len(cfg.Models.High) == 0 {
		issues = append(issues, "models.high must list at least one model")
	}
	if cfg.Browser.MaxInstances < 1 {
		issues = append(issues, "browser.max_instances must be >= 1")
	}
	if cfg.DOM.MaxHTMLBytes < 1 {
		issues = append(issues, "dom.max_html_bytes must be >= 1")
	}
	if cfg.DOM.TargetSize > cfg.DOM.MaxHTMLBytes {
		issues = append(issues, "dom.target_size must be <= dom.max_html_bytes")
	}
	if strings.TrimSpace(cfg.Trace.Path) == "" {
		issues = append(issues, "trace.path must be set")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, "logging.level must be debug, info, warn, or error")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Catalog converts the yaml-authored model tiers into the gateway's
// runtime Catalog keyed by intelligence tier.
func (c *Config) Catalog() gateway.Catalog {
	return gateway.Catalog{
		models.IntelligenceHigh:   toDescriptors(c.Models.High),
		models.IntelligenceMedium: toDescriptors(c.Models.Medium),
		models.IntelligenceLow:    toDescriptors(c.Models.Low),
	}
}

func toDescriptors(entries []ModelEntry) []models.ModelDescriptor {
	out := make([]models.ModelDescriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.ModelDescriptor{
			Endpoint:     e.Endpoint,
			Model:        e.Model,
			ProviderHint: e.ProviderHint,
			NoToolChoice: e.NoToolChoice,
			NoToolUse:    e.NoToolUse,
		})
	}
	return out
}

// Providers builds the provider adapters the gateway dispatches to, one
// per distinct provider_hint found across all three tiers with a non-empty
// api_key. An entry whose hint is neither "anthropic" nor "openai" is
// skipped; the gateway will fail that candidate's attempts with an
// unresolved-provider error at call time rather than at startup.
func (c *Config) Providers() (map[string]providers.Provider, error) {
	out := make(map[string]providers.Provider)
	for _, tier := range [][]ModelEntry{c.Models.High, c.Models.Medium, c.Models.Low} {
		for _, e := range tier {
			hint := strings.ToLower(e.ProviderHint)
			if _, exists := out[hint]; exists || e.APIKey == "" {
				continue
			}
			switch hint {
			case "anthropic":
				provider, err := providers.NewAnthropicProvider(providers.AnthropicConfig{
					APIKey:       e.APIKey,
					DefaultModel: e.Model,
				})
				if err != nil {
					return nil, fmt.Errorf("config: build anthropic provider: %w", err)
				}
				out[hint] = provider
			case "openai":
				provider, err := providers.NewOpenAIProvider(providers.OpenAIConfig{
					APIKey:       e.APIKey,
					DefaultModel: e.Model,
				})
				if err != nil {
					return nil, fmt.Errorf("config: build openai provider: %w", err)
				}
				out[hint] = provider
			}
		}
	}
	return out, nil
}

// BrowserPoolConfig converts BrowserConfig into a browserstate.PoolConfig.
func (c *Config) BrowserPoolConfig() browserstate.PoolConfig {
	return browserstate.PoolConfig{
		MaxInstances:   c.Browser.MaxInstances,
		Timeout:        c.Browser.Timeout,
		Headless:       c.Browser.Headless,
		ViewportWidth:  c.Browser.ViewportWidth,
		ViewportHeight: c.Browser.ViewportHeight,
		RemoteURL:      c.Browser.RemoteURL,
	}
}

// DOMCleanConfig converts DOMConfig into a domclean.Config.
func (c *Config) DOMCleanConfig() domclean.Config {
	return domclean.Config{
		MaxHTMLBytes: c.DOM.MaxHTMLBytes,
		TargetSize:   c.DOM.TargetSize,
		Debug:        c.DOM.Debug,
	}
}

// ParsePort is used by the CLI's doctor subcommand to validate a
// user-supplied --port flag: it must be an integer in 1..65535.
func ParsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid port %q: %w", value, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("config: port %d out of range", port)
	}
	return port, nil
}
