package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/browserpilot/agent/pkg/models"
)

const minimalYAML = `
models:
  high:
    - endpoint: "https://api.anthropic.com"
      model: "claude-sonnet"
      provider_hint: "anthropic"
  medium: []
  low: []
browser:
  max_instances: 3
dom:
  max_html_bytes: 60000
  target_size: 50000
trace:
  path: "test-trace.db"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "browserpilot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaultsAndParsesModels(t *testing.T) {
	path := writeTempConfig(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Browser.MaxInstances != 3 {
		t.Fatalf("expected explicit max_instances preserved, got %d", cfg.Browser.MaxInstances)
	}
	if cfg.Browser.ViewportWidth != 1920 {
		t.Fatalf("expected default viewport width, got %d", cfg.Browser.ViewportWidth)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default logging level, got %q", cfg.Logging.Level)
	}
	if len(cfg.Models.High) != 1 || cfg.Models.High[0].Model != "claude-sonnet" {
		t.Fatalf("expected one high-tier model, got %+v", cfg.Models.High)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeTempConfig(t, minimalYAML+"\nbogus_field: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown top-level field")
	}
}

func TestLoad_ValidatesTargetSizeAgainstMaxBytes(t *testing.T) {
	bad := `
models:
  high:
    - endpoint: "https://api.anthropic.com"
      model: "claude-sonnet"
dom:
  max_html_bytes: 1000
  target_size: 5000
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestLoad_RequiresAtLeastOneHighTierModel(t *testing.T) {
	bad := `
models:
  high: []
`
	path := writeTempConfig(t, bad)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for empty high tier")
	}
}

func TestApplyEnvOverrides_FillsAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key-123")
	path := writeTempConfig(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Models.High[0].APIKey != "test-key-123" {
		t.Fatalf("expected api key from environment, got %q", cfg.Models.High[0].APIKey)
	}
}

func TestConfig_Catalog_MapsToGatewayCatalog(t *testing.T) {
	path := writeTempConfig(t, minimalYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	catalog := cfg.Catalog()
	high, ok := catalog[models.IntelligenceHigh]
	if !ok || len(high) != 1 {
		t.Fatalf("expected one high-tier descriptor, got %+v", catalog)
	}
	if high[0].ProviderHint != "anthropic" {
		t.Fatalf("expected provider hint carried through, got %q", high[0].ProviderHint)
	}
}
