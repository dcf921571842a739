package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestParse_Defaults tests that empty input yields the full default
// configuration.
func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging defaults = %+v", cfg.Logging)
	}
	if cfg.Store.Backend != "memory" || cfg.Store.BucketWidth != 5*time.Minute {
		t.Errorf("Store defaults = %+v", cfg.Store)
	}
	if cfg.Capture.Content {
		t.Errorf("Content capture must default off")
	}
	if !cfg.Capture.Scrubbing.PII || !cfg.Capture.Scrubbing.Secrets {
		t.Errorf("Scrubbing must default on: %+v", cfg.Capture.Scrubbing)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:8484" {
		t.Errorf("Listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Retention.RetentionDays != 90 {
		t.Errorf("Retention days = %d", cfg.Retention.RetentionDays)
	}
	if cfg.Bridge.Enabled {
		t.Errorf("Bridge must default off")
	}
}

// TestParse_FileOverrides tests that file values, including explicit
// falses, win over defaults.
func TestParse_FileOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
logging:
  level: debug
  format: json
store:
  backend: jsonl
  jsonl:
    path: /tmp/events.jsonl
capture:
  content: true
  scrubbing:
    pii: false
retention:
  retention_days: 7
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Store.Backend != "jsonl" || cfg.Store.JSONL.Path != "/tmp/events.jsonl" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if !cfg.Capture.Content {
		t.Errorf("Capture override lost")
	}
	if cfg.Capture.Scrubbing.PII {
		t.Errorf("Explicit false must beat the default true")
	}
	if !cfg.Capture.Scrubbing.Secrets {
		t.Errorf("Untouched sibling field lost its default")
	}
	if cfg.Retention.RetentionDays != 7 {
		t.Errorf("Retention days = %d", cfg.Retention.RetentionDays)
	}
}

// TestParse_EnvOverrides tests that environment variables beat file values.
func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("CALLISTO_LOGGING_LEVEL", "error")
	t.Setenv("CALLISTO_STORE_BACKEND", "sqlite")
	t.Setenv("CALLISTO_STORE_SQLITE_PATH", "/tmp/env.db")
	t.Setenv("CALLISTO_CAPTURE_CONTENT", "true")

	cfg, err := Parse([]byte("logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("Env level override lost: %q", cfg.Logging.Level)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLite.Path != "/tmp/env.db" {
		t.Errorf("Env store override lost: %+v", cfg.Store)
	}
	if !cfg.Capture.Content {
		t.Errorf("Env capture override lost")
	}
}

// TestParse_BridgeEndpointEnablesBridge tests the OTLP endpoint shortcut.
func TestParse_BridgeEndpointEnablesBridge(t *testing.T) {
	t.Setenv("CALLISTO_BRIDGE_OTLP_ENDPOINT", "collector:4317")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Bridge.Enabled || cfg.Bridge.OTLP.Endpoint != "collector:4317" {
		t.Errorf("Bridge = %+v", cfg.Bridge)
	}
}

// TestValidate_Rejections tests the validation failure cases.
func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad backend", "store:\n  backend: postgres\n", "store.backend"},
		{"sqlite without path", "store:\n  backend: sqlite\n  sqlite:\n    path: \"\"\n", "store.sqlite.path"},
		{"bad driver", "store:\n  backend: sqlite\n  sqlite:\n    driver: odbc\n", "store.sqlite.driver"},
		{"jsonl without path", "store:\n  backend: jsonl\n  jsonl:\n    path: \"\"\n", "store.jsonl.path"},
		{"negative retention", "retention:\n  retention_days: -1\n", "retention_days"},
		{"empty listen", "server:\n  listen_address: \"\"\n", "listen_address"},
		{"broken custom pattern", "capture:\n  scrubbing:\n    custom:\n      - name: bad\n        pattern: \"([\"\n", "does not compile"},
		{"custom pattern without regex", "capture:\n  scrubbing:\n    custom:\n      - name: empty\n", "has no regex"},
	}

	for _, tc := range cases {
		_, err := Parse([]byte(tc.yaml))
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

// TestLoad tests loading from a file on disk.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callisto.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

// TestToScrubConfig tests the conversion into the scrubber's configuration.
func TestToScrubConfig(t *testing.T) {
	sc := ScrubbingConfig{
		PII:          true,
		Mask:         "[GONE]",
		RedactFields: []string{"password"},
		Custom: []CustomPattern{
			{Name: "ticket", Pattern: `TICKET-\d+`, Replacement: "[TICKET]"},
		},
	}

	out := sc.ToScrubConfig()
	if !out.PII || out.Secrets {
		t.Errorf("Flags = %+v", out)
	}
	if out.Mask != "[GONE]" || len(out.RedactFields) != 1 {
		t.Errorf("Mask/redact = %+v", out)
	}
	if len(out.Custom) != 1 || out.Custom[0].Regex != `TICKET-\d+` {
		t.Errorf("Custom = %+v", out.Custom)
	}
}
