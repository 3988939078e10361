package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"synthrun/internal/data"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Backend.Site != "datadoghq.com" || cfg.Backend.Subdomain != "app" {
		t.Fatalf("backend defaults: %+v", cfg.Backend)
	}
	if cfg.Run.PollingTimeout != 2*time.Minute {
		t.Fatalf("polling timeout default: %v", cfg.Run.PollingTimeout)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty site", func(c *Config) { c.Backend.Site = " " }, "--site"},
		{"no selection", func(c *Config) { c.Selection.Files = nil }, "--files or --public-id"},
		{"zero polling timeout", func(c *Config) { c.Run.PollingTimeout = 0 }, "--polling-timeout"},
		{"silent run", func(c *Config) { c.Output.NoConsole = true }, "--no-console"},
		{"bad global rule", func(c *Config) { c.Selection.Global.ExecutionRule = "sometimes" }, "executionRule"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestValidate_SplitsCommaLists(t *testing.T) {
	cfg := New()
	cfg.Selection.Files = []string{"a.json,b.json", " c.json "}
	cfg.Selection.PublicIDs = []string{"abc-def-ghi,jkl-mno-pqr"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Selection.Files) != 3 {
		t.Fatalf("files: %v", cfg.Selection.Files)
	}
	if len(cfg.Selection.PublicIDs) != 2 {
		t.Fatalf("public ids: %v", cfg.Selection.PublicIDs)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synthrun.json")
	content := `{
		"apiToken": "file-token",
		"site": "datadoghq.eu",
		"files": ["e2e/*.synthetics.json"],
		"pollingTimeout": 90000,
		"failOnTimeout": true,
		"triggerApp": "custom_ci",
		"global": {
			"startUrl": "https://staging.example.com",
			"executionRule": "non_blocking",
			"unknownKey": 1
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := New()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Backend.APIToken != "file-token" || cfg.Backend.Site != "datadoghq.eu" {
		t.Fatalf("backend: %+v", cfg.Backend)
	}
	if len(cfg.Selection.Files) != 1 || cfg.Selection.Files[0] != "e2e/*.synthetics.json" {
		t.Fatalf("files: %v", cfg.Selection.Files)
	}
	if cfg.Run.PollingTimeout != 90*time.Second {
		t.Fatalf("polling timeout: %v", cfg.Run.PollingTimeout)
	}
	if !cfg.Run.FailOnTimeout {
		t.Fatal("failOnTimeout lost")
	}
	if cfg.Run.TriggerApp != "custom_ci" {
		t.Fatalf("trigger app: %q", cfg.Run.TriggerApp)
	}
	if cfg.Selection.Global.StartURL != "https://staging.example.com" {
		t.Fatalf("global override: %+v", cfg.Selection.Global)
	}
	if cfg.Selection.Global.ExecutionRule != data.RuleNonBlocking {
		t.Fatalf("global rule: %q", cfg.Selection.Global.ExecutionRule)
	}
}

func TestLoadFile_MissingDefaultIsFine(t *testing.T) {
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg := New()
	if err := LoadFile(cfg, ""); err != nil {
		t.Fatalf("missing default file must be silent: %v", err)
	}
}

func TestLoadFile_ExplicitMissingIsError(t *testing.T) {
	cfg := New()
	err := LoadFile(cfg, filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "nope.json") {
		t.Fatalf("got %v", err)
	}
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"site":`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := New()
	err := LoadFile(cfg, path)
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("got %v", err)
	}
}
