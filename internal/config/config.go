package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"synthrun/internal/data"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect run
	// behavior, keep these in sync:
	// - CLI flags in internal/cli/run.go
	// - config file keys in internal/config/file.go
	Backend   Backend
	Selection Selection
	Run       Run
	Output    Output
}

type Backend struct {
	// APIToken authenticates to the backend API. Usually supplied via the
	// SYNTHRUN_API_TOKEN or DD_API_KEY env vars rather than the file.
	APIToken string

	// AppKey is the optional application key sent alongside the token.
	AppKey string

	// Site is the backend site, e.g. datadoghq.com or datadoghq.eu.
	Site string

	// Subdomain is the browsable app subdomain used in reported links
	// (default: app).
	Subdomain string
}

type Selection struct {
	// Files are glob patterns selecting suite files (see --files).
	Files []string

	// PublicIDs triggers tests directly by identifier, bypassing suite
	// files (see --public-id). Values may be identifiers or test URLs.
	PublicIDs []string

	// Global is the repository-wide override applied to every test before
	// its per-test options.
	Global data.Override
}

type Run struct {
	// FailOnCriticalErrors makes backend 5xx and unhealthy results fail the
	// job instead of being swallowed (see --fail-on-critical-errors).
	FailOnCriticalErrors bool

	// FailOnTimeout makes deadline expiries fail the job (see
	// --fail-on-timeout).
	FailOnTimeout bool

	// PollingTimeout is the default per-test wait budget (see
	// --polling-timeout). Must be > 0.
	PollingTimeout time.Duration

	// TriggerApp overrides the trigger_app metadata tag.
	TriggerApp string

	// Verbose enables backend HTTP call logging on stderr.
	Verbose bool
}

type Output struct {
	// JUnitReport writes a JUnit XML report to this path (see --junit-report).
	JUnitReport string

	// NoConsole suppresses the console reporter (use with --junit-report).
	NoConsole bool
}

func New() *Config {
	return &Config{
		Backend: Backend{
			Site:      "datadoghq.com",
			Subdomain: "app",
		},
		Selection: Selection{
			Files: []string{"*.synthetics.json"},
		},
		Run: Run{
			PollingTimeout: 2 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Selection.Files = splitCommaList(c.Selection.Files)
	c.Selection.PublicIDs = splitCommaList(c.Selection.PublicIDs)

	c.Backend.Site = strings.TrimSpace(c.Backend.Site)
	if c.Backend.Site == "" {
		return errors.New("--site must not be empty")
	}
	c.Backend.Subdomain = strings.TrimSpace(c.Backend.Subdomain)
	if c.Backend.Subdomain == "" {
		c.Backend.Subdomain = "app"
	}

	if len(c.Selection.Files) == 0 && len(c.Selection.PublicIDs) == 0 {
		return errors.New("at least one of --files or --public-id must be provided")
	}

	if c.Run.PollingTimeout <= 0 {
		return errors.New("--polling-timeout must be > 0")
	}

	if c.Output.NoConsole && c.Output.JUnitReport == "" {
		return errors.New("--no-console requires --junit-report (the run would be silent)")
	}

	if rule := c.Selection.Global.ExecutionRule; rule != "" {
		switch rule {
		case data.RuleBlocking, data.RuleNonBlocking, data.RuleSkipped:
		default:
			return fmt.Errorf("unsupported global executionRule: %s (must be one of: blocking, non_blocking, skipped)", rule)
		}
	}

	return nil
}

// splitCommaList flattens repeated flag values that themselves contain
// comma-separated entries, dropping empties.
func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
