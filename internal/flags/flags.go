package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config loading.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Selection
	FlagConfig    = "config"
	FlagFiles     = "files"
	FlagPublicIDs = "public-id"

	// Backend
	FlagAPIToken  = "api-token"
	FlagAppKey    = "app-key"
	FlagSite      = "site"
	FlagSubdomain = "subdomain"

	// Run policy
	FlagFailOnCriticalErrors = "fail-on-critical-errors"
	FlagFailOnTimeout        = "fail-on-timeout"
	FlagPollingTimeout       = "polling-timeout"
	FlagTriggerApp           = "trigger-app"

	// Output
	FlagJUnitReport = "junit-report"
	FlagNoConsole   = "no-console"
)
