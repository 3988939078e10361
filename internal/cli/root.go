package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "synthrun",
	Short: "Trigger remote synthetic tests and wait for a CI verdict",
	Long: `Synthrun triggers synthetic tests (HTTP/API checks and headless browser
checks) hosted by an observability backend, waits for their results, and
exits with a code suitable for failing or passing a CI job.

Examples:
	# Show available commands and global flags
	synthrun --help

	# Trigger every suite file matching the default glob
	synthrun run

	# Trigger two tests by public identifier
	synthrun run --public-id abc-def-ghi --public-id jkl-mno-pqr

	# Print build info
	synthrun version

Output:
	By default, run writes human-readable progress to stdout. A JUnit XML
	report can be written via --junit-report (see "synthrun run --help").`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Run.Verbose, "verbose", false, "Enable verbose logging (prints every backend API call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
