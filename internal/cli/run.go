package cli

import (
	"context"
	"fmt"
	"os"

	"synthrun/internal/backend"
	"synthrun/internal/ci"
	"synthrun/internal/config"
	"synthrun/internal/data"
	"synthrun/internal/flags"
	"synthrun/internal/reporter"
	"synthrun/internal/runner"

	"github.com/spf13/cobra"
)

var cfg = config.New()

var configPath string

const runHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	Synthrun authenticates to the backend with an API token.

	Sources (in order):
	1) --api-token flag or the "apiToken" config file key
	2) SYNTHRUN_API_TOKEN environment variable
	3) DD_API_KEY environment variable

	CI and git metadata for the trigger request is discovered from the CI
	provider's environment and can be overridden through the DD_GIT_* and
	DD_CI_* variables.

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger synthetic tests and wait for their results",
	Long: `Trigger a batch of synthetic tests on the backend and wait for results.

Tests are selected from suite files (JSON documents matching --files globs)
or, when --public-id is given, directly by identifier; suite files are then
not read. Per-test options in suite files are merged
over the "global" block of the config file; the strictest execution rule
between the backend's test definition and the local override wins.

Exit codes:
	0 = every result passed under the active policy flags
	1 = at least one blocking failure
	2 = fatal error (the run did not complete)

Examples:
  # Run every suite file matching the default glob
  synthrun run

  # Run a single test with a longer wait budget
  synthrun run --public-id abc-def-ghi --polling-timeout 5m

  # Produce a JUnit report for the CI server
  synthrun run --files "e2e/*.synthetics.json" --junit-report report.xml
`,
	Run: func(cmd *cobra.Command, args []string) {
		fileCfg := config.New()
		if err := config.LoadFile(fileCfg, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		applyFileDefaults(cmd, cfg, fileCfg)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		os.Exit(runTests(context.Background(), cfg))
	},
}

// applyFileDefaults fills every flag-backed setting the user did not set on
// the command line from the config file. Flags always win over the file.
func applyFileDefaults(cmd *cobra.Command, cfg, fileCfg *config.Config) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if !changed(flags.FlagAPIToken) {
		cfg.Backend.APIToken = fileCfg.Backend.APIToken
	}
	if !changed(flags.FlagAppKey) {
		cfg.Backend.AppKey = fileCfg.Backend.AppKey
	}
	if !changed(flags.FlagSite) {
		cfg.Backend.Site = fileCfg.Backend.Site
	}
	if !changed(flags.FlagSubdomain) {
		cfg.Backend.Subdomain = fileCfg.Backend.Subdomain
	}
	if !changed(flags.FlagFiles) {
		cfg.Selection.Files = fileCfg.Selection.Files
	}
	if !changed(flags.FlagPublicIDs) {
		cfg.Selection.PublicIDs = fileCfg.Selection.PublicIDs
	}
	if !changed(flags.FlagFailOnCriticalErrors) {
		cfg.Run.FailOnCriticalErrors = fileCfg.Run.FailOnCriticalErrors
	}
	if !changed(flags.FlagFailOnTimeout) {
		cfg.Run.FailOnTimeout = fileCfg.Run.FailOnTimeout
	}
	if !changed(flags.FlagPollingTimeout) {
		cfg.Run.PollingTimeout = fileCfg.Run.PollingTimeout
	}
	if !changed(flags.FlagTriggerApp) {
		cfg.Run.TriggerApp = fileCfg.Run.TriggerApp
	}
	if !changed(flags.FlagJUnitReport) {
		cfg.Output.JUnitReport = fileCfg.Output.JUnitReport
	}

	// The global override block has no flag equivalent.
	cfg.Selection.Global = fileCfg.Selection.Global
}

func runTests(ctx context.Context, cfg *config.Config) int {
	token, _ := backend.ResolveAPIToken(cfg.Backend.APIToken)
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: backend API token is required (set SYNTHRUN_API_TOKEN or the apiToken config key)")
		return 2
	}

	client, err := backend.NewClient(ctx, cfg.Backend.Site, token,
		backend.WithAppKey(backend.ResolveAppKey(cfg.Backend.AppKey)),
		backend.WithVerbose(cfg.Run.Verbose, nil),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create backend client: %v\n", err)
		return 2
	}

	if cfg.Run.TriggerApp != "" {
		ci.SetTriggerApp(cfg.Run.TriggerApp)
	}

	rep := reporter.NewComposite()
	if !cfg.Output.NoConsole {
		rep.Add(reporter.NewConsole(os.Stdout))
	}
	if cfg.Output.JUnitReport != "" {
		rep.Add(reporter.NewJUnit(cfg.Output.JUnitReport))
	}

	configs, err := collectTriggerConfigs(cfg, rep)
	if err != nil {
		rep.Error(err)
		_ = rep.Close()
		return 2
	}

	summary, err := runner.New(client, rep).Run(ctx, configs, runner.Options{
		DefaultPollingTimeout: cfg.Run.PollingTimeout,
		FailOnCriticalErrors:  cfg.Run.FailOnCriticalErrors,
		FailOnTimeout:         cfg.Run.FailOnTimeout,
		AppBaseURL:            runner.AppBaseURL(cfg.Backend.Site, cfg.Backend.Subdomain),
	})
	if closeErr := rep.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
	}
	if err != nil {
		return 2
	}
	if summary.HasFailures() {
		return 1
	}
	return 0
}

// collectTriggerConfigs gathers configs from suite files and --public-id
// values, merging each per-test override over the global block.
func collectTriggerConfigs(cfg *config.Config, rep *reporter.Composite) ([]data.TriggerConfig, error) {
	var configs []data.TriggerConfig

	if len(cfg.Selection.PublicIDs) == 0 {
		for _, pattern := range cfg.Selection.Files {
			suites, err := runner.LoadSuites(pattern, rep)
			if err != nil {
				return nil, err
			}
			configs = append(configs, runner.TriggerConfigsFromSuites(suites)...)
		}
	} else {
		for _, id := range cfg.Selection.PublicIDs {
			configs = append(configs, data.TriggerConfig{ID: id})
		}
	}

	for i := range configs {
		configs[i].Config = runner.MergeOverrides(cfg.Selection.Global, configs[i].Config)
	}
	return configs, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.SetHelpTemplate(runHelpTemplate)

	runCmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "Path to the JSON config file (default: synthrun.json if present)")

	// Selection
	runCmd.Flags().StringSliceVar(&cfg.Selection.Files, flags.FlagFiles, cfg.Selection.Files, "Suite file glob pattern(s) (repeatable; comma-separated accepted)")
	runCmd.Flags().StringSliceVar(&cfg.Selection.PublicIDs, flags.FlagPublicIDs, nil, "Public test identifier or test URL to trigger (repeatable; bypasses suite files)")

	// Backend
	runCmd.Flags().StringVar(&cfg.Backend.APIToken, flags.FlagAPIToken, "", "Backend API token (prefer SYNTHRUN_API_TOKEN)")
	runCmd.Flags().StringVar(&cfg.Backend.AppKey, flags.FlagAppKey, "", "Backend application key (prefer DD_APP_KEY)")
	runCmd.Flags().StringVar(&cfg.Backend.Site, flags.FlagSite, cfg.Backend.Site, "Backend site (e.g. datadoghq.com, datadoghq.eu)")
	runCmd.Flags().StringVar(&cfg.Backend.Subdomain, flags.FlagSubdomain, cfg.Backend.Subdomain, "Browsable app subdomain used in reported links")

	// Run policy
	runCmd.Flags().BoolVar(&cfg.Run.FailOnCriticalErrors, flags.FlagFailOnCriticalErrors, false, "Fail the job on backend 5xx and unhealthy results instead of swallowing them")
	runCmd.Flags().BoolVar(&cfg.Run.FailOnTimeout, flags.FlagFailOnTimeout, false, "Fail the job on per-test deadline expiry")
	runCmd.Flags().DurationVar(&cfg.Run.PollingTimeout, flags.FlagPollingTimeout, cfg.Run.PollingTimeout, "Default per-test wait budget (default: 2m)")
	runCmd.Flags().StringVar(&cfg.Run.TriggerApp, flags.FlagTriggerApp, "", "trigger_app metadata tag identifying this integration")

	// Output
	runCmd.Flags().StringVar(&cfg.Output.JUnitReport, flags.FlagJUnitReport, "", "Write a JUnit XML report to this path")
	runCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --junit-report)")
}
