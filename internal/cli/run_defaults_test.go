package cli

import (
	"testing"
	"time"

	"synthrun/internal/config"
	"synthrun/internal/data"
	"synthrun/internal/flags"
	"synthrun/internal/reporter"

	"github.com/spf13/cobra"
)

func newRunFlagSet() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	for _, name := range []string{
		flags.FlagAPIToken, flags.FlagAppKey, flags.FlagSite, flags.FlagSubdomain,
		flags.FlagFiles, flags.FlagPublicIDs,
		flags.FlagFailOnCriticalErrors, flags.FlagFailOnTimeout,
		flags.FlagPollingTimeout, flags.FlagTriggerApp,
		flags.FlagJUnitReport, flags.FlagNoConsole,
	} {
		cmd.Flags().String(name, "", "")
	}
	return cmd
}

func TestApplyFileDefaults_FillsUnsetFlagsFromFile(t *testing.T) {
	cfg := config.New()
	fileCfg := config.New()
	fileCfg.Backend.Site = "datadoghq.eu"
	fileCfg.Run.PollingTimeout = 90 * time.Second
	fileCfg.Run.FailOnTimeout = true
	fileCfg.Selection.Global = data.Override{StartURL: "https://staging"}

	applyFileDefaults(newRunFlagSet(), cfg, fileCfg)

	if cfg.Backend.Site != "datadoghq.eu" {
		t.Fatalf("site: %q", cfg.Backend.Site)
	}
	if cfg.Run.PollingTimeout != 90*time.Second {
		t.Fatalf("polling timeout: %v", cfg.Run.PollingTimeout)
	}
	if !cfg.Run.FailOnTimeout {
		t.Fatal("failOnTimeout not taken from file")
	}
	if cfg.Selection.Global.StartURL != "https://staging" {
		t.Fatalf("global override: %+v", cfg.Selection.Global)
	}
}

func TestApplyFileDefaults_ExplicitFlagWinsOverFile(t *testing.T) {
	cfg := config.New()
	cfg.Backend.Site = "ddog-gov.com" // what the flag binding wrote
	fileCfg := config.New()
	fileCfg.Backend.Site = "datadoghq.eu"

	cmd := newRunFlagSet()
	if err := cmd.Flags().Set(flags.FlagSite, "ddog-gov.com"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	applyFileDefaults(cmd, cfg, fileCfg)

	if cfg.Backend.Site != "ddog-gov.com" {
		t.Fatalf("explicit flag must win over the file: %q", cfg.Backend.Site)
	}
}

func TestCollectTriggerConfigs_PublicIDsMergeGlobal(t *testing.T) {
	cfg := config.New()
	cfg.Selection.PublicIDs = []string{"abc-def-ghi", "jkl-mno-pqr"}
	cfg.Selection.Global = data.Override{PollingTimeout: 45000}

	configs, err := collectTriggerConfigs(cfg, reporter.NewComposite())
	if err != nil {
		t.Fatalf("collectTriggerConfigs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("configs: %+v", configs)
	}
	for _, c := range configs {
		if c.Config.PollingTimeout != 45000 {
			t.Fatalf("global override not merged: %+v", c)
		}
	}
}
