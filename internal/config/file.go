package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "synthrun.json"

// envPrefix is the environment variable prefix for file-level settings, so
// that "site" can also come from SYNTHRUN_SITE.
const envPrefix = "SYNTHRUN"

// newViper builds a pre-configured Viper instance: JSON file type, SYNTHRUN_
// env prefix, automatic env binding, and a key replacer that maps "." to "_"
// so nested keys resolve to flat environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"apiToken", "appKey", "site", "subdomain",
		"failOnCriticalErrors", "failOnTimeout",
		"pollingTimeout", "triggerApp", "junitReport",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// LoadFile merges the JSON config file at path into cfg. When path is empty
// the default file is tried and its absence is not an error; an explicit
// path must exist.
func LoadFile(cfg *Config, path string) error {
	v := newViper()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !explicit {
			if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
				return nil
			}
		}
		return fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}

	if s := v.GetString("apiToken"); s != "" {
		cfg.Backend.APIToken = s
	}
	if s := v.GetString("appKey"); s != "" {
		cfg.Backend.AppKey = s
	}
	if s := v.GetString("site"); s != "" {
		cfg.Backend.Site = s
	}
	if s := v.GetString("subdomain"); s != "" {
		cfg.Backend.Subdomain = s
	}
	if v.IsSet("files") {
		cfg.Selection.Files = v.GetStringSlice("files")
	}
	if v.IsSet("publicIds") {
		cfg.Selection.PublicIDs = v.GetStringSlice("publicIds")
	}
	if v.IsSet("failOnCriticalErrors") {
		cfg.Run.FailOnCriticalErrors = v.GetBool("failOnCriticalErrors")
	}
	if v.IsSet("failOnTimeout") {
		cfg.Run.FailOnTimeout = v.GetBool("failOnTimeout")
	}
	if ms := v.GetInt64("pollingTimeout"); ms > 0 {
		cfg.Run.PollingTimeout = time.Duration(ms) * time.Millisecond
	}
	if s := v.GetString("triggerApp"); s != "" {
		cfg.Run.TriggerApp = s
	}
	if s := v.GetString("junitReport"); s != "" {
		cfg.Output.JUnitReport = s
	}

	// The global override block shares the suite-file option schema; route
	// it through the JSON decoder so unknown keys are discarded the same
	// way.
	if v.IsSet("global") {
		raw, err := json.Marshal(v.Get("global"))
		if err != nil {
			return fmt.Errorf("config: invalid global override in %q: %w", path, err)
		}
		if err := json.Unmarshal(raw, &cfg.Selection.Global); err != nil {
			return fmt.Errorf("config: invalid global override in %q: %w", path, err)
		}
	}

	return nil
}
