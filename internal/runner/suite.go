package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"synthrun/internal/data"
	"synthrun/internal/reporter"
)

// LoadSuites reads every suite file matching pattern and returns the parsed
// suites in path order. An empty match set is not an error; it is reported
// through the reporter and yields no suites. A file that cannot be read or
// parsed is fatal and the error names the file.
func LoadSuites(pattern string, rep *reporter.Composite) ([]data.Suite, error) {
	if pattern == "" {
		return nil, fmt.Errorf("suite pattern is empty")
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid suite pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		rep.Log(fmt.Sprintf("No test files found matching %s", pattern))
		return nil, nil
	}
	sort.Strings(files)

	suites := make([]data.Suite, 0, len(files))
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read test file %s: %w", file, err)
		}
		var content data.SuiteContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("parse test file %s: %w", file, err)
		}
		suites = append(suites, data.Suite{Name: file, Content: content})
	}
	return suites, nil
}

// TriggerConfigsFromSuites flattens suites into trigger configs, stamping
// each with the suite it came from.
func TriggerConfigsFromSuites(suites []data.Suite) []data.TriggerConfig {
	var configs []data.TriggerConfig
	for _, suite := range suites {
		for _, cfg := range suite.Content.Tests {
			cfg.Suite = suite.Name
			configs = append(configs, cfg)
		}
	}
	return configs
}
