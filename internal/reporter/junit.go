package reporter

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"

	"synthrun/internal/data"
)

// JUnit collects per-test results and writes a JUnit XML report on Close.
// It implements only the hooks it needs; the composite skips the rest.
type JUnit struct {
	mu    sync.Mutex
	path  string
	cases []junitSuite
}

func NewJUnit(path string) *JUnit {
	return &JUnit{path: path}
}

type junitReport struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Type    string `xml:"type,attr,omitempty"`
	Message string `xml:"message,attr,omitempty"`
}

func (j *JUnit) TestEnd(test *data.Test, results []data.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	if test == nil {
		return
	}
	suite := junitSuite{Name: test.Name, Tests: len(results)}
	for _, r := range results {
		c := junitCase{
			Name:      fmt.Sprintf("%s (%s)", test.Name, r.ResultID),
			Classname: test.PublicID,
			Time:      float64(r.Result.DurationMS()) / 1000,
		}
		if !r.Result.HasPassed(failOnCriticalErrors, failOnTimeout) {
			suite.Failures++
			c.Failure = &junitFailure{
				Type:    r.Result.Error,
				Message: firstNonEmptyString(r.Result.ErrorMessage, r.Result.ErrorCode, r.Result.Error),
			}
		}
		suite.Cases = append(suite.Cases, c)
	}

	j.mu.Lock()
	j.cases = append(j.cases, suite)
	j.mu.Unlock()
}

// Close writes the accumulated report. It is safe to call on a reporter
// that never saw a test; it then writes an empty, valid report.
func (j *JUnit) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	report := junitReport{Name: "synthrun", Suites: j.cases}
	for _, s := range j.cases {
		report.Tests += s.Tests
		report.Failures += s.Failures
	}

	f, err := os.Create(j.path)
	if err != nil {
		return fmt.Errorf("junit report: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("junit report: %w", err)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("junit report: %w", err)
	}
	return f.Sync()
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
