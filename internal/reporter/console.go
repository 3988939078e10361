package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"synthrun/internal/data"

	"github.com/fatih/color"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
	dimText   = color.New(color.Faint).SprintFunc()
)

// Console is the human-facing reporter. It implements every hook except
// ResultReceived.
type Console struct {
	mu     sync.Mutex
	writer io.Writer

	failOnCriticalErrors bool
	failOnTimeout        bool
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{writer: w}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, format, args...)
}

func (c *Console) Error(err error) {
	c.printf("%s %v\n", failLabel("ERROR"), err)
}

func (c *Console) InitErrors(messages []string) {
	if len(messages) == 0 {
		return
	}
	c.printf("%s\n", warnLabel(strings.Join(messages, "\n")))
}

func (c *Console) Log(message string) {
	c.printf("%s\n", message)
}

func (c *Console) ReportStart(start time.Time) {
	c.printf("\n%s\n\n", dimText(fmt.Sprintf("=== REPORT (%s) ===", start.Format(time.RFC1123))))
}

func (c *Console) TestTrigger(test *data.Test, id string, rule data.ExecutionRule, override *data.Override) {
	name := id
	if test != nil && test.Name != "" {
		name = test.Name
	}
	switch rule {
	case data.RuleSkipped:
		c.printf("%s %s (%s)\n", warnLabel(">> SKIPPED"), name, id)
	case data.RuleNonBlocking:
		c.printf("%s %s (%s)\n", dimText(">> triggered (non-blocking)"), name, id)
	default:
		c.printf("%s %s (%s)\n", dimText(">> triggered"), name, id)
	}
	if !override.IsEmpty() && rule != data.RuleSkipped {
		c.printf("   %s\n", dimText("with overrides"))
	}
}

func (c *Console) TestWait(test *data.Test) {
	if test == nil {
		return
	}
	c.printf("%s %s\n", dimText("waiting for"), test.Name)
}

func (c *Console) TestsWait(tests []*data.Test) {
	c.printf("\nWaiting for %d test result(s)...\n", len(tests))
}

func (c *Console) ResultEnd(result data.PollResult, baseURL string) {
	verdict := passLabel("PASSED")
	if !result.Result.HasPassed(c.failOnCriticalErrors, c.failOnTimeout) {
		verdict = failLabel("FAILED")
	}
	detail := ""
	switch result.Result.Error {
	case data.ErrTimeout:
		detail = warnLabel(" (timed out)")
	case data.ErrTunnel:
		detail = warnLabel(" (tunnel failure)")
	case data.ErrEndpoint:
		detail = warnLabel(" (endpoint failure)")
	}
	c.printf("  %s result %s%s %s\n", verdict, result.ResultID, detail, dimText(fmt.Sprintf("%dms", result.Result.DurationMS())))
}

func (c *Console) TestEnd(test *data.Test, results []data.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	// Remember the policy flags so ResultEnd renders consistently within
	// the same run.
	c.failOnCriticalErrors = failOnCriticalErrors
	c.failOnTimeout = failOnTimeout

	passed := true
	for _, r := range results {
		if !r.Result.HasPassed(failOnCriticalErrors, failOnTimeout) {
			passed = false
			break
		}
	}
	verdict := passLabel("✓")
	if !passed {
		verdict = failLabel("✖")
	}
	locations := make([]string, 0, len(results))
	for _, r := range results {
		if name, ok := locationNames[r.DCID]; ok {
			locations = append(locations, name)
		}
	}
	suffix := ""
	if len(locations) > 0 {
		suffix = dimText(" [" + strings.Join(locations, ", ") + "]")
	}
	name := ""
	if test != nil {
		name = test.Name
		if baseURL != "" {
			suffix += dimText(" " + baseURL + "synthetics/details/" + test.PublicID)
		}
	}
	c.printf("%s %s%s\n", verdict, name, suffix)
}

func (c *Console) RunEnd(summary *data.Summary, baseURL string) {
	if summary == nil {
		return
	}
	parts := []string{
		passLabel(fmt.Sprintf("%d passed", summary.Passed)),
		failLabel(fmt.Sprintf("%d failed", summary.Failed)),
	}
	if summary.FailedNonBlocking > 0 {
		parts = append(parts, warnLabel(fmt.Sprintf("%d failed (non-blocking)", summary.FailedNonBlocking)))
	}
	if summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", summary.Skipped))
	}
	if summary.TimedOut > 0 {
		parts = append(parts, warnLabel(fmt.Sprintf("%d timed out", summary.TimedOut)))
	}
	if summary.CriticalErrors > 0 {
		parts = append(parts, warnLabel(fmt.Sprintf("%d critical errors", summary.CriticalErrors)))
	}
	if len(summary.TestsNotFound) > 0 {
		parts = append(parts, warnLabel(fmt.Sprintf("%d not found", len(summary.TestsNotFound))))
	}
	line := strings.Join(parts, ", ")
	if summary.BatchID != "" {
		line += dimText(" (batch " + summary.BatchID + ")")
	}
	c.printf("\n%s\n", line)
}
