// Package reporter fans lifecycle events out to pluggable reporters.
//
// A reporter is described by its capability set: it implements whichever of
// the hook interfaces below it cares about, and the composite dispatches
// each event to every member that implements the corresponding hook.
package reporter

import (
	"time"

	"synthrun/internal/data"
)

type ErrorReporter interface {
	Error(err error)
}

type InitErrorsReporter interface {
	InitErrors(messages []string)
}

type LogReporter interface {
	Log(message string)
}

type StartReporter interface {
	ReportStart(start time.Time)
}

type TestTriggerReporter interface {
	TestTrigger(test *data.Test, id string, rule data.ExecutionRule, override *data.Override)
}

type TestWaitReporter interface {
	TestWait(test *data.Test)
}

type TestsWaitReporter interface {
	TestsWait(tests []*data.Test)
}

type ResultReceivedReporter interface {
	ResultReceived(result data.PollResult)
}

type ResultEndReporter interface {
	ResultEnd(result data.PollResult, baseURL string)
}

type TestEndReporter interface {
	TestEnd(test *data.Test, results []data.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool)
}

type RunEndReporter interface {
	RunEnd(summary *data.Summary, baseURL string)
}

// Composite forwards each hook to every member implementing it, in
// registration order. A panicking member never prevents the remaining
// members from being called.
type Composite struct {
	members []any
}

func NewComposite(members ...any) *Composite {
	c := &Composite{}
	for _, m := range members {
		c.Add(m)
	}
	return c
}

func (c *Composite) Add(member any) {
	if c == nil || member == nil {
		return
	}
	c.members = append(c.members, member)
}

// dispatch isolates one hook invocation so a misbehaving reporter cannot
// take down the run or starve its siblings.
func dispatch(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

func (c *Composite) Error(err error) {
	for _, m := range c.members {
		if r, ok := m.(ErrorReporter); ok {
			dispatch(func() { r.Error(err) })
		}
	}
}

func (c *Composite) InitErrors(messages []string) {
	for _, m := range c.members {
		if r, ok := m.(InitErrorsReporter); ok {
			dispatch(func() { r.InitErrors(messages) })
		}
	}
}

func (c *Composite) Log(message string) {
	for _, m := range c.members {
		if r, ok := m.(LogReporter); ok {
			dispatch(func() { r.Log(message) })
		}
	}
}

func (c *Composite) ReportStart(start time.Time) {
	for _, m := range c.members {
		if r, ok := m.(StartReporter); ok {
			dispatch(func() { r.ReportStart(start) })
		}
	}
}

func (c *Composite) TestTrigger(test *data.Test, id string, rule data.ExecutionRule, override *data.Override) {
	for _, m := range c.members {
		if r, ok := m.(TestTriggerReporter); ok {
			dispatch(func() { r.TestTrigger(test, id, rule, override) })
		}
	}
}

func (c *Composite) TestWait(test *data.Test) {
	for _, m := range c.members {
		if r, ok := m.(TestWaitReporter); ok {
			dispatch(func() { r.TestWait(test) })
		}
	}
}

func (c *Composite) TestsWait(tests []*data.Test) {
	for _, m := range c.members {
		if r, ok := m.(TestsWaitReporter); ok {
			dispatch(func() { r.TestsWait(tests) })
		}
	}
}

func (c *Composite) ResultReceived(result data.PollResult) {
	for _, m := range c.members {
		if r, ok := m.(ResultReceivedReporter); ok {
			dispatch(func() { r.ResultReceived(result) })
		}
	}
}

func (c *Composite) ResultEnd(result data.PollResult, baseURL string) {
	for _, m := range c.members {
		if r, ok := m.(ResultEndReporter); ok {
			dispatch(func() { r.ResultEnd(result, baseURL) })
		}
	}
}

func (c *Composite) TestEnd(test *data.Test, results []data.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	for _, m := range c.members {
		if r, ok := m.(TestEndReporter); ok {
			dispatch(func() { r.TestEnd(test, results, baseURL, locationNames, failOnCriticalErrors, failOnTimeout) })
		}
	}
}

func (c *Composite) RunEnd(summary *data.Summary, baseURL string) {
	for _, m := range c.members {
		if r, ok := m.(RunEndReporter); ok {
			dispatch(func() { r.RunEnd(summary, baseURL) })
		}
	}
}

// Close flushes and closes every member that supports it, in registration
// order, and returns the first close error encountered.
func (c *Composite) Close() error {
	var firstErr error
	for _, m := range c.members {
		if closer, ok := m.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
