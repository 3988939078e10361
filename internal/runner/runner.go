// Package runner implements the trigger-and-wait pipeline: resolving test
// references into payloads, submitting them in one batch, polling for
// results, and summarising the run.
package runner

import (
	"context"
	"time"

	"synthrun/internal/backend"
	"synthrun/internal/data"
	"synthrun/internal/reporter"
)

// Client is the backend contract the runner consumes.
type Client interface {
	TestGetter
	TestTriggerer
	ResultPoller
}

// Options configure one invocation.
type Options struct {
	// DefaultPollingTimeout applies to tests without a pollingTimeout
	// override. Zero means DefaultPollingTimeout.
	DefaultPollingTimeout time.Duration

	FailOnCriticalErrors bool
	FailOnTimeout        bool

	// Tunnel, when set, gates the whole batch on tunnel liveness.
	Tunnel Tunnel

	// AppBaseURL is the browsable backend base URL used in reported links.
	AppBaseURL string
}

// Runner wires the pipeline together.
type Runner struct {
	Client   Client
	Reporter *reporter.Composite
}

func New(client Client, rep *reporter.Composite) *Runner {
	if rep == nil {
		rep = reporter.NewComposite()
	}
	return &Runner{Client: client, Reporter: rep}
}

// Run resolves, triggers and waits for every config, then reports and
// returns the summary. Fatal errors are returned after a best-effort flush
// through the reporter; the summary is non-nil either way.
func (r *Runner) Run(ctx context.Context, configs []data.TriggerConfig, opts Options) (*data.Summary, error) {
	rep := r.Reporter
	rep.ReportStart(time.Now())

	tests, payloads, summary, err := TestsToTrigger(ctx, r.Client, configs, rep)
	if err != nil {
		rep.Error(err)
		if summary == nil {
			summary = data.NewSummary()
		}
		return summary, err
	}

	rep.TestsWait(tests)

	trigger, err := Trigger(ctx, r.Client, payloads)
	if err != nil {
		rep.Error(err)
		return summary, err
	}
	summary.BatchID = trigger.BatchID

	poller := NewPoller(r.Client, rep)
	if opts.DefaultPollingTimeout > 0 {
		poller.DefaultTimeout = opts.DefaultPollingTimeout
	}
	poller.FailOnCriticalErrors = opts.FailOnCriticalErrors
	poller.Tunnel = opts.Tunnel

	results, err := poller.Wait(ctx, trigger, configs)
	if err != nil {
		rep.Error(err)
		return summary, err
	}

	locationNames := make(map[int]string, len(trigger.Locations))
	for _, loc := range trigger.Locations {
		name := loc.DisplayName
		if name == "" {
			name = loc.Name
		}
		locationNames[loc.ID] = name
	}

	for _, test := range tests {
		testResults := results[test.PublicID]
		for _, result := range testResults {
			rep.ResultEnd(result, opts.AppBaseURL)
		}
		rep.TestEnd(test, testResults, opts.AppBaseURL, locationNames, opts.FailOnCriticalErrors, opts.FailOnTimeout)
	}

	accountResults(summary, tests, payloads, results, opts.FailOnCriticalErrors, opts.FailOnTimeout)
	rep.RunEnd(summary, opts.AppBaseURL)
	return summary, nil
}

// AppBaseURL returns the browsable URL for a backend site, e.g.
// https://app.datadoghq.com/. Subdomain defaults to "app".
func AppBaseURL(site, subdomain string) string {
	if site == "" {
		site = backend.DefaultSite
	}
	if subdomain == "" {
		subdomain = "app"
	}
	return "https://" + subdomain + "." + site + "/"
}
