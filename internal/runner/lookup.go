package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"synthrun/internal/backend"
	"synthrun/internal/data"
	"synthrun/internal/reporter"
	"synthrun/internal/retry"

	"golang.org/x/sync/singleflight"
)

// maxLookupConcurrency bounds the parallel test-definition lookups.
const maxLookupConcurrency = 10

// TestGetter is the slice of the backend contract the resolver needs.
type TestGetter interface {
	GetTest(ctx context.Context, publicID string) (*data.Test, error)
}

type lookupOutcome struct {
	test    *data.Test
	payload *data.Payload
	// notFound carries the message accumulated into initErrors when the
	// backend does not recognise the identifier.
	notFound string
	err      error
}

// TestsToTrigger resolves every trigger config into a test and a submission
// payload.
//
// Lookups run in parallel; a failed lookup never cancels its siblings.
// Not-found identifiers accumulate into the summary and are surfaced en
// masse through the reporter's initErrors hook once all lookups settle; any
// other lookup error aborts the invocation. Tests whose resolved rule is
// skipped produce no payload.
func TestsToTrigger(ctx context.Context, client TestGetter, configs []data.TriggerConfig, rep *reporter.Composite) ([]*data.Test, []data.Payload, *data.Summary, error) {
	summary := data.NewSummary()
	if len(configs) == 0 {
		return nil, nil, summary, fmt.Errorf("no tests to trigger")
	}

	outcomes := make([]lookupOutcome, len(configs))

	// Lookups of the same identifier that are in flight at the same time
	// share one backend call.
	var flight singleflight.Group
	sem := make(chan struct{}, maxLookupConcurrency)
	var wg sync.WaitGroup

	for i := range configs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = lookupOne(ctx, client, &flight, configs[i], rep)
		}(i)
	}
	wg.Wait()

	var (
		tests         []*data.Test
		payloads      []data.Payload
		errorMessages []string
	)
	for i, out := range outcomes {
		if out.err != nil {
			return nil, nil, summary, out.err
		}
		if out.notFound != "" {
			summary.AddNotFound(NormalizeID(configs[i].ID))
			errorMessages = append(errorMessages, out.notFound)
			continue
		}
		if out.payload == nil {
			// Resolved rule was skipped.
			summary.Skipped++
			continue
		}
		tests = append(tests, out.test)
		payloads = append(payloads, *out.payload)
	}

	if len(errorMessages) > 0 {
		rep.InitErrors(errorMessages)
	}
	if len(payloads) == 0 {
		return nil, nil, summary, fmt.Errorf("no tests to trigger")
	}
	return tests, payloads, summary, nil
}

// lookupBackoff retries transient backend failures a few times; 4xx
// verdicts (not-found, forbidden) surface immediately.
func lookupBackoff(retries int, err error) time.Duration {
	if retries >= 3 || !backend.IsServerError(err) {
		return 0
	}
	return 500 * time.Millisecond
}

func lookupOne(ctx context.Context, client TestGetter, flight *singleflight.Group, cfg data.TriggerConfig, rep *reporter.Composite) lookupOutcome {
	id := NormalizeID(cfg.ID)

	fetched, err, _ := flight.Do(id, func() (any, error) {
		var test *data.Test
		err := retry.Do(ctx, func(ctx context.Context) error {
			var err error
			test, err = client.GetTest(ctx, id)
			return err
		}, lookupBackoff)
		return test, err
	})
	if err != nil {
		if backend.IsNotFound(err) {
			return lookupOutcome{notFound: fmt.Sprintf("[%s] Test not found", id)}
		}
		return lookupOutcome{err: fmt.Errorf("[%s] %w", id, err)}
	}
	test := fetched.(*data.Test)

	override := cfg.Config
	payload := BuildPayload(test, id, &override, rep)
	rep.TestTrigger(test, id, payload.ExecutionRule, &override)
	if payload.ExecutionRule == data.RuleSkipped {
		return lookupOutcome{test: test}
	}
	rep.TestWait(test)
	return lookupOutcome{test: test, payload: &payload}
}
