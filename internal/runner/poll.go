package runner

import (
	"context"
	"sync/atomic"
	"time"

	"synthrun/internal/backend"
	"synthrun/internal/data"
	"synthrun/internal/reporter"
)

// pollInterval is the fixed wait between poll rounds.
const pollInterval = 5 * time.Second

// DefaultPollingTimeout is the per-test budget used when neither the config
// file nor the test override supplies one.
const DefaultPollingTimeout = 2 * time.Minute

// ResultPoller is the slice of the backend contract the engine needs.
type ResultPoller interface {
	PollResults(ctx context.Context, resultIDs []string) ([]data.PollResult, error)
}

// Tunnel is the liveness handle of an optional user-local reverse proxy.
// KeepAlive blocks for the tunnel's lifetime: a nil return means graceful
// close, an error means failure. Either outcome flips liveness off.
type Tunnel interface {
	KeepAlive(ctx context.Context) error
}

// triggerResult is the polling state for one trigger-response item: its
// per-test budget and, once known, its terminal result.
type triggerResult struct {
	data.TriggerResponse
	pollingTimeout time.Duration
	result         *data.PollResult
}

// Poller drives the wait loop over a batch of trigger responses.
type Poller struct {
	Client               ResultPoller
	Reporter             *reporter.Composite
	DefaultTimeout       time.Duration
	FailOnCriticalErrors bool
	Tunnel               Tunnel

	// test seams
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(client ResultPoller, rep *reporter.Composite) *Poller {
	return &Poller{
		Client:         client,
		Reporter:       rep,
		DefaultTimeout: DefaultPollingTimeout,
		now:            time.Now,
		sleep:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait polls until every trigger response has a terminal result, by one of:
// polled-finished, local timeout, tunnel loss, or degraded-backend
// fallback. It returns a public-id → results mapping whose per-id ordering
// follows the order of the trigger responses.
func (p *Poller) Wait(ctx context.Context, trigger *data.Trigger, configs []data.TriggerConfig) (map[string][]data.PollResult, error) {
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepCtx
	}

	timeouts := perTestTimeouts(configs, p.DefaultTimeout)
	state := make([]*triggerResult, 0, len(trigger.Results))
	maxTimeout := time.Duration(0)
	for _, resp := range trigger.Results {
		budget := p.DefaultTimeout
		if t, ok := timeouts[resp.PublicID]; ok {
			budget = t
		}
		if budget > maxTimeout {
			maxTimeout = budget
		}
		state = append(state, &triggerResult{TriggerResponse: resp, pollingTimeout: budget})
	}

	// Tunnel liveness is a one-shot flag: once the keep-alive settles, for
	// any reason, the tunnel is gone for the rest of the run.
	var tunnelDown atomic.Bool
	if p.Tunnel != nil {
		go func() {
			_ = p.Tunnel.KeepAlive(ctx)
			tunnelDown.Store(true)
		}()
	}

	pollingStart := p.now()
	for {
		pending := pendingOf(state)
		if len(pending) == 0 {
			break
		}
		elapsed := p.now().Sub(pollingStart)

		// Per-test deadlines first: an expired budget wins even over a
		// verdict the same round's poll would have delivered.
		for _, tr := range pending {
			if elapsed >= tr.pollingTimeout {
				p.terminate(tr, data.ErrTimeout)
			}
		}

		if p.Tunnel != nil && tunnelDown.Load() {
			for _, tr := range pendingOf(state) {
				p.terminate(tr, data.ErrTunnel)
			}
		}

		if elapsed >= maxTimeout {
			break
		}

		pending = pendingOf(state)
		if len(pending) == 0 {
			break
		}

		ids := make([]string, len(pending))
		byID := make(map[string]*triggerResult, len(pending))
		for i, tr := range pending {
			ids[i] = tr.ResultID
			byID[tr.ResultID] = tr
		}

		polled, err := p.Client.PollResults(ctx, ids)
		if err != nil {
			if backend.IsServerError(err) && !p.FailOnCriticalErrors {
				// Degraded backend: swallow and flag every pending result
				// instead of failing the job.
				p.Reporter.Error(err)
				for _, tr := range pendingOf(state) {
					p.terminate(tr, data.ErrEndpoint)
				}
				continue
			}
			return nil, err
		}
		for i := range polled {
			result := polled[i]
			if result.Result.EventType != data.EventFinished {
				continue
			}
			tr, ok := byID[result.ResultID]
			if !ok || tr.result != nil {
				continue
			}
			tr.result = &result
			p.Reporter.ResultReceived(result)
		}

		if len(pendingOf(state)) > 0 {
			if err := p.sleep(ctx, pollInterval); err != nil {
				return nil, err
			}
		}
	}

	results := make(map[string][]data.PollResult)
	for _, tr := range state {
		if tr.result == nil {
			// Covered by the deadline pass before the loop exited; keep the
			// invariant that every trigger response maps to one result.
			p.terminate(tr, data.ErrTimeout)
		}
		results[tr.PublicID] = append(results[tr.PublicID], *tr.result)
	}
	return results, nil
}

func pendingOf(state []*triggerResult) []*triggerResult {
	var pending []*triggerResult
	for _, tr := range state {
		if tr.result == nil {
			pending = append(pending, tr)
		}
	}
	return pending
}

// terminate synthesises a finished result carrying the given error token.
func (p *Poller) terminate(tr *triggerResult, errToken string) {
	passed := false
	result := data.PollResult{
		ResultID:  tr.ResultID,
		DCID:      tr.Location,
		Timestamp: 0,
		Result: data.ResultDetail{
			Device:      data.Device{ID: tr.Device},
			Duration:    0,
			Error:       errToken,
			EventType:   data.EventFinished,
			Passed:      &passed,
			StartURL:    "",
			StepDetails: []data.StepDetail{},
			Tunnel:      p.Tunnel != nil,
		},
	}
	tr.result = &result
	p.Reporter.ResultReceived(result)
}

// perTestTimeouts extracts pollingTimeout overrides from the original
// trigger configs. The first config naming a public id wins.
func perTestTimeouts(configs []data.TriggerConfig, fallback time.Duration) map[string]time.Duration {
	timeouts := make(map[string]time.Duration, len(configs))
	for _, cfg := range configs {
		id := NormalizeID(cfg.ID)
		if _, seen := timeouts[id]; seen {
			continue
		}
		if cfg.Config.PollingTimeout > 0 {
			timeouts[id] = time.Duration(cfg.Config.PollingTimeout) * time.Millisecond
		} else {
			timeouts[id] = fallback
		}
	}
	return timeouts
}
