package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"synthrun/internal/backend"
	"synthrun/internal/data"
	"synthrun/internal/reporter"
)

// fakePollClient replays canned poll responses round by round.
type fakePollClient struct {
	rounds [][]data.PollResult
	errs   []error
	calls  int
	seen   [][]string
}

func (f *fakePollClient) PollResults(ctx context.Context, resultIDs []string) ([]data.PollResult, error) {
	ids := append([]string(nil), resultIDs...)
	f.seen = append(f.seen, ids)
	call := f.calls
	f.calls++
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.rounds) {
		return f.rounds[call], nil
	}
	return nil, nil
}

func finished(resultID string, passed bool, errorCode string) data.PollResult {
	return data.PollResult{
		ResultID:  resultID,
		DCID:      1,
		Timestamp: 1700000000000,
		Result: data.ResultDetail{
			EventType: data.EventFinished,
			Passed:    &passed,
			ErrorCode: errorCode,
		},
	}
}

func newTestPoller(client ResultPoller) (*Poller, *time.Time) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	p := NewPoller(client, reporter.NewComposite())
	p.now = func() time.Time { return now }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	return p, &now
}

func triggerOf(responses ...data.TriggerResponse) *data.Trigger {
	return &data.Trigger{BatchID: "batch-1", Results: responses}
}

func TestPoller_MixedOutcomes(t *testing.T) {
	client := &fakePollClient{
		rounds: [][]data.PollResult{
			{finished("r1", true, "")},
			{finished("r2", false, "ASSERT")},
		},
	}
	p, _ := newTestPoller(client)
	p.DefaultTimeout = time.Minute

	trigger := triggerOf(
		data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1},
		data.TriggerResponse{PublicID: "bbb-bbb-bbb", ResultID: "r2", Location: 2},
	)
	results, err := p.Wait(context.Background(), trigger, nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if len(results["aaa-aaa-aaa"]) != 1 || len(results["bbb-bbb-bbb"]) != 1 {
		t.Fatalf("expected one result per test, got %v", results)
	}
	r1 := results["aaa-aaa-aaa"][0]
	if r1.ResultID != "r1" || !*r1.Result.Passed {
		t.Fatalf("r1: %+v", r1)
	}
	r2 := results["bbb-bbb-bbb"][0]
	if r2.ResultID != "r2" || *r2.Result.Passed || r2.Result.ErrorCode != "ASSERT" {
		t.Fatalf("r2: %+v", r2)
	}
	// The second poll only asked for the still-pending result.
	if len(client.seen) != 2 || len(client.seen[1]) != 1 || client.seen[1][0] != "r2" {
		t.Fatalf("poll requests: %v", client.seen)
	}
}

func TestPoller_Timeout(t *testing.T) {
	client := &fakePollClient{}
	p, _ := newTestPoller(client)

	trigger := triggerOf(data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 7, Device: "chrome.laptop_large"})
	configs := []data.TriggerConfig{{ID: "aaa-aaa-aaa", Config: data.Override{PollingTimeout: 7000}}}

	results, err := p.Wait(context.Background(), trigger, configs)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected two poll cycles before the deadline, got %d", client.calls)
	}

	got := results["aaa-aaa-aaa"]
	if len(got) != 1 {
		t.Fatalf("results: %v", results)
	}
	r := got[0]
	if r.Result.Error != data.ErrTimeout {
		t.Fatalf("error: got %q, want TIMEOUT", r.Result.Error)
	}
	if r.Result.Passed == nil || *r.Result.Passed {
		t.Fatal("synthesised timeout must carry passed=false")
	}
	if r.DCID != 7 || r.ResultID != "r1" || r.Timestamp != 0 {
		t.Fatalf("synthesis fields: %+v", r)
	}
	if r.Result.Device.ID != "chrome.laptop_large" {
		t.Fatalf("device: %+v", r.Result.Device)
	}
	if r.Result.Tunnel {
		t.Fatal("no tunnel was configured")
	}

	if r.Result.HasPassed(false, false) != true {
		t.Fatal("timeout should pass with failOnTimeout=false")
	}
	if r.Result.HasPassed(false, true) != false {
		t.Fatal("timeout should fail with failOnTimeout=true")
	}
}

// staticTunnel fails immediately; the keep-alive settles before the second
// loop iteration.
type staticTunnel struct {
	settled chan struct{}
}

func (s *staticTunnel) KeepAlive(ctx context.Context) error {
	defer close(s.settled)
	return errors.New("tunnel dropped")
}

func TestPoller_TunnelDrop(t *testing.T) {
	client := &fakePollClient{}
	p, _ := newTestPoller(client)
	p.DefaultTimeout = time.Minute

	tun := &staticTunnel{settled: make(chan struct{})}
	p.Tunnel = tun
	baseSleep := p.sleep
	p.sleep = func(ctx context.Context, d time.Duration) error {
		// Let the keep-alive goroutine flip liveness before the next
		// iteration observes it.
		<-tun.settled
		time.Sleep(20 * time.Millisecond)
		return baseSleep(ctx, d)
	}

	trigger := triggerOf(
		data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1},
		data.TriggerResponse{PublicID: "bbb-bbb-bbb", ResultID: "r2", Location: 2},
	)
	results, err := p.Wait(context.Background(), trigger, nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for _, id := range []string{"aaa-aaa-aaa", "bbb-bbb-bbb"} {
		got := results[id]
		if len(got) != 1 {
			t.Fatalf("%s: %v", id, results)
		}
		r := got[0].Result
		if r.Error != data.ErrTunnel {
			t.Fatalf("%s error: got %q, want TUNNEL", id, r.Error)
		}
		if r.Passed == nil || *r.Passed {
			t.Fatalf("%s: tunnel result must fail", id)
		}
		if !r.Tunnel {
			t.Fatalf("%s: tunnel flag must be set", id)
		}
	}
}

func TestPoller_ServerErrorFallback(t *testing.T) {
	apiErr := &backend.APIError{Method: http.MethodGet, URL: "/poll", Status: http.StatusBadGateway}
	client := &fakePollClient{errs: []error{apiErr}}
	p, _ := newTestPoller(client)
	p.DefaultTimeout = time.Minute
	p.FailOnCriticalErrors = false

	trigger := triggerOf(data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1})
	results, err := p.Wait(context.Background(), trigger, nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	r := results["aaa-aaa-aaa"][0].Result
	if r.Error != data.ErrEndpoint {
		t.Fatalf("error: got %q, want ENDPOINT", r.Error)
	}
	if !r.HasPassed(false, false) {
		t.Fatal("endpoint result should pass with failOnCriticalErrors=false")
	}
	if client.calls != 1 {
		t.Fatalf("expected a single poll before fallback, got %d", client.calls)
	}
}

func TestPoller_ServerErrorFatalWhenFlagSet(t *testing.T) {
	apiErr := &backend.APIError{Method: http.MethodGet, URL: "/poll", Status: http.StatusBadGateway}
	client := &fakePollClient{errs: []error{apiErr}}
	p, _ := newTestPoller(client)
	p.FailOnCriticalErrors = true

	trigger := triggerOf(data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1})
	if _, err := p.Wait(context.Background(), trigger, nil); !errors.Is(err, error(apiErr)) {
		t.Fatalf("expected the 502 to propagate, got %v", err)
	}
}

func TestPoller_NonServerErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("network down")
	client := &fakePollClient{errs: []error{boom}}
	p, _ := newTestPoller(client)

	trigger := triggerOf(data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1})
	if _, err := p.Wait(context.Background(), trigger, nil); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate unchanged, got %v", err)
	}
}

func TestPoller_OrderingFollowsTriggerResponses(t *testing.T) {
	client := &fakePollClient{
		rounds: [][]data.PollResult{
			{finished("r2", true, ""), finished("r1", true, "")},
		},
	}
	p, _ := newTestPoller(client)

	trigger := triggerOf(
		data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1},
		data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r2", Location: 2},
	)
	results, err := p.Wait(context.Background(), trigger, nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	got := results["aaa-aaa-aaa"]
	if len(got) != 2 || got[0].ResultID != "r1" || got[1].ResultID != "r2" {
		t.Fatalf("ordering: %v", got)
	}
}

func TestPoller_IgnoresUnfinishedEvents(t *testing.T) {
	inProgress := finished("r1", true, "")
	inProgress.Result.EventType = "in_progress"
	client := &fakePollClient{
		rounds: [][]data.PollResult{
			{inProgress},
			{finished("r1", true, "")},
		},
	}
	p, _ := newTestPoller(client)
	p.DefaultTimeout = time.Minute

	trigger := triggerOf(data.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1})
	results, err := p.Wait(context.Background(), trigger, nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected the in_progress event to be ignored, calls=%d", client.calls)
	}
	if got := results["aaa-aaa-aaa"]; len(got) != 1 || got[0].Result.EventType != data.EventFinished {
		t.Fatalf("results: %v", got)
	}
}
