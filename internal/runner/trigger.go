package runner

import (
	"context"
	"fmt"
	"strings"

	"synthrun/internal/backend"
	"synthrun/internal/ci"
	"synthrun/internal/data"
)

// TestTriggerer is the slice of the backend contract the dispatcher needs.
type TestTriggerer interface {
	TriggerTests(ctx context.Context, req backend.TriggerRequest) (*data.Trigger, error)
}

// Trigger submits every payload in one batched request, with CI and git
// metadata attached. A failure is wrapped into a single error naming all
// submitted public ids and carrying the HTTP status when one is present.
func Trigger(ctx context.Context, client TestTriggerer, payloads []data.Payload) (*data.Trigger, error) {
	trigger, err := client.TriggerTests(ctx, backend.TriggerRequest{
		Tests:    payloads,
		Metadata: ci.Collect(),
	})
	if err != nil {
		ids := make([]string, len(payloads))
		for i, p := range payloads {
			ids[i] = p.PublicID
		}
		if status := backend.StatusCode(err); status != 0 {
			return nil, fmt.Errorf("[%s] failed to trigger tests (HTTP %d): %w", strings.Join(ids, ","), status, err)
		}
		return nil, fmt.Errorf("[%s] failed to trigger tests: %w", strings.Join(ids, ","), err)
	}
	return trigger, nil
}
