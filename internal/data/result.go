package data

import "math"

// Synthesised result error tokens. TIMEOUT marks a per-test deadline expiry,
// TUNNEL a tunnel liveness loss, ENDPOINT a degraded backend swallowed under
// the failOnCriticalErrors=false policy.
const (
	ErrTimeout  = "TIMEOUT"
	ErrTunnel   = "TUNNEL"
	ErrEndpoint = "ENDPOINT"
)

// EventFinished is the only poll event type accepted as terminal.
const EventFinished = "finished"

// Trigger is the backend's response to a batched trigger request.
type Trigger struct {
	BatchID           string            `json:"batch_id,omitempty"`
	Locations         []Location        `json:"locations,omitempty"`
	Results           []TriggerResponse `json:"results"`
	TriggeredCheckIDs []string          `json:"triggered_check_ids,omitempty"`
}

// TriggerResponse is one trigger-response item, one per submitted payload.
type TriggerResponse struct {
	PublicID string `json:"public_id"`
	ResultID string `json:"result_id"`
	Device   string `json:"device"`
	Location int    `json:"location"`
}

type Location struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Region      string `json:"region,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// PollResult is one polled (or synthesised) outcome for a result id.
type PollResult struct {
	ResultID  string       `json:"resultID"`
	DCID      int          `json:"dc_id"`
	Timestamp int64        `json:"timestamp"`
	Result    ResultDetail `json:"result"`
}

// ResultDetail is the partially-observed verdict carried by a poll result.
// Passed and Unhealthy are pointers: absence and false are distinct.
type ResultDetail struct {
	Passed       *bool        `json:"passed,omitempty"`
	Error        string       `json:"error,omitempty"`
	ErrorCode    string       `json:"errorCode,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Unhealthy    *bool        `json:"unhealthy,omitempty"`
	EventType    string       `json:"eventType,omitempty"`
	Duration     float64      `json:"duration,omitempty"`
	Timings      *Timings     `json:"timings,omitempty"`
	Tunnel       bool         `json:"tunnel,omitempty"`
	StartURL     string       `json:"startUrl"`
	StepDetails  []StepDetail `json:"stepDetails"`
	Device       Device       `json:"device"`
}

type Timings struct {
	Total float64 `json:"total"`
}

type Device struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type StepDetail struct {
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Error       string  `json:"error,omitempty"`
	StepID      int     `json:"stepId,omitempty"`
	URL         string  `json:"url,omitempty"`
	Value       any     `json:"value,omitempty"`
}

// Outcome is the sum-variant view of a ResultDetail's verdict fields.
type Outcome int

const (
	// OutcomeUnknown means no verdict field was observed at all.
	OutcomeUnknown Outcome = iota
	OutcomePassed
	OutcomeFailed
	OutcomeTimeout
	OutcomeUnhealthy
	OutcomeEndpoint
	OutcomeTunnel
)

// Outcome collapses the optional verdict fields into a single variant.
// Critical conditions (unhealthy, endpoint failure) take precedence, then
// timeouts and tunnel loss, then the explicit passed flag, then errorCode.
func (r ResultDetail) Outcome() Outcome {
	if (r.Unhealthy != nil && *r.Unhealthy) || r.Error == ErrEndpoint {
		if r.Error == ErrEndpoint {
			return OutcomeEndpoint
		}
		return OutcomeUnhealthy
	}
	if r.Error == ErrTimeout {
		return OutcomeTimeout
	}
	if r.Error == ErrTunnel {
		return OutcomeTunnel
	}
	if r.Passed != nil {
		if *r.Passed {
			return OutcomePassed
		}
		return OutcomeFailed
	}
	if r.ErrorCode != "" {
		return OutcomeFailed
	}
	return OutcomeUnknown
}

// DurationMS returns the result's duration in milliseconds: the explicit
// duration when present, the total timing otherwise, zero as a last resort.
func (r ResultDetail) DurationMS() int64 {
	if r.Duration != 0 {
		return int64(math.Round(r.Duration))
	}
	if r.Timings != nil && r.Timings.Total != 0 {
		return int64(math.Round(r.Timings.Total))
	}
	return 0
}
