package runner

import (
	"synthrun/internal/data"
)

// accountResults folds every polled result into the summary counters.
//
// Counters are per result: a test triggered on three locations contributes
// three data points. TimedOut and CriticalErrors tally the synthesised and
// critical conditions regardless of whether the policy flags turn them into
// failures; Passed/Failed/FailedNonBlocking reflect the policy verdict.
func accountResults(summary *data.Summary, tests []*data.Test, payloads []data.Payload, results map[string][]data.PollResult, failOnCriticalErrors, failOnTimeout bool) {
	rules := make(map[string]data.ExecutionRule, len(payloads))
	for _, p := range payloads {
		rules[p.PublicID] = p.ExecutionRule
	}

	for _, test := range tests {
		for _, result := range results[test.PublicID] {
			switch result.Result.Outcome() {
			case data.OutcomeTimeout:
				summary.TimedOut++
			case data.OutcomeUnhealthy, data.OutcomeEndpoint:
				summary.CriticalErrors++
			}

			if result.Result.HasPassed(failOnCriticalErrors, failOnTimeout) {
				summary.Passed++
				continue
			}
			if rules[test.PublicID] == data.RuleNonBlocking {
				summary.FailedNonBlocking++
			} else {
				summary.Failed++
			}
		}
	}
}
