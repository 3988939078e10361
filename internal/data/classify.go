package data

// HasPassed decides one result's verdict under the active policy flags.
//
// The chain mirrors the documented policy exactly:
//  1. critical conditions (unhealthy, endpoint failure) pass unless
//     failOnCriticalErrors is set;
//  2. deadline expiries pass unless failOnTimeout is set;
//  3. an explicit passed flag wins;
//  4. an error code fails;
//  5. a result with no verdict fields at all counts as passed.
//
// Flipping either flag from true to false can only turn a fail into a pass.
func (r ResultDetail) HasPassed(failOnCriticalErrors, failOnTimeout bool) bool {
	critical := (r.Unhealthy != nil && *r.Unhealthy) || r.Error == ErrEndpoint
	if critical && !failOnCriticalErrors {
		return true
	}
	if r.Error == ErrTimeout && !failOnTimeout {
		return true
	}
	if r.Passed != nil {
		return *r.Passed
	}
	if r.ErrorCode != "" {
		return false
	}
	return true
}
