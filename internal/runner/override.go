package runner

import (
	"fmt"
	"os"

	"synthrun/internal/data"
	"synthrun/internal/reporter"
	"synthrun/internal/urltemplate"
)

// MergeOverrides layers a per-test override on top of the repository-wide
// one: any field the local override sets wins, everything else falls back
// to the global value.
func MergeOverrides(global, local data.Override) data.Override {
	merged := global
	if local.AllowInsecureCertificates != nil {
		merged.AllowInsecureCertificates = local.AllowInsecureCertificates
	}
	if local.BasicAuth != nil {
		merged.BasicAuth = local.BasicAuth
	}
	if local.Body != "" {
		merged.Body = local.Body
	}
	if local.BodyType != "" {
		merged.BodyType = local.BodyType
	}
	if local.Cookies != "" {
		merged.Cookies = local.Cookies
	}
	if local.DefaultStepTimeout != 0 {
		merged.DefaultStepTimeout = local.DefaultStepTimeout
	}
	if len(local.DeviceIDs) > 0 {
		merged.DeviceIDs = local.DeviceIDs
	}
	if local.ExecutionRule != "" {
		merged.ExecutionRule = local.ExecutionRule
	}
	if local.FollowRedirects != nil {
		merged.FollowRedirects = local.FollowRedirects
	}
	if len(local.Headers) > 0 {
		merged.Headers = local.Headers
	}
	if len(local.Locations) > 0 {
		merged.Locations = local.Locations
	}
	if local.PollingTimeout != 0 {
		merged.PollingTimeout = local.PollingTimeout
	}
	if local.Retry != nil {
		merged.Retry = local.Retry
	}
	if local.StartURL != "" {
		merged.StartURL = local.StartURL
	}
	if local.StartURLSubstitutionRegex != "" {
		merged.StartURLSubstitutionRegex = local.StartURLSubstitutionRegex
	}
	if local.Tunnel != nil {
		merged.Tunnel = local.Tunnel
	}
	if len(local.Variables) > 0 {
		merged.Variables = local.Variables
	}
	return merged
}

// ResolveExecutionRule merges a test's server-side execution rule with the
// user override. The strictest rule wins, under the total order
// skipped > non_blocking > blocking. An absent test rule counts as blocking.
func ResolveExecutionRule(test *data.Test, override *data.Override) data.ExecutionRule {
	rule := test.CIRule()
	if override != nil && override.ExecutionRule != "" {
		if override.ExecutionRule.Strictness() > rule.Strictness() {
			return override.ExecutionRule
		}
	}
	return rule
}

// BuildPayload assembles the submission payload for one test. With no
// override it is just the public id and the resolved execution rule;
// otherwise the recognised option keys are copied over, and the start URL
// is rendered through the URL template when the test accepts one.
func BuildPayload(test *data.Test, publicID string, override *data.Override, rep *reporter.Composite) data.Payload {
	payload := data.Payload{
		PublicID:      publicID,
		ExecutionRule: ResolveExecutionRule(test, override),
	}
	if override.IsEmpty() {
		return payload
	}

	payload.AllowInsecureCertificates = override.AllowInsecureCertificates
	payload.BasicAuth = override.BasicAuth
	payload.Body = override.Body
	payload.BodyType = override.BodyType
	payload.Cookies = override.Cookies
	payload.DefaultStepTimeout = override.DefaultStepTimeout
	payload.DeviceIDs = override.DeviceIDs
	payload.FollowRedirects = override.FollowRedirects
	payload.Headers = override.Headers
	payload.Locations = override.Locations
	payload.PollingTimeout = override.PollingTimeout
	payload.Retry = override.Retry
	payload.StartURLSubstitutionRegex = override.StartURLSubstitutionRegex
	payload.Tunnel = override.Tunnel
	payload.Variables = override.Variables

	if override.StartURL != "" && test.AcceptsStartURL() {
		payload.StartURL = urltemplate.Render(
			override.StartURL,
			test.Config.Request.URL,
			urltemplate.EnvContext(os.Environ()),
			templateLogger(rep),
		)
	}
	return payload
}

func templateLogger(rep *reporter.Composite) urltemplate.Logger {
	return urltemplate.Logger{
		Warnf: func(format string, args ...any) {
			rep.Log(fmt.Sprintf(format, args...))
		},
		Errorf: func(format string, args ...any) {
			rep.Log(fmt.Sprintf(format, args...))
		},
	}
}
