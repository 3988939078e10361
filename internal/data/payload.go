package data

// Payload is the per-test submission unit sent to the backend's trigger
// endpoint: the public identifier, the resolved execution rule, and any
// applicable overrides.
type Payload struct {
	PublicID      string        `json:"public_id"`
	ExecutionRule ExecutionRule `json:"executionRule"`

	AllowInsecureCertificates *bool             `json:"allowInsecureCertificates,omitempty"`
	BasicAuth                 *BasicAuth        `json:"basicAuth,omitempty"`
	Body                      string            `json:"body,omitempty"`
	BodyType                  string            `json:"bodyType,omitempty"`
	Cookies                   string            `json:"cookies,omitempty"`
	DefaultStepTimeout        int               `json:"defaultStepTimeout,omitempty"`
	DeviceIDs                 []string          `json:"deviceIds,omitempty"`
	FollowRedirects           *bool             `json:"followRedirects,omitempty"`
	Headers                   map[string]string `json:"headers,omitempty"`
	Locations                 []string          `json:"locations,omitempty"`
	PollingTimeout            int64             `json:"pollingTimeout,omitempty"`
	Retry                     *RetryOptions     `json:"retry,omitempty"`
	StartURL                  string            `json:"startUrl,omitempty"`
	StartURLSubstitutionRegex string            `json:"startUrlSubstitutionRegex,omitempty"`
	Tunnel                    *TunnelInfo       `json:"tunnel,omitempty"`
	Variables                 map[string]string `json:"variables,omitempty"`
}
