package data

// Override is the set of recognised per-test options a user may supply for a
// test, either in a suite file or as a global default. Unknown keys are
// discarded at decode time: every recognised option is enumerated here and
// anything else is simply not part of the struct.
type Override struct {
	AllowInsecureCertificates *bool             `json:"allowInsecureCertificates,omitempty"`
	BasicAuth                 *BasicAuth        `json:"basicAuth,omitempty"`
	Body                      string            `json:"body,omitempty"`
	BodyType                  string            `json:"bodyType,omitempty"`
	Cookies                   string            `json:"cookies,omitempty"`
	DefaultStepTimeout        int               `json:"defaultStepTimeout,omitempty"`
	DeviceIDs                 []string          `json:"deviceIds,omitempty"`
	ExecutionRule             ExecutionRule     `json:"executionRule,omitempty"`
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

// IsEmpty reports whether no recognised option is set.
func (o *Override) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.AllowInsecureCertificates == nil &&
		o.BasicAuth == nil &&
		o.Body == "" &&
		o.BodyType == "" &&
		o.Cookies == "" &&
		o.DefaultStepTimeout == 0 &&
		len(o.DeviceIDs) == 0 &&
		o.ExecutionRule == "" &&
		o.FollowRedirects == nil &&
		len(o.Headers) == 0 &&
		len(o.Locations) == 0 &&
		o.PollingTimeout == 0 &&
		o.Retry == nil &&
		o.StartURL == "" &&
		o.StartURLSubstitutionRegex == "" &&
		o.Tunnel == nil &&
		len(o.Variables) == 0
}

type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RetryOptions struct {
	Count    int   `json:"count,omitempty"`
	Interval int64 `json:"interval,omitempty"`
}

// TunnelInfo identifies a live tunnel to the backend so that test requests
// can be proxied through it.
type TunnelInfo struct {
	ID         string `json:"id"`
	Host       string `json:"host,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

// TriggerConfig pairs a test identifier with its override options, as read
// from a suite file or assembled from CLI flags.
type TriggerConfig struct {
	ID     string   `json:"id"`
	Suite  string   `json:"suite,omitempty"`
	Config Override `json:"config"`
}

// Suite is one parsed suite file.
type Suite struct {
	Name    string
	Content SuiteContent
}

type SuiteContent struct {
	Tests []TriggerConfig `json:"tests"`
}
