package data

import (
	"encoding/json"
	"testing"
)

func TestOverride_UnknownKeysDiscarded(t *testing.T) {
	raw := `{
		"startUrl": "https://example.com",
		"pollingTimeout": 30000,
		"totallyUnknownOption": true,
		"another": {"nested": 1}
	}`
	var o Override
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.StartURL != "https://example.com" {
		t.Fatalf("startUrl: got %q", o.StartURL)
	}
	if o.PollingTimeout != 30000 {
		t.Fatalf("pollingTimeout: got %d", o.PollingTimeout)
	}
}

func TestOverride_IsEmpty(t *testing.T) {
	var nilOverride *Override
	if !nilOverride.IsEmpty() {
		t.Fatal("nil override should be empty")
	}
	if !(&Override{}).IsEmpty() {
		t.Fatal("zero override should be empty")
	}
	if (&Override{Body: "x"}).IsEmpty() {
		t.Fatal("override with body should not be empty")
	}
	f := false
	if (&Override{FollowRedirects: &f}).IsEmpty() {
		t.Fatal("override with followRedirects=false should not be empty")
	}
}

func TestTest_CIRuleDefaultsToBlocking(t *testing.T) {
	var test Test
	if got := test.CIRule(); got != RuleBlocking {
		t.Fatalf("got %q, want blocking", got)
	}
	test.Options.CI = &CIOptions{ExecutionRule: RuleSkipped}
	if got := test.CIRule(); got != RuleSkipped {
		t.Fatalf("got %q, want skipped", got)
	}
}

func TestTest_AcceptsStartURL(t *testing.T) {
	tests := []struct {
		typ, subtype string
		want         bool
	}{
		{TypeBrowser, "", true},
		{TypeAPI, SubtypeHTTP, true},
		{TypeAPI, "ssl", false},
		{TypeAPI, "", false},
	}
	for _, tc := range tests {
		test := &Test{Type: tc.typ, Subtype: tc.subtype}
		if got := test.AcceptsStartURL(); got != tc.want {
			t.Fatalf("%s/%s: got %v, want %v", tc.typ, tc.subtype, got, tc.want)
		}
	}
}
