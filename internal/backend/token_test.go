package backend

import "testing"

func TestResolveAPIToken(t *testing.T) {
	t.Setenv("SYNTHRUN_API_TOKEN", "")
	t.Setenv("DD_API_KEY", "")

	if tok, src := ResolveAPIToken("explicit-token"); tok != "explicit-token" || src != AuthTokenSourceExplicit {
		t.Fatalf("explicit: %q %q", tok, src)
	}

	t.Setenv("SYNTHRUN_API_TOKEN", "env-token")
	t.Setenv("DD_API_KEY", "dd-token")
	if tok, src := ResolveAPIToken(""); tok != "env-token" || src != AuthTokenSourceEnv {
		t.Fatalf("env: %q %q", tok, src)
	}

	t.Setenv("SYNTHRUN_API_TOKEN", "")
	if tok, src := ResolveAPIToken("  "); tok != "dd-token" || src != AuthTokenSourceDDEnv {
		t.Fatalf("dd env: %q %q", tok, src)
	}

	t.Setenv("DD_API_KEY", "")
	if tok, src := ResolveAPIToken(""); tok != "" || src != "" {
		t.Fatalf("none: %q %q", tok, src)
	}
}

func TestResolveAppKey(t *testing.T) {
	t.Setenv("DD_APP_KEY", "from-env")
	if got := ResolveAppKey("explicit"); got != "explicit" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveAppKey(""); got != "from-env" {
		t.Fatalf("got %q", got)
	}
}
