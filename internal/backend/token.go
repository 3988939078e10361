package backend

import (
	"os"
	"strings"
)

type AuthTokenSource string

const (
	AuthTokenSourceExplicit AuthTokenSource = "explicit"
	AuthTokenSourceEnv      AuthTokenSource = "env:SYNTHRUN_API_TOKEN"
	AuthTokenSourceDDEnv    AuthTokenSource = "env:DD_API_KEY"
)

// ResolveAPIToken resolves the backend API token.
//
// Precedence:
//  1. provided (if non-empty, typically from the config file)
//  2. SYNTHRUN_API_TOKEN env var
//  3. DD_API_KEY env var
//
// It never prints the token.
func ResolveAPIToken(provided string) (token string, source AuthTokenSource) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceExplicit
	}
	if env := strings.TrimSpace(os.Getenv("SYNTHRUN_API_TOKEN")); env != "" {
		return env, AuthTokenSourceEnv
	}
	if env := strings.TrimSpace(os.Getenv("DD_API_KEY")); env != "" {
		return env, AuthTokenSourceDDEnv
	}
	return "", ""
}

// ResolveAppKey resolves the optional application key, preferring the
// explicit value over the DD_APP_KEY env var.
func ResolveAppKey(provided string) string {
	if key := strings.TrimSpace(provided); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("DD_APP_KEY"))
}
