package runner

import (
	"regexp"
	"strings"
)

var testIDRe = regexp.MustCompile(`^[a-zA-Z0-9]{3}-[a-zA-Z0-9]{3}-[a-zA-Z0-9]{3}$`)

// IsTestID reports whether s is a well-formed public test identifier
// (three groups of three alphanumerics separated by hyphens).
func IsTestID(s string) bool {
	return testIDRe.MatchString(s)
}

// NormalizeID extracts the public identifier from a user-supplied reference.
// A well-formed identifier passes through unchanged; anything longer (such
// as a test details URL) yields the suffix after the last slash.
func NormalizeID(id string) string {
	if IsTestID(id) {
		return id
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
