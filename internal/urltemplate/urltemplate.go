// Package urltemplate renders {{ NAME }} placeholders in start URLs.
//
// The lookup context merges the process environment with reserved keys
// derived from the test's configured request URL. Reserved keys always win
// over identically-named environment variables, and unresolved placeholders
// are left verbatim.
package urltemplate

import (
	"net/url"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ReservedKeys are the placeholder names derived from the test URL.
var ReservedKeys = []string{
	"URL", "DOMAIN", "HASH", "HOST", "HOSTNAME", "ORIGIN",
	"PARAMS", "PATHNAME", "PORT", "PROTOCOL", "SUBDOMAIN",
}

// Logger receives non-fatal diagnostics from rendering. Either hook may be
// nil.
type Logger struct {
	Warnf  func(format string, args ...any)
	Errorf func(format string, args ...any)
}

func (l Logger) warnf(format string, args ...any) {
	if l.Warnf != nil {
		l.Warnf(format, args...)
	}
}

func (l Logger) errorf(format string, args ...any) {
	if l.Errorf != nil {
		l.Errorf(format, args...)
	}
}

// Render substitutes every recognised placeholder in template. configURL is
// the test's config.request.url; when it does not parse, an error is logged
// and only the environment context is used.
func Render(template, configURL string, env map[string]string, log Logger) string {
	reserved := reservedContext(configURL, log)

	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if value, ok := reserved[name]; ok {
			if _, shadowed := env[name]; shadowed {
				log.warnf("environment variable %s is shadowed by the test URL value", name)
			}
			return value
		}
		if value, ok := env[name]; ok {
			return value
		}
		return match
	})
}

// EnvContext converts os.Environ-style "KEY=value" pairs into a lookup map.
func EnvContext(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

func reservedContext(configURL string, log Logger) map[string]string {
	if configURL == "" {
		return nil
	}
	u, err := url.Parse(configURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		log.errorf("test URL %q is not parseable, only environment variables are available for substitution", configURL)
		return nil
	}

	ctx := map[string]string{
		"URL":      configURL,
		"HOST":     u.Host,
		"HOSTNAME": u.Hostname(),
		"ORIGIN":   u.Scheme + "://" + u.Host,
		"PROTOCOL": u.Scheme + ":",
		"PORT":     u.Port(),
		"PATHNAME": pathname(u),
		"PARAMS":   params(u),
		"HASH":     hash(u),
	}

	domain, subdomain, hasSubdomain := splitHost(u.Hostname())
	ctx["DOMAIN"] = domain
	if hasSubdomain {
		ctx["SUBDOMAIN"] = subdomain
	}
	return ctx
}

func pathname(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.EscapedPath()
}

func params(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

func hash(u *url.URL) string {
	if u.Fragment == "" {
		return ""
	}
	return "#" + u.Fragment
}

// splitHost separates the left-most label from the registrable domain when
// the host has at least three labels and a 2-5 character TLD. Otherwise the
// whole host is the domain and there is no subdomain.
func splitHost(hostname string) (domain, subdomain string, hasSubdomain bool) {
	labels := strings.Split(hostname, ".")
	if len(labels) < 3 {
		return hostname, "", false
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 || len(tld) > 5 {
		return hostname, "", false
	}
	return strings.Join(labels[1:], "."), labels[0], true
}
