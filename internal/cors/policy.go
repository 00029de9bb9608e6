// SPDX-License-Identifier: MIT

// Package cors implements origin admission for cross-origin access control.
//
// A Policy is built once at startup from the CORS_ORIGINS environment value
// plus a static default list, and is read-only afterwards. Every call site
// that needs an admission decision (the primary CORS middleware, the backup
// header pass, the preflight handler and the websocket origin check)
// delegates to the single Decide operation, so the rules cannot drift
// between entry points.
package cors

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/hamza123545/physical-ai-backend/internal/log"
)

// PagesOrigin is the production frontend origin (GitHub Pages). It is both
// a static allow-list default and the fallback echoed on denied preflights.
const PagesOrigin = "https://hamza123545.github.io"

// defaultOrigins is the static allow-list unioned with CORS_ORIGINS.
// The browser sends only scheme://host in Origin, never a path.
var defaultOrigins = []string{
	PagesOrigin,
	"http://localhost:3000",
	"http://localhost:3001",
}

var (
	// Any origin under the GitHub Pages host is admitted regardless of
	// allow-list membership; the echoed value is reduced to scheme://host.
	pagesPattern = regexp.MustCompile(`^https://hamza123545\.github\.io.*`)

	// Loopback origins, any port. Only consulted in development mode.
	loopbackPattern = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)
)

// Rule names reported in logs and metrics.
const (
	RuleNoOrigin  = "no_origin"
	RuleAllowList = "allowlist"
	RulePages     = "pages_host"
	RuleLoopback  = "loopback_dev"
	RuleDenied    = "denied"
)

// Decision is the outcome of admitting a request origin.
type Decision struct {
	// Allowed reports whether the origin may receive CORS headers.
	Allowed bool
	// Origin is the value echoed in Access-Control-Allow-Origin. It is
	// always the requester's own origin (possibly reduced to
	// scheme://host), never an unrelated allow-list entry.
	Origin string
	// Rule names the rule that produced the decision.
	Rule string
}

// Policy holds the immutable admission configuration.
type Policy struct {
	allowed     map[string]struct{}
	development bool
}

// NewPolicy builds the admission policy from the raw CORS_ORIGINS value and
// the environment mode. It never fails: an empty or malformed origins value
// degrades to the static defaults plus the pattern rules.
func NewPolicy(corsOrigins string, development bool) *Policy {
	p := &Policy{
		allowed:     buildAllowList(corsOrigins),
		development: development,
	}

	logger := log.WithComponent("cors")
	logger.Info().
		Str(log.FieldEvent, "cors.configured").
		Bool("development", development).
		Strs("allowed_origins", p.AllowList()).
		Msg("origin admission policy built")

	return p
}

// buildAllowList parses a comma-separated origins string, trims each entry,
// strips trailing slashes, reduces each to scheme://host and unions the
// result with the static defaults. Duplicates collapse via set semantics.
func buildAllowList(csv string) map[string]struct{} {
	allowed := make(map[string]struct{})
	for _, origin := range strings.Split(csv, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		origin = strings.TrimRight(origin, "/")
		allowed[Normalize(origin)] = struct{}{}
	}
	for _, origin := range defaultOrigins {
		allowed[origin] = struct{}{}
	}
	return allowed
}

// Normalize reduces an origin string to scheme://host[:port], discarding any
// path or query. Unparseable input is returned unchanged so the caller falls
// back to exact string comparison. Normalize is idempotent.
func Normalize(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return origin
	}
	return u.Scheme + "://" + u.Host
}

// AllowList returns the configured allow-list as a sorted slice, for
// logging and diagnostics.
func (p *Policy) AllowList() []string {
	out := make([]string, 0, len(p.allowed))
	for origin := range p.allowed {
		out = append(out, origin)
	}
	sort.Strings(out)
	return out
}

// Development reports whether the policy admits loopback origins.
func (p *Policy) Development() bool {
	return p.development
}

// Decide determines whether origin is permitted and which value to echo in
// Access-Control-Allow-Origin. All branches are total: malformed input is
// compared and pattern-matched as-is, never rejected with an error.
//
//  1. No Origin header: not allowed, no header emitted. Normal for
//     same-origin and non-browser clients, not an error.
//  2. Exact allow-list member: allowed, echoed verbatim.
//  3. GitHub Pages host pattern: allowed, echoed reduced to scheme://host.
//  4. Loopback origin in development mode: allowed, echoed verbatim.
//  5. Otherwise: not allowed.
func (p *Policy) Decide(origin string) Decision {
	switch {
	case origin == "":
		return Decision{Rule: RuleNoOrigin}
	case p.member(origin):
		return Decision{Allowed: true, Origin: origin, Rule: RuleAllowList}
	case pagesPattern.MatchString(Normalize(origin)):
		return Decision{Allowed: true, Origin: Normalize(origin), Rule: RulePages}
	case p.development && loopbackPattern.MatchString(origin):
		return Decision{Allowed: true, Origin: origin, Rule: RuleLoopback}
	default:
		return Decision{Rule: RuleDenied}
	}
}

func (p *Policy) member(origin string) bool {
	_, ok := p.allowed[origin]
	return ok
}
