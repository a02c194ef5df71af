// Package redact strips credential-shaped substrings out of finding
// evidence and suggested fixes before they leave the Agent Runner.
//
// Adapted from the masking approach used for MCP tool output: a small
// set of compiled regex patterns, each with its own replacement, applied
// in sequence. Unlike MCP tool masking this redactor has no per-server
// registry — it always applies the same pattern set to agent-produced
// text, since evidence text is attributed to a scan, not a tool call.
package redact

import (
	"log/slog"
	"regexp"
)

// Pattern is one named regex substitution.
type Pattern struct {
	Name        string
	Regex       string
	Replacement string
}

// compiled is a Pattern with its regex already compiled.
type compiled struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

// Redactor applies a fixed set of compiled patterns to text. It is safe
// for concurrent use by multiple Agent Runner workers.
type Redactor struct {
	patterns []compiled
}

// DefaultPatterns covers the credential shapes most likely to appear
// verbatim in scanned source: generic API keys, bearer tokens,
// AWS-style access keys, and PEM private key headers.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "bearer_token",
			Regex:       `(?i)bearer\s+[a-z0-9._-]{10,}`,
			Replacement: "bearer [REDACTED]",
		},
		{
			Name:        "api_key_assignment",
			Regex:       `(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*["']?[a-z0-9/+._-]{8,}["']?`,
			Replacement: "$1=[REDACTED]",
		},
		{
			Name:        "aws_access_key",
			Regex:       `AKIA[0-9A-Z]{16}`,
			Replacement: "[REDACTED_AWS_KEY]",
		},
		{
			Name:        "private_key_header",
			Regex:       `-----BEGIN [A-Z ]*PRIVATE KEY-----`,
			Replacement: "-----BEGIN [REDACTED] PRIVATE KEY-----",
		},
	}
}

// New compiles the given patterns, appended to DefaultPatterns. Invalid
// custom patterns are logged and skipped rather than failing
// construction, matching the fail-soft posture of the pattern compiler
// this package is adapted from.
func New(custom ...Pattern) *Redactor {
	all := append(DefaultPatterns(), custom...)
	r := &Redactor{}
	for _, p := range all {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			slog.Warn("redact: skipping pattern with invalid regex", "pattern", p.Name, "error", err)
			continue
		}
		r.patterns = append(r.patterns, compiled{name: p.Name, re: re, replacement: p.Replacement})
	}
	return r
}

// String applies every compiled pattern to s in order and returns the
// result.
func (r *Redactor) String(s string) string {
	for _, p := range r.patterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

// Evidence applies String to every element of the slice, returning a new
// slice (the input is not mutated).
func (r *Redactor) Evidence(evidence []string) []string {
	out := make([]string, len(evidence))
	for i, e := range evidence {
		out[i] = r.String(e)
	}
	return out
}
