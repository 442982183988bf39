// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Remote LLM providers
// echo request URLs, headers and key fragments in their error bodies, so
// anything derived from a provider error passes through here first.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; earlier rules see the unmodified input.
var rules = []rule{
	// JWT token pattern - the standard three-part base64url-encoded format
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	// Authorization headers
	{
		regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9_\-.~+/]{8,}=*`),
		"${1} " + RedactedCredentialPlaceholder,
	},
	// Provider key formats: OpenAI/Anthropic (sk-, sk-ant-, sk-proj-) and Google (AIza)
	{
		regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{20,}`),
		RedactedKeyPlaceholder,
	},
	// key=value and header-style credentials, e.g. ?key=..., x-api-key: ...
	{
		regexp.MustCompile(
			`(?i)\b((?:x-)?api[_-]?key|key|token|secret|password|jwt[_-]?secret)(["']?\s*[:=]\s*["']?)[A-Za-z0-9_\-.~+/]{6,}`,
		),
		"${1}${2}" + RedactedKeyPlaceholder,
	},
	// Userinfo in URLs
	{
		regexp.MustCompile(`(?i)\b(https?|postgres|redis)://[^/\s@]+@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	// Absolute file paths
	{
		regexp.MustCompile(`(^|\s)/(?:home|root|etc|var|tmp|usr|opt|Users)(?:/[\w.-]+)+`),
		"${1}" + RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`),
		RedactedPathPlaceholder,
	},
	// Stack trace fragments
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		"[STACK_TRACE_REDACTED]",
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Secret masks a configured secret for display, keeping only enough of it to
// tell two keys apart. Values of eight characters or fewer are fully hidden.
func Secret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return RedactionPlaceholder
	}
	return value[:4] + "..." + value[len(value)-2:]
}
