package generation

import "strings"

const fence = "```"

// StripCodeFence removes a code fence that encloses the whole of text, along
// with a language tag written directly after the opening fence (for example
// "```markdown"). Prose on the opening line is kept.
// Text that is not enclosed by a fence is returned unchanged.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2*len(fence) ||
		!strings.HasPrefix(trimmed, fence) ||
		!strings.HasSuffix(trimmed, fence) {
		return text
	}

	inner := trimmed[len(fence) : len(trimmed)-len(fence)]

	// The opening line may carry a language tag; drop it.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && isLanguageTag(strings.TrimRight(inner[:nl], " \t\r")) {
		inner = inner[nl+1:]
	}

	if strings.Contains(inner, fence) {
		// Several fenced blocks, not a single enclosing one.
		return text
	}

	return strings.TrimSpace(inner)
}

// isLanguageTag reports whether s is empty or looks like an info string such
// as "markdown", "text" or "c++". Tags are lowercase; a capitalized word is
// taken as the first line of the entry.
func isLanguageTag(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '_', r == '+', r == '-', r == '.', r == '#':
		default:
			return false
		}
	}
	return true
}
