package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace trims `s` and replaces each run of whitespace with a single space.
func CollapseSpace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeKey lower-cases and trims a registry key such as a source name.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ContainsAny reports whether `text` contains any of `keywords`, ignoring case.
// empty keywords never match.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// FirstContaining returns the first of `candidates` containing any of `keywords`.
func FirstContaining(candidates []string, keywords []string) (string, bool) {
	for _, c := range candidates {
		if ContainsAny(c, keywords) {
			return c, true
		}
	}
	return "", false
}

// SplitList splits a comma separated list, trimming and dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
