package util

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// apiKey travels in the query string, so it leaks through *url.Error messages.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key)\b\s*[:=]\s*[^\s"'&]+`)
)

// RedactSecrets removes credential-bearing substrings from error/log strings.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "$1=<redacted>")
	return strings.TrimSpace(out)
}
