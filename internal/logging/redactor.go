package logging

import (
	"regexp"
	"strings"
)

// redactor redacts sensitive values in log key-value pairs. The session
// credential token must never reach the log file.
type redactor struct {
	sensitiveWords map[string]bool
}

// newRedactor creates a new redactor with the default sensitive key set.
func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "key", "auth", "authorization", "credential", "bearer"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks through a slice of key-value pairs (flattened as
// [key1, value1, key2, value2, ...]). If a key contains a sensitive word
// as a separate segment, its value is replaced with "[REDACTED]".
// Returns a new slice; the original slice is not modified.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = "[REDACTED]"
		}
	}
	return result
}

var segmentRe = regexp.MustCompile(`[^a-z0-9]+`)

// isSensitive returns true if the key contains any sensitive word as a
// separate segment. Segments are split by non-alphanumeric characters.
func (r *redactor) isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, part := range segmentRe.Split(key, -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}
