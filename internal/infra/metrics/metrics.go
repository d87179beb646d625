package metrics

import "strings"

// norm lowercases label values so callers cannot split one logical series.
func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
