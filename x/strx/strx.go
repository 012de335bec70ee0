// Package strx holds small string helpers shared by config parsing.
package strx

// Coalesce returns the first non-empty string, or "".
func Coalesce(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// TrimAnyPrefix removes the first of prefixes that s starts with.
func TrimAnyPrefix(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return s[len(p):]
		}
	}
	return s
}
