package parse

import "strings"

// CleanText collapses whitespace and nbsp runs that HTML text nodes tend to
// carry.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "view" || l == "apply" || l == "apply now" || l == "learn more"
}
