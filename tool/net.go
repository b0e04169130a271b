package tool

import (
	"net/url"
	"strings"
)

// SplitOrigins parses a comma separated origin list, dropping blanks.
func SplitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// OriginAllowed reports whether origin matches the allow list.
// "*" allows every origin, an empty origin (non-browser client) is always allowed.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
		// "*.example.com" matches any subdomain over any scheme
		if strings.HasPrefix(a, "*.") {
			u, err := url.Parse(origin)
			if err == nil && strings.HasSuffix(strings.ToLower(u.Hostname()), strings.ToLower(a[1:])) {
				return true
			}
		}
	}
	return false
}
