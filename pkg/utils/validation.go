package utils

import (
	"net/url"
	"strings"
)

// IsAbsoluteURL reports whether s parses as a URL carrying both a scheme and a host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// SplitList splits a comma-separated string, trims each entry and drops empty ones.
// The result is never nil.
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
