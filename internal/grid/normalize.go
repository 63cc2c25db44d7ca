package grid

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// schemeRegex matches an explicit http or https scheme.
var schemeRegex = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL trims the address and prefixes https:// when it has no
// http(s) scheme.
func NormalizeURL(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	if !schemeRegex.MatchString(address) {
		address = "https://" + address
	}
	return address
}

// Hostname returns the host part of a normalized URL, or "" when it cannot
// be parsed.
func Hostname(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// FaviconURL builds an icon URL for the normalized address from a printf
// template taking the hostname. It reports false when no host can be derived.
func FaviconURL(service, normalized string) (string, bool) {
	host := Hostname(normalized)
	if host == "" || service == "" {
		return "", false
	}
	return fmt.Sprintf(service, host), true
}
