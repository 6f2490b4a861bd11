package model

import (
	"net/url"
	"regexp"
	"strings"
)

var countryCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCountryCode reports whether s is a 3-letter uppercase country code.
func ValidCountryCode(s string) bool {
	return countryCodeRe.MatchString(s)
}

// EnsureHTTPURL normalizes a URL-ish string to an absolute http(s) URL,
// prefixing https:// when no scheme is present. Returns "" for input it
// cannot parse.
func EnsureHTTPURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.String()
}

// ValidLinkedInURL accepts only LinkedIn company-page URLs: the host must
// be linkedin.com (optionally www-prefixed) and the path must start with
// /company/. Anything else returns ok=false; the value is dropped, not
// propagated.
func ValidLinkedInURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "linkedin.com" && host != "www.linkedin.com" {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(parsed.Path), "/company/") {
		return "", false
	}
	return parsed.String(), true
}
