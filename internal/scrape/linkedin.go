package scrape

import "regexp"

var linkedInRe = regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/company/[^"'<\s>]*`)

// FindLinkedInURL returns the first LinkedIn company-page URL embedded in
// raw HTML, or "" when none is present. The match is opportunistic and
// must still be validated before use.
func FindLinkedInURL(html string) string {
	return linkedInRe.FindString(html)
}
