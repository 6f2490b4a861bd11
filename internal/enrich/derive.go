package enrich

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/model"
)

// strictLinkedInRe filters search-result links down to canonical company
// pages before the URL validator sees them.
var strictLinkedInRe = regexp.MustCompile(`(?i)^https?://(?:www\.)?linkedin\.com/company/[A-Za-z0-9\-._~%/]+$`)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// searchLinkedIn queries the configured search engine for the company's
// LinkedIn page and returns the first validated match, or "" when the
// client is disabled, the request fails, or nothing matches.
func (e *Enricher) searchLinkedIn(ctx context.Context, name string) string {
	if e.search == nil {
		return ""
	}
	sctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	resp, err := e.search.Search(sctx, strings.TrimSpace(name)+" linkedin")
	if err != nil {
		zap.L().Debug("linkedin search failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	for _, item := range resp.Items {
		if !strictLinkedInRe.MatchString(item.Link) {
			continue
		}
		if u, ok := model.ValidLinkedInURL(item.Link); ok {
			return u
		}
	}
	return ""
}

// deriveLinkedInURL guesses a LinkedIn company slug when none was
// discovered: the website domain with dots replaced by dashes, falling
// back to a slug of the company name.
func deriveLinkedInURL(name, website string) string {
	if website != "" {
		if u, err := url.Parse(website); err == nil && u.Hostname() != "" {
			domain := strings.TrimPrefix(u.Hostname(), "www.")
			slug := strings.ReplaceAll(domain, ".", "-")
			return "https://www.linkedin.com/company/" + slug
		}
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return ""
	}
	return "https://www.linkedin.com/company/" + slug
}

// DeriveLogoURL points at Clearbit's logo service for the website's
// domain. The logo backfill command shares it.
func DeriveLogoURL(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "https://logo.clearbit.com/" + u.Hostname()
}
