package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "Beacon-Agent/1.0"

// Fetcher retrieves web pages with a hard timeout and byte cap and turns
// them into plaintext. Every failure degrades to an empty string: missing
// signal is never an error here.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int
}

// Options configures a Fetcher.
type Options struct {
	Timeout    time.Duration
	MaxBytes   int
	RatePerSec float64
}

// NewFetcher creates a Fetcher with sensible defaults for unset options.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 120_000
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 4
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		},
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		maxBytes: opts.MaxBytes,
	}
}

// MaxBytes returns the configured byte cap.
func (f *Fetcher) MaxBytes() int { return f.maxBytes }

// Fetch GETs a URL and returns up to maxBytes of the raw body. An empty
// URL, any transport error, a non-2xx status, or a timeout all return "".
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) string {
	if targetURL == "" {
		return ""
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("scrape: fetch failed", zap.String("url", targetURL), zap.Error(err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("scrape: non-2xx status",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return ""
	}

	// Stop reading at the cap even mid-stream.
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.maxBytes)))
	if err != nil && len(body) == 0 {
		return ""
	}
	return string(body)
}

// Text fetches a URL and returns a plaintext approximation of its visible
// content, truncated to the byte cap.
func (f *Fetcher) Text(ctx context.Context, targetURL string) string {
	text := StripHTML(f.Fetch(ctx, targetURL))
	if len(text) > f.maxBytes {
		text = text[:f.maxBytes]
	}
	return text
}

var (
	blockRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	}
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripHTML removes script and style blocks, strips remaining tags,
// decodes common entities, and collapses whitespace.
func StripHTML(html string) string {
	for _, re := range blockRes {
		html = re.ReplaceAllString(html, "")
	}
	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)
	html = spaceRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(html)
}
