package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/internal/scrape"
	"github.com/portstack/beacon/pkg/anthropic"
	"github.com/portstack/beacon/pkg/gcs"
)

type fakeAI struct {
	fn func(req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

func (f fakeAI) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return f.fn(req)
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: s}}}
}

// stubModel answers the HQ and taxonomy prompts with canned JSON.
func stubModel(hq, taxonomy string) fakeAI {
	return fakeAI{fn: func(req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
		if len(req.System) == 0 {
			return textResponse("{}"), nil
		}
		if strings.Contains(req.System[0].Text, "hq_city") {
			return textResponse(hq), nil
		}
		return textResponse(taxonomy), nil
	}}
}

type fakeSearch struct {
	resp    *gcs.SearchResponse
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string) (*gcs.SearchResponse, error) {
	f.queries = append(f.queries, query)
	return f.resp, f.err
}

func testEnricher(ai anthropic.Client, search gcs.Client) *Enricher {
	fetcher := scrape.NewFetcher(scrape.Options{Timeout: time.Second, RatePerSec: 1000})
	return New(Config{Model: "claude-haiku-4-5-20251001"}, ai, search, fetcher)
}

func collect(t *testing.T, e *Enricher, in Input) []Event {
	t.Helper()
	ch, err := e.Stream(context.Background(), in)
	require.NoError(t, err)

	var events []Event
	deadline := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatal("run did not finish")
		}
	}
}

func terminal(t *testing.T, events []Event) Suggestions {
	t.Helper()
	require.NotEmpty(t, events)
	last, ok := events[len(events)-1].(Suggestions)
	require.True(t, ok, "last event must be the terminal suggestions event")
	return last
}

func TestStreamMissingAIKey(t *testing.T) {
	t.Parallel()

	e := testEnricher(nil, nil)
	ch, err := e.Stream(context.Background(), Input{Name: "Acme Marine"})
	assert.Error(t, err)
	assert.Nil(t, ch)
}

func TestStreamWebsiteRevealsLinkedIn(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="https://www.linkedin.com/company/acme-marine">Follow us</a>
			<p>Acme Marine builds vessel traffic systems for European ports.</p>
		</body></html>`))
	}))
	defer srv.Close()

	ai := stubModel(
		`{"hq_city":"Oslo","hq_country":"nor","employees":"50-200"}`,
		`{"regions":["eu","xx"],"categories":["vts"]}`,
	)
	search := &fakeSearch{}
	e := testEnricher(ai, search)

	events := collect(t, e, Input{Name: "Acme Marine", Website: srv.URL})

	// LinkedIn came from the page itself, so search is never consulted.
	assert.Empty(t, search.queries)

	var partials []Partial
	var terminals int
	for _, ev := range events {
		switch v := ev.(type) {
		case PartialSuggestion:
			partials = append(partials, v.Data)
		case Suggestions:
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
	require.Len(t, partials, 3)
	assert.Equal(t, "https://www.linkedin.com/company/acme-marine", partials[0].LinkedInURL)
	assert.Equal(t, "Oslo", partials[1].HQCity)
	assert.Equal(t, "NOR", partials[1].HQCountry)
	assert.Equal(t, model.EmployeeRange("51-200"), partials[1].Employees)
	assert.Equal(t, []model.RegionCode{model.RegionEU}, partials[2].Regions)
	assert.Equal(t, []model.CategoryCode{model.CategoryVTS}, partials[2].Categories)

	last := terminal(t, events)
	require.NotNil(t, last.Data)
	assert.Equal(t, "Acme Marine", last.Data.Name)
	assert.Equal(t, "https://www.linkedin.com/company/acme-marine", last.Data.LinkedInURL)
	assert.Equal(t, "NOR", last.Data.HQCountry)
	assert.True(t, strings.HasPrefix(last.Data.LogoURL, "https://logo.clearbit.com/"))

	require.Len(t, last.Steps, 4)
	for _, step := range last.Steps {
		assert.Equal(t, StepDone, step.Status, "step %s", step.ID)
	}
}

func TestStreamEventOrdering(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Plain page, no links.</body></html>`))
	}))
	defer srv.Close()

	e := testEnricher(stubModel(`{}`, `{}`), nil)
	events := collect(t, e, Input{Name: "Acme Marine", Website: srv.URL})

	started := map[string]bool{}
	completed := map[string]bool{}
	sawTerminal := false
	for _, ev := range events {
		switch v := ev.(type) {
		case StepStart:
			assert.False(t, sawTerminal, "no events after terminal")
			assert.False(t, started[v.StepID], "step %s started twice", v.StepID)
			started[v.StepID] = true
		case StepComplete:
			assert.True(t, started[v.StepID], "step %s completed before starting", v.StepID)
			assert.False(t, completed[v.StepID], "step %s completed twice", v.StepID)
			completed[v.StepID] = true
		case Suggestions:
			sawTerminal = true
		}
	}
	assert.True(t, sawTerminal)
	for _, id := range []string{StepFetch, StepExtract, StepInfer, StepStructure} {
		assert.True(t, completed[id], "step %s never completed", id)
	}
}

func TestStreamDiscoversLinkedInViaSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Harbor systems since 1987.</body></html>`))
	}))
	defer srv.Close()

	search := &fakeSearch{resp: &gcs.SearchResponse{Items: []gcs.Item{
		{Link: "https://fake-linkedin.com/company/harbortech"},
		{Link: "https://www.linkedin.com/in/somebody"},
		{Link: "https://www.linkedin.com/company/harbortech"},
	}}}
	e := testEnricher(stubModel(`{}`, `{}`), search)

	events := collect(t, e, Input{Name: "HarborTech", Website: srv.URL})

	require.Equal(t, []string{"HarborTech linkedin"}, search.queries)
	last := terminal(t, events)
	assert.Equal(t, "https://www.linkedin.com/company/harbortech", last.Data.LinkedInURL)

	// The discovery partial arrives between extract start and complete.
	var inExtract bool
	var partialDuringExtract bool
	for _, ev := range events {
		switch v := ev.(type) {
		case StepStart:
			inExtract = v.StepID == StepExtract
		case StepComplete:
			inExtract = false
		case PartialSuggestion:
			if v.Data.LinkedInURL != "" && inExtract {
				partialDuringExtract = true
			}
		}
	}
	assert.True(t, partialDuringExtract)
}

func TestStreamFallbackDerivations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Nothing useful here.</body></html>`))
	}))
	defer srv.Close()

	failing := fakeAI{fn: func(anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
		return textResponse("I cannot answer that."), nil
	}}
	e := testEnricher(failing, nil)

	existing := &model.Company{Name: "Port Insight", Employees: "11-50", Summary: "Legacy PCS vendor."}
	events := collect(t, e, Input{Name: "Port Insight", Website: srv.URL, Existing: existing})

	last := terminal(t, events)
	host := strings.TrimPrefix(srv.URL, "http://")
	hostname := strings.Split(host, ":")[0]
	slug := strings.ReplaceAll(hostname, ".", "-")
	assert.Equal(t, "https://www.linkedin.com/company/"+slug, last.Data.LinkedInURL)
	assert.Equal(t, "https://logo.clearbit.com/"+hostname, last.Data.LogoURL)

	// Existing snapshot seeds the fields inference could not improve.
	assert.Equal(t, model.EmployeeRange("11-50"), last.Data.Employees)
	assert.Equal(t, "Legacy PCS vendor.", last.Data.Summary)
}

func TestStreamDeterministic(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="https://www.linkedin.com/company/acme-marine">LinkedIn</a>
			Terminal operating systems.
		</body></html>`))
	}))
	defer srv.Close()

	ai := stubModel(
		`{"hq_city":"Rotterdam","hq_country":"NLD","employees":"201-500"}`,
		`{"regions":["EU"],"categories":["TOS"]}`,
	)
	e := testEnricher(ai, nil)
	in := Input{Name: "Acme Marine", Website: srv.URL}

	first := terminal(t, collect(t, e, in))
	second := terminal(t, collect(t, e, in))
	assert.Equal(t, first.Data, second.Data)
}

func TestStreamUnreachableWebsite(t *testing.T) {
	t.Parallel()

	// Grab an address that refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	e := testEnricher(stubModel(`{}`, `{}`), nil)
	events := collect(t, e, Input{Name: "Acme Marine", Website: url})

	var started, completed int
	for _, ev := range events {
		switch ev.(type) {
		case StepStart:
			started++
		case StepComplete:
			completed++
		}
	}
	assert.Equal(t, 4, started)
	assert.Equal(t, 4, completed)

	// A dead site still yields a complete run with derived fallbacks.
	last := terminal(t, events)
	hostname := strings.Split(strings.TrimPrefix(url, "http://"), ":")[0]
	slug := strings.ReplaceAll(hostname, ".", "-")
	assert.Equal(t, "https://www.linkedin.com/company/"+slug, last.Data.LinkedInURL)
	assert.Empty(t, last.Data.HQCountry)
	assert.Empty(t, last.Data.Regions)
	for _, step := range last.Steps {
		assert.Equal(t, StepDone, step.Status, "step %s", step.ID)
	}
}

func TestStreamNameFallbackSlug(t *testing.T) {
	t.Parallel()

	// No website at all: LinkedIn is derived from the name, no logo.
	e := testEnricher(stubModel(`{}`, `{}`), nil)
	events := collect(t, e, Input{Name: "Blue Water Analytics B.V."})

	last := terminal(t, events)
	assert.Equal(t, "https://www.linkedin.com/company/blue-water-analytics-b-v", last.Data.LinkedInURL)
	assert.Empty(t, last.Data.LogoURL)
}
