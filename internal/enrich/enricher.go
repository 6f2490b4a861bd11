// Package enrich orchestrates a single company-enrichment run: scrape
// the website, discover the LinkedIn page, run LLM inference, and
// stream progress events until a final suggestion is assembled.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/internal/scrape"
	"github.com/portstack/beacon/pkg/anthropic"
	"github.com/portstack/beacon/pkg/gcs"
)

// Config carries the tunables for one Enricher.
type Config struct {
	Model         string
	ModelTimeout  time.Duration
	SearchTimeout time.Duration
}

// Input describes what to enrich. Existing, when set, supplies fallback
// values for fields the run cannot improve on.
type Input struct {
	Name     string
	Website  string
	Existing *model.Company
}

// Enricher runs the enrichment pipeline. All collaborators are
// injected; a nil search client disables LinkedIn discovery via search,
// a nil AI client makes Stream fail up front.
type Enricher struct {
	model         string
	modelTimeout  time.Duration
	searchTimeout time.Duration
	ai            anthropic.Client
	search        gcs.Client
	fetcher       *scrape.Fetcher
}

func New(cfg Config, ai anthropic.Client, search gcs.Client, fetcher *scrape.Fetcher) *Enricher {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 20 * time.Second
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 15 * time.Second
	}
	return &Enricher{
		model:         cfg.Model,
		modelTimeout:  cfg.ModelTimeout,
		searchTimeout: cfg.SearchTimeout,
		ai:            ai,
		search:        search,
		fetcher:       fetcher,
	}
}

// Stream starts an enrichment run and returns its event channel. The
// channel is closed after exactly one terminal Suggestions event.
// A missing AI client fails synchronously, before any event is emitted.
//
// The run does not watch for consumer disconnects; transports must
// drain the channel to completion even when their client goes away.
func (e *Enricher) Stream(ctx context.Context, in Input) (<-chan Event, error) {
	if e.ai == nil {
		return nil, eris.New("enrich: anthropic API key is not configured")
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		e.run(ctx, in, ch)
	}()
	return ch, nil
}

func (e *Enricher) run(ctx context.Context, in Input, ch chan<- Event) {
	start := time.Now()
	steps := baseSteps()

	website := strings.TrimSpace(in.Website)
	if website == "" && in.Existing != nil {
		website = in.Existing.Website
	}
	website = model.EnsureHTTPURL(website)

	name := strings.TrimSpace(in.Name)
	if name == "" && in.Existing != nil {
		name = in.Existing.Name
	}

	suggestion := model.CompanyInput{Name: name, Website: website}
	if in.Existing != nil {
		suggestion.Summary = in.Existing.Summary
		if r, ok := model.NormalizeEmployeeRange(string(in.Existing.Employees)); ok {
			suggestion.Employees = r
		}
	}

	// fetch: website content plus an opportunistic LinkedIn scan of
	// the raw HTML.
	ch <- startStep(steps, StepFetch, "Fetching website content")
	websiteHTML := e.fetcher.Fetch(ctx, website)
	websiteText := scrape.StripHTML(websiteHTML)
	if u, ok := model.ValidLinkedInURL(scrape.FindLinkedInURL(websiteHTML)); ok {
		suggestion.LinkedInURL = u
		ch <- PartialSuggestion{Data: Partial{LinkedInURL: u}}
	}
	markDoneThrough(steps, StepFetch)
	ch <- StepComplete{StepID: StepFetch}

	// extract: search for the LinkedIn page only when the website
	// didn't reveal one.
	ch <- startStep(steps, StepExtract, "Discovering LinkedIn via search")
	if suggestion.LinkedInURL == "" {
		if u := e.searchLinkedIn(ctx, name); u != "" {
			suggestion.LinkedInURL = u
			ch <- PartialSuggestion{Data: Partial{LinkedInURL: u}}
		}
	}
	markDoneThrough(steps, StepExtract)
	ch <- StepComplete{StepID: StepExtract}

	// infer: the LinkedIn page, when known, is the preferred source
	// for HQ inference.
	ch <- startStep(steps, StepInfer, "Fetching LinkedIn page")
	var linkedinText string
	if suggestion.LinkedInURL != "" {
		linkedinText = e.fetcher.Text(ctx, suggestion.LinkedInURL)
	}
	markDoneThrough(steps, StepInfer)
	ch <- StepComplete{StepID: StepInfer}

	// structure: LLM inference plus fallback derivations.
	ch <- startStep(steps, StepStructure, "Inferring HQ & employees")

	source, sourceKind := linkedinText, "linkedin"
	if source == "" {
		source, sourceKind = websiteText, "website"
	}
	if source != "" {
		if hq := e.inferHQ(ctx, source, sourceKind); hq != nil {
			var patch Partial
			if hq.HQCity != nil && *hq.HQCity != "" {
				suggestion.HQCity = strings.TrimSpace(*hq.HQCity)
				patch.HQCity = suggestion.HQCity
			}
			if hq.HQCountry != nil {
				country := strings.ToUpper(strings.TrimSpace(*hq.HQCountry))
				if model.ValidCountryCode(country) {
					suggestion.HQCountry = country
					patch.HQCountry = country
				}
			}
			if hq.Employees != nil {
				if r, ok := model.NormalizeEmployeeRange(*hq.Employees); ok {
					suggestion.Employees = r
					patch.Employees = r
				}
			}
			if patch.HQCity != "" || patch.HQCountry != "" || patch.Employees != "" {
				ch <- PartialSuggestion{Data: patch}
			}
		}
	}

	// Regions/categories always come from website text, even when the
	// LinkedIn page drove the HQ inference.
	if tax := e.inferTaxonomy(ctx, websiteText); tax != nil {
		var patch Partial
		if regions := model.NormalizeRegions(tax.Regions); regions != nil {
			suggestion.Regions = regions
			patch.Regions = regions
		}
		if categories := model.NormalizeCategories(tax.Categories); categories != nil {
			suggestion.Categories = categories
			patch.Categories = categories
		}
		if len(patch.Regions) > 0 || len(patch.Categories) > 0 {
			ch <- PartialSuggestion{Data: patch}
		}
	}

	if suggestion.LinkedInURL == "" {
		suggestion.LinkedInURL = deriveLinkedInURL(name, website)
	}
	suggestion.LogoURL = DeriveLogoURL(website)

	markDoneThrough(steps, StepStructure)
	ch <- Suggestions{Data: &suggestion, Steps: steps}

	zap.L().Info("enrichment run complete",
		zap.String("name", name),
		zap.String("website", website),
		zap.String("linkedin_url", suggestion.LinkedInURL),
		zap.Duration("elapsed", time.Since(start)),
	)
}
