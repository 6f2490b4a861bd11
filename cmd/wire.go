package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/portstack/beacon/internal/enrich"
	"github.com/portstack/beacon/internal/scrape"
	"github.com/portstack/beacon/internal/store"
	"github.com/portstack/beacon/pkg/anthropic"
	"github.com/portstack/beacon/pkg/gcs"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "beacon.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newFetcher() *scrape.Fetcher {
	return scrape.NewFetcher(scrape.Options{
		Timeout:    time.Duration(cfg.Scrape.FetchTimeoutSecs) * time.Second,
		MaxBytes:   cfg.Scrape.MaxTextBytes,
		RatePerSec: cfg.Scrape.RatePerSec,
	})
}

// newEnricher wires the pipeline from config. The AI client stays nil
// without a key so runs fail up front; the search client stays nil
// without credentials so discovery is silently skipped.
func newEnricher() *enrich.Enricher {
	var ai anthropic.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropic.NewClient(cfg.Anthropic.Key)
	}
	search := gcs.NewClient(cfg.GCS.Key, cfg.GCS.CX,
		gcs.WithTimeout(time.Duration(cfg.GCS.TimeoutSecs)*time.Second))

	return enrich.New(enrich.Config{
		Model:         cfg.Anthropic.Model,
		ModelTimeout:  time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
		SearchTimeout: time.Duration(cfg.GCS.TimeoutSecs) * time.Second,
	}, ai, search, newFetcher())
}
