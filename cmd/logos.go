package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/portstack/beacon/internal/enrich"
	"github.com/portstack/beacon/internal/model"
)

var logosDryRun bool

var logosCmd = &cobra.Command{
	Use:   "logos",
	Short: "Backfill missing logo URLs from the Clearbit logo service",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		companies, err := st.ListCompanies(cmd.Context(), model.CompanyFilter{})
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 10 * time.Second}
		limiter := rate.NewLimiter(rate.Limit(cfg.Scrape.RatePerSec), 1)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(cfg.Logos.Concurrency)

		var updated atomic.Int64
		for _, company := range companies {
			if company.LogoURL != "" || company.Website == "" {
				continue
			}
			g.Go(func() error {
				logoURL := enrich.DeriveLogoURL(company.Website)
				if logoURL == "" || !logoExists(ctx, client, limiter, logoURL) {
					return nil
				}
				if logosDryRun {
					zap.L().Info("would set logo",
						zap.Int64("id", company.ID), zap.String("logo_url", logoURL))
					return nil
				}
				if _, err := st.UpdateCompany(ctx, company.ID, inputFromCompany(company, logoURL)); err != nil {
					zap.L().Warn("update logo failed", zap.Int64("id", company.ID), zap.Error(err))
					return nil
				}
				updated.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("logo backfill complete", zap.Int64("updated", updated.Load()))
		return nil
	},
}

// logoExists checks that Clearbit actually has a logo for the domain
// before persisting the URL.
func logoExists(ctx context.Context, client *http.Client, limiter *rate.Limiter, logoURL string) bool {
	if err := limiter.Wait(ctx); err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, logoURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode == http.StatusOK
}

// inputFromCompany rebuilds the full-replace payload from a snapshot,
// swapping in the new logo.
func inputFromCompany(c model.Company, logoURL string) model.CompanyInput {
	starred := c.Starred
	return model.CompanyInput{
		Name:        c.Name,
		Website:     c.Website,
		LinkedInURL: c.LinkedInURL,
		LogoURL:     logoURL,
		HQCountry:   c.HQCountry,
		HQCity:      c.HQCity,
		Summary:     c.Summary,
		Employees:   c.Employees,
		Categories:  c.Categories,
		Regions:     c.Regions,
		Starred:     &starred,
	}
}

func init() {
	logosCmd.Flags().BoolVar(&logosDryRun, "dry-run", false, "report without writing")
	rootCmd.AddCommand(logosCmd)
}
