package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/enrich"
	"github.com/portstack/beacon/internal/model"
)

var (
	enrichID      int64
	enrichName    string
	enrichWebsite string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one enrichment and print its events as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if enrichID == 0 && enrichName == "" {
			return eris.New("enrich: either --id or --name is required")
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		in := enrich.Input{Name: enrichName, Website: enrichWebsite}
		if enrichID != 0 {
			company, err := st.GetCompany(cmd.Context(), enrichID)
			if err != nil {
				return err
			}
			in.Existing = company
			if in.Name == "" {
				in.Name = company.Name
			}
		}

		events, err := newEnricher().Stream(cmd.Context(), in)
		if err != nil {
			return err
		}

		var suggestion *model.CompanyInput
		for ev := range events {
			frame, err := enrich.MarshalEvent(ev)
			if err != nil {
				return err
			}
			fmt.Println(string(frame))
			if terminal, ok := ev.(enrich.Suggestions); ok {
				suggestion = terminal.Data
			}
		}

		if enrichID != 0 && suggestion != nil {
			run, err := st.CreateEnrichmentRun(cmd.Context(), enrichID, *suggestion)
			if err != nil {
				return err
			}
			zap.L().Info("enrichment run recorded", zap.String("run_id", run.ID))
		}
		return nil
	},
}

func init() {
	enrichCmd.Flags().Int64Var(&enrichID, "id", 0, "company ID to enrich")
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "company name (overrides the stored name)")
	enrichCmd.Flags().StringVar(&enrichWebsite, "website", "", "website override")
	rootCmd.AddCommand(enrichCmd)
}
