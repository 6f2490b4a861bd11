package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/portstack/beacon/internal/model"
)

type seedFile struct {
	Companies []seedCompany `yaml:"companies"`
}

type seedCompany struct {
	Name        string   `yaml:"name"`
	Website     string   `yaml:"website"`
	LinkedInURL string   `yaml:"linkedin_url"`
	LogoURL     string   `yaml:"logo_url"`
	HQCountry   string   `yaml:"hq_country"`
	HQCity      string   `yaml:"hq_city"`
	Summary     string   `yaml:"summary"`
	Employees   string   `yaml:"employees"`
	Regions     []string `yaml:"regions"`
	Categories  []string `yaml:"categories"`
	Starred     bool     `yaml:"starred"`
	Notes       []string `yaml:"notes"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load companies from a YAML file into the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "seed: read file")
		}
		var file seedFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return eris.Wrap(err, "seed: parse yaml")
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		for _, sc := range file.Companies {
			name := strings.TrimSpace(sc.Name)
			if name == "" {
				return eris.New("seed: company without a name")
			}
			country := strings.ToUpper(strings.TrimSpace(sc.HQCountry))
			if country != "" && !model.ValidCountryCode(country) {
				return eris.Errorf("seed: %s: invalid hq_country %q", name, sc.HQCountry)
			}

			starred := sc.Starred
			in := model.CompanyInput{
				Name:        name,
				Website:     sc.Website,
				LinkedInURL: sc.LinkedInURL,
				LogoURL:     sc.LogoURL,
				HQCountry:   country,
				HQCity:      sc.HQCity,
				Summary:     sc.Summary,
				Categories:  model.NormalizeCategories(sc.Categories),
				Regions:     model.NormalizeRegions(sc.Regions),
				Starred:     &starred,
			}
			if r, ok := model.NormalizeEmployeeRange(sc.Employees); ok {
				in.Employees = r
			}

			company, err := st.CreateCompany(cmd.Context(), in)
			if err != nil {
				return eris.Wrapf(err, "seed: create %s", name)
			}
			for _, note := range sc.Notes {
				if _, err := st.CreateNote(cmd.Context(), company.ID, note); err != nil {
					return eris.Wrapf(err, "seed: note for %s", name)
				}
			}
			zap.L().Info("seeded company", zap.Int64("id", company.ID), zap.String("name", name))
		}

		zap.L().Info("seed complete", zap.Int("companies", len(file.Companies)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
