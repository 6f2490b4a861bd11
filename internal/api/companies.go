package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/internal/store"
)

type companyRequest struct {
	Name        string   `json:"name"`
	Website     string   `json:"website"`
	LinkedInURL string   `json:"linkedin_url"`
	LogoURL     string   `json:"logo_url"`
	HQCountry   string   `json:"hq_country"`
	HQCity      string   `json:"hq_city"`
	Summary     string   `json:"summary"`
	Employees   string   `json:"employees"`
	Categories  []string `json:"categories"`
	Regions     []string `json:"regions"`
	Starred     *bool    `json:"starred"`
}

// toInput validates the payload and normalizes enumerated fields.
// Values outside the fixed enumerations are dropped, not rejected.
func (req companyRequest) toInput() (model.CompanyInput, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.CompanyInput{}, "Company name is required"
	}

	country := strings.ToUpper(strings.TrimSpace(req.HQCountry))
	if country != "" && !model.ValidCountryCode(country) {
		return model.CompanyInput{}, "HQ Country must be a 3-letter code (e.g., USA, GBR, NLD)"
	}

	in := model.CompanyInput{
		Name:        name,
		Website:     strings.TrimSpace(req.Website),
		LinkedInURL: strings.TrimSpace(req.LinkedInURL),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		HQCountry:   country,
		HQCity:      strings.TrimSpace(req.HQCity),
		Summary:     req.Summary,
		Categories:  model.NormalizeCategories(req.Categories),
		Regions:     model.NormalizeRegions(req.Regions),
		Starred:     req.Starred,
	}
	if r, ok := model.NormalizeEmployeeRange(req.Employees); ok {
		in.Employees = r
	}
	return in, ""
}

func parseID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.CompanyFilter{
		Search:   q.Get("search"),
		Region:   model.RegionCode(strings.ToUpper(q.Get("region"))),
		Category: model.CategoryCode(strings.ToUpper(q.Get("category"))),
	}
	if raw := q.Get("hq_country"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
				filter.HQCountries = append(filter.HQCountries, c)
			}
		}
	}
	if raw := q.Get("employees"); raw != "" {
		if rng, ok := model.NormalizeEmployeeRange(raw); ok {
			filter.Employees = rng
		}
	}
	switch q.Get("starred") {
	case "true", "1":
		t := true
		filter.Starred = &t
	case "false", "0":
		f := false
		filter.Starred = &f
	}
	switch sort := model.SortOption(q.Get("sort")); sort {
	case model.SortNameAsc, model.SortNameDesc, model.SortNewest, model.SortOldest:
		filter.Sort = sort
	}

	companies, err := s.store.ListCompanies(r.Context(), filter)
	if err != nil {
		s.serverError(w, "list companies", err)
		return
	}
	if companies == nil {
		companies = []model.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  companies,
		"total": len(companies),
	})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	company, err := s.store.CreateCompany(r.Context(), in)
	if err != nil {
		s.serverError(w, "create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	company, err := s.store.GetCompany(r.Context(), id)
	if err != nil {
		s.companyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	company, err := s.store.UpdateCompany(r.Context(), id, in)
	if err != nil {
		s.companyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		s.companyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) handleStarCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	var body struct {
		Starred *bool `json:"starred"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Starred == nil {
		writeError(w, http.StatusBadRequest, "Request body must include starred: boolean")
		return
	}

	company, err := s.store.SetStarred(r.Context(), id, *body.Starred)
	if err != nil {
		s.companyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	if _, err := s.store.GetCompany(r.Context(), id); err != nil {
		s.companyError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.store.ListEnrichmentRuns(r.Context(), id, limit)
	if err != nil {
		s.serverError(w, "list enrichment runs", err)
		return
	}
	if runs == nil {
		runs = []model.EnrichmentRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) companyError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}
	s.serverError(w, "company operation", err)
}
