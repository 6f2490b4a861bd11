package model

import "time"

// Company is a tracked maritime-technology company.
type Company struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Website     string         `json:"website,omitempty"`
	LinkedInURL string         `json:"linkedin_url,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	HQCountry   string         `json:"hq_country,omitempty"`
	HQCity      string         `json:"hq_city,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Employees   EmployeeRange  `json:"employees,omitempty"`
	Categories  []CategoryCode `json:"categories"`
	Regions     []RegionCode   `json:"regions"`
	Starred     bool           `json:"starred"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CompanyInput is the payload for creating or updating a company. It is
// also the shape of an enrichment suggestion: every field is proposed,
// none is required except the name.
type CompanyInput struct {
	Name        string         `json:"name"`
	Website     string         `json:"website,omitempty"`
	LinkedInURL string         `json:"linkedin_url,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	HQCountry   string         `json:"hq_country,omitempty"`
	HQCity      string         `json:"hq_city,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Employees   EmployeeRange  `json:"employees,omitempty"`
	Categories  []CategoryCode `json:"categories,omitempty"`
	Regions     []RegionCode   `json:"regions,omitempty"`
	Starred     *bool          `json:"starred,omitempty"`
}

// Note is a free-text note attached to a company.
type Note struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxNoteLength caps note content size.
const MaxNoteLength = 2000

// SortOption orders company listings.
type SortOption string

const (
	SortNameAsc  SortOption = "name-asc"
	SortNameDesc SortOption = "name-desc"
	SortNewest   SortOption = "newest"
	SortOldest   SortOption = "oldest"
)

// CompanyFilter narrows a company listing. Zero values mean "no filter".
type CompanyFilter struct {
	Search      string
	Region      RegionCode
	Category    CategoryCode
	HQCountries []string
	Employees   EmployeeRange
	Starred     *bool
	Sort        SortOption
}

// EnrichmentRun records the outcome of one enrichment run for audit.
// The suggestion is stored as produced; applying it to the company is a
// separate, user-triggered update.
type EnrichmentRun struct {
	ID         string       `json:"id"`
	CompanyID  int64        `json:"company_id"`
	Suggestion CompanyInput `json:"suggestion"`
	CreatedAt  time.Time    `json:"created_at"`
}
