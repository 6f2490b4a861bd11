// Package store persists companies, notes, and enrichment runs behind a
// driver-agnostic interface with SQLite and PostgreSQL implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/portstack/beacon/internal/model"
)

// ErrNotFound is returned when the requested row does not exist.
// Callers map it to a 404.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence operations of the directory.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, in model.CompanyInput) (*model.Company, error)
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	// UpdateCompany replaces every editable field from the input,
	// including the full region and category sets. created_at is kept.
	UpdateCompany(ctx context.Context, id int64, in model.CompanyInput) (*model.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	SetStarred(ctx context.Context, id int64, starred bool) (*model.Company, error)
	ListCompanies(ctx context.Context, filter model.CompanyFilter) ([]model.Company, error)

	// Notes
	CreateNote(ctx context.Context, companyID int64, content string) (*model.Note, error)
	ListNotes(ctx context.Context, companyID int64) ([]model.Note, error)
	UpdateNote(ctx context.Context, companyID, noteID int64, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, companyID, noteID int64) error

	// Enrichment audit trail
	CreateEnrichmentRun(ctx context.Context, companyID int64, suggestion model.CompanyInput) (*model.EnrichmentRun, error)
	ListEnrichmentRuns(ctx context.Context, companyID int64, limit int) ([]model.EnrichmentRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
