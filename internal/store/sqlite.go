package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/portstack/beacon/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	website      TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	logo_url     TEXT NOT NULL DEFAULT '',
	hq_country   TEXT NOT NULL DEFAULT '',
	hq_city      TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	employees    TEXT NOT NULL DEFAULT '',
	categories   TEXT NOT NULL DEFAULT '[]',
	regions      TEXT NOT NULL DEFAULT '[]',
	starred      INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id         TEXT PRIMARY KEY,
	company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	suggestion TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_starred ON companies(starred);
CREATE INDEX IF NOT EXISTS idx_notes_company_id ON notes(company_id);
CREATE INDEX IF NOT EXISTS idx_enrichment_runs_company_id ON enrichment_runs(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteCompanyColumns = `id, name, website, linkedin_url, logo_url, hq_country, hq_city,
	summary, employees, categories, regions, starred, created_at, updated_at`

func (s *SQLiteStore) CreateCompany(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	now := time.Now().UTC()
	categories, regions, err := marshalTaxonomy(in)
	if err != nil {
		return nil, err
	}
	starred := in.Starred != nil && *in.Starred

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (name, website, linkedin_url, logo_url, hq_country, hq_city,
			summary, employees, categories, regions, starred, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Website, in.LinkedInURL, in.LogoURL, in.HQCountry, in.HQCity,
		in.Summary, string(in.Employees), categories, regions, starred, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert company")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	return s.GetCompany(ctx, id)
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteCompanyColumns+` FROM companies WHERE id = ?`, id)
	return scanCompany(row)
}

func (s *SQLiteStore) UpdateCompany(ctx context.Context, id int64, in model.CompanyInput) (*model.Company, error) {
	existing, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	categories, regions, err := marshalTaxonomy(in)
	if err != nil {
		return nil, err
	}
	starred := existing.Starred
	if in.Starred != nil {
		starred = *in.Starred
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE companies SET name = ?, website = ?, linkedin_url = ?, logo_url = ?,
			hq_country = ?, hq_city = ?, summary = ?, employees = ?,
			categories = ?, regions = ?, starred = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Website, in.LinkedInURL, in.LogoURL, in.HQCountry, in.HQCity,
		in.Summary, string(in.Employees), categories, regions, starred,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update company %d", id)
	}
	return s.GetCompany(ctx, id)
}

func (s *SQLiteStore) DeleteCompany(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete company %d", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SetStarred(ctx context.Context, id int64, starred bool) (*model.Company, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET starred = ?, updated_at = ? WHERE id = ?`,
		starred, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: set starred %d", id)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return s.GetCompany(ctx, id)
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, filter model.CompanyFilter) ([]model.Company, error) {
	query := `SELECT ` + sqliteCompanyColumns + ` FROM companies WHERE 1=1`
	var args []any

	if filter.Search != "" {
		query += ` AND (name LIKE ? OR summary LIKE ? OR hq_city LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Region != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(regions) WHERE json_each.value = ?)`
		args = append(args, string(filter.Region))
	}
	if filter.Category != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(categories) WHERE json_each.value = ?)`
		args = append(args, string(filter.Category))
	}
	if len(filter.HQCountries) > 0 {
		query += ` AND hq_country IN (?` // first placeholder
		args = append(args, filter.HQCountries[0])
		for _, c := range filter.HQCountries[1:] {
			query += `, ?`
			args = append(args, c)
		}
		query += `)`
	}
	if filter.Employees != "" {
		query += ` AND employees = ?`
		args = append(args, string(filter.Employees))
	}
	if filter.Starred != nil {
		query += ` AND starred = ?`
		args = append(args, *filter.Starred)
	}

	switch filter.Sort {
	case model.SortNameDesc:
		query += ` ORDER BY name COLLATE NOCASE DESC`
	case model.SortNewest:
		query += ` ORDER BY created_at DESC, id DESC`
	case model.SortOldest:
		query += ` ORDER BY created_at ASC, id ASC`
	default:
		query += ` ORDER BY name COLLATE NOCASE ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) CreateNote(ctx context.Context, companyID int64, content string) (*model.Note, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (company_id, content, created_at) VALUES (?, ?, ?)`,
		companyID, content, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert note for company %d", companyID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	return &model.Note{ID: id, CompanyID: companyID, Content: content, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListNotes(ctx context.Context, companyID int64) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, content, created_at FROM notes
		 WHERE company_id = ? ORDER BY created_at DESC, id DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list notes for company %d", companyID)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.Content, &n.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan note")
		}
		notes = append(notes, n)
	}
	return notes, eris.Wrap(rows.Err(), "sqlite: list notes iterate")
}

func (s *SQLiteStore) UpdateNote(ctx context.Context, companyID, noteID int64, content string) (*model.Note, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET content = ? WHERE id = ? AND company_id = ?`,
		content, noteID, companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update note %d", noteID)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}

	var n model.Note
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, content, created_at FROM notes WHERE id = ?`, noteID)
	if err := row.Scan(&n.ID, &n.CompanyID, &n.Content, &n.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "sqlite: scan note")
	}
	return &n, nil
}

func (s *SQLiteStore) DeleteNote(ctx context.Context, companyID, noteID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND company_id = ?`, noteID, companyID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete note %d", noteID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) CreateEnrichmentRun(ctx context.Context, companyID int64, suggestion model.CompanyInput) (*model.EnrichmentRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	suggestionJSON, err := json.Marshal(suggestion)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal suggestion")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrichment_runs (id, company_id, suggestion, created_at) VALUES (?, ?, ?, ?)`,
		id, companyID, string(suggestionJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert enrichment run for company %d", companyID)
	}
	return &model.EnrichmentRun{ID: id, CompanyID: companyID, Suggestion: suggestion, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListEnrichmentRuns(ctx context.Context, companyID int64, limit int) ([]model.EnrichmentRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, suggestion, created_at FROM enrichment_runs
		 WHERE company_id = ? ORDER BY created_at DESC LIMIT ?`,
		companyID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list enrichment runs for company %d", companyID)
	}
	defer rows.Close()

	var runs []model.EnrichmentRun
	for rows.Next() {
		var r model.EnrichmentRun
		var suggestionJSON string
		if err := rows.Scan(&r.ID, &r.CompanyID, &suggestionJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan enrichment run")
		}
		if err := json.Unmarshal([]byte(suggestionJSON), &r.Suggestion); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal suggestion")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list enrichment runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalTaxonomy(in model.CompanyInput) (string, string, error) {
	categories := in.Categories
	if categories == nil {
		categories = []model.CategoryCode{}
	}
	regions := in.Regions
	if regions == nil {
		regions = []model.RegionCode{}
	}
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal categories")
	}
	regionsJSON, err := json.Marshal(regions)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal regions")
	}
	return string(categoriesJSON), string(regionsJSON), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCompany(row scannable) (*model.Company, error) {
	var c model.Company
	var employees string
	var categoriesJSON, regionsJSON string

	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.LinkedInURL, &c.LogoURL,
		&c.HQCountry, &c.HQCity, &c.Summary, &employees,
		&categoriesJSON, &regionsJSON, &c.Starred, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan company")
	}

	c.Employees = model.EmployeeRange(employees)
	if err := json.Unmarshal([]byte(categoriesJSON), &c.Categories); err != nil {
		return nil, eris.Wrap(err, "unmarshal categories")
	}
	if err := json.Unmarshal([]byte(regionsJSON), &c.Regions); err != nil {
		return nil, eris.Wrap(err, "unmarshal regions")
	}
	if len(c.Categories) == 0 {
		c.Categories = []model.CategoryCode{}
	}
	if len(c.Regions) == 0 {
		c.Regions = []model.RegionCode{}
	}
	return &c, nil
}
