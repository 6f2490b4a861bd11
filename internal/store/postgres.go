package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/portstack/beacon/internal/db"
	"github.com/portstack/beacon/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_company":    `SELECT ` + pgCompanyColumns + ` FROM companies WHERE id = $1`,
	"delete_company": `DELETE FROM companies WHERE id = $1`,
	"set_starred":    `UPDATE companies SET starred = $1, updated_at = $2 WHERE id = $3`,
	"list_notes":     `SELECT id, company_id, content, created_at FROM notes WHERE company_id = $1 ORDER BY created_at DESC, id DESC`,
	"insert_note":    `INSERT INTO notes (company_id, content, created_at) VALUES ($1, $2, $3) RETURNING id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	website      TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	logo_url     TEXT NOT NULL DEFAULT '',
	hq_country   TEXT NOT NULL DEFAULT '',
	hq_city      TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	employees    TEXT NOT NULL DEFAULT '',
	categories   JSONB NOT NULL DEFAULT '[]',
	regions      JSONB NOT NULL DEFAULT '[]',
	starred      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notes (
	id         BIGSERIAL PRIMARY KEY,
	company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id         TEXT PRIMARY KEY,
	company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	suggestion JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(lower(name));
CREATE INDEX IF NOT EXISTS idx_companies_starred ON companies(starred);
CREATE INDEX IF NOT EXISTS idx_companies_regions ON companies USING gin(regions);
CREATE INDEX IF NOT EXISTS idx_companies_categories ON companies USING gin(categories);
CREATE INDEX IF NOT EXISTS idx_notes_company_id ON notes(company_id);
CREATE INDEX IF NOT EXISTS idx_enrichment_runs_company_id ON enrichment_runs(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgCompanyColumns = `id, name, website, linkedin_url, logo_url, hq_country, hq_city,
	summary, employees, categories, regions, starred, created_at, updated_at`

func (s *PostgresStore) CreateCompany(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	categories, regions, err := marshalTaxonomy(in)
	if err != nil {
		return nil, err
	}
	starred := in.Starred != nil && *in.Starred
	now := time.Now().UTC()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO companies (name, website, linkedin_url, logo_url, hq_country, hq_city,
			summary, employees, categories, regions, starred, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+pgCompanyColumns,
		in.Name, in.Website, in.LinkedInURL, in.LogoURL, in.HQCountry, in.HQCity,
		in.Summary, string(in.Employees), categories, regions, starred, now, now,
	)
	c, err := scanPgCompany(row)
	return c, eris.Wrap(err, "postgres: insert company")
}

func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgCompanyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanPgCompany(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get company %d", id)
	}
	return c, nil
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, id int64, in model.CompanyInput) (*model.Company, error) {
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

	row := s.pool.QueryRow(ctx,
		`UPDATE companies SET name = $1, website = $2, linkedin_url = $3, logo_url = $4,
			hq_country = $5, hq_city = $6, summary = $7, employees = $8,
			categories = $9, regions = $10, starred = $11, updated_at = $12
		 WHERE id = $13
		 RETURNING `+pgCompanyColumns,
		in.Name, in.Website, in.LinkedInURL, in.LogoURL, in.HQCountry, in.HQCity,
		in.Summary, string(in.Employees), categories, regions, starred,
		time.Now().UTC(), id,
	)
	c, err := scanPgCompany(row)
	return c, eris.Wrapf(err, "postgres: update company %d", id)
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete company %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetStarred(ctx context.Context, id int64, starred bool) (*model.Company, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET starred = $1, updated_at = $2 WHERE id = $3`,
		starred, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: set starred %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetCompany(ctx, id)
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter model.CompanyFilter) ([]model.Company, error) {
	query := `SELECT ` + pgCompanyColumns + ` FROM companies WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(` AND (name ILIKE %s OR summary ILIKE %s OR hq_city ILIKE %s)`, p, p, p)
	}
	if filter.Region != "" {
		regionJSON, _ := json.Marshal([]model.RegionCode{filter.Region})
		query += ` AND regions @> ` + arg(string(regionJSON)) + `::jsonb`
	}
	if filter.Category != "" {
		categoryJSON, _ := json.Marshal([]model.CategoryCode{filter.Category})
		query += ` AND categories @> ` + arg(string(categoryJSON)) + `::jsonb`
	}
	if len(filter.HQCountries) > 0 {
		query += ` AND hq_country = ANY(` + arg(filter.HQCountries) + `)`
	}
	if filter.Employees != "" {
		query += ` AND employees = ` + arg(string(filter.Employees))
	}
	if filter.Starred != nil {
		query += ` AND starred = ` + arg(*filter.Starred)
	}

	switch filter.Sort {
	case model.SortNameDesc:
		query += ` ORDER BY lower(name) DESC`
	case model.SortNewest:
		query += ` ORDER BY created_at DESC, id DESC`
	case model.SortOldest:
		query += ` ORDER BY created_at ASC, id ASC`
	default:
		query += ` ORDER BY lower(name) ASC`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanPgCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) CreateNote(ctx context.Context, companyID int64, content string) (*model.Note, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notes (company_id, content, created_at) VALUES ($1, $2, $3) RETURNING id`,
		companyID, content, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert note for company %d", companyID)
	}
	return &model.Note{ID: id, CompanyID: companyID, Content: content, CreatedAt: now}, nil
}

func (s *PostgresStore) ListNotes(ctx context.Context, companyID int64) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, content, created_at FROM notes
		 WHERE company_id = $1 ORDER BY created_at DESC, id DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list notes for company %d", companyID)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.Content, &n.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan note")
		}
		notes = append(notes, n)
	}
	return notes, eris.Wrap(rows.Err(), "postgres: list notes iterate")
}

func (s *PostgresStore) UpdateNote(ctx context.Context, companyID, noteID int64, content string) (*model.Note, error) {
	var n model.Note
	err := s.pool.QueryRow(ctx,
		`UPDATE notes SET content = $1 WHERE id = $2 AND company_id = $3
		 RETURNING id, company_id, content, created_at`,
		content, noteID, companyID,
	).Scan(&n.ID, &n.CompanyID, &n.Content, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update note %d", noteID)
	}
	return &n, nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, companyID, noteID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND company_id = $2`, noteID, companyID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete note %d", noteID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateEnrichmentRun(ctx context.Context, companyID int64, suggestion model.CompanyInput) (*model.EnrichmentRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	suggestionJSON, err := json.Marshal(suggestion)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal suggestion")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO enrichment_runs (id, company_id, suggestion, created_at) VALUES ($1, $2, $3, $4)`,
		id, companyID, string(suggestionJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert enrichment run for company %d", companyID)
	}
	return &model.EnrichmentRun{ID: id, CompanyID: companyID, Suggestion: suggestion, CreatedAt: now}, nil
}

func (s *PostgresStore) ListEnrichmentRuns(ctx context.Context, companyID int64, limit int) ([]model.EnrichmentRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, suggestion, created_at FROM enrichment_runs
		 WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list enrichment runs for company %d", companyID)
	}
	defer rows.Close()

	var runs []model.EnrichmentRun
	for rows.Next() {
		var r model.EnrichmentRun
		var suggestionJSON []byte
		if err := rows.Scan(&r.ID, &r.CompanyID, &suggestionJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan enrichment run")
		}
		if err := json.Unmarshal(suggestionJSON, &r.Suggestion); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal suggestion")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list enrichment runs iterate")
}

func scanPgCompany(row scannable) (*model.Company, error) {
	var c model.Company
	var employees string
	var categoriesJSON, regionsJSON []byte

	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.LinkedInURL, &c.LogoURL,
		&c.HQCountry, &c.HQCity, &c.Summary, &employees,
		&categoriesJSON, &regionsJSON, &c.Starred, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan company")
	}

	c.Employees = model.EmployeeRange(employees)
	if err := json.Unmarshal(categoriesJSON, &c.Categories); err != nil {
		return nil, eris.Wrap(err, "unmarshal categories")
	}
	if err := json.Unmarshal(regionsJSON, &c.Regions); err != nil {
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
