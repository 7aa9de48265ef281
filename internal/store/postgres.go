package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/crmimport/internal/config"
	"github.com/JonMunkholm/crmimport/internal/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DBTX is the subset of pgx used by the store. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var (
	leadColumns = []string{
		"user_id", "name", "email", "phone", "address", "notes",
		"lead_source", "status", "priority", "projected_value",
	}
	customerColumns = []string{
		"user_id", "first_name", "last_name", "company_name", "email", "phone",
		"property_street1", "property_city", "property_state", "property_zip",
		"sale_value", "notes", "source", "service_type", "service_frequency", "status",
	}
)

// Postgres stores records in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool with the configured limits, verifies the
// connection and applies migrations.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgres(pool)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies the embedded migrations in file name order.
// Every statement is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := p.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertBatch copies every record inside one transaction.
func (p *Postgres) InsertBatch(ctx context.Context, schema core.SchemaID, records []core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	table, columns, rows, err := copyRows(schema, records)
	if err != nil {
		return 0, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	n, err := insertRows(ctx, tx, table, columns, rows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

func insertRows(ctx context.Context, db DBTX, table string, columns []string, rows [][]any) (int64, error) {
	n, err := db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

func copyRows(schema core.SchemaID, records []core.Record) (string, []string, [][]any, error) {
	rows := make([][]any, len(records))

	switch schema {
	case core.SchemaLeads:
		for i, r := range records {
			lead, ok := r.(*core.LeadRecord)
			if !ok {
				return "", nil, nil, recordTypeError(schema, i, r)
			}
			rows[i] = []any{
				pgUUID(lead.UserID), lead.Name, lead.Email, lead.Phone, lead.Address, lead.Notes,
				lead.LeadSource, lead.Status, lead.Priority, lead.ProjectedValue,
			}
		}
		return "leads", leadColumns, rows, nil

	case core.SchemaCustomers:
		for i, r := range records {
			c, ok := r.(*core.CustomerRecord)
			if !ok {
				return "", nil, nil, recordTypeError(schema, i, r)
			}
			rows[i] = []any{
				pgUUID(c.UserID), c.FirstName, c.LastName, c.CompanyName, c.Email, c.Phone,
				c.PropertyStreet1, c.PropertyCity, c.PropertyState, c.PropertyZip,
				saleValue(c.SaleValue), c.Notes, c.Source, c.ServiceType, c.ServiceFrequency, c.Status,
			}
		}
		return "customers", customerColumns, rows, nil
	}

	return "", nil, nil, unknownSchema(schema)
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func saleValue(t pgtype.Text) pgtype.Numeric {
	if !t.Valid {
		return pgtype.Numeric{}
	}
	return core.ToPgNumeric(t.String)
}

const selectProfile = `
SELECT lead_stages, custom_lead_stages,
       lead_sources, custom_lead_sources,
       service_types, custom_service_types,
       service_frequencies, custom_service_frequencies
FROM user_profiles
WHERE user_id = $1`

// DefaultOptions reads the owner's profile. An owner without a profile has
// empty lists.
func (p *Postgres) DefaultOptions(ctx context.Context, owner uuid.UUID) (core.DefaultOptions, error) {
	var prof Profile
	err := p.pool.QueryRow(ctx, selectProfile, pgUUID(owner)).Scan(
		&prof.LeadStages, &prof.CustomLeadStages,
		&prof.LeadSources, &prof.CustomLeadSources,
		&prof.ServiceTypes, &prof.CustomServiceTypes,
		&prof.ServiceFrequencies, &prof.CustomServiceFrequencies,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}.Options(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return prof.Options(), nil
}

const upsertProfile = `
INSERT INTO user_profiles (
    user_id, lead_stages, custom_lead_stages, lead_sources, custom_lead_sources,
    service_types, custom_service_types, service_frequencies, custom_service_frequencies
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id) DO UPDATE SET
    lead_stages = EXCLUDED.lead_stages,
    custom_lead_stages = EXCLUDED.custom_lead_stages,
    lead_sources = EXCLUDED.lead_sources,
    custom_lead_sources = EXCLUDED.custom_lead_sources,
    service_types = EXCLUDED.service_types,
    custom_service_types = EXCLUDED.custom_service_types,
    service_frequencies = EXCLUDED.service_frequencies,
    custom_service_frequencies = EXCLUDED.custom_service_frequencies,
    updated_at = now()`

// SaveProfile creates or replaces the owner's option lists.
func (p *Postgres) SaveProfile(ctx context.Context, owner uuid.UUID, prof Profile) error {
	_, err := p.pool.Exec(ctx, upsertProfile, pgUUID(owner),
		nonNil(prof.LeadStages), nonNil(prof.CustomLeadStages),
		nonNil(prof.LeadSources), nonNil(prof.CustomLeadSources),
		nonNil(prof.ServiceTypes), nonNil(prof.CustomServiceTypes),
		nonNil(prof.ServiceFrequencies), nonNil(prof.CustomServiceFrequencies),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Count returns the number of stored records of a schema for owner.
func (p *Postgres) Count(ctx context.Context, schema core.SchemaID, owner uuid.UUID) (int64, error) {
	var table string
	switch schema {
	case core.SchemaLeads:
		table = "leads"
	case core.SchemaCustomers:
		table = "customers"
	default:
		return 0, unknownSchema(schema)
	}

	var n int64
	err := p.pool.QueryRow(ctx, "SELECT count(*) FROM "+table+" WHERE user_id = $1", pgUUID(owner)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// NOT NULL DEFAULT '{}' columns reject a nil slice, which encodes as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
