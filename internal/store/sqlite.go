package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/crmimport/internal/core"
)

// insertBatchSize bounds the rows per INSERT statement. SQLite limits the
// number of bound parameters per statement.
const insertBatchSize = 200

type leadRow struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         string `gorm:"type:text;not null;index"`
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	Notes          *string
	LeadSource     string  `gorm:"not null"`
	Status         string  `gorm:"not null"`
	Priority       string  `gorm:"not null;check:chk_leads_priority,priority IN ('low','medium','high')"`
	ProjectedValue float64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

func (leadRow) TableName() string { return "leads" }

type customerRow struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           string `gorm:"type:text;not null;index"`
	FirstName        *string
	LastName         *string
	CompanyName      *string
	Email            *string
	Phone            *string
	PropertyStreet1  *string
	PropertyCity     *string
	PropertyState    *string
	PropertyZip      *string
	SaleValue        *float64
	Notes            *string
	Source           string `gorm:"not null"`
	ServiceType      string `gorm:"not null"`
	ServiceFrequency string `gorm:"not null"`
	Status           string `gorm:"not null;default:active"`
	CreatedAt        time.Time
}

func (customerRow) TableName() string { return "customers" }

type profileRow struct {
	UserID                   string   `gorm:"primaryKey"`
	LeadStages               []string `gorm:"serializer:json"`
	CustomLeadStages         []string `gorm:"serializer:json"`
	LeadSources              []string `gorm:"serializer:json"`
	CustomLeadSources        []string `gorm:"serializer:json"`
	ServiceTypes             []string `gorm:"serializer:json"`
	CustomServiceTypes       []string `gorm:"serializer:json"`
	ServiceFrequencies       []string `gorm:"serializer:json"`
	CustomServiceFrequencies []string `gorm:"serializer:json"`
	UpdatedAt                time.Time
}

func (profileRow) TableName() string { return "user_profiles" }

// SQLite stores records in an embedded SQLite database.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates its tables.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewSQLite(db)
}

// NewSQLite wraps an open gorm connection and migrates its tables.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&leadRow{}, &customerRow{}, &profileRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertBatch writes every record inside one transaction.
func (s *SQLite) InsertBatch(ctx context.Context, schema core.SchemaID, records []core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var rows any
	switch schema {
	case core.SchemaLeads:
		out := make([]leadRow, len(records))
		for i, r := range records {
			lead, ok := r.(*core.LeadRecord)
			if !ok {
				return 0, recordTypeError(schema, i, r)
			}
			out[i] = toLeadRow(lead)
		}
		rows = &out
	case core.SchemaCustomers:
		out := make([]customerRow, len(records))
		for i, r := range records {
			c, ok := r.(*core.CustomerRecord)
			if !ok {
				return 0, recordTypeError(schema, i, r)
			}
			out[i] = toCustomerRow(c)
		}
		rows = &out
	default:
		return 0, unknownSchema(schema)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func toLeadRow(r *core.LeadRecord) leadRow {
	return leadRow{
		UserID:         r.UserID.String(),
		Name:           textPtr(r.Name),
		Email:          textPtr(r.Email),
		Phone:          textPtr(r.Phone),
		Address:        textPtr(r.Address),
		Notes:          textPtr(r.Notes),
		LeadSource:     r.LeadSource,
		Status:         r.Status,
		Priority:       r.Priority,
		ProjectedValue: r.ProjectedValue,
	}
}

func toCustomerRow(r *core.CustomerRecord) customerRow {
	row := customerRow{
		UserID:           r.UserID.String(),
		FirstName:        textPtr(r.FirstName),
		LastName:         textPtr(r.LastName),
		CompanyName:      textPtr(r.CompanyName),
		Email:            textPtr(r.Email),
		Phone:            textPtr(r.Phone),
		PropertyStreet1:  textPtr(r.PropertyStreet1),
		PropertyCity:     textPtr(r.PropertyCity),
		PropertyState:    textPtr(r.PropertyState),
		PropertyZip:      textPtr(r.PropertyZip),
		Notes:            textPtr(r.Notes),
		Source:           r.Source,
		ServiceType:      r.ServiceType,
		ServiceFrequency: r.ServiceFrequency,
		Status:           r.Status,
	}
	if r.SaleValue.Valid {
		if f, ok := core.NumericFloat(r.SaleValue.String); ok {
			row.SaleValue = &f
		}
	}
	return row
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// DefaultOptions reads the owner's profile. An owner without a profile has
// empty lists.
func (s *SQLite) DefaultOptions(ctx context.Context, owner uuid.UUID) (core.DefaultOptions, error) {
	var row profileRow
	err := s.db.WithContext(ctx).Where("user_id = ?", owner.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}.Options(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return Profile{
		LeadStages:               row.LeadStages,
		CustomLeadStages:         row.CustomLeadStages,
		LeadSources:              row.LeadSources,
		CustomLeadSources:        row.CustomLeadSources,
		ServiceTypes:             row.ServiceTypes,
		CustomServiceTypes:       row.CustomServiceTypes,
		ServiceFrequencies:       row.ServiceFrequencies,
		CustomServiceFrequencies: row.CustomServiceFrequencies,
	}.Options(), nil
}

// SaveProfile creates or replaces the owner's option lists.
func (s *SQLite) SaveProfile(ctx context.Context, owner uuid.UUID, p Profile) error {
	row := profileRow{
		UserID:                   owner.String(),
		LeadStages:               p.LeadStages,
		CustomLeadStages:         p.CustomLeadStages,
		LeadSources:              p.LeadSources,
		CustomLeadSources:        p.CustomLeadSources,
		ServiceTypes:             p.ServiceTypes,
		CustomServiceTypes:       p.CustomServiceTypes,
		ServiceFrequencies:       p.ServiceFrequencies,
		CustomServiceFrequencies: p.CustomServiceFrequencies,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Count returns the number of stored records of a schema for owner.
func (s *SQLite) Count(ctx context.Context, schema core.SchemaID, owner uuid.UUID) (int64, error) {
	var model any
	switch schema {
	case core.SchemaLeads:
		model = &leadRow{}
	case core.SchemaCustomers:
		model = &customerRow{}
	default:
		return 0, unknownSchema(schema)
	}

	var n int64
	err := s.db.WithContext(ctx).Model(model).Where("user_id = ?", owner.String()).Count(&n).Error
	return n, err
}
