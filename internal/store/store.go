// Package store persists imported records and reads owner option lists.
//
// Two backends implement the same contract: Postgres (pgx, COPY inside a
// transaction) for the server, and SQLite (gorm) for local use and tests.
// Every InsertBatch is atomic: a rejected row rolls back the whole batch.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/crmimport/internal/config"
	"github.com/JonMunkholm/crmimport/internal/core"
)

// Store is a record store that also serves owner option lists.
type Store interface {
	core.RecordStore
	core.OptionProvider

	// SaveProfile creates or replaces the option lists of owner.
	SaveProfile(ctx context.Context, owner uuid.UUID, p Profile) error

	// Count returns the number of stored records of a schema for owner.
	Count(ctx context.Context, schema core.SchemaID, owner uuid.UUID) (int64, error)

	Close() error
}

// Profile holds an owner's option lists. Each base list has a custom
// companion the owner extends.
type Profile struct {
	LeadStages               []string `json:"lead_stages"`
	CustomLeadStages         []string `json:"custom_lead_stages"`
	LeadSources              []string `json:"lead_sources"`
	CustomLeadSources        []string `json:"custom_lead_sources"`
	ServiceTypes             []string `json:"service_types"`
	CustomServiceTypes       []string `json:"custom_service_types"`
	ServiceFrequencies       []string `json:"service_frequencies"`
	CustomServiceFrequencies []string `json:"custom_service_frequencies"`
}

// Options merges each base list with its custom list.
func (p Profile) Options() core.DefaultOptions {
	return core.DefaultOptions{
		core.OptionLeadStages:         core.MergeOptions(p.LeadStages, p.CustomLeadStages),
		core.OptionLeadSources:        core.MergeOptions(p.LeadSources, p.CustomLeadSources),
		core.OptionServiceTypes:       core.MergeOptions(p.ServiceTypes, p.CustomServiceTypes),
		core.OptionServiceFrequencies: core.MergeOptions(p.ServiceFrequencies, p.CustomServiceFrequencies),
	}
}

// Open connects the store selected by cfg.Store.Driver and prepares its tables.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.Database)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func unknownSchema(id core.SchemaID) error {
	return fmt.Errorf("%w: %q", core.ErrUnknownSchema, id)
}

func recordTypeError(id core.SchemaID, i int, r core.Record) error {
	return fmt.Errorf("record %d: unexpected %T in %s batch", i, r, id)
}
