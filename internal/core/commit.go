package core

import (
	"context"

	"github.com/google/uuid"
)

// RecordStore persists transformed records. InsertBatch must be atomic:
// either every record is stored or none is.
type RecordStore interface {
	InsertBatch(ctx context.Context, schema SchemaID, records []Record) (int, error)
}

// Committer writes a whole batch with a single store call.
type Committer struct {
	store RecordStore
}

// NewCommitter creates a Committer backed by store.
func NewCommitter(store RecordStore) *Committer {
	return &Committer{store: store}
}

// Commit persists records for owner and returns the inserted count.
// Any store failure is wrapped in *CommitError; nothing is retried.
func (c *Committer) Commit(ctx context.Context, schema SchemaID, owner uuid.UUID, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	for _, r := range records {
		if r.SchemaID() != schema || r.OwnerID() != owner {
			return 0, &CommitError{
				Schema:  schema,
				Records: len(records),
				Err:     errMixedBatch,
			}
		}
	}

	n, err := c.store.InsertBatch(ctx, schema, records)
	if err != nil {
		return 0, &CommitError{Schema: schema, Records: len(records), Err: err}
	}
	return n, nil
}
