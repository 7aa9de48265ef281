package core_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmimport/internal/core"
	_ "github.com/JonMunkholm/crmimport/internal/core/schemas"
)

// memStore is an in-memory RecordStore. A non-nil failWith rejects every
// batch and stores nothing.
type memStore struct {
	mu       sync.Mutex
	records  map[core.SchemaID][]core.Record
	calls    int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[core.SchemaID][]core.Record)}
}

func (m *memStore) InsertBatch(ctx context.Context, schema core.SchemaID, records []core.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWith != nil {
		return 0, m.failWith
	}
	m.records[schema] = append(m.records[schema], records...)
	return len(records), nil
}

func (m *memStore) stored(schema core.SchemaID) []core.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Record(nil), m.records[schema]...)
}

var errCheckViolation = errors.New(`new row for relation "leads" violates check constraint "chk_leads_priority"`)

func schemaFor(t testing.TB, id core.SchemaID) *core.Schema {
	t.Helper()
	s, err := core.Lookup(id)
	require.NoError(t, err)
	return s
}

// csvFile joins rows into comma separated file content.
func csvFile(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n") + "\n")
}

func parse(t *testing.T, data []byte) (core.Header, []core.SourceRow) {
	t.Helper()
	header, rows, err := core.ParseFile(data)
	require.NoError(t, err)
	return header, rows
}

func leadsOf(t *testing.T, records []core.Record) []*core.LeadRecord {
	t.Helper()
	out := make([]*core.LeadRecord, len(records))
	for i, r := range records {
		lead, ok := r.(*core.LeadRecord)
		require.True(t, ok, "record %d is %T", i, r)
		out[i] = lead
	}
	return out
}
