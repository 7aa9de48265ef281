package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func TestRegistry_BuiltinSchemas(t *testing.T) {
	all := core.All()
	require.Len(t, all, core.SchemaCount())

	ids := make([]core.SchemaID, len(all))
	for i, s := range all {
		ids[i] = s.Info.ID
	}
	assert.Equal(t, []core.SchemaID{core.SchemaCustomers, core.SchemaLeads}, ids)

	leads, ok := core.Get(core.SchemaLeads)
	require.True(t, ok)
	critical := make([]string, 0)
	for _, f := range leads.CriticalFields() {
		critical = append(critical, f.ID)
	}
	assert.Equal(t, []string{"lead_source", "status", "priority"}, critical)

	_, err := core.Lookup("invoices")
	assert.ErrorIs(t, err, core.ErrUnknownSchema)
}

func TestRegister_Panics(t *testing.T) {
	build := func(uuid.UUID, core.FieldValues) core.Record { return &core.LeadRecord{} }

	tests := []struct {
		name   string
		schema core.Schema
	}{
		{"duplicate id", core.Schema{Info: core.SchemaInfo{ID: core.SchemaLeads}, Build: build}},
		{"no builder", core.Schema{Info: core.SchemaInfo{ID: "test_nobuild"}}},
		{"skip sentinel as field", core.Schema{
			Info:   core.SchemaInfo{ID: "test_skip"},
			Fields: []core.FieldDescriptor{{ID: core.SkipTarget}},
			Build:  build,
		}},
		{"duplicate field", core.Schema{
			Info:   core.SchemaInfo{ID: "test_dup"},
			Fields: []core.FieldDescriptor{{ID: "a"}, {ID: "a"}},
			Build:  build,
		}},
		{"short example row", core.Schema{
			Info:     core.SchemaInfo{ID: "test_example"},
			Fields:   []core.FieldDescriptor{{ID: "a"}, {ID: "b"}},
			Examples: [][]string{{"only one"}},
			Build:    build,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { core.Register(tt.schema) })
		})
	}

	_, ok := core.Get("test_example")
	assert.False(t, ok, "a rejected schema is not registered")
}
