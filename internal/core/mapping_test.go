package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func TestApplyOverrides_DoesNotModifyInput(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	base := core.AutoMap(core.Header{"Name", "Email", "Phone"}, leads)
	before := base.Clone()

	out, err := core.ApplyOverrides(leads, base, map[int]string{
		1: core.SkipTarget,
		2: "notes",
	})
	require.NoError(t, err)

	assert.Equal(t, before, base, "input mapping must be unchanged")
	assert.Equal(t, "name", out[0].Target)
	assert.True(t, out[1].IsSkip())
	assert.Equal(t, "notes", out[2].Target)
}

func TestApplyOverrides_ClearsTarget(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	base := core.AutoMap(core.Header{"Name"}, leads)

	out, err := core.ApplyOverrides(leads, base, map[int]string{0: ""})
	require.NoError(t, err)
	assert.True(t, out[0].IsUnset())
	assert.False(t, out.HasTargets())
}

func TestApplyOverrides_Errors(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	base := core.AutoMap(core.Header{"Name", "Email"}, leads)

	tests := []struct {
		name      string
		overrides map[int]string
		wantErr   string
	}{
		{"unknown field", map[int]string{0: "budget"}, `unknown field "budget" for leads`},
		{"negative column", map[int]string{-1: "name"}, "out of range"},
		{"column past header", map[int]string{2: "name"}, "out of range"},
		{"first bad column reported", map[int]string{1: "x", 0: "y"}, `column 0: unknown field "y"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := core.ApplyOverrides(leads, base, tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, out)
		})
	}
}

func TestMapping_IndexOfIgnoresSkipped(t *testing.T) {
	m := core.Mapping{
		{Source: "Email", Target: core.SkipTarget},
		{Source: "Work Email", Target: "email"},
		{Source: "Other", Target: ""},
	}

	assert.Equal(t, 1, m.IndexOf("email"))
	assert.Equal(t, -1, m.IndexOf(core.SkipTarget))
	assert.Equal(t, -1, m.IndexOf("phone"))
	assert.True(t, m.HasTargets())
}

func TestMapping_LastIndexOf(t *testing.T) {
	m := core.Mapping{
		{Source: "Email", Target: "email"},
		{Source: "Work Email", Target: "email"},
		{Source: "Old Email", Target: core.SkipTarget},
	}

	assert.Equal(t, 0, m.IndexOf("email"))
	assert.Equal(t, 1, m.LastIndexOf("email"))
	assert.Equal(t, -1, m.LastIndexOf("phone"))
}

func TestMapping_Update(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	m := core.AutoMap(core.Header{"Name", "Email"}, leads)

	require.NoError(t, m.Update(leads, 1, "phone"))
	assert.Equal(t, "name", m[0].Target, "other columns are unaffected")
	assert.Equal(t, "phone", m[1].Target)

	assert.Error(t, m.Update(leads, 5, "phone"))
	assert.Error(t, m.Update(leads, 0, "sale_value"), "customers field is not a leads target")
}
