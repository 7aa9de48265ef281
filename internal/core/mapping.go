package core

import (
	"fmt"
	"sort"
)

// SkipTarget is the mapping target that excludes a column from the transform.
const SkipTarget = "_skip"

// FieldMapping is the correspondence of one header column to a target field.
// An empty Target means the column is unset.
type FieldMapping struct {
	Source string `json:"sourceField"`
	Target string `json:"targetField"`
}

// IsSkip reports whether the column is explicitly excluded.
func (m FieldMapping) IsSkip() bool { return m.Target == SkipTarget }

// IsUnset reports whether no target has been chosen for the column.
func (m FieldMapping) IsUnset() bool { return m.Target == "" }

// Active reports whether the column feeds a target field.
func (m FieldMapping) Active() bool { return !m.IsSkip() && !m.IsUnset() }

// Mapping holds one FieldMapping per header column, in header order.
type Mapping []FieldMapping

// Clone returns an independent copy of m.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	copy(out, m)
	return out
}

// Update sets the target of column i in place. No other entry changes.
func (m Mapping) Update(s *Schema, i int, target string) error {
	if i < 0 || i >= len(m) {
		return fmt.Errorf("mapping column %d out of range (0-%d)", i, len(m)-1)
	}
	if err := validateTarget(s, target); err != nil {
		return fmt.Errorf("column %d: %w", i, err)
	}
	m[i].Target = target
	return nil
}

// IndexOf returns the column of the first active mapping targeting field, or -1.
func (m Mapping) IndexOf(field string) int {
	for i, fm := range m {
		if fm.Active() && fm.Target == field {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the column of the last active mapping targeting field, or -1.
func (m Mapping) LastIndexOf(field string) int {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Active() && m[i].Target == field {
			return i
		}
	}
	return -1
}

// HasTargets reports whether at least one column feeds a field.
func (m Mapping) HasTargets() bool {
	for _, fm := range m {
		if fm.Active() {
			return true
		}
	}
	return false
}

func validateTarget(s *Schema, target string) error {
	if target == "" || target == SkipTarget {
		return nil
	}
	if _, ok := s.Field(target); !ok {
		return fmt.Errorf("unknown field %q for %s", target, s.Info.ID)
	}
	return nil
}

// ApplyOverrides returns a copy of m with the caller's column edits applied.
// Overrides are keyed by column index. m itself is never modified.
func ApplyOverrides(s *Schema, m Mapping, overrides map[int]string) (Mapping, error) {
	out := m.Clone()

	// Sorted so the first reported error is stable.
	cols := make([]int, 0, len(overrides))
	for i := range overrides {
		cols = append(cols, i)
	}
	sort.Ints(cols)

	for _, i := range cols {
		if err := out.Update(s, i, overrides[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
