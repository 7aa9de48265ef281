package core

// validation.go gates commit on the mapping and defaults configuration.
//
// The check runs once per import, before any row is transformed for commit.
// It never looks at row content: a configuration either satisfies every
// critical field or the whole batch is refused.

// ValidateConfiguration reports whether an import may be committed.
//
// It fails with ErrNoMappedColumns when no column feeds a field, and with
// *MissingRequiredFieldError naming every critical field that has neither an
// active mapping nor a non-empty effective default.
func ValidateConfiguration(s *Schema, m Mapping, d Defaults) error {
	if !m.HasTargets() {
		return ErrNoMappedColumns
	}

	var missing []FieldDescriptor
	for _, f := range s.CriticalFields() {
		if m.IndexOf(f.ID) >= 0 {
			continue
		}
		if d.Effective(f) != "" {
			continue
		}
		missing = append(missing, f)
	}

	if len(missing) > 0 {
		return &MissingRequiredFieldError{Schema: s.Info.ID, Fields: missing}
	}
	return nil
}
