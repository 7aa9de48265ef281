package core

import "strings"

// Normalize lower-cases s and drops every rune outside [a-z0-9].
// "Lead Source", "lead_source" and "LEAD-SOURCE" all normalize to "leadsource".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AutoMap proposes a mapping for every header column. A column matches the
// first field, in schema order, whose normalized identifier or label equals
// the normalized header. Unmatched columns stay unset. Duplicate headers are
// matched independently.
func AutoMap(header Header, s *Schema) Mapping {
	type key struct{ id, label string }
	keys := make([]key, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = key{Normalize(f.ID), Normalize(f.Label)}
	}

	m := make(Mapping, len(header))
	for i, h := range header {
		m[i].Source = h
		norm := Normalize(h)
		if norm == "" {
			continue
		}
		for j, k := range keys {
			if norm == k.id || norm == k.label {
				m[i].Target = s.Fields[j].ID
				break
			}
		}
	}
	return m
}
