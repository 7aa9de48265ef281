package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Option list keys stored on an owner's profile. Each base list has a
// custom_* companion holding values the owner added.
const (
	OptionLeadStages         = "lead_stages"
	OptionLeadSources        = "lead_sources"
	OptionServiceTypes       = "service_types"
	OptionServiceFrequencies = "service_frequencies"
)

// OptionKeys lists every option key in display order.
var OptionKeys = []string{
	OptionLeadStages,
	OptionLeadSources,
	OptionServiceTypes,
	OptionServiceFrequencies,
}

// DefaultOptions holds the selectable batch default values per option key.
type DefaultOptions map[string][]string

// Get returns the values for key, nil when the owner has none.
func (o DefaultOptions) Get(key string) []string {
	if o == nil {
		return nil
	}
	return o[key]
}

// MergeOptions concatenates an owner's base list with their custom list.
// Order is preserved and nothing is deduplicated.
func MergeOptions(base, custom []string) []string {
	out := make([]string, 0, len(base)+len(custom))
	out = append(out, base...)
	return append(out, custom...)
}

// OptionProvider supplies the enumerated default values available to an owner.
type OptionProvider interface {
	DefaultOptions(ctx context.Context, owner uuid.UUID) (DefaultOptions, error)
}

// StaticOptions is an OptionProvider returning the same lists for every owner.
type StaticOptions DefaultOptions

func (s StaticOptions) DefaultOptions(ctx context.Context, owner uuid.UUID) (DefaultOptions, error) {
	out := make(DefaultOptions, len(s))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

// Defaults holds one batch default per schema-critical field, keyed by field id.
type Defaults map[string]string

// Clone returns an independent copy of d.
func (d Defaults) Clone() Defaults {
	out := make(Defaults, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Effective returns the default applied to f: the batch default when it is
// non-blank, otherwise the field's fixed fallback.
func (d Defaults) Effective(f FieldDescriptor) string {
	if v := strings.TrimSpace(d[f.ID]); v != "" {
		return v
	}
	return f.Fallback
}

// InitialDefaults seeds the batch defaults for a schema: the first option of
// each critical field's option list, or the field's fallback.
func InitialDefaults(s *Schema, opts DefaultOptions) Defaults {
	d := make(Defaults)
	for _, f := range s.CriticalFields() {
		if f.OptionsKey != "" {
			if values := opts.Get(f.OptionsKey); len(values) > 0 {
				d[f.ID] = values[0]
				continue
			}
		}
		if f.Fallback != "" {
			d[f.ID] = f.Fallback
		}
	}
	return d
}
