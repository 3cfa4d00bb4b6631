package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes one accepted argument.
type Field struct {
	Type     Type
	Aliases  []string
	Default  any
	Required bool
}

// Spec is the full argument contract of a host entry point.
type Spec struct {
	Fields map[string]Field
	// MutuallyExclusive groups fields of which at most one may be set.
	MutuallyExclusive [][]string
	// RequiredTogether groups fields that must all be set when the first one is.
	RequiredTogether [][]string
	// RequiredOneOf groups fields of which at least one must be set.
	RequiredOneOf [][]string
}

// Normalize validates data and returns a copy keyed by canonical field names,
// with values converted and defaults applied. Nil values count as unset.
func (s Spec) Normalize(data map[string]any) (map[string]any, error) {
	var errs []error
	out := make(map[string]any, len(data))
	// given holds every field the caller set, including rejected ones.
	given := make(map[string]any, len(data))
	aliases := s.aliases()

	for _, key := range sortedKeys(data) {
		raw := data[key]
		if raw == nil {
			continue
		}
		name, ok := aliases[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "unsupported parameter"})
			continue
		}
		if _, dup := given[name]; dup {
			errs = append(errs, &ValidationError{Key: key, Reason: fmt.Sprintf("duplicates %q", name)})
			continue
		}
		given[name] = raw
		value, err := s.Fields[name].Type.Convert(raw)
		if err != nil {
			errs = append(errs, &ValidationError{Key: name, Reason: err.Error(), Value: raw})
			continue
		}
		out[name] = value
	}

	for _, group := range s.MutuallyExclusive {
		if set := present(given, group); len(set) > 1 {
			errs = append(errs, &ValidationError{
				Key:    set[0],
				Reason: "parameters are mutually exclusive: " + strings.Join(set, "|"),
			})
		}
	}
	for _, group := range s.RequiredTogether {
		if len(group) == 0 {
			continue
		}
		if _, ok := given[group[0]]; !ok {
			continue
		}
		for _, name := range group[1:] {
			if _, ok := given[name]; !ok {
				errs = append(errs, &ValidationError{
					Key:    name,
					Reason: "parameters are required together: " + strings.Join(group, ", "),
				})
			}
		}
	}
	for _, group := range s.RequiredOneOf {
		if len(present(given, group)) == 0 {
			errs = append(errs, &ValidationError{
				Key:    group[0],
				Reason: "one of the following is required: " + strings.Join(group, ", "),
			})
		}
	}

	for _, name := range sortedKeys(s.Fields) {
		field := s.Fields[name]
		if _, ok := given[name]; ok {
			continue
		}
		if field.Required {
			errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			continue
		}
		if field.Default != nil {
			out[name] = field.Default
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

func (s Spec) aliases() map[string]string {
	m := make(map[string]string, len(s.Fields))
	for name, f := range s.Fields {
		m[name] = name
		for _, a := range f.Aliases {
			m[a] = name
		}
	}
	return m
}

func present(data map[string]any, names []string) []string {
	var set []string
	for _, n := range names {
		if _, ok := data[n]; ok {
			set = append(set, n)
		}
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
