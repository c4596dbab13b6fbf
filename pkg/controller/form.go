package controller

import "strings"

// Field describes one input bound to a controller. Type is the tag resolved
// through the rules registry ("email", "password", "coupon", or anything else
// for unvalidated inputs).
type Field struct {
	Name     string
	Type     string
	Label    string
	Required bool
	Default  string

	value       string
	inlineError string
}

// Form couples a form identifier with its fields. The identifier keys the
// per-form error slot in shared UI state.
type Form struct {
	ID     string
	Fields []Field
}

// Normalize trims identifiers and drops unnamed fields.
func (f Form) Normalize() Form {
	out := Form{ID: strings.TrimSpace(f.ID)}
	for _, field := range f.Fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			continue
		}
		field.Type = strings.TrimSpace(strings.ToLower(field.Type))
		if field.value == "" && field.Default != "" {
			field.value = field.Default
		}
		out.Fields = append(out.Fields, field)
	}
	return out
}
