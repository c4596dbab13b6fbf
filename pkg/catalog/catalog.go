// Package catalog derives form definitions from an OpenAPI document, so the
// known forms are declared data instead of hand-written structs. The embedded
// default document describes the three marketing-site forms.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const formIDExtensionKey = "x-form-id"

// Field is one declared input of a form. Type is the validation tag resolved
// by the rules registry; unrecognised formats fall back to "text" and are not
// validated.
type Field struct {
	Name     string
	Type     string
	Label    string
	Required bool
}

// Form is a declared form: the DOM-facing identifier, the backend operation it
// submits to, and its fields.
type Form struct {
	ID          string
	OperationID string
	Method      string
	Endpoint    string
	Fields      []Field
}

// Catalog indexes forms by identifier.
type Catalog struct {
	forms map[string]Form
}

// Load parses an OpenAPI document (JSON or YAML) and extracts one form per
// operation that declares a JSON request body. The form identifier comes from
// the x-form-id extension when present, otherwise "<operationId>-form".
func Load(ctx context.Context, data []byte) (*Catalog, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(data) == 0 {
		return nil, errors.New("catalog: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("catalog: document does not contain any paths")
	}

	forms := make(map[string]Form)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range map[string]*openapi3.Operation{
			"POST": item.Post,
			"PUT":  item.Put,
		} {
			if operation == nil {
				continue
			}
			form, ok := convertOperation(method, path, operation)
			if !ok {
				continue
			}
			if _, exists := forms[form.ID]; exists {
				return nil, fmt.Errorf("catalog: duplicate form id %q", form.ID)
			}
			forms[form.ID] = form
		}
	}

	if len(forms) == 0 {
		return nil, errors.New("catalog: no forms extracted")
	}
	return &Catalog{forms: forms}, nil
}

// Default loads the embedded document describing the login, signup and
// newsletter forms.
func Default(ctx context.Context) (*Catalog, error) {
	return Load(ctx, defaultDocument)
}

// Form returns the form declared under id.
func (c *Catalog) Form(id string) (Form, bool) {
	if c == nil {
		return Form{}, false
	}
	form, ok := c.forms[id]
	return form, ok
}

// Forms returns every declared form sorted by identifier.
func (c *Catalog) Forms() []Form {
	if c == nil || len(c.forms) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Form, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.forms[id])
	}
	return out
}

func convertOperation(method, path string, operation *openapi3.Operation) (Form, bool) {
	schema := requestSchema(operation.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return Form{}, false
	}

	opID := strings.TrimSpace(operation.OperationID)
	if opID == "" {
		return Form{}, false
	}

	form := Form{
		ID:          formID(opID, operation.Extensions),
		OperationID: opID,
		Method:      method,
		Endpoint:    path,
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		property := schema.Properties[name]
		if property == nil || property.Value == nil {
			continue
		}
		_, isRequired := required[name]
		form.Fields = append(form.Fields, Field{
			Name:     name,
			Type:     fieldType(name, property.Value),
			Label:    strings.TrimSpace(property.Value.Title),
			Required: isRequired,
		})
	}
	return form, true
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	mt, ok := body.Value.Content["application/json"]
	if !ok || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

func formID(opID string, extensions map[string]any) string {
	if raw, ok := extensions[formIDExtensionKey]; ok {
		if id, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				return trimmed
			}
		}
	}
	return opID + "-form"
}

func fieldType(name string, schema *openapi3.Schema) string {
	format := strings.ToLower(strings.TrimSpace(schema.Format))
	switch format {
	case "email", "password", "coupon":
		return format
	}
	if strings.ToLower(name) == "password" {
		return "password"
	}
	return "text"
}
