// Package htmlview is a uistate.Sink that keeps the last applied command state
// and renders it as an HTML status fragment: loading indicator, per-form error
// slots, and revealed modals. Messages are sanitized before they reach the
// template, and element class names can be supplied by a go-theme selection.
package htmlview

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/uistate"
)

// Theme token keys consulted for class names when a selection is supplied.
const (
	TokenLoadingClass = "status.loading.class"
	TokenErrorClass   = "status.error.class"
	TokenModalClass   = "status.modal.class"
)

const fragmentTemplate = `<div class="formflow-status">
{% if loading %}  <div class="{{ loading_class }}" data-loading>Loading...</div>
{% endif %}{% for slot in slots %}  <p class="{{ error_class }}" data-error="{{ slot.form_id }}">{{ slot.message|safe }}</p>
{% endfor %}{% for modal in modals %}  <div id="{{ modal }}" class="{{ modal_class }}"></div>
{% endfor %}</div>
`

// Option customises view construction.
type Option func(*View)

// WithTemplate replaces the built-in fragment template. The template receives
// loading, loading_class, error_class, modal_class, slots ({form_id, message})
// and modals.
func WithTemplate(source string) Option {
	return func(v *View) {
		if strings.TrimSpace(source) != "" {
			v.templateSource = source
		}
	}
}

// WithThemeSelection derives class names from a resolved go-theme selection.
// Tokens override the defaults; missing tokens keep them.
func WithThemeSelection(selection *theme.Selection) Option {
	return func(v *View) {
		if selection == nil || selection.Manifest == nil {
			return
		}
		if class := selection.Manifest.Tokens[TokenLoadingClass]; class != "" {
			v.loadingClass = class
		}
		if class := selection.Manifest.Tokens[TokenErrorClass]; class != "" {
			v.errorClass = class
		}
		if class := selection.Manifest.Tokens[TokenModalClass]; class != "" {
			v.modalClass = class
		}
	}
}

// WithEngineOptions accepts go-template engine options for callers sharing a
// template configuration across goliatone projects. The fragment renderer does
// not consume them yet; the hook keeps signatures stable.
func WithEngineOptions(_ ...gotemplatepkg.Option) Option {
	return func(*View) {}
}

// View retains the latest projected UI state. Safe for concurrent use as a
// sink for a shared state instance.
type View struct {
	mu       sync.Mutex
	loading  bool
	errors   map[string]string
	revealed []string

	template       *pongo2.Template
	templateSource string
	policy         *bluemonday.Policy
	loadingClass   string
	errorClass     string
	modalClass     string
}

// New constructs a view with the built-in template and strict sanitization.
func New(options ...Option) (*View, error) {
	v := &View{
		errors:         make(map[string]string),
		templateSource: fragmentTemplate,
		policy:         bluemonday.StrictPolicy(),
		loadingClass:   "loading-indicator",
		errorClass:     "error-message",
		modalClass:     "modal is-open",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}

	tmpl, err := pongo2.FromString(v.templateSource)
	if err != nil {
		return nil, fmt.Errorf("htmlview: parse template: %w", err)
	}
	v.template = tmpl
	return v, nil
}

// Apply implements uistate.Sink.
func (v *View) Apply(commands []uistate.Command) {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, cmd := range commands {
		switch cmd.Kind {
		case uistate.CommandShowLoading:
			v.loading = true
		case uistate.CommandHideLoading:
			v.loading = false
		case uistate.CommandSetErrorText:
			v.errors[cmd.FormID] = cmd.Message
		case uistate.CommandClearErrorText:
			delete(v.errors, cmd.FormID)
		case uistate.CommandRevealModal:
			if !contains(v.revealed, cmd.ModalID) {
				v.revealed = append(v.revealed, cmd.ModalID)
			}
		}
	}
}

// Render produces the HTML fragment for the current state. Error messages are
// stripped of markup before interpolation.
func (v *View) Render() (string, error) {
	if v == nil {
		return "", fmt.Errorf("htmlview: view is nil")
	}
	v.mu.Lock()
	loading := v.loading
	slots := make([]map[string]string, 0, len(v.errors))
	formIDs := make([]string, 0, len(v.errors))
	for formID := range v.errors {
		formIDs = append(formIDs, formID)
	}
	sort.Strings(formIDs)
	for _, formID := range formIDs {
		slots = append(slots, map[string]string{
			"form_id": formID,
			"message": v.policy.Sanitize(v.errors[formID]),
		})
	}
	modals := append([]string(nil), v.revealed...)
	v.mu.Unlock()

	var buf bytes.Buffer
	err := v.template.ExecuteWriter(pongo2.Context{
		"loading":       loading,
		"loading_class": v.loadingClass,
		"error_class":   v.errorClass,
		"modal_class":   v.modalClass,
		"slots":         slots,
		"modals":        modals,
	}, &buf)
	if err != nil {
		return "", fmt.Errorf("htmlview: execute template: %w", err)
	}
	return buf.String(), nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
