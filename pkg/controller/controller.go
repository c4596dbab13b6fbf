// Package controller owns the validate/submit lifecycle for a single form:
// live field validation, payload snapshotting, delegation to a caller-supplied
// submit callback, and projection of failures into shared UI state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/uistate"
)

// Phase names the controller's position in the submit lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
)

// ErrSubmitInFlight is returned when Submit is called while a previous submit
// for the same form is still outstanding. The re-entrant call is a no-op: no
// state is touched and the callback is not invoked.
var ErrSubmitInFlight = errors.New("controller: submit already in flight")

// ValidationError is a client-side rule failure. It never crosses the
// controller boundary upward; it is converted into stored error state and
// returned for callers that want to inspect the outcome.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Callback performs the actual submission, typically a network call. Failure
// is signalled by returning an error; its message lands in the form's error
// slot verbatim.
type Callback func(ctx context.Context, payload map[string]string) error

// Option customises controller construction.
type Option func(*Controller)

// WithValidateOnInput enables live single-field validation on SetValue. Only
// email and password fields are validated live; other types keep their values
// without inline feedback.
func WithValidateOnInput(enabled bool) Option {
	return func(c *Controller) {
		c.validateOnInput = enabled
	}
}

// WithSubmitCallback supplies the async action run after validation passes.
func WithSubmitCallback(callback Callback) Option {
	return func(c *Controller) {
		c.submit = callback
	}
}

// WithRegistry injects the rule registry used for both live and whole-form
// validation. Defaults to the built-in rules.
func WithRegistry(registry *rules.Registry) Option {
	return func(c *Controller) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithLogger attaches a logger for failure paths that would otherwise be
// silent. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller binds one form to the shared UI state. One instance per form;
// construct at bootstrap and drive it for the life of the page session.
type Controller struct {
	mu       sync.Mutex
	form     Form
	state    *uistate.State
	registry *rules.Registry
	logger   *zap.Logger

	validateOnInput bool
	submit          Callback

	phase    Phase
	inFlight bool
}

// Field types that are validated on every input event. Other types are only
// checked at submit time, and then only when the registry claims them.
var liveValidated = map[string]struct{}{
	rules.RuleEmail:    {},
	rules.RulePassword: {},
}

// New constructs a controller for the form, wired to shared state.
func New(form Form, state *uistate.State, options ...Option) (*Controller, error) {
	form = form.Normalize()
	if form.ID == "" {
		return nil, errors.New("controller: form id is required")
	}
	if state == nil {
		return nil, errors.New("controller: shared state is required")
	}

	c := &Controller{
		form:     form,
		state:    state,
		registry: rules.NewRegistry(),
		logger:   zap.NewNop(),
		phase:    PhaseIdle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// FormID returns the identifier keying this form's error slot.
func (c *Controller) FormID() string {
	if c == nil {
		return ""
	}
	return c.form.ID
}

// Phase reports the current lifecycle phase.
func (c *Controller) Phase() Phase {
	if c == nil {
		return PhaseIdle
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SetValue records an input event for the named field. When validate-on-input
// is enabled and the field type is live-validated, the field's inline error is
// updated in place. This path never touches shared UI state or the loading
// flag.
func (c *Controller) SetValue(name, value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.form.Fields {
		field := &c.form.Fields[i]
		if field.Name != name {
			continue
		}
		field.value = value
		if !c.validateOnInput {
			return
		}
		if _, live := liveValidated[field.Type]; !live {
			return
		}
		field.inlineError = c.registry.Validate(field.Type, value)
		return
	}
}

// Fields returns a copy of the bound field definitions in declaration order.
func (c *Controller) Fields() []Field {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Field(nil), c.form.Fields...)
}

// Value returns the current value of the named field.
func (c *Controller) Value(name string) string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range c.form.Fields {
		if field.Name == name {
			return field.value
		}
	}
	return ""
}

// InlineError returns the live validation message for the named field, or ""
// when the field is valid or not live-validated.
func (c *Controller) InlineError(name string) string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range c.form.Fields {
		if field.Name == name {
			return field.inlineError
		}
	}
	return ""
}

// Values snapshots the current field values into a fresh submission payload.
func (c *Controller) Values() map[string]string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked()
}

// Submit runs the whole submit sequence: guard, loading on, clear prior error,
// snapshot, validate, invoke the callback, reset on success or store the error
// on failure, loading off. Exactly one of {success-reset, stored-error} occurs
// per attempt, and the loading flag is false again once Submit returns.
//
// A call made while another Submit on the same form is outstanding returns
// ErrSubmitInFlight without side effects.
func (c *Controller) Submit(ctx context.Context) error {
	if c == nil {
		return errors.New("controller: controller is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.inFlight = true
	c.phase = PhaseValidating
	payload := c.payloadLocked()
	c.mu.Unlock()

	c.state.SetLoading(true)
	c.state.ClearError(c.form.ID)

	defer func() {
		c.state.SetLoading(false)
		c.mu.Lock()
		c.inFlight = false
		c.phase = PhaseIdle
		c.mu.Unlock()
	}()

	if err := c.validate(payload); err != nil {
		c.state.SetError(c.form.ID, err.Message)
		return err
	}

	c.mu.Lock()
	c.phase = PhaseSubmitting
	callback := c.submit
	c.mu.Unlock()

	if callback != nil {
		if err := callback(ctx, payload); err != nil {
			c.logger.Debug("submit callback failed",
				zap.String("form", c.form.ID),
				zap.Error(err))
			c.state.SetError(c.form.ID, err.Error())
			return err
		}
	}

	c.reset()
	return nil
}

// validate runs whole-form validation over the snapshot. Fields whose type has
// no registered rule are skipped; this leniency is deliberate, not every field
// is mandated.
func (c *Controller) validate(payload map[string]string) *ValidationError {
	c.mu.Lock()
	fields := append([]Field(nil), c.form.Fields...)
	registry := c.registry
	c.mu.Unlock()

	for _, field := range fields {
		if message := registry.Validate(field.Type, payload[field.Name]); message != "" {
			return &ValidationError{Field: field.Name, Message: message}
		}
	}
	return nil
}

// reset returns every field to its default value and drops inline errors.
func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.form.Fields {
		c.form.Fields[i].value = c.form.Fields[i].Default
		c.form.Fields[i].inlineError = ""
	}
}

func (c *Controller) payloadLocked() map[string]string {
	payload := make(map[string]string, len(c.form.Fields))
	for _, field := range c.form.Fields {
		payload[field.Name] = field.value
	}
	return payload
}
