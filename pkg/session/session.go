// Package session drives a form controller from an interactive prompt loop:
// one prompt per field, live rule validation at the prompt, then a submit.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/controller"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// Option customises session construction.
type Option func(*Session)

// WithDriver replaces the prompt driver (the survey-backed terminal driver by
// default).
func WithDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithRegistry supplies the rule registry used for prompt-time validation.
func WithRegistry(registry *rules.Registry) Option {
	return func(s *Session) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// Session walks a controller's fields interactively and submits the result.
type Session struct {
	ctrl     *controller.Controller
	driver   PromptDriver
	registry *rules.Registry
}

// New constructs a session around a controller.
func New(ctrl *controller.Controller, options ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, errors.New("session: controller is required")
	}
	s := &Session{
		ctrl:     ctrl,
		driver:   NewSurveyDriver(),
		registry: rules.NewRegistry(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Run prompts for every field, records the answers on the controller, and
// submits. Prompt-time validation rejects values the registry would fail, so
// the submit normally succeeds or fails on the network, not on rules.
func (s *Session) Run(ctx context.Context) error {
	if s == nil {
		return errors.New("session: session is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, field := range s.ctrl.Fields() {
		value, err := s.promptField(ctx, field)
		if err != nil {
			return err
		}
		s.ctrl.SetValue(field.Name, value)
	}

	if err := s.ctrl.Submit(ctx); err != nil {
		return err
	}
	return s.driver.Info(ctx, fmt.Sprintf("%s submitted", s.ctrl.FormID()))
}

func (s *Session) promptField(ctx context.Context, field controller.Field) (string, error) {
	label := field.Label
	if label == "" {
		label = field.Name
	}

	cfg := InputConfig{
		Message:   label + ":",
		Default:   field.Default,
		Validator: s.fieldValidator(field),
	}

	if field.Type == rules.RulePassword {
		return s.driver.Password(ctx, cfg)
	}
	return s.driver.Input(ctx, cfg)
}

func (s *Session) fieldValidator(field controller.Field) func(string) error {
	rule, ok := s.registry.Resolve(field.Type)
	if !ok {
		if !field.Required {
			return nil
		}
		return func(value string) error {
			if value == "" {
				return fmt.Errorf("%s is required", field.Name)
			}
			return nil
		}
	}
	return func(value string) error {
		if value == "" && !field.Required {
			return nil
		}
		if message := rule.Validate(value); message != "" {
			return errors.New(message)
		}
		return nil
	}
}
