package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/uistate"
)

func loginForm() Form {
	return Form{
		ID: "login-form",
		Fields: []Field{
			{Name: "email", Type: "email"},
			{Name: "password", Type: "password"},
		},
	}
}

func TestSubmit_InvalidEmailStoresErrorAndSkipsCallback(t *testing.T) {
	state := uistate.New()
	var called bool
	ctrl, err := New(loginForm(), state, WithSubmitCallback(func(context.Context, map[string]string) error {
		called = true
		return nil
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "not-an-email")
	ctrl.SetValue("password", "abc123")

	var valErr *ValidationError
	if err := ctrl.Submit(context.Background()); !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	if called {
		t.Error("callback must not run for an invalid form")
	}
	message, ok := state.ErrorFor("login-form")
	if !ok || message != rules.MessageInvalidEmail {
		t.Errorf("stored error = %q (ok=%v), want %q", message, ok, rules.MessageInvalidEmail)
	}
	if len(state.Snapshot().Errors) != 1 {
		t.Error("exactly one error must be stored for the form")
	}
	if state.Loading() {
		t.Error("loading must be false after submit")
	}
}

func TestSubmit_SuccessClearsErrorAndResetsFields(t *testing.T) {
	state := uistate.New()
	state.SetError("login-form", "previous failure")

	ctrl, err := New(loginForm(), state, WithSubmitCallback(func(context.Context, map[string]string) error {
		return nil
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "user@example.com")
	ctrl.SetValue("password", "abc123")

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, ok := state.ErrorFor("login-form"); ok {
		t.Error("prior error must be cleared")
	}
	if got := ctrl.Value("email"); got != "" {
		t.Errorf("email must reset, got %q", got)
	}
	if got := ctrl.Value("password"); got != "" {
		t.Errorf("password must reset, got %q", got)
	}
	if state.Loading() {
		t.Error("loading must be false after submit")
	}
}

func TestSubmit_CallbackErrorStoredVerbatim(t *testing.T) {
	state := uistate.New()
	ctrl, err := New(loginForm(), state, WithSubmitCallback(func(context.Context, map[string]string) error {
		return errors.New("boom")
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "user@example.com")
	ctrl.SetValue("password", "abc123")

	if err := ctrl.Submit(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected callback error back, got %v", err)
	}

	message, ok := state.ErrorFor("login-form")
	if !ok || message != "boom" {
		t.Errorf("stored error = %q (ok=%v), want %q", message, ok, "boom")
	}
	if got := ctrl.Value("email"); got != "user@example.com" {
		t.Errorf("fields must not reset on failure, got email %q", got)
	}
	if state.Loading() {
		t.Error("loading must be false after submit")
	}
}

func TestSubmit_PayloadSnapshotsValues(t *testing.T) {
	state := uistate.New()
	var payload map[string]string
	ctrl, err := New(loginForm(), state, WithSubmitCallback(func(_ context.Context, p map[string]string) error {
		payload = p
		return nil
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "user@example.com")
	ctrl.SetValue("password", "abc123")

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := map[string]string{"email": "user@example.com", "password": "abc123"}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

// The original behaviour allowed double submission; the in-flight guard is the
// deliberate redesign: a second submit while one is outstanding is rejected
// without touching state.
func TestSubmit_ReentrantSubmitRejected(t *testing.T) {
	state := uistate.New()

	release := make(chan struct{})
	started := make(chan struct{})
	ctrl, err := New(loginForm(), state, WithSubmitCallback(func(context.Context, map[string]string) error {
		close(started)
		<-release
		return nil
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "user@example.com")
	ctrl.SetValue("password", "abc123")

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = ctrl.Submit(context.Background())
	}()

	<-started
	if err := ctrl.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Errorf("first submit should succeed, got %v", firstErr)
	}
	if state.Loading() {
		t.Error("loading must be false once the outstanding submit finishes")
	}
}

func TestSetValue_LiveValidation(t *testing.T) {
	state := uistate.New()
	rec := &uistate.Recorder{}
	state.AttachSink(rec)

	ctrl, err := New(loginForm(), state, WithValidateOnInput(true))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "nope")
	if got := ctrl.InlineError("email"); got != rules.MessageInvalidEmail {
		t.Errorf("inline error = %q, want %q", got, rules.MessageInvalidEmail)
	}

	ctrl.SetValue("email", "user@example.com")
	if got := ctrl.InlineError("email"); got != "" {
		t.Errorf("inline error should clear, got %q", got)
	}

	if len(rec.Commands()) != 0 {
		t.Error("input events must never touch shared UI state")
	}
}

func TestSetValue_NonLiveTypesSkipped(t *testing.T) {
	state := uistate.New()
	form := Form{
		ID: "signup-form",
		Fields: []Field{
			{Name: "name", Type: "text"},
			{Name: "promo", Type: "coupon"},
		},
	}
	ctrl, err := New(form, state, WithValidateOnInput(true))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("name", "")
	ctrl.SetValue("promo", "lower!")
	if got := ctrl.InlineError("name"); got != "" {
		t.Errorf("text fields are not live-validated, got %q", got)
	}
	if got := ctrl.InlineError("promo"); got != "" {
		t.Errorf("coupon fields are not live-validated, got %q", got)
	}
}

func TestSubmit_AbsentFieldSkipsCheck(t *testing.T) {
	state := uistate.New()
	form := Form{
		ID: "newsletter-form",
		Fields: []Field{
			{Name: "email", Type: "email"},
		},
	}
	var called bool
	ctrl, err := New(form, state, WithSubmitCallback(func(context.Context, map[string]string) error {
		called = true
		return nil
	}))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	// No password field declared: only the email rule runs.
	ctrl.SetValue("email", "user@example.com")
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !called {
		t.Error("callback should run when the present fields validate")
	}
}

func TestSubmit_CouponValidatedAtSubmitTime(t *testing.T) {
	state := uistate.New()
	form := Form{
		ID: "signup-form",
		Fields: []Field{
			{Name: "email", Type: "email"},
			{Name: "promo", Type: "coupon"},
		},
	}
	ctrl, err := New(form, state)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.SetValue("email", "user@example.com")
	ctrl.SetValue("promo", "ab12c3")

	var valErr *ValidationError
	if err := ctrl.Submit(context.Background()); !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if valErr.Field != "promo" {
		t.Errorf("failing field = %q, want promo", valErr.Field)
	}
}

func TestNew_RequiresIdentityAndState(t *testing.T) {
	if _, err := New(Form{}, uistate.New()); err == nil {
		t.Error("expected error for missing form id")
	}
	if _, err := New(loginForm(), nil); err == nil {
		t.Error("expected error for missing state")
	}
}
