package formflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/geomap"
	"github.com/goliatone/go-formflow/pkg/uistate"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.BaseURL = baseURL
	return cfg
}

func TestApp_LoginSubmitHitsBackend(t *testing.T) {
	type request struct {
		path string
		body map[string]any
	}
	var requests []request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, request{path: r.URL.Path, body: body})
		_, _ = w.Write([]byte(`{"token":"x"}`))
	}))
	defer server.Close()

	app, err := New(WithConfig(testConfig(server.URL)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	app.SetValue("login-form", "email", "user@example.com")
	app.SetValue("login-form", "password", "abc123")
	if err := app.Submit(context.Background(), "login-form"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []request{{
		path: "/auth/login",
		body: map[string]any{"email": "user@example.com", "password": "abc123"},
	}}
	if diff := cmp.Diff(want, requests, cmp.AllowUnexported(request{})); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}

	if _, active := app.State().ErrorFor("login-form"); active {
		t.Error("successful submit must leave no stored error")
	}
	if app.State().Loading() {
		t.Error("loading must be false after submit")
	}
}

func TestApp_NewsletterSendsEmailObject(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	app, err := New(WithConfig(testConfig(server.URL)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	app.SetValue("newsletter-form", "email", "user@example.com")
	if err := app.Submit(context.Background(), "newsletter-form"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := map[string]any{"email": "user@example.com"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_BackendFailureStoredAgainstForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	app, err := New(WithConfig(testConfig(server.URL)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	app.SetValue("login-form", "email", "user@example.com")
	app.SetValue("login-form", "password", "abc123")
	if err := app.Submit(context.Background(), "login-form"); err == nil {
		t.Fatal("expected submit failure")
	}

	message, active := app.State().ErrorFor("login-form")
	if !active {
		t.Fatal("expected stored error for login-form")
	}
	if message == "" {
		t.Error("stored message must not be empty")
	}
	if app.State().Loading() {
		t.Error("loading must be false after submit")
	}
}

func TestApp_InvalidFormNeverReachesBackend(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	app, err := New(WithConfig(testConfig(server.URL)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	app.SetValue("login-form", "email", "not-an-email")
	app.SetValue("login-form", "password", "abc123")
	if err := app.Submit(context.Background(), "login-form"); err == nil {
		t.Fatal("expected validation failure")
	}

	if hits != 0 {
		t.Errorf("backend hit %d times for an invalid form", hits)
	}
}

func TestApp_TriggerModalEmitsCommand(t *testing.T) {
	rec := &uistate.Recorder{}
	app, err := New(WithSinks(rec))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	app.TriggerModal("signup-modal")

	want := []uistate.Command{{Kind: uistate.CommandRevealModal, ModalID: "signup-modal"}}
	if diff := cmp.Diff(want, rec.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_InitializeRendersMap(t *testing.T) {
	var rendered []geomap.RenderRequest
	provider := providerFunc(func(_ context.Context, req geomap.RenderRequest) error {
		rendered = append(rendered, req)
		return nil
	})

	app, err := New(
		WithMapProvider(provider),
		WithLocator(geomap.LocatorFunc(func(context.Context) (geomap.Coordinate, error) {
			return geomap.Coordinate{Lat: 10, Lon: 20}, nil
		})),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if len(rendered) != 1 {
		t.Fatalf("expected one render, got %d", len(rendered))
	}
	if rendered[0].Center != (geomap.Coordinate{Lat: 10, Lon: 20}) || rendered[0].Zoom != 13 {
		t.Errorf("render request = %+v", rendered[0])
	}
}

func TestApp_UnknownForm(t *testing.T) {
	app, err := New()
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := app.Submit(context.Background(), "missing-form"); err == nil {
		t.Error("expected error for unknown form id")
	}
}

type providerFunc func(ctx context.Context, req geomap.RenderRequest) error

func (f providerFunc) Render(ctx context.Context, req geomap.RenderRequest) error {
	return f(ctx, req)
}
