package geomap

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type captureProvider struct {
	requests []RenderRequest
	err      error
}

func (p *captureProvider) Render(_ context.Context, req RenderRequest) error {
	p.requests = append(p.requests, req)
	return p.err
}

func TestInitialize_GeolocationDeniedFallsBack(t *testing.T) {
	provider := &captureProvider{}
	widget, err := New(provider, WithLocator(LocatorFunc(func(context.Context) (Coordinate, error) {
		return Coordinate{}, errors.New("permission denied")
	})))
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	if err := widget.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	want := []RenderRequest{{
		Container: "map",
		Center:    Coordinate{Lat: 40.7128, Lon: -74.0060},
		Zoom:      13,
		Marker:    Coordinate{Lat: 40.7128, Lon: -74.0060},
	}}
	if diff := cmp.Diff(want, provider.requests); diff != "" {
		t.Errorf("render request mismatch (-want +got):\n%s", diff)
	}
	if widget.Phase() != PhaseRendered {
		t.Errorf("phase = %q, want rendered", widget.Phase())
	}
}

func TestInitialize_UsesDevicePosition(t *testing.T) {
	provider := &captureProvider{}
	widget, err := New(provider, WithLocator(LocatorFunc(func(context.Context) (Coordinate, error) {
		return Coordinate{Lat: 10, Lon: 20}, nil
	})))
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	if err := widget.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if got := widget.Center(); got != (Coordinate{Lat: 10, Lon: 20}) {
		t.Errorf("center = %+v, want (10, 20)", got)
	}
	if len(provider.requests) != 1 || provider.requests[0].Zoom != 13 {
		t.Fatalf("expected one render at zoom 13, got %+v", provider.requests)
	}
}

func TestInitialize_NoLocatorRendersDefault(t *testing.T) {
	provider := &captureProvider{}
	widget, err := New(provider)
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	if err := widget.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := widget.Center(); got != DefaultCenter {
		t.Errorf("center = %+v, want default", got)
	}
}

func TestInitialize_OneShot(t *testing.T) {
	provider := &captureProvider{}
	widget, err := New(provider)
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	if err := widget.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := widget.Initialize(context.Background()); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if len(provider.requests) != 1 {
		t.Errorf("expected a single render, got %d", len(provider.requests))
	}
}

func TestInitialize_ProviderFailurePropagates(t *testing.T) {
	provider := &captureProvider{err: errors.New("tiles unavailable")}
	widget, err := New(provider)
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	if err := widget.Initialize(context.Background()); err == nil {
		t.Fatal("expected render failure to propagate")
	}
	if widget.Phase() != PhaseUninitialized {
		t.Errorf("phase = %q, want uninitialized after failed render", widget.Phase())
	}
}

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for missing provider")
	}
}
