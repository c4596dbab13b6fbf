// Package geomap wraps an external map provider behind a one-shot
// locate-then-render widget. Geolocation failures are absorbed: the widget
// falls back to a configured default coordinate and never surfaces the error.
package geomap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Coordinate is a geographic point (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Default center (New York) and zoom used when no override is configured and
// geolocation is unavailable.
var DefaultCenter = Coordinate{Lat: 40.7128, Lon: -74.0060}

const DefaultZoom = 13

// Locator is the geolocation collaborator: a single-shot "get current
// position" returning a coordinate or a failure. Continuous tracking is out of
// scope.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (Coordinate, error)

// CurrentPosition implements Locator.
func (f LocatorFunc) CurrentPosition(ctx context.Context) (Coordinate, error) {
	return f(ctx)
}

// RenderRequest describes one map rendering: a container identifier for the
// host surface, a center, a zoom level, and a single marker at the center.
type RenderRequest struct {
	Container string
	Center    Coordinate
	Zoom      int
	Marker    Coordinate
}

// Provider is the mapping collaborator. Given a render request it draws an
// interactive map; no return contract is consumed beyond the error.
type Provider interface {
	Render(ctx context.Context, req RenderRequest) error
}

// LocateError wraps a geolocation failure. Unsupported, denied, and timeout
// all collapse into this one kind; the widget treats them identically.
type LocateError struct {
	Err error
}

// Error implements the error interface.
func (e *LocateError) Error() string {
	return fmt.Sprintf("geomap: locate: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *LocateError) Unwrap() error {
	return e.Err
}

// Phase names the widget's position in its one-shot lifecycle.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLocating      Phase = "locating"
	PhaseRendered      Phase = "rendered"
)

// Option customises widget construction.
type Option func(*Widget)

// WithLocator injects the geolocation collaborator. Without one the widget
// renders the default center immediately.
func WithLocator(locator Locator) Option {
	return func(w *Widget) {
		w.locator = locator
	}
}

// WithDefaultCenter overrides the fallback coordinate.
func WithDefaultCenter(center Coordinate) Option {
	return func(w *Widget) {
		w.defaultCenter = center
	}
}

// WithZoom overrides the zoom level.
func WithZoom(zoom int) Option {
	return func(w *Widget) {
		if zoom > 0 {
			w.zoom = zoom
		}
	}
}

// WithContainer names the host surface passed through to the provider.
func WithContainer(container string) Option {
	return func(w *Widget) {
		w.container = container
	}
}

// WithLogger attaches a logger for the absorbed geolocation failures.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Widget renders a map centered on the device position when available, or on
// the configured default otherwise. Initialization is one-shot: no re-render
// on subsequent movement.
type Widget struct {
	mu            sync.Mutex
	provider      Provider
	locator       Locator
	defaultCenter Coordinate
	zoom          int
	container     string
	logger        *zap.Logger

	phase  Phase
	center Coordinate
}

// New constructs a widget for the given provider.
func New(provider Provider, options ...Option) (*Widget, error) {
	if provider == nil {
		return nil, errors.New("geomap: provider is required")
	}
	w := &Widget{
		provider:      provider,
		defaultCenter: DefaultCenter,
		zoom:          DefaultZoom,
		container:     "map",
		logger:        zap.NewNop(),
		phase:         PhaseUninitialized,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Initialize resolves the center (device position, else default) and asks the
// provider to render once. Calling it again after a successful render is a
// no-op.
func (w *Widget) Initialize(ctx context.Context) error {
	if w == nil {
		return errors.New("geomap: widget is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	if w.phase == PhaseRendered {
		w.mu.Unlock()
		return nil
	}
	w.phase = PhaseLocating
	locator := w.locator
	w.mu.Unlock()

	center := w.defaultCenter
	if locator != nil {
		position, err := locator.CurrentPosition(ctx)
		if err != nil {
			w.logger.Debug("geolocation unavailable, using default center",
				zap.Error(&LocateError{Err: err}))
		} else {
			center = position
		}
	}

	err := w.provider.Render(ctx, RenderRequest{
		Container: w.container,
		Center:    center,
		Zoom:      w.zoom,
		Marker:    center,
	})
	if err != nil {
		w.mu.Lock()
		w.phase = PhaseUninitialized
		w.mu.Unlock()
		return fmt.Errorf("geomap: render: %w", err)
	}

	w.mu.Lock()
	w.phase = PhaseRendered
	w.center = center
	w.mu.Unlock()
	return nil
}

// Phase reports the lifecycle phase.
func (w *Widget) Phase() Phase {
	if w == nil {
		return PhaseUninitialized
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Center returns the coordinate the map was rendered at. Meaningful only after
// a successful Initialize.
func (w *Widget) Center() Coordinate {
	if w == nil {
		return Coordinate{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.center
}
