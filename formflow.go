// Package formflow wires the form-handling pipeline for a marketing site:
// validation rules, per-form controllers, shared UI state with command sinks,
// the JSON remote-call client, and an optional geolocated map widget.
package formflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/apiclient"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/controller"
	"github.com/goliatone/go-formflow/pkg/geomap"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/uistate"
)

// Convenience aliases so most callers only import the root package.
type (
	Command  = uistate.Command
	Sink     = uistate.Sink
	Snapshot = uistate.Snapshot
)

// Option customises App construction.
type Option func(*App)

// WithConfig supplies the runtime configuration. Defaults to config.Default().
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.cfg = cfg
		a.cfgSet = true
	}
}

// WithCatalog overrides the form catalog. Defaults to the embedded document
// declaring the login, signup and newsletter forms.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *App) {
		if cat != nil {
			a.catalog = cat
		}
	}
}

// WithSinks attaches UI command sinks to the shared state.
func WithSinks(sinks ...uistate.Sink) Option {
	return func(a *App) {
		a.sinks = append(a.sinks, sinks...)
	}
}

// WithHTTPClient injects the http.Client used by the remote-call client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *App) {
		a.httpClient = client
	}
}

// WithAPIClient replaces the remote-call client entirely; WithConfig endpoint
// settings are ignored when this is used.
func WithAPIClient(client *apiclient.Client) Option {
	return func(a *App) {
		a.client = client
	}
}

// WithMapProvider enables the map widget using the given provider.
func WithMapProvider(provider geomap.Provider) Option {
	return func(a *App) {
		a.mapProvider = provider
	}
}

// WithLocator supplies the geolocation collaborator for the map widget.
func WithLocator(locator geomap.Locator) Option {
	return func(a *App) {
		a.locator = locator
	}
}

// WithValidateOnInput enables live validation on every controller.
func WithValidateOnInput(enabled bool) Option {
	return func(a *App) {
		a.validateOnInput = enabled
	}
}

// WithLogger attaches a logger shared by the controllers and the map widget.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// App owns one controller per declared form plus the shared plumbing. Build it
// once at startup and keep it for the page session.
type App struct {
	cfg    config.Config
	cfgSet bool

	catalog         *catalog.Catalog
	sinks           []uistate.Sink
	httpClient      *http.Client
	client          *apiclient.Client
	mapProvider     geomap.Provider
	locator         geomap.Locator
	validateOnInput bool
	logger          *zap.Logger

	state       *uistate.State
	registry    *rules.Registry
	controllers map[string]*controller.Controller
	widget      *geomap.Widget
}

// New constructs the App, wiring one controller per catalog form with a submit
// callback that POSTs the payload to the form's endpoint and discards the
// response body.
func New(options ...Option) (*App, error) {
	a := &App{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}

	if !a.cfgSet {
		a.cfg = config.Default()
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := rules.NewRegistryWithOptions(rules.Options{
		EmailPattern:      a.cfg.Validation.EmailPattern,
		CouponPattern:     a.cfg.Validation.CouponPattern,
		PasswordMinLength: a.cfg.Validation.PasswordMinLength,
	})
	if err != nil {
		return nil, fmt.Errorf("formflow: compile validation rules: %w", err)
	}
	a.registry = registry

	if a.catalog == nil {
		cat, err := catalog.Default(context.Background())
		if err != nil {
			return nil, fmt.Errorf("formflow: load default catalog: %w", err)
		}
		a.catalog = cat
	}

	forms := a.catalog.Forms()
	formIDs := make([]string, 0, len(forms))
	for _, form := range forms {
		formIDs = append(formIDs, form.ID)
	}
	a.state = uistate.New(
		uistate.WithKnownForms(formIDs...),
		uistate.WithClearOnNoError(a.cfg.ClearStaleErrors),
		uistate.WithSinks(a.sinks...),
	)

	if a.client == nil {
		clientOptions := []apiclient.Option{
			apiclient.WithEndpoints(a.cfg.Endpoints.Login, a.cfg.Endpoints.Signup, a.cfg.Endpoints.Newsletter),
		}
		if a.httpClient != nil {
			clientOptions = append(clientOptions, apiclient.WithHTTPClient(a.httpClient))
		}
		client, err := apiclient.New(a.cfg.BaseURL, clientOptions...)
		if err != nil {
			return nil, fmt.Errorf("formflow: build api client: %w", err)
		}
		a.client = client
	}

	a.controllers = make(map[string]*controller.Controller, len(forms))
	for _, form := range forms {
		ctrl, err := controller.New(toControllerForm(form), a.state,
			controller.WithRegistry(a.registry),
			controller.WithValidateOnInput(a.validateOnInput),
			controller.WithSubmitCallback(a.submitCallback(form)),
			controller.WithLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("formflow: controller %s: %w", form.ID, err)
		}
		a.controllers[form.ID] = ctrl
	}

	if a.mapProvider != nil {
		widget, err := geomap.New(a.mapProvider,
			geomap.WithLocator(a.locator),
			geomap.WithDefaultCenter(geomap.Coordinate{Lat: a.cfg.Map.Lat, Lon: a.cfg.Map.Lon}),
			geomap.WithZoom(a.cfg.Map.Zoom),
			geomap.WithContainer(a.cfg.Map.Container),
			geomap.WithLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("formflow: map widget: %w", err)
		}
		a.widget = widget
	}

	return a, nil
}

// Initialize performs the one-shot startup work: currently the map widget
// render, when one is configured.
func (a *App) Initialize(ctx context.Context) error {
	if a == nil {
		return errors.New("formflow: app is nil")
	}
	if a.widget == nil {
		return nil
	}
	return a.widget.Initialize(ctx)
}

// Controller returns the controller bound to formID.
func (a *App) Controller(formID string) (*controller.Controller, bool) {
	if a == nil {
		return nil, false
	}
	ctrl, ok := a.controllers[formID]
	return ctrl, ok
}

// SetValue records an input event against the named form field.
func (a *App) SetValue(formID, field, value string) {
	if ctrl, ok := a.Controller(formID); ok {
		ctrl.SetValue(field, value)
	}
}

// Submit runs the submit sequence for the named form.
func (a *App) Submit(ctx context.Context, formID string) error {
	ctrl, ok := a.Controller(formID)
	if !ok {
		return fmt.Errorf("formflow: unknown form %q", formID)
	}
	return ctrl.Submit(ctx)
}

// TriggerModal emits the reveal command for the named modal, mirroring a
// click on a modal-trigger element.
func (a *App) TriggerModal(modalID string) {
	if a == nil {
		return
	}
	a.state.RevealModal(modalID)
}

// State exposes the shared UI state.
func (a *App) State() *uistate.State {
	if a == nil {
		return nil
	}
	return a.state
}

// Client exposes the remote-call client.
func (a *App) Client() *apiclient.Client {
	if a == nil {
		return nil
	}
	return a.client
}

// MapWidget returns the configured map widget, or nil when no provider was
// supplied.
func (a *App) MapWidget() *geomap.Widget {
	if a == nil {
		return nil
	}
	return a.widget
}

// submitCallback routes a form submit to the matching remote-call wrapper.
// Response bodies are discarded; success feedback is limited to the
// controller's own reset, as on the original surfaces.
func (a *App) submitCallback(form catalog.Form) controller.Callback {
	return func(ctx context.Context, payload map[string]string) error {
		var err error
		switch form.OperationID {
		case "login":
			_, err = a.client.Login(ctx, payload)
		case "signup":
			_, err = a.client.Signup(ctx, payload)
		case "subscribeNewsletter":
			_, err = a.client.SubscribeNewsletter(ctx, payload["email"])
		default:
			_, err = a.client.Do(ctx, form.Endpoint, apiclient.RequestOptions{
				Method: form.Method,
				Body:   payload,
			})
		}
		return err
	}
}

func toControllerForm(form catalog.Form) controller.Form {
	out := controller.Form{ID: form.ID}
	for _, field := range form.Fields {
		out.Fields = append(out.Fields, controller.Field{
			Name:     field.Name,
			Type:     field.Type,
			Label:    field.Label,
			Required: field.Required,
		})
	}
	return out
}
