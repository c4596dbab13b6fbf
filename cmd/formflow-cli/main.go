package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/geomap"
	"github.com/goliatone/go-formflow/pkg/htmlview"
	"github.com/goliatone/go-formflow/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults apply if empty)")
	formID := flag.String("form", "login-form", "form to fill and submit")
	baseURL := flag.String("base", "", "override the API base URL")
	listForms := flag.Bool("list", false, "list declared forms and exit")
	showHTML := flag.Bool("html", false, "print the status fragment after the run")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	view, err := htmlview.New()
	if err != nil {
		log.Fatalf("build status view: %v", err)
	}

	app, err := formflow.New(
		formflow.WithConfig(cfg),
		formflow.WithSinks(view),
		formflow.WithMapProvider(stdoutProvider{}),
	)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}

	ctx := context.Background()

	if *listForms {
		for id := range listControllers(app) {
			fmt.Println(id)
		}
		return
	}

	if err := app.Initialize(ctx); err != nil {
		log.Printf("map widget: %v", err)
	}

	ctrl, ok := app.Controller(*formID)
	if !ok {
		log.Fatalf("unknown form %q", *formID)
	}

	sess, err := session.New(ctrl)
	if err != nil {
		log.Fatalf("build session: %v", err)
	}

	if err := sess.Run(ctx); err != nil {
		if message, active := app.State().ErrorFor(*formID); active {
			fmt.Fprintf(os.Stderr, "submit failed: %s\n", message)
		} else {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
		}
		os.Exit(1)
	}

	if *showHTML {
		fragment, err := view.Render()
		if err != nil {
			log.Fatalf("render status: %v", err)
		}
		fmt.Println(fragment)
	}
}

func listControllers(app *formflow.App) map[string]struct{} {
	out := make(map[string]struct{})
	for _, id := range []string{"login-form", "signup-form", "newsletter-form"} {
		if _, ok := app.Controller(id); ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// stdoutProvider stands in for a real map renderer in the terminal.
type stdoutProvider struct{}

func (stdoutProvider) Render(_ context.Context, req geomap.RenderRequest) error {
	fmt.Printf("map %q centered at (%.4f, %.4f) zoom %d\n",
		req.Container, req.Center.Lat, req.Center.Lon, req.Zoom)
	return nil
}
