// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Command thingmap authenticates against the Thing backend, loads the
// record inventory onto a Lausanne WMTS map and either dumps the overlay
// as GeoJSON or serves the whole state over a local HTTP facade.
//
// Credentials come from the THING_USERNAME and THING_PASSWORD environment
// variables; every other setting is configurable through thingmap.yaml or
// the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/config"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/logging"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/mapsync"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/session"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/things"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/web"
)

// overlayName is the overlay layer holding the inventory records.
const overlayName = "ThingLayer"

func main() {
	var (
		serve        = flag.Bool("serve", false, "serve the session and map state over the local HTTP facade")
		resetSession = flag.Bool("reset-session", false, "clear any persisted session before starting")
		showVersion  = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s thingmap %s\n", config.App, config.Version)
		return
	}

	if err := run(*serve, *resetSession); err != nil {
		logging.Fatal().Err(err).Msg("thingmap failed")
	}
}

func run(serve, resetSession bool) error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("app", config.App).
		Str("version", config.Version).
		Str("backend", cfg.Backend.URL).
		Msg("starting thingmap")

	store, closeStore, err := openStore(cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	if resetSession {
		store.Clear(config.App)
		logging.Info().Msg("persisted session cleared")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(cfg.Backend.URL, config.App, store, cfg.Backend.Timeout)
	client := things.NewClient(cfg.Backend.URL, sessions, cfg.Backend.Timeout)
	controller := mapsync.NewController(cfg.Map.CapabilitiesURL, cfg.Backend.Timeout)

	if err := ensureSession(ctx, sessions); err != nil {
		return err
	}

	mapView := buildMap(ctx, cfg, controller, client)

	if serve {
		return serveFacade(ctx, cfg.Server, sessions, mapView)
	}
	return dumpOverlay(mapView)
}

// openStore builds the configured session store and its close function.
func openStore(cfg config.SessionConfig) (session.Store, func(), error) {
	switch cfg.Store {
	case "badger":
		bs, err := session.OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening session store at %s: %w", cfg.StorePath, err)
		}
		return bs, func() {
			if err := bs.Close(); err != nil {
				logging.Error().Err(err).Msg("closing session store failed")
			}
		}, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

// ensureSession reuses a still-active persisted session, or logs in with
// the credentials from the environment.
func ensureSession(ctx context.Context, sessions *session.Manager) error {
	if sessions.IsActive() {
		logging.Info().Str("user", sessions.UserLogin()).Msg("reusing persisted session")
		return nil
	}

	username := os.Getenv("THING_USERNAME")
	password := os.Getenv("THING_PASSWORD")
	if username == "" || password == "" {
		return fmt.Errorf("no active session and THING_USERNAME / THING_PASSWORD are not set")
	}

	res := sessions.Login(ctx, username, session.HashPassword(password))
	if !res.OK() {
		return fmt.Errorf("login failed: %w", res.Err)
	}
	logging.Info().
		Str("user", username).
		Int("user_id", res.Data.Claims.UserID).
		Bool("is_admin", res.Data.Claims.IsAdmin).
		Msg("logged in")
	return nil
}

// buildMap loads the type catalog and the record inventory, builds the map
// and fills the overlay layer. Backend failures degrade to a map without
// the overlay, or to no map at all; both are serveable states.
func buildMap(ctx context.Context, cfg *config.Config, controller *mapsync.Controller, client *things.Client) *mapsync.MapView {
	mapView := controller.NewMap(ctx, "map",
		[2]float64{cfg.Map.CenterX, cfg.Map.CenterY}, cfg.Map.Zoom, cfg.Map.DefaultBaseLayer)
	if mapView == nil {
		return nil
	}

	if res := client.Types(ctx); !res.OK() {
		logging.Warn().Err(res.Err).Msg("could not load the type catalog, markers will use the default icon")
	}

	search := things.SearchParams{
		Limit:       cfg.Search.Limit,
		Offset:      cfg.Search.Offset,
		Inactivated: cfg.Search.Inactivated,
	}
	res := client.Search(ctx, search)
	if !res.OK() {
		logging.Warn().Err(res.Err).Msg("record search failed, overlay layer stays empty")
		return mapView
	}

	records := client.GeoRecords(*res.Data)
	mapsync.ReplaceLayerFromRecords(mapView, overlayName, records)
	logging.Info().
		Int("found", len(*res.Data)).
		Int("placed", len(records)).
		Msg("inventory loaded onto the map")
	return mapView
}

// serveFacade runs the local HTTP facade until the context is cancelled.
func serveFacade(ctx context.Context, cfg config.ServerConfig, sessions *session.Manager, mapView *mapsync.MapView) error {
	srv := web.New(cfg, sessions, mapView)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("facade shutdown: %w", err)
	}
	logging.Info().Msg("facade stopped")
	return nil
}

// dumpOverlay writes the overlay layer as GeoJSON on stdout.
func dumpOverlay(mapView *mapsync.MapView) error {
	if mapView == nil {
		return fmt.Errorf("no map could be built, nothing to dump")
	}
	layer, ok := mapsync.FindLayerByName(mapView, overlayName).(*mapsync.VectorLayer)
	if !ok {
		return fmt.Errorf("overlay layer %s was never created", overlayName)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(layer.FeatureCollection()); err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}
	return nil
}
