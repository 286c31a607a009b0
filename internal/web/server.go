// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package web exposes the session and map state over a small local HTTP
// facade, so a browser or another process can drive login, inspect the
// session and pull the overlay layers as GeoJSON.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/config"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/logging"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/mapsync"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/session"
)

// Server serves the local facade. It holds the session manager and the
// current map view; the map may be nil when base layers failed to load.
type Server struct {
	sessions *session.Manager
	mapView  *mapsync.MapView
	http     *http.Server
}

// New builds the facade server from the already constructed session
// manager and map view.
func New(cfg config.ServerConfig, sessions *session.Manager, mapView *mapsync.MapView) *Server {
	s := &Server{sessions: sessions, mapView: mapView}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Get("/api/logout", s.handleLogout)
	r.Get("/api/session", s.handleSession)
	r.Get("/api/map/layers", s.handleLayers)
	r.Get("/api/map/geojson/{layer}", s.handleGeoJSON)

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks serving the facade until Shutdown is called.
func (s *Server) ListenAndServe() error {
	logging.Info().Str("addr", s.http.Addr).Msg("facade listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("facade server failed: %w", err)
	}
	return nil
}

// Shutdown stops the facade gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encoding response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
