// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/config"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/mapsync"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/session"
)

type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionView struct {
	Active     bool   `json:"active"`
	UserID     int    `json:"user_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Login      string `json:"login,omitempty"`
	Email      string `json:"email,omitempty"`
	IsAdmin    bool   `json:"is_admin,omitempty"`
	Groups     []int  `json:"groups,omitempty"`
	Expiration int64  `json:"expiration,omitempty"`
}

type layerView struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Kind    string `json:"kind"`
	Visible bool   `json:"visible,omitempty"`
	Count   int    `json:"count,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     config.App,
		"version": config.Version,
		"status":  "up",
	})
}

// handleLogin hashes the submitted password and runs the backend token
// exchange. The backend status is passed through when it rejected the
// credentials.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	if form.Username == "" || form.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res := s.sessions.Login(r.Context(), form.Username, session.HashPassword(form.Password))
	if !res.OK() {
		var bse *session.BadStatusError
		if errors.As(res.Err, &bse) {
			writeError(w, bse.Status, "login refused by backend")
			return
		}
		writeError(w, http.StatusBadGateway, "backend unreachable")
		return
	}
	writeJSON(w, http.StatusOK, s.currentSession())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context())
	writeJSON(w, http.StatusOK, sessionView{Active: false})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSession())
}

func (s *Server) currentSession() sessionView {
	if !s.sessions.IsActive() {
		return sessionView{Active: false}
	}
	return sessionView{
		Active:     true,
		UserID:     s.sessions.UserID(),
		Name:       s.sessions.UserName(),
		Login:      s.sessions.UserLogin(),
		Email:      s.sessions.UserEmail(),
		IsAdmin:    s.sessions.IsAdmin(),
		Groups:     s.sessions.Groups(),
		Expiration: s.sessions.DateExpiration(),
	}
}

// handleLayers lists the base and overlay layers of the current map, or
// 503 when no map could be built.
func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	if s.mapView == nil {
		writeError(w, http.StatusServiceUnavailable, "no map available")
		return
	}

	views := []layerView{}
	for _, b := range s.mapView.BaseLayers() {
		views = append(views, layerView{Name: b.Name, Title: b.Title, Kind: "base", Visible: b.Visible})
	}
	for _, name := range s.mapView.OverlayNames() {
		lv := layerView{Name: name, Kind: "overlay"}
		if l, ok := mapsync.FindLayerByName(s.mapView, name).(*mapsync.VectorLayer); ok {
			lv.Count = l.Count()
		}
		views = append(views, lv)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGeoJSON renders one overlay layer as a GeoJSON feature collection.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	if s.mapView == nil {
		writeError(w, http.StatusServiceUnavailable, "no map available")
		return
	}
	name := chi.URLParam(r, "layer")
	layer, ok := mapsync.FindLayerByName(s.mapView, name).(*mapsync.VectorLayer)
	if !ok {
		writeError(w, http.StatusNotFound, "no such overlay layer")
		return
	}
	writeJSON(w, http.StatusOK, layer.FeatureCollection())
}
