// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package config holds the application configuration, loaded with Koanf v2
// from layered sources (defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Application identity. The App identifier namespaces every persisted
// session key, so changing it invalidates existing sessions.
const (
	App      = "goCloudK8sThing"
	AppTitle = "Goéland-Thing"
	Version  = "0.1.0"
)

// Config holds all application configuration.
// Immutable after Load() and safe for concurrent read access.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Map     MapConfig     `koanf:"map"`
	Search  SearchConfig  `koanf:"search"`
	Session SessionConfig `koanf:"session"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// BackendConfig describes the remote Thing API this client talks to.
type BackendConfig struct {
	// URL is the backend base URL, without trailing slash.
	URL string `koanf:"url" validate:"required,url"`

	// Timeout applies to every backend HTTP call.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// MapConfig describes the map view defaults and the WMTS capabilities source.
type MapConfig struct {
	CapabilitiesURL  string  `koanf:"capabilities_url" validate:"required,url"`
	DefaultBaseLayer string  `koanf:"default_base_layer" validate:"required"`
	CenterX          float64 `koanf:"center_x"`
	CenterY          float64 `koanf:"center_y"`
	Zoom             int     `koanf:"zoom" validate:"gte=1,lte=22"`
}

// SearchConfig holds the default record search parameters.
type SearchConfig struct {
	Limit       int  `koanf:"limit" validate:"gt=0,lte=1000"`
	Offset      int  `koanf:"offset" validate:"gte=0"`
	Inactivated bool `koanf:"inactivated"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	// Store is the backend: memory or badger.
	Store string `koanf:"store" validate:"oneof=memory badger"`

	// StorePath is the on-disk location for the badger backend.
	StorePath string `koanf:"store_path"`
}

// ServerConfig configures the local serving facade.
type ServerConfig struct {
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port" validate:"gt=0,lte=65535"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for coherence. Called by LoadWithKoanf,
// exported so hand-built configs in tests can be checked too.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Session.Store == "badger" && c.Session.StorePath == "" {
		return fmt.Errorf("session.store_path is required when session.store is badger")
	}
	return nil
}
