// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"thingmap.yaml",
	"thingmap.yml",
	"/etc/thingmap/config.yaml",
	"/etc/thingmap/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the Lausanne deployment defaults: the city tile
// service, the Swiss grid map view centered on the main station and the
// backend on its development port.
func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:9191",
			Timeout: 10 * time.Second,
		},
		Map: MapConfig{
			CapabilitiesURL:  "https://tilesmn95.lausanne.ch/tiles/1.0.0/LausanneWMTS.xml",
			DefaultBaseLayer: "fonds_geo_osm_bdcad_couleur",
			CenterX:          2537968.5,
			CenterY:          1152088.0,
			Zoom:             16,
		},
		Search: SearchConfig{
			Limit:       100,
			Offset:      0,
			Inactivated: false,
		},
		Session: SessionConfig{
			Store:     "memory",
			StorePath: "",
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values matching the Lausanne deployment
//  2. Config file: optional YAML file (if it exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars come in as strings but cors_origins expects a slice.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return an empty string and are skipped, so random
// environment noise never pollutes the configuration.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		"BACKEND_URL":     "backend.url",
		"BACKEND_TIMEOUT": "backend.timeout",

		"MAP_CAPABILITIES_URL":   "map.capabilities_url",
		"MAP_DEFAULT_BASE_LAYER": "map.default_base_layer",
		"MAP_CENTER_X":           "map.center_x",
		"MAP_CENTER_Y":           "map.center_y",
		"MAP_ZOOM":               "map.zoom",

		"SEARCH_LIMIT":       "search.limit",
		"SEARCH_OFFSET":      "search.offset",
		"SEARCH_INACTIVATED": "search.inactivated",

		"SESSION_STORE":      "session.store",
		"SESSION_STORE_PATH": "session.store_path",

		"HTTP_HOST":    "server.host",
		"HTTP_PORT":    "server.port",
		"CORS_ORIGINS": "server.cors_origins",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
