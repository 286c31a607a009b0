// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package mapsync

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/logging"
)

// baseLayerDefs is the fixed, statically-known set of Lausanne base
// layers, in display order.
var baseLayerDefs = []struct {
	Title string
	Name  string
}{
	{"Orthophoto 2016 (Lausanne)", "orthophotos_ortho_lidar_2016"},
	{"Fond cadastral (Lausanne)", "fonds_geo_osm_bdcad_gris"},
	{"Plan ville (Lausanne)", "fonds_geo_osm_bdcad_couleur"},
}

// Controller constructs map views from a WMTS capabilities source and
// keeps their overlay layers synchronized with record sets.
type Controller struct {
	capabilitiesURL string
	client          *http.Client
}

// NewController creates a map controller reading base layer definitions
// from the capabilities document at capabilitiesURL.
func NewController(capabilitiesURL string, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Controller{
		capabilitiesURL: capabilitiesURL,
		client:          &http.Client{Timeout: timeout},
	}
}

// LoadBaseLayers fetches and parses the capabilities document and derives
// one tile base layer per fixed layer definition. The layer named
// defaultVisible is the only visible one. Any fetch, parse or derivation
// failure yields an empty list, never a partial one; an empty result means
// no map can be rendered.
func (c *Controller) LoadBaseLayers(ctx context.Context, capabilitiesURL, defaultVisible string) []*BaseLayer {
	caps, err := fetchCapabilities(ctx, c.client, capabilitiesURL)
	if err != nil {
		logging.Warn().Err(err).Str("url", capabilitiesURL).Msg("could not load WMTS capabilities")
		return nil
	}

	layers := make([]*BaseLayer, 0, len(baseLayerDefs))
	for _, def := range baseLayerDefs {
		source, err := newTileSource(caps, def.Name)
		if err != nil {
			logging.Warn().Err(err).Str("layer", def.Name).Msg("could not derive tile source")
			return nil
		}
		layers = append(layers, &BaseLayer{
			Title:   def.Title,
			Name:    def.Name,
			Visible: def.Name == defaultVisible,
			Source:  source,
		})
	}
	return layers
}

// MapView is a live map instance: a fixed projection and view, an ordered
// list of base layers and a registry of named overlay layers. A MapView
// returned by NewMap is ready; overlay operations never transition it back
// to a non-ready state. A nil MapView is terminal and must be recreated.
type MapView struct {
	Target     string
	Projection Projection
	Center     [2]float64
	Zoom       int

	baseLayers []*BaseLayer

	mu           sync.RWMutex
	overlays     map[string]*VectorLayer
	overlayOrder []string
}

// NewMap loads the base layers and constructs a map view bound to the
// Swiss grid projection. Returns nil when no base layers could be loaded;
// that is a precondition failure logged here, not an error to handle.
func (c *Controller) NewMap(ctx context.Context, target string, center [2]float64, zoom int, defaultVisible string) *MapView {
	baseLayers := c.LoadBaseLayers(ctx, c.capabilitiesURL, defaultVisible)
	if len(baseLayers) < 1 {
		logging.Warn().Str("target", target).Msg("base layers cannot be empty to see a nice map")
		return nil
	}
	logging.Debug().
		Str("target", target).
		Float64("x", center[0]).
		Float64("y", center[1]).
		Int("zoom", zoom).
		Msg("map created")
	return &MapView{
		Target:     target,
		Projection: SwissProjection,
		Center:     center,
		Zoom:       zoom,
		baseLayers: baseLayers,
		overlays:   make(map[string]*VectorLayer),
	}
}

// BaseLayers returns the ordered base layers.
func (m *MapView) BaseLayers() []*BaseLayer {
	out := make([]*BaseLayer, len(m.baseLayers))
	copy(out, m.baseLayers)
	return out
}

// OverlayNames returns the overlay names in creation order.
func (m *MapView) OverlayNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.overlayOrder))
	copy(out, m.overlayOrder)
	return out
}

// overlay returns the overlay registered under name, or nil.
func (m *MapView) overlay(name string) *VectorLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlays[name]
}

// ensureOverlay returns the overlay registered under name, creating it on
// first use. An overlay, once created for a name, is always reused.
func (m *MapView) ensureOverlay(name string) *VectorLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.overlays[name]; ok {
		return l
	}
	l := newVectorLayer(name)
	m.overlays[name] = l
	m.overlayOrder = append(m.overlayOrder, name)
	return l
}

// FindLayerByName scans the map's layer set for an exact, case-sensitive
// name match. Returns nil on a nil map or when no layer matches.
func FindLayerByName(m *MapView, name string) Layer {
	if m == nil {
		return nil
	}
	for _, b := range m.baseLayers {
		if b.Name == name {
			return b
		}
	}
	if l := m.overlay(name); l != nil {
		return l
	}
	return nil
}

// UpsertMarker places a marker on the named overlay layer. An absent layer
// is created holding just this marker; an existing layer is optionally
// cleared first, then appended to. Returns the created feature, or nil
// when the map itself is absent.
func UpsertMarker(m *MapView, layerName string, marker Marker, clearLayerFirst bool) *Feature {
	if m == nil {
		logging.Warn().Str("layer", layerName).Msg("cannot upsert a marker without a map")
		return nil
	}
	f := marker.feature()
	layer := m.overlay(layerName)
	if layer == nil {
		layer = m.ensureOverlay(layerName)
		layer.add(f)
		return f
	}
	if clearLayerFirst {
		layer.clear()
	}
	layer.add(f)
	return f
}

// ReplaceLayerFromRecords rebuilds the named overlay layer from a record
// set, one point feature per record. The layer is created when absent and
// cleared then repopulated when present. A nil map or nil record set is a
// no-op with a logged warning.
func ReplaceLayerFromRecords(m *MapView, layerName string, records []GeoRecord) {
	if m == nil || records == nil {
		logging.Warn().Str("layer", layerName).Msg("cannot replace layer without a map and records")
		return
	}
	features := make([]*Feature, 0, len(records))
	for _, r := range records {
		features = append(features, r.feature())
	}
	m.ensureOverlay(layerName).replaceAll(features)
	logging.Debug().Str("layer", layerName).Int("features", len(features)).Msg("overlay layer replaced")
}
