// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package mapsync

import "sync"

// Layer is any named layer of a map view, base or overlay.
type Layer interface {
	LayerName() string
}

// BaseLayer is a full-coverage background tile layer. Exactly one base
// layer is visible at a time.
type BaseLayer struct {
	Title   string
	Name    string
	Visible bool
	Source  *TileSource
}

// LayerName returns the layer identifier.
func (b *BaseLayer) LayerName() string { return b.Name }

// Geometry is a GeoJSON geometry. Coordinates are in the projection of
// the owning map view.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Feature is one GeoJSON feature of an overlay layer.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the GeoJSON rendering of an overlay layer.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// VectorLayer is a named, mutable set of features drawn above the base
// layers. Created lazily on first write to its name and reused afterwards.
type VectorLayer struct {
	name string

	mu       sync.RWMutex
	features []*Feature
}

func newVectorLayer(name string) *VectorLayer {
	return &VectorLayer{name: name}
}

// LayerName returns the overlay name.
func (l *VectorLayer) LayerName() string { return l.name }

// Count returns the number of features currently on the layer.
func (l *VectorLayer) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.features)
}

// Features returns a snapshot of the layer's features.
func (l *VectorLayer) Features() []*Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Feature, len(l.features))
	copy(out, l.features)
	return out
}

// FeatureCollection returns the layer content as a GeoJSON collection.
func (l *VectorLayer) FeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: l.Features()}
}

func (l *VectorLayer) add(f *Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = append(l.features, f)
}

func (l *VectorLayer) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = nil
}

func (l *VectorLayer) replaceAll(fs []*Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = fs
}

// Marker is one point of interest to place on an overlay layer.
type Marker struct {
	ID       string
	Title    string
	IconPath string
	Position [2]float64
}

// feature renders the marker as a point feature carrying its identifying
// and styling metadata.
func (mk Marker) feature() *Feature {
	return &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{mk.Position[0], mk.Position[1]},
		},
		Properties: map[string]any{
			"id":        mk.ID,
			"name":      mk.Title,
			"icon_path": mk.IconPath,
		},
	}
}

// GeoRecord is a backend Thing record with a geographic position, reduced
// to what the map needs: identity, styling lookup and coordinates.
type GeoRecord struct {
	ID         string
	TypeID     int32
	Name       string
	ExternalID *int32
	IconPath   string
	PosX       float64
	PosY       float64
}

// feature renders the record as a point feature carrying its identity and
// styling properties.
func (r GeoRecord) feature() *Feature {
	props := map[string]any{
		"id":        r.ID,
		"type_id":   r.TypeID,
		"name":      r.Name,
		"icon_path": r.IconPath,
	}
	if r.ExternalID != nil {
		props["external_id"] = *r.ExternalID
	}
	return &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{r.PosX, r.PosY},
		},
		Properties: props,
	}
}
