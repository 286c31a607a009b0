// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package mapsync

// DefaultMarkerIcon is the icon used for point features that carry no
// icon_path property of their own.
const DefaultMarkerIcon = "/img/gomarker_star_blue.png"

// Polygon rendering defaults, matching the stock OpenLayers vector style.
const (
	defaultFillColor   = "rgba(255,255,255,0.4)"
	defaultStrokeColor = "#3399CC"
	defaultStrokeWidth = 1.25
)

// Style is the resolved rendering description of one feature.
type Style struct {
	IconPath    string
	FillColor   string
	StrokeColor string
	StrokeWidth float64
}

// StylePoint resolves the style of a point feature: the feature's own
// icon_path property when present, the default marker icon otherwise.
func StylePoint(f *Feature) Style {
	s := Style{IconPath: DefaultMarkerIcon}
	if f == nil {
		return s
	}
	if v, ok := f.Properties["icon_path"].(string); ok && v != "" {
		s.IconPath = v
	}
	return s
}

// StylePolygon resolves the style of a polygon feature from its
// fill_color, stroke_color and stroke_width properties, falling back to
// the stock defaults for each one that is absent.
func StylePolygon(f *Feature) Style {
	s := Style{
		FillColor:   defaultFillColor,
		StrokeColor: defaultStrokeColor,
		StrokeWidth: defaultStrokeWidth,
	}
	if f == nil {
		return s
	}
	if v, ok := f.Properties["fill_color"].(string); ok && v != "" {
		s.FillColor = v
	}
	if v, ok := f.Properties["stroke_color"].(string); ok && v != "" {
		s.StrokeColor = v
	}
	switch v := f.Properties["stroke_width"].(type) {
	case float64:
		if v > 0 {
			s.StrokeWidth = v
		}
	case int:
		if v > 0 {
			s.StrokeWidth = float64(v)
		}
	}
	return s
}
