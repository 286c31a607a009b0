// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package mapsync owns the map view and its layer registry: fixed WMTS base
// layers derived from a capabilities document, and named mutable overlay
// layers kept in sync with sets of geo-tagged records.
package mapsync

// Projection describes the coordinate reference system of a map view.
type Projection struct {
	Code   string
	Extent [4]float64
	Units  string
}

// The Swiss grid MN95 and the Lausanne deployment constants.
var (
	// SwissProjection is EPSG:2056 bounded to the Lausanne tile extent.
	SwissProjection = Projection{
		Code:   "EPSG:2056",
		Extent: [4]float64{2532500, 1149000, 2545625, 1161000},
		Units:  "m",
	}

	// LausanneGare is the default map center, the main railway station.
	LausanneGare = [2]float64{2537968.5, 1152088.0}
)

// DefaultZoom is the initial zoom level of a new map view.
const DefaultZoom = 16
