// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package mapsync

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Fixed WMTS parameters of the Lausanne tile service. Every base layer is
// served in the Swiss grid matrix set as PNG with the default style.
const (
	tileMatrixSet = "EPSG2056"
	tileFormat    = "image/png"
	tileStyle     = "default"
)

// FetchError reports a capabilities fetch that returned a non-success
// HTTP status.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching WMTS capabilities from %s: http status: %d", e.URL, e.Status)
}

// Capabilities is the parsed WMTS capabilities document, reduced to the
// elements needed to derive tile sources.
type Capabilities struct {
	XMLName  xml.Name `xml:"Capabilities"`
	Contents struct {
		Layers         []CapabilityLayer `xml:"Layer"`
		TileMatrixSets []struct {
			Identifier string `xml:"Identifier"`
		} `xml:"TileMatrixSet"`
	} `xml:"Contents"`
}

// CapabilityLayer is one advertised tile layer.
type CapabilityLayer struct {
	Identifier string   `xml:"Identifier"`
	Title      string   `xml:"Title"`
	Formats    []string `xml:"Format"`
	Styles     []struct {
		Identifier string `xml:"Identifier"`
	} `xml:"Style"`
	TileMatrixSetLinks []struct {
		TileMatrixSet string `xml:"TileMatrixSet"`
	} `xml:"TileMatrixSetLink"`
	ResourceURLs []struct {
		Format       string `xml:"format,attr"`
		ResourceType string `xml:"resourceType,attr"`
		Template     string `xml:"template,attr"`
	} `xml:"ResourceURL"`
}

// fetchCapabilities retrieves and parses a WMTS capabilities document.
func fetchCapabilities(ctx context.Context, client *http.Client, url string) (*Capabilities, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building capabilities request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching WMTS capabilities from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading WMTS capabilities from %s: %w", url, err)
	}

	caps := &Capabilities{}
	if err := xml.Unmarshal(body, caps); err != nil {
		return nil, fmt.Errorf("parsing WMTS capabilities from %s: %w", url, err)
	}
	return caps, nil
}

// TileSource is a WMTS tile source derived from a capabilities document,
// bound to one layer, matrix set, format and style.
type TileSource struct {
	Layer       string
	MatrixSet   string
	Format      string
	Style       string
	URLTemplate string
}

// TileURL expands the source URL template for one tile.
func (s *TileSource) TileURL(matrix string, col, row int) string {
	r := strings.NewReplacer(
		"{TileMatrixSet}", s.MatrixSet,
		"{TileMatrix}", matrix,
		"{TileCol}", strconv.Itoa(col),
		"{TileRow}", strconv.Itoa(row),
		"{Style}", s.Style,
	)
	return r.Replace(s.URLTemplate)
}

// newTileSource derives a tile source for layerName from the capabilities
// document. Every mismatch between what the layer advertises and the fixed
// parameters is an error.
func newTileSource(caps *Capabilities, layerName string) (*TileSource, error) {
	var layer *CapabilityLayer
	for i := range caps.Contents.Layers {
		if caps.Contents.Layers[i].Identifier == layerName {
			layer = &caps.Contents.Layers[i]
			break
		}
	}
	if layer == nil {
		return nil, fmt.Errorf("layer %q not present in capabilities", layerName)
	}

	linked := false
	for _, link := range layer.TileMatrixSetLinks {
		if link.TileMatrixSet == tileMatrixSet {
			linked = true
			break
		}
	}
	if !linked {
		return nil, fmt.Errorf("layer %q has no link to matrix set %s", layerName, tileMatrixSet)
	}

	offered := false
	for _, f := range layer.Formats {
		if f == tileFormat {
			offered = true
			break
		}
	}
	if !offered {
		return nil, fmt.Errorf("layer %q does not offer format %s", layerName, tileFormat)
	}

	if len(layer.Styles) > 0 {
		styled := false
		for _, s := range layer.Styles {
			if s.Identifier == tileStyle {
				styled = true
				break
			}
		}
		if !styled {
			return nil, fmt.Errorf("layer %q does not offer style %s", layerName, tileStyle)
		}
	}

	template := ""
	for _, ru := range layer.ResourceURLs {
		if ru.ResourceType == "tile" && ru.Format == tileFormat {
			template = ru.Template
			break
		}
	}
	if template == "" {
		return nil, fmt.Errorf("layer %q has no tile resource URL for %s", layerName, tileFormat)
	}

	return &TileSource{
		Layer:       layerName,
		MatrixSet:   tileMatrixSet,
		Format:      tileFormat,
		Style:       tileStyle,
		URLTemplate: template,
	}, nil
}
