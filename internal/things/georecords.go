// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package things

import (
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/mapsync"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/models"
)

// GeoRecords converts a search result into the record shape the map layer
// consumes, resolving each record's marker icon through the type catalog.
// Records without a positive position are skipped; they cannot be placed.
func (c *Client) GeoRecords(list []models.ThingList) []mapsync.GeoRecord {
	records := make([]mapsync.GeoRecord, 0, len(list))
	for _, t := range list {
		if t.PosX <= 0 || t.PosY <= 0 {
			continue
		}
		icon := c.IconPath(t.TypeID)
		if icon == "" {
			icon = mapsync.DefaultMarkerIcon
		}
		records = append(records, mapsync.GeoRecord{
			ID:         t.ID.String(),
			TypeID:     t.TypeID,
			Name:       t.Name,
			ExternalID: t.ExternalID,
			IconPath:   icon,
			PosX:       t.PosX,
			PosY:       t.PosY,
		})
	}
	return records
}
