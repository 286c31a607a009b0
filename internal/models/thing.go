// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package models defines the Thing record types exchanged with the backend
// API. Field names and JSON tags follow the backend OpenAPI contract.
// Positions are expressed in the Swiss grid (EPSG:2056).
package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Thing is a full inventory record.
type Thing struct {
	ID                uuid.UUID       `json:"id" validate:"required"`
	TypeID            int32           `json:"type_id" validate:"required,gt=0"`
	Name              string          `json:"name" validate:"required,min=2"`
	Description       *string         `json:"description,omitempty"`
	Comment           *string         `json:"comment,omitempty"`
	ExternalID        *int32          `json:"external_id,omitempty"`
	ExternalRef       *string         `json:"external_ref,omitempty"`
	BuildAt           *time.Time      `json:"build_at,omitempty"`
	Status            *int32          `json:"status,omitempty"`
	ContainedBy       *uuid.UUID      `json:"contained_by,omitempty"`
	ContainedByOld    *int32          `json:"contained_by_old,omitempty"`
	Inactivated       bool            `json:"inactivated"`
	InactivatedTime   *time.Time      `json:"inactivated_time,omitempty"`
	InactivatedBy     *int32          `json:"inactivated_by,omitempty"`
	InactivatedReason *string         `json:"inactivated_reason,omitempty"`
	Validated         *bool           `json:"validated,omitempty"`
	ValidatedTime     *time.Time      `json:"validated_time,omitempty"`
	ValidatedBy       *int32          `json:"validated_by,omitempty"`
	ManagedBy         *int32          `json:"managed_by,omitempty"`
	CreatedAt         *time.Time      `json:"created_at,omitempty"`
	CreatedBy         int32           `json:"created_by"`
	LastModifiedAt    *time.Time      `json:"last_modified_at,omitempty"`
	LastModifiedBy    *int32          `json:"last_modified_by,omitempty"`
	Deleted           bool            `json:"deleted"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy         *int32          `json:"deleted_by,omitempty"`
	MoreData          json.RawMessage `json:"more_data,omitempty"`
	PosX              float64         `json:"pos_x"`
	PosY              float64         `json:"pos_y"`
}

// ThingList is the reduced record shape returned by search queries.
type ThingList struct {
	ID          uuid.UUID  `json:"id"`
	TypeID      int32      `json:"type_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	ExternalID  *int32     `json:"external_id,omitempty"`
	Inactivated bool       `json:"inactivated"`
	Validated   *bool      `json:"validated,omitempty"`
	Status      *int32     `json:"status,omitempty"`
	CreatedBy   int32      `json:"created_by"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	PosX        float64    `json:"pos_x"`
	PosY        float64    `json:"pos_y"`
}

// TypeThingList is one entry of the type catalog: the record type id, its
// display name and the marker icon used on the map.
type TypeThingList struct {
	ID         int32   `json:"id"`
	Name       string  `json:"name"`
	IconPath   string  `json:"icon_path"`
	ExternalID *int32  `json:"external_id,omitempty"`
	TableName  *string `json:"table_name,omitempty"`
}
