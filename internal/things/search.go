// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package things

import (
	"net/url"
	"strconv"
)

// Search parameter defaults.
const (
	DefaultLimit  = 100
	DefaultOffset = 0
)

// SearchParams describes one record search. The zero value of TypeThing
// and CreatedBy means "any", empty Keywords means "no text filter"; those
// never appear in the emitted query string.
type SearchParams struct {
	TypeThing   int32
	Keywords    string
	CreatedBy   int32
	Inactivated bool
	Validated   *bool
	Limit       int
	Offset      int
}

// DefaultSearchParams returns the search defaults: first page of 100
// active records, no filters.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: DefaultLimit, Offset: DefaultOffset}
}

// buildQuery renders the parameters as a deterministic query string:
// inactivated, limit and offset always present, the optional filters only
// when set.
func (p SearchParams) buildQuery() string {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = DefaultOffset
	}

	q := "inactivated=" + strconv.FormatBool(p.Inactivated)
	q += "&limit=" + strconv.Itoa(limit)
	q += "&offset=" + strconv.Itoa(offset)
	if p.Keywords != "" {
		q += "&keywords=" + url.QueryEscape(p.Keywords)
	}
	if p.TypeThing > 0 {
		q += "&type=" + strconv.FormatInt(int64(p.TypeThing), 10)
	}
	if p.CreatedBy > 0 {
		q += "&created_by=" + strconv.FormatInt(int64(p.CreatedBy), 10)
	}
	if p.Validated != nil {
		q += "&validated=" + strconv.FormatBool(*p.Validated)
	}
	return q
}
