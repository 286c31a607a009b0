// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package things

import "testing"

func TestSearchParams_BuildQuery(t *testing.T) {
	valTrue := true
	tests := []struct {
		name   string
		params SearchParams
		want   string
	}{
		{
			"defaults",
			DefaultSearchParams(),
			"inactivated=false&limit=100&offset=0",
		},
		{
			"zero filters omitted, created_by kept",
			SearchParams{TypeThing: 0, Keywords: "", CreatedBy: 5},
			"inactivated=false&limit=100&offset=0&created_by=5",
		},
		{
			"all filters set",
			SearchParams{TypeThing: 3, Keywords: "école", CreatedBy: 5, Inactivated: true, Validated: &valTrue, Limit: 10, Offset: 20},
			"inactivated=true&limit=10&offset=20&keywords=%C3%A9cole&type=3&created_by=5&validated=true",
		},
		{
			"keywords escaped",
			SearchParams{Keywords: "parc de milan"},
			"inactivated=false&limit=100&offset=0&keywords=parc+de+milan",
		},
		{
			"negative offset falls back to default",
			SearchParams{Limit: -1, Offset: -5},
			"inactivated=false&limit=100&offset=0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.buildQuery(); got != tt.want {
				t.Errorf("buildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
