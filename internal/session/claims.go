// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the custom claims embedded in the backend token.
// The backend signs the token and is the sole authority on its validity;
// this client only decodes the claims segment for display and for the
// local expiry check. The signature is intentionally NOT verified here.
type TokenClaims struct {
	UserID  int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Groups  []int  `json:"groups"`
	jwt.RegisteredClaims
}

// ParseTokenClaims decodes the claims segment of a three-part dot-separated
// base64url token without verifying its signature.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}
	return claims, nil
}

// joinGroups renders a group list in its persisted form: a comma-joined
// string of integers, or the literal "null" when the claim was absent.
func joinGroups(groups []int) string {
	if groups == nil {
		return "null"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strconv.Itoa(g)
	}
	return strings.Join(parts, ",")
}

// parseGroups parses a persisted groups string back into an ordered list.
// Returns nil for the literal "null" or for a single unparsable value.
func parseGroups(raw string) []int {
	if raw == "null" || raw == "" {
		return nil
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		groups := make([]int, len(parts))
		for i, p := range parts {
			// Unparsable entries become zero rather than failing
			// the whole list.
			groups[i], _ = strconv.Atoi(p)
		}
		return groups
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return []int{n}
}
