// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package session owns the authentication lifecycle against the Thing
// backend: credential hashing, token exchange, persisted session state,
// expiry checking and claim accessors.
//
// A session is either fully present (every required key persisted) or
// absent. Partial state, for example after a crash in the middle of a
// multi-key clear, reads back as absent. Network operations are attempted
// exactly once and every failure is returned as a structured Result, never
// raised as a panic.
package session

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/logging"
)

// Persisted storage key suffixes, namespaced by the application identifier.
const (
	keyToken      = "_goapi_jwt_session_token"
	keyUserID     = "_goapi_idgouser"
	keyName       = "_goapi_name"
	keyLogin      = "_goapi_username"
	keyEmail      = "_goapi_email"
	keyIsAdmin    = "_goapi_isadmin"
	keyGroups     = "_goapi_groups"
	keyExpiration = "_goapi_date_expiration"
)

// allKeys lists every session key suffix, in the order they are cleared.
var allKeys = []string{
	keyToken, keyUserID, keyName, keyLogin,
	keyEmail, keyIsAdmin, keyGroups, keyExpiration,
}

// requiredKeys are the suffixes that must all be present for a session to
// be considered active.
var requiredKeys = []string{keyToken, keyUserID, keyIsAdmin, keyEmail}

// BadStatusError reports an HTTP response outside the expected status.
type BadStatusError struct {
	Status int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("got a bad status: %d", e.Status)
}

// TransportError reports a network-level failure where no HTTP response
// was received at all.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Result is the outcome of a network-facing session operation: a
// {data, error, status} triple. Status is zero when no HTTP response was
// received.
type Result[T any] struct {
	Data   *T
	Status int
	Err    error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil && r.Data != nil }

// TokenInfo is the payload of a successful login: the raw bearer token and
// its decoded claims.
type TokenInfo struct {
	Token  string
	Claims TokenClaims
}

// StatusInfo is the payload of the backend token status endpoint.
type StatusInfo struct {
	Exp int64 `json:"exp"`
}

type loginRequest struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Manager owns the full authentication lifecycle, backed by an injected
// Store. It is the single writer of the persisted session keys.
type Manager struct {
	baseURL string
	app     string
	store   Store
	client  *http.Client

	// now is replaceable in tests to simulate token expiry.
	now func() time.Time
}

// NewManager creates a session manager talking to the backend at baseURL.
// The app identifier namespaces every persisted key.
func NewManager(baseURL, app string, store Store, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
		store:   store,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// HashPassword returns the hex-encoded SHA-256 digest of a plaintext
// password. This only avoids transmitting the plaintext on the wire, it is
// no substitute for transport encryption.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) key(suffix string) string { return m.app + suffix }

// Login exchanges a username and password hash for a bearer token at the
// backend login endpoint. On HTTP 200 the token claims are decoded and the
// whole session is persisted. Exactly one attempt is made.
func (m *Manager) Login(ctx context.Context, username, passwordHash string) Result[TokenInfo] {
	body, err := json.Marshal(loginRequest{Username: username, PasswordHash: passwordHash})
	if err != nil {
		return Result[TokenInfo]{Err: fmt.Errorf("unexpected error encoding login request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return Result[TokenInfo]{Err: fmt.Errorf("unexpected error building login request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		logging.Warn().Err(err).Msg("login transport failure")
		return Result[TokenInfo]{Err: &TransportError{Cause: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Warn().Int("status", resp.StatusCode).Msg("login got a bad status")
		return Result[TokenInfo]{Status: resp.StatusCode, Err: &BadStatusError{Status: resp.StatusCode}}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return Result[TokenInfo]{Status: resp.StatusCode, Err: fmt.Errorf("failed to decode login response: %w", err)}
	}

	claims, err := ParseTokenClaims(lr.Token)
	if err != nil {
		return Result[TokenInfo]{Status: resp.StatusCode, Err: err}
	}

	if err := m.persistSession(lr.Token, username, claims); err != nil {
		return Result[TokenInfo]{Status: resp.StatusCode, Err: err}
	}

	if claims.ExpiresAt != nil {
		logging.Debug().Time("expires", claims.ExpiresAt.Time).Int("user_id", claims.UserID).Msg("login succeeded")
	}
	return Result[TokenInfo]{
		Data:   &TokenInfo{Token: lr.Token, Claims: *claims},
		Status: resp.StatusCode,
	}
}

// persistSession writes the whole session to the store, one key at a time.
// The writes are not transactional; an interrupted persist reads back as an
// absent session.
func (m *Manager) persistSession(token, username string, c *TokenClaims) error {
	items := [][2]string{
		{keyToken, token},
		{keyUserID, strconv.Itoa(c.UserID)},
		{keyName, c.Name},
		{keyLogin, username},
		{keyEmail, c.Email},
		{keyIsAdmin, strconv.FormatBool(c.IsAdmin)},
		{keyGroups, joinGroups(c.Groups)},
	}
	if c.ExpiresAt != nil {
		items = append(items, [2]string{keyExpiration, strconv.FormatInt(c.ExpiresAt.Unix(), 10)})
	}
	for _, item := range items {
		if err := m.store.Set(m.key(item[0]), item[1]); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return nil
}

// TokenStatus validates the currently persisted token server-side by
// querying the backend status endpoint with it as a bearer credential.
func (m *Manager) TokenStatus(ctx context.Context) Result[StatusInfo] {
	token, _ := m.store.Get(m.key(keyToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/goapi/v1/status", nil)
	if err != nil {
		return Result[StatusInfo]{Err: fmt.Errorf("unexpected error building status request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		logging.Warn().Err(err).Msg("token status transport failure")
		return Result[StatusInfo]{Err: &TransportError{Cause: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result[StatusInfo]{Status: resp.StatusCode, Err: &BadStatusError{Status: resp.StatusCode}}
	}

	var si StatusInfo
	if err := json.NewDecoder(resp.Body).Decode(&si); err != nil {
		return Result[StatusInfo]{Status: resp.StatusCode, Err: fmt.Errorf("failed to decode status response: %w", err)}
	}
	return Result[StatusInfo]{Data: &si, Status: resp.StatusCode}
}

// Logout calls the backend logout endpoint with the current bearer token
// and then clears the persisted session, regardless of the call outcome.
func (m *Manager) Logout(ctx context.Context) {
	token, _ := m.store.Get(m.key(keyToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/logout", nil)
	if err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
		resp, doErr := m.client.Do(req)
		if doErr != nil {
			logging.Error().Err(doErr).Msg("logout call failed")
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}

	m.clearSession()
}

// clearSession removes every persisted session key, one delete at a time.
func (m *Manager) clearSession() {
	for _, k := range allKeys {
		m.store.Delete(m.key(k))
	}
}

// IsActive reports whether a complete, unexpired session is persisted.
// Detecting an expired session clears it as a side effect. A session
// without an expiration key is treated as invalid.
func (m *Manager) IsActive() bool {
	for _, k := range requiredKeys {
		if _, ok := m.store.Get(m.key(k)); !ok {
			return false
		}
	}

	expStr, ok := m.store.Get(m.key(keyExpiration))
	if !ok {
		logging.Warn().Msg("session has no expiration, treating as invalid")
		return false
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		m.clearSession()
		logging.Warn().Str("expiration", expStr).Msg("session expiration unparsable, cleared")
		return false
	}
	if !m.now().Before(time.Unix(exp, 0)) {
		m.clearSession()
		logging.Warn().Msg("session expired, cleared")
		return false
	}
	return true
}

// Token returns the persisted bearer token, or an empty string when no
// active session exists.
func (m *Manager) Token() string {
	if !m.IsActive() {
		return ""
	}
	v, _ := m.store.Get(m.key(keyToken))
	return v
}

// DateExpiration returns the session expiry as Unix seconds, or zero.
func (m *Manager) DateExpiration() int64 {
	if !m.IsActive() {
		return 0
	}
	v, _ := m.store.Get(m.key(keyExpiration))
	exp, _ := strconv.ParseInt(v, 10, 64)
	return exp
}

// UserID returns the authenticated user id, or zero.
func (m *Manager) UserID() int {
	if !m.IsActive() {
		return 0
	}
	v, _ := m.store.Get(m.key(keyUserID))
	id, _ := strconv.Atoi(v)
	return id
}

// UserName returns the user display name, or an empty string.
func (m *Manager) UserName() string {
	if !m.IsActive() {
		return ""
	}
	v, _ := m.store.Get(m.key(keyName))
	return v
}

// UserLogin returns the login name used at authentication time, or an
// empty string.
func (m *Manager) UserLogin() string {
	if !m.IsActive() {
		return ""
	}
	v, _ := m.store.Get(m.key(keyLogin))
	return v
}

// UserEmail returns the user email, or an empty string.
func (m *Manager) UserEmail() string {
	if !m.IsActive() {
		return ""
	}
	v, _ := m.store.Get(m.key(keyEmail))
	return v
}

// IsAdmin reports whether the session carries the admin flag.
func (m *Manager) IsAdmin() bool {
	if !m.IsActive() {
		return false
	}
	v, _ := m.store.Get(m.key(keyIsAdmin))
	return v == "true"
}

// Groups returns the ordered group membership list, or nil when the claim
// was absent.
func (m *Manager) Groups() []int {
	if !m.IsActive() {
		return nil
	}
	raw, ok := m.store.Get(m.key(keyGroups))
	if !ok {
		return nil
	}
	return parseGroups(raw)
}

// FirstGroup returns the first group id, or nil when the user has none.
func (m *Manager) FirstGroup() *int {
	groups := m.Groups()
	if len(groups) == 0 {
		return nil
	}
	return &groups[0]
}

// HasGroups reports whether the user belongs to at least one real group:
// either several comma-separated entries or a single positive id.
func (m *Manager) HasGroups() bool {
	if !m.IsActive() {
		return false
	}
	raw, ok := m.store.Get(m.key(keyGroups))
	if !ok || raw == "null" {
		return false
	}
	if strings.Contains(raw, ",") {
		return true
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n > 0
}
