// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package session

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

const testApp = "goCloudK8sThing"

// makeToken builds a three-part token with the given claims and a dummy
// signature. Claims are decoded client-side without verification, so the
// signature content is irrelevant.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2lnbmF0dXJl"
}

func defaultClaims(exp time.Time) map[string]any {
	return map[string]any{
		"id":       7,
		"name":     "Jane Tester",
		"email":    "jane@example.org",
		"is_admin": true,
		"groups":   []int{3, 7, 12},
		"exp":      exp.Unix(),
	}
}

// loginServer returns a backend stub whose /login endpoint hands out the
// given token.
func loginServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var lr loginRequest
		if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: token})
	})
	return httptest.NewServer(mux)
}

func TestHashPassword(t *testing.T) {
	got := HashPassword("secret")
	want := "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"
	if got != want {
		t.Errorf("HashPassword(secret) = %q, want %q", got, want)
	}
	if HashPassword("secret") != got {
		t.Error("HashPassword is not deterministic")
	}
}

func TestLogin_Success(t *testing.T) {
	token := makeToken(t, defaultClaims(time.Now().Add(time.Hour)))
	srv := loginServer(t, token)
	defer srv.Close()

	m := NewManager(srv.URL, testApp, NewMemoryStore(), 0)
	res := m.Login(context.Background(), "jdoe", HashPassword("secret"))
	if !res.OK() {
		t.Fatalf("Login failed: status=%d err=%v", res.Status, res.Err)
	}
	if res.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", res.Status)
	}
	if res.Data.Token != token {
		t.Errorf("token not returned verbatim")
	}

	if !m.IsActive() {
		t.Fatal("session should be active right after login")
	}
	if got := m.Token(); got != token {
		t.Errorf("Token() = %q, want raw token", got)
	}
	if got := m.UserID(); got != 7 {
		t.Errorf("UserID() = %d, want 7", got)
	}
	if got := m.UserName(); got != "Jane Tester" {
		t.Errorf("UserName() = %q", got)
	}
	if got := m.UserLogin(); got != "jdoe" {
		t.Errorf("UserLogin() = %q, want the submitted login name", got)
	}
	if got := m.UserEmail(); got != "jane@example.org" {
		t.Errorf("UserEmail() = %q", got)
	}
	if !m.IsAdmin() {
		t.Error("IsAdmin() = false, want true")
	}
	if got := m.Groups(); len(got) != 3 || got[0] != 3 || got[1] != 7 || got[2] != 12 {
		t.Errorf("Groups() = %v, want [3 7 12]", got)
	}
	if fg := m.FirstGroup(); fg == nil || *fg != 3 {
		t.Errorf("FirstGroup() = %v, want 3", fg)
	}
	if !m.HasGroups() {
		t.Error("HasGroups() = false, want true")
	}
}

func TestLogin_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"wrong credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewManager(srv.URL, testApp, NewMemoryStore(), 0)
	res := m.Login(context.Background(), "jdoe", "deadbeef")
	if res.OK() {
		t.Fatal("Login should fail on 401")
	}
	if res.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", res.Status)
	}
	var bad *BadStatusError
	if !errors.As(res.Err, &bad) || bad.Status != http.StatusUnauthorized {
		t.Errorf("Err = %v, want BadStatusError{401}", res.Err)
	}
	if m.IsActive() {
		t.Error("no session should be persisted after a failed login")
	}
}

func TestLogin_TransportError(t *testing.T) {
	// Port 1 is never listening.
	m := NewManager("http://127.0.0.1:1", testApp, NewMemoryStore(), time.Second)
	res := m.Login(context.Background(), "jdoe", "deadbeef")
	if res.OK() {
		t.Fatal("Login should fail when the backend is unreachable")
	}
	if res.Status != 0 {
		t.Errorf("Status = %d, want 0 (no response received)", res.Status)
	}
	var te *TransportError
	if !errors.As(res.Err, &te) {
		t.Errorf("Err = %v, want TransportError", res.Err)
	}
}

func TestLogin_UnparsableToken(t *testing.T) {
	srv := loginServer(t, "garbage-without-dots")
	defer srv.Close()

	m := NewManager(srv.URL, testApp, NewMemoryStore(), 0)
	res := m.Login(context.Background(), "jdoe", "deadbeef")
	if res.OK() {
		t.Fatal("Login should fail on an undecodable token")
	}
	if m.IsActive() {
		t.Error("no session should be persisted for an undecodable token")
	}
}

func TestIsActive_Expiry(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	srv := loginServer(t, makeToken(t, defaultClaims(exp)))
	defer srv.Close()

	store := NewMemoryStore()
	m := NewManager(srv.URL, testApp, store, 0)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}
	if !m.IsActive() {
		t.Fatal("session should be active before expiry")
	}

	// Move the clock just past the expiration instant.
	m.now = func() time.Time { return exp.Add(time.Second) }
	if m.IsActive() {
		t.Fatal("session should be inactive after expiry")
	}
	// Expiry detection clears the persisted session.
	if _, ok := store.Get(testApp + keyToken); ok {
		t.Error("expired session was not cleared from the store")
	}
	if got := m.Token(); got != "" {
		t.Errorf("Token() after expiry = %q, want empty", got)
	}
}

func TestIsActive_MissingExpiration(t *testing.T) {
	claims := defaultClaims(time.Now().Add(time.Hour))
	delete(claims, "exp")
	srv := loginServer(t, makeToken(t, claims))
	defer srv.Close()

	m := NewManager(srv.URL, testApp, NewMemoryStore(), 0)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}
	if m.IsActive() {
		t.Error("a session without expiration must be treated as invalid")
	}
}

func TestIsActive_PartialSession(t *testing.T) {
	srv := loginServer(t, makeToken(t, defaultClaims(time.Now().Add(time.Hour))))
	defer srv.Close()

	store := NewMemoryStore()
	m := NewManager(srv.URL, testApp, store, 0)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}

	// Simulate a crash in the middle of a multi-key clear.
	store.Delete(testApp + keyEmail)
	if m.IsActive() {
		t.Error("a partially cleared session must read back as inactive")
	}
}

func TestLogout_AlwaysClears(t *testing.T) {
	srv := loginServer(t, makeToken(t, defaultClaims(time.Now().Add(time.Hour))))
	m := NewManager(srv.URL, testApp, NewMemoryStore(), time.Second)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}
	// Kill the backend so the logout call fails at the transport level.
	srv.Close()

	m.Logout(context.Background())
	if m.IsActive() {
		t.Error("Logout must clear the session even when the call fails")
	}
}

func TestTokenStatus(t *testing.T) {
	token := makeToken(t, defaultClaims(time.Now().Add(time.Hour)))
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewEncoder(w).Encode(loginResponse{Token: token})
	})
	mux.HandleFunc("/goapi/v1/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(StatusInfo{Exp: 1234567890})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewManager(srv.URL, testApp, NewMemoryStore(), 0)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}

	res := m.TokenStatus(context.Background())
	if !res.OK() {
		t.Fatalf("TokenStatus failed: status=%d err=%v", res.Status, res.Err)
	}
	if res.Data.Exp != 1234567890 {
		t.Errorf("Exp = %d, want 1234567890", res.Data.Exp)
	}
}

func TestGroupsRoundTrip(t *testing.T) {
	srv := loginServer(t, makeToken(t, defaultClaims(time.Now().Add(time.Hour))))
	defer srv.Close()

	store := NewMemoryStore()
	m := NewManager(srv.URL, testApp, store, 0)
	if res := m.Login(context.Background(), "jdoe", "deadbeef"); !res.OK() {
		t.Fatalf("Login failed: %v", res.Err)
	}

	tests := []struct {
		raw        string
		wantGroups []int
		wantFirst  *int
		wantHas    bool
	}{
		{"3,7,12", []int{3, 7, 12}, intPtr(3), true},
		{"3,7", []int{3, 7}, intPtr(3), true},
		{"5", []int{5}, intPtr(5), true},
		{"0", []int{0}, intPtr(0), false},
		{"null", nil, nil, false},
	}
	for _, tt := range tests {
		if err := store.Set(testApp+keyGroups, tt.raw); err != nil {
			t.Fatalf("Set groups %q: %v", tt.raw, err)
		}
		got := m.Groups()
		if len(got) != len(tt.wantGroups) {
			t.Errorf("Groups() for %q = %v, want %v", tt.raw, got, tt.wantGroups)
		} else {
			for i := range got {
				if got[i] != tt.wantGroups[i] {
					t.Errorf("Groups() for %q = %v, want %v", tt.raw, got, tt.wantGroups)
					break
				}
			}
		}
		first := m.FirstGroup()
		switch {
		case tt.wantFirst == nil && first != nil:
			t.Errorf("FirstGroup() for %q = %d, want nil", tt.raw, *first)
		case tt.wantFirst != nil && (first == nil || *first != *tt.wantFirst):
			t.Errorf("FirstGroup() for %q = %v, want %d", tt.raw, first, *tt.wantFirst)
		}
		if got := m.HasGroups(); got != tt.wantHas {
			t.Errorf("HasGroups() for %q = %v, want %v", tt.raw, got, tt.wantHas)
		}
	}

	// Absent key behaves like "null".
	store.Delete(testApp + keyGroups)
	if m.Groups() != nil {
		t.Error("Groups() for absent key should be nil")
	}
	if m.HasGroups() {
		t.Error("HasGroups() for absent key should be false")
	}
}

func intPtr(n int) *int { return &n }
