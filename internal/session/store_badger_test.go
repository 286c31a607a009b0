// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package session

import (
	"testing"
)

func TestBadgerStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store should report absent")
	}

	if err := s.Set("app_goapi_jwt_session_token", "tok"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok := s.Get("app_goapi_jwt_session_token")
	if !ok || v != "tok" {
		t.Errorf("Get() = %q, %v, want tok, true", v, ok)
	}

	s.Delete("app_goapi_jwt_session_token")
	if _, ok := s.Get("app_goapi_jwt_session_token"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestBadgerStore_ClearPrefix(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	_ = s.Set("app_goapi_a", "1")
	_ = s.Set("app_goapi_b", "2")
	_ = s.Set("zzz_other", "3")

	s.Clear("app_goapi")

	if _, ok := s.Get("app_goapi_a"); ok {
		t.Error("app_goapi_a should be cleared")
	}
	if _, ok := s.Get("zzz_other"); !ok {
		t.Error("keys outside the prefix must survive Clear")
	}
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	if err := s.Set("app_goapi_email", "a@b.c"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = s2.Close() }()
	v, ok := s2.Get("app_goapi_email")
	if !ok || v != "a@b.c" {
		t.Errorf("value lost across reopen: %q, %v", v, ok)
	}
}
