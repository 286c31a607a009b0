// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

package session

import "testing"

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store should report absent")
	}

	if err := s.Set("app_goapi_email", "a@b.c"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok := s.Get("app_goapi_email")
	if !ok || v != "a@b.c" {
		t.Errorf("Get() = %q, %v", v, ok)
	}

	s.Delete("app_goapi_email")
	if _, ok := s.Get("app_goapi_email"); ok {
		t.Error("key should be gone after Delete")
	}

	// Deleting an absent key is not an error.
	s.Delete("app_goapi_email")
}

func TestMemoryStore_ClearPrefix(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Set("app_goapi_a", "1")
	_ = s.Set("app_goapi_b", "2")
	_ = s.Set("other_goapi_c", "3")

	s.Clear("app_goapi")

	if _, ok := s.Get("app_goapi_a"); ok {
		t.Error("app_goapi_a should be cleared")
	}
	if _, ok := s.Get("app_goapi_b"); ok {
		t.Error("app_goapi_b should be cleared")
	}
	if _, ok := s.Get("other_goapi_c"); !ok {
		t.Error("keys outside the prefix must survive Clear")
	}
}
