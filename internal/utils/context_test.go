// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestJournalIDCtxKey(t *testing.T) {
	if JournalIDCtxKey.String() != "journalID" {
		t.Errorf("expected 'journalID', got '%s'", JournalIDCtxKey.String())
	}
}

func TestGetJournalIDFromContext_Success(t *testing.T) {
	ctx := context.WithValue(context.Background(), JournalIDCtxKey, "personal")

	journalID, ok := GetJournalIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if journalID != "personal" {
		t.Errorf("expected journalID=personal, got %q", journalID)
	}
}

func TestGetJournalIDFromContext_Missing(t *testing.T) {
	journalID, ok := GetJournalIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if journalID != "" {
		t.Errorf("expected empty journalID, got %q", journalID)
	}
}

func TestGetJournalIDFromContext_Empty(t *testing.T) {
	ctx := context.WithValue(context.Background(), JournalIDCtxKey, "")

	if _, ok := GetJournalIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty id, got true")
	}
}

func TestGetJournalIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), JournalIDCtxKey, int64(42))

	journalID, ok := GetJournalIDFromContext(ctx)

	if ok {
		t.Fatal("expected ok=false for wrong type, got true")
	}
	if journalID != "" {
		t.Errorf("expected empty journalID, got %q", journalID)
	}
}

func TestGetJournalIDFromContext_DifferentKey(t *testing.T) {
	otherKey := contextKey("otherKey")
	ctx := context.WithValue(context.Background(), otherKey, "personal")

	if _, ok := GetJournalIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for different key, got true")
	}
}
