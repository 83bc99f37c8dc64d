package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "products"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	payload := []byte(`[{"id":"1"}]`)
	if err := store.Set(ctx, "products", payload); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := store.Get(ctx, "products")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected %s, got %s", payload, got)
	}

	if err := store.Delete(ctx, "products"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "products"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreDeleteAbsentKeyIsNoop(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), "never-written"); err != nil {
		t.Fatalf("expected no error deleting absent key, got %v", err)
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "ns")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "weird/key name", []byte("x")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := store.Get(ctx, "weird/key name")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte(`[1,2,3]`)
	if err := store.Set(ctx, "sales", payload); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := store.Get(ctx, "sales")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got[0] = 'X'

	again, err := store.Get(ctx, "sales")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(again) != string(payload) {
		t.Fatal("mutating a returned value must not affect stored state")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.Get(ctx, "notifications"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "notifications", []byte("[]")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "notifications", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := store.Get(ctx, "notifications")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `[{"id":"2"}]` {
		t.Fatalf("unexpected value %s", got)
	}
	if err := store.Delete(ctx, "notifications"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "notifications"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
