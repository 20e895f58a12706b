package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	if err := store.Put(ctx, "staging/hulk/a.png", []byte("img"), "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Copy(ctx, "staging/hulk/a.png", "hulk/a.png"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(store.Root, "hulk", "a.png"))
	if err != nil || string(data) != "img" {
		t.Fatalf("copied data = %q, err = %v", data, err)
	}
	if err := store.Delete(ctx, "staging/hulk/a.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "staging/hulk/a.png"); err != nil {
		t.Fatalf("Delete() of missing object error = %v", err)
	}

	url := store.PublicURL("hulk/a.png")
	if url != "/uploads/hulk/a.png" {
		t.Fatalf("PublicURL = %q", url)
	}
	key, ok := store.KeyFromURL(url)
	if !ok || key != "hulk/a.png" {
		t.Fatalf("KeyFromURL = %q, %v", key, ok)
	}
	if _, ok := store.KeyFromURL("https://elsewhere/hulk/a.png"); ok {
		t.Fatal("foreign URL should not map to a key")
	}
}

func TestLocalStoreListOlderThan(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	for _, key := range []string{"staging/a/old.png", "staging/a/new.png", "a/final.png"} {
		if err := store.Put(ctx, key, []byte("x"), "image/png"); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(store.Root, "staging", "a", "old.png"), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(filepath.Join(store.Root, "a", "final.png"), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	keys, err := store.ListOlderThan(ctx, "staging/", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListOlderThan() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "staging/a/old.png" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestObjectKeysRejectTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	for _, key := range []string{"", "../etc/passwd", "/abs.png", "a//b.png", "a/./b.png", `a\b.png`} {
		if err := store.Put(context.Background(), key, []byte("x"), ""); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestCopySourceEscapesSegments(t *testing.T) {
	got := copySource("challenge-prints", "staging/desafio do hulk/a b.png")
	want := "challenge-prints/staging/desafio%20do%20hulk/a%20b.png"
	if got != want {
		t.Fatalf("copySource = %q, want %q", got, want)
	}
}

func TestS3StorePublicURL(t *testing.T) {
	store := &S3Store{bucket: "challenge-prints", publicBaseURL: "https://proj.supabase.co/storage/v1/object/public/challenge-prints/"}
	url := store.PublicURL("hulk-desafio/a.png")
	if url != "https://proj.supabase.co/storage/v1/object/public/challenge-prints/hulk-desafio/a.png" {
		t.Fatalf("PublicURL = %q", url)
	}
	if key, ok := store.KeyFromURL(url); !ok || key != "hulk-desafio/a.png" {
		t.Fatalf("KeyFromURL = %q, %v", key, ok)
	}
}
