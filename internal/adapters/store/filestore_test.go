package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(WithPath(filepath.Join(t.TempDir(), "record.json")))
	ctx := context.Background()

	rec, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error loading missing file: %v", err)
	}
	if rec != (Record{}) {
		t.Errorf("expected zero record, got %+v", rec)
	}
}

func TestFileStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	ctx := context.Background()

	rec := Record{
		SubscriptionConfig: model.SubscriptionConfig{
			ClientID:     "12345",
			ClientSecret: "s3cret",
			CallbackURL:  "https://ha.example.com/api/strava/webhook",
			WebhookID:    120475,
		},
		Token: &oauth2.Token{AccessToken: "at", RefreshToken: "rt"},
	}

	s := NewFileStore(WithPath(path))
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// A fresh store must read the same record back from disk.
	s2 := NewFileStore(WithPath(path))
	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ClientID != rec.ClientID || got.CallbackURL != rec.CallbackURL || got.WebhookID != rec.WebhookID {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Token == nil || got.Token.AccessToken != "at" {
		t.Errorf("token not persisted: %+v", got.Token)
	}
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(WithPath(filepath.Join(dir, "record.json")))
	ctx := context.Background()

	if err := s.Save(ctx, Record{SubscriptionConfig: model.SubscriptionConfig{ClientID: "1"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "record.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(WithPath(path))
	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}
