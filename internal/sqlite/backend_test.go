package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func sqliteConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: dir}
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := sqliteConfig(tmpDir)

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, DBFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", DBFileName)
	}

	// Verify double attach fails
	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"other backend", types.Config{Backend: types.BackendJSONL}, types.ErrBackendUnknown},
		{"unknown sync", types.Config{Backend: types.BackendSQLite, Sync: types.SyncConfig{Strategy: "hourly"}}, types.ErrSyncStrategyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.DataDir = t.TempDir()
			if err := NewBackend().Attach(tt.config); err != tt.want {
				t.Errorf("Attach() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(sqliteConfig(t.TempDir())); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach failed: %v", err)
	}

	ctx := context.Background()
	if _, err := b.LoadInitial(ctx); err != types.ErrBackendDetached {
		t.Errorf("LoadInitial after detach: expected ErrBackendDetached, got %v", err)
	}
	if err := b.Save(ctx, nil); err != types.ErrBackendDetached {
		t.Errorf("Save after detach: expected ErrBackendDetached, got %v", err)
	}
}

func TestBackend_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	b := NewBackend()
	if err := b.Attach(sqliteConfig(tmpDir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	contacts := []types.Contact{
		{ID: "c2", FirstName: "Alan", LastName: "Turing", Phone: "555-0100", Favorite: true},
		{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Company: types.Ptr("Analytical Engine"), Notes: types.Ptr("")},
	}
	if err := b.Save(ctx, contacts); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b.Detach()

	// Reattach to prove the data survives.
	b = NewBackend()
	if err := b.Attach(sqliteConfig(tmpDir)); err != nil {
		t.Fatalf("reattach failed: %v", err)
	}
	defer b.Detach()

	drafts, err := b.LoadInitial(ctx)
	if err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	// Canonical order is preserved, not sorted by ID.
	if drafts[0].ID != "c2" || drafts[1].ID != "c1" {
		t.Errorf("unexpected order: %s, %s", drafts[0].ID, drafts[1].ID)
	}
	if drafts[0].Favorite == nil || !*drafts[0].Favorite {
		t.Error("favorite flag lost")
	}
	if drafts[1].Company == nil || *drafts[1].Company != "Analytical Engine" {
		t.Errorf("company lost: %v", drafts[1].Company)
	}
	if drafts[1].Address != nil {
		t.Errorf("absent address should stay nil, got %q", *drafts[1].Address)
	}
}

func TestBackend_SaveReplacesContents(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	if err := b.Attach(sqliteConfig(t.TempDir())); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	first := []types.Contact{{ID: "a", FirstName: "A"}, {ID: "b", FirstName: "B"}, {ID: "c", FirstName: "C"}}
	if err := b.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Save(ctx, []types.Contact{{ID: "c", FirstName: "C"}}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	drafts, err := b.LoadInitial(ctx)
	if err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != "c" {
		t.Errorf("expected only c, got %+v", drafts)
	}
}

func TestBackend_SaveDuplicateIDsRollsBack(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	if err := b.Attach(sqliteConfig(t.TempDir())); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if err := b.Save(ctx, []types.Contact{{ID: "keep", FirstName: "K"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	dup := []types.Contact{{ID: "x", FirstName: "X"}, {ID: "x", FirstName: "Y"}}
	if err := b.Save(ctx, dup); err == nil {
		t.Fatal("expected error saving duplicate IDs")
	}

	drafts, err := b.LoadInitial(ctx)
	if err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != "keep" {
		t.Errorf("failed save must leave previous snapshot, got %+v", drafts)
	}
}

func TestBackend_SchemaVersionTooNew(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend()
	if err := b.Attach(sqliteConfig(tmpDir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if _, err := b.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("setting user_version: %v", err)
	}
	b.Detach()

	if err := NewBackend().Attach(sqliteConfig(tmpDir)); err == nil {
		t.Error("expected error attaching to a newer schema")
	}
}
