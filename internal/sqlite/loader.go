package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/rolodex/internal/jsonl"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// importJSONL loads contacts.jsonl from dataDir into an empty contacts
// table, so switching a data directory from the jsonl backend to sqlite
// keeps its contacts. Loading is transactional. Records that fail
// validation are skipped; missing or duplicate IDs are replaced. Returns
// the number of contacts imported.
func importJSONL(db *sql.DB, dataDir string) (int, error) {
	if _, err := os.Stat(filepath.Join(dataDir, jsonl.FileName)); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	src := jsonl.NewBackend()
	if err := src.Attach(types.Config{Backend: types.BackendJSONL, DataDir: dataDir}); err != nil {
		return 0, err
	}
	defer src.Detach()

	ctx := context.Background()
	drafts, err := src.LoadInitial(ctx)
	if err != nil {
		return 0, err
	}

	contacts := make([]types.Contact, 0, len(drafts))
	seen := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		c, err := types.Validate(d)
		if err != nil {
			continue
		}
		if c.ID == "" || seen[c.ID] {
			c.ID = types.NewID()
		}
		seen[c.ID] = true
		contacts = append(contacts, c)
	}
	if len(contacts) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertContacts(ctx, tx, contacts); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import transaction: %w", err)
	}
	return len(contacts), nil
}
