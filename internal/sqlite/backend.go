// Package sqlite implements the SQLite contact backend.
//
// Contacts live in a single table in rolodex.db inside Config.DataDir, with
// a position column preserving canonical order. Save replaces the table
// contents in one transaction, so a crash leaves either the old or the new
// snapshot.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// DBFileName is the database file created in Config.DataDir.
const DBFileName = "rolodex.db"

// Backend stores contacts in SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *logrus.Entry
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		log: logrus.StandardLogger().WithField("type", "sqlite"),
	}
}

// Attach opens (creating if needed) the database in DataDir and applies
// the schema. If the contacts table is empty and DataDir holds a
// contacts.jsonl file, its records are imported.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return types.ErrBackendUnknown
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// A single connection keeps the pure-Go driver from contending on its
	// own file locks.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	imported, err := importJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("import JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log = b.log.WithField("path", dbPath)
	if imported > 0 {
		b.log.WithField("contacts", imported).Info("imported contacts.jsonl")
	}
	return nil
}

// migrate applies the schema and records its version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// Detach closes the database. After Detach, LoadInitial and Save return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// LoadInitial returns every stored contact in canonical order as drafts
// that keep their ID and favorite flag.
func (b *Backend) LoadInitial(ctx context.Context) ([]types.Draft, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	contacts, err := selectContacts(ctx, b.db)
	if err != nil {
		return nil, err
	}
	drafts := make([]types.Draft, len(contacts))
	for i, c := range contacts {
		drafts[i] = c.Draft()
	}
	return drafts, nil
}

// Save replaces the stored contacts with the given snapshot.
func (b *Backend) Save(ctx context.Context, contacts []types.Contact) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts"); err != nil {
		return fmt.Errorf("clearing contacts: %w", err)
	}
	if err := insertContacts(ctx, tx, contacts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}
