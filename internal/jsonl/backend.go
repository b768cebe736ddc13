// Package jsonl implements a Backend that keeps contacts in a single
// contacts.jsonl file, one JSON object per line in canonical order.
//
// The file is rewritten in full on every Save. Malformed lines are skipped
// on load so a partially corrupted file still yields the readable records.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// FileName is the data file created in Config.DataDir.
const FileName = "contacts.jsonl"

// Backend stores contacts as JSON lines.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	path     string
	log      *logrus.Entry
}

// NewBackend creates a detached JSONL backend.
func NewBackend() *Backend {
	return &Backend{
		log: logrus.StandardLogger().WithField("type", "jsonl"),
	}
}

// Attach creates DataDir and an empty contacts file if they do not exist.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendJSONL {
		return types.ErrBackendUnknown
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", FileName, err)
	}
	f.Close()

	b.path = path
	b.attached = true
	b.log = b.log.WithField("path", path)
	return nil
}

// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	return nil
}

// LoadInitial reads every well-formed record as a draft that keeps its ID
// and favorite flag. Lines that are not valid JSON or do not decode into a
// contact are skipped.
func (b *Backend) LoadInitial(ctx context.Context) ([]types.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	lines, skipped, err := readLines(b.path)
	if err != nil {
		return nil, err
	}

	drafts := make([]types.Draft, 0, len(lines))
	for i, line := range lines {
		var c types.Contact
		if err := json.Unmarshal(line, &c); err != nil {
			skipped++
			b.log.WithError(err).WithField("record", i).Warn("skipping undecodable record")
			continue
		}
		drafts = append(drafts, c.Draft())
	}
	if skipped > 0 {
		b.log.WithField("skipped", skipped).Warn("contacts file has malformed lines")
	}
	return drafts, nil
}

// Save rewrites the contacts file atomically.
func (b *Backend) Save(ctx context.Context, contacts []types.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}

	records := make([]json.RawMessage, len(contacts))
	for i, c := range contacts {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshaling contact %s: %w", c.ID, err)
		}
		records[i] = data
	}
	if err := writeLines(b.path, records); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}

