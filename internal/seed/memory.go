package seed

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Memory is a volatile Backend. Until the first Save it serves its initial
// drafts; afterwards it serves the last saved snapshot. Nothing survives
// the process.
type Memory struct {
	mu       sync.RWMutex
	attached bool
	initial  []types.Draft
	saved    []types.Contact
	hasSaved bool
}

// NewMemory creates a detached memory backend that starts with initial.
func NewMemory(initial []types.Draft) *Memory {
	return &Memory{initial: initial}
}

// Attach marks the backend attached. The config must name the memory
// backend.
func (m *Memory) Attach(config types.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendMemory {
		return types.ErrBackendUnknown
	}
	m.attached = true
	return nil
}

// Detach is idempotent. Saved contacts are kept so a later Attach sees
// them.
func (m *Memory) Detach() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attached = false
	return nil
}

// LoadInitial returns the last saved snapshot, or the initial drafts if
// nothing has been saved.
func (m *Memory) LoadInitial(ctx context.Context) ([]types.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.attached {
		return nil, types.ErrBackendDetached
	}
	if !m.hasSaved {
		out := make([]types.Draft, len(m.initial))
		copy(out, m.initial)
		return out, nil
	}
	out := make([]types.Draft, len(m.saved))
	for i, c := range m.saved {
		out[i] = c.Draft()
	}
	return out, nil
}

// Save replaces the stored snapshot.
func (m *Memory) Save(ctx context.Context, contacts []types.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.attached {
		return types.ErrBackendDetached
	}
	m.saved = types.CloneContacts(contacts)
	m.hasSaved = true
	return nil
}
