// Package store implements the contact store: the single in-memory
// authority for the contact collection and the broker that tells
// subscribers about every change.
//
// A Store is safe for concurrent use but behaves as one logical thread.
// Each mutation runs to completion and its notification reaches every
// listener before the next mutation starts. Listeners run on the
// goroutine that performed the mutation; they may read from the store and
// unsubscribe, but must not call mutating methods or Subscribe
// synchronously.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// PendingPolicy decides what happens to mutations issued before
// Initialize has completed.
type PendingPolicy int

const (
	// PendingQueue holds early mutations and applies them in issue order
	// once the store is ready. The caller blocks until its mutation is
	// applied.
	PendingQueue PendingPolicy = iota

	// PendingReject fails early mutations with a *types.NotReadyError.
	PendingReject
)

// Option configures a Store.
type Option func(*Store)

// WithDataSource sets the collaborator consulted by Initialize. Without
// one the store starts empty.
func WithDataSource(src types.DataSource) Option {
	return func(s *Store) { s.source = src }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Store) { s.log = log }
}

// WithPendingPolicy sets the pre-ready policy. The default is PendingQueue.
func WithPendingPolicy(p PendingPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithIDGenerator replaces the UUID v7 generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store owns the canonical, insertion-ordered contact collection.
type Store struct {
	opMu   sync.Mutex // held across a mutation and its fan-out
	initMu sync.Mutex

	mu       sync.RWMutex
	contacts []types.Contact
	index    map[string]int // ID -> position in contacts
	loading  bool
	ready    bool
	closed   bool
	version  uint64
	pending  []*pendingOp

	source types.DataSource
	policy PendingPolicy
	newID  func() string
	broker *broker
	log    *logrus.Entry
}

// mutation changes the collection. It runs with s.mu held for writing
// and must leave the collection untouched when it returns an error.
type mutation func() (types.Contact, error)

type pendingOp struct {
	name  string
	apply mutation
	done  chan opResult
}

type opResult struct {
	contact types.Contact
	err     error
}

// New creates an empty, not yet initialized store.
func New(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int),
		newID: types.NewID,
		log:   logrus.StandardLogger().WithField("type", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.broker = newBroker(s.log)
	return s
}

// Initialize loads the initial contact set from the data source, applies
// any queued mutations in issue order and marks the store ready.
// Subscribers see Loading=true before the load and a single snapshot with
// the final state afterwards.
//
// Initialize is idempotent: once it has succeeded further calls return
// nil without doing anything. Concurrent calls wait for the one in
// flight. If the load fails the store stays not ready and Initialize may
// be retried.
func (s *Store) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	ready, closed := s.ready, s.closed
	s.mu.RUnlock()
	if closed {
		return types.ErrClosed
	}
	if ready {
		return nil
	}

	s.setLoading(true)

	var drafts []types.Draft
	if s.source != nil {
		var err error
		drafts, err = s.source.LoadInitial(ctx)
		if err != nil {
			s.setLoading(false)
			return fmt.Errorf("load initial contacts: %w", err)
		}
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.ErrClosed
	}
	s.install(drafts)

	var (
		applied []*pendingOp
		results []opResult
	)
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		for _, op := range batch {
			c, err := op.apply()
			if err == nil {
				s.version++
			}
			applied = append(applied, op)
			results = append(results, opResult{contact: c, err: err})
		}
	}

	s.loading = false
	s.ready = true
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"contacts": len(snap.Contacts),
		"queued":   len(applied),
	}).Info("store ready")

	s.broker.publish(snap)
	for i, op := range applied {
		op.done <- results[i]
	}
	return nil
}

// setLoading flips the loading flag and notifies subscribers.
func (s *Store) setLoading(loading bool) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.loading = loading
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broker.publish(snap)
}

// install appends seed drafts. Invalid drafts are skipped; missing or
// duplicate IDs are replaced. The caller must hold s.mu for writing.
func (s *Store) install(drafts []types.Draft) {
	for i, d := range drafts {
		c, err := types.Validate(d)
		if err != nil {
			s.log.WithError(err).WithField("position", i).Warn("skipping invalid seed contact")
			continue
		}
		if _, taken := s.index[c.ID]; c.ID == "" || taken {
			c.ID = s.generateIDLocked()
		}
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, c)
	}
}

// generateIDLocked returns an ID not yet in the collection. The caller
// must hold s.mu.
func (s *Store) generateIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

// snapshotLocked copies the current state. The caller must hold s.mu.
func (s *Store) snapshotLocked() types.Snapshot {
	return types.Snapshot{
		Contacts: types.CloneContacts(s.contacts),
		Loading:  s.loading,
		Ready:    s.ready,
		Version:  s.version,
	}
}

// run applies a mutation according to the store's readiness and pending
// policy, then publishes the new state.
func (s *Store) run(name string, fn mutation) (types.Contact, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.Contact{}, types.ErrClosed
	}
	if !s.ready {
		if s.policy == PendingReject {
			s.mu.Unlock()
			return types.Contact{}, &types.NotReadyError{Op: name}
		}
		op := &pendingOp{name: name, apply: fn, done: make(chan opResult, 1)}
		s.pending = append(s.pending, op)
		s.mu.Unlock()

		s.log.WithField("op", name).Debug("queued until ready")
		r := <-op.done
		return r.contact, r.err
	}
	s.mu.Unlock()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.Contact{}, types.ErrClosed
	}
	c, err := fn()
	if err != nil {
		s.mu.Unlock()
		return types.Contact{}, err
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"op": name, "id": c.ID, "version": snap.Version}).Debug("applied")
	s.broker.publish(snap)
	return c, nil
}

// List returns a copy of the collection in canonical order. Before the
// store is ready the result is empty.
func (s *Store) List() []types.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return types.CloneContacts(s.contacts)
}

// Len returns the number of contacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.contacts)
}

// Favorites returns a copy of the favorite contacts in canonical order.
func (s *Store) Favorites() []types.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Contact{}
	for _, c := range s.contacts {
		if c.Favorite {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Snapshot returns the current state, including the loading and ready
// flags.
func (s *Store) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// FindByID returns a copy of the contact with the given ID, or a
// *types.NotFoundError.
func (s *Store) FindByID(id string) (types.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return types.Contact{}, &types.NotFoundError{ID: id}
	}
	return s.contacts[i].Clone(), nil
}

// Add validates the draft, assigns a new ID, appends the contact and
// notifies subscribers. Draft ID and Favorite are ignored: new contacts
// are never favorites.
func (s *Store) Add(d types.Draft) (types.Contact, error) {
	return s.run("add", func() (types.Contact, error) {
		c, err := types.Validate(d)
		if err != nil {
			return types.Contact{}, err
		}
		c.ID = s.generateIDLocked()
		c.Favorite = false
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, c)
		return c.Clone(), nil
	})
}

// Update overlays the supplied draft fields onto the contact, validates
// the result and replaces the record in place. ID, position and Favorite
// never change.
func (s *Store) Update(id string, d types.Draft) (types.Contact, error) {
	return s.run("update", func() (types.Contact, error) {
		i, ok := s.index[id]
		if !ok {
			return types.Contact{}, &types.NotFoundError{ID: id}
		}
		existing := s.contacts[i]
		c, err := types.Validate(existing.Merge(d))
		if err != nil {
			return types.Contact{}, err
		}
		c.ID = existing.ID
		c.Favorite = existing.Favorite
		s.contacts[i] = c
		return c.Clone(), nil
	})
}

// Remove deletes the contact. Removing an ID twice fails the second time
// with a *types.NotFoundError.
func (s *Store) Remove(id string) error {
	_, err := s.run("remove", func() (types.Contact, error) {
		i, ok := s.index[id]
		if !ok {
			return types.Contact{}, &types.NotFoundError{ID: id}
		}
		removed := s.contacts[i]
		s.contacts = slices.Delete(s.contacts, i, i+1)
		delete(s.index, id)
		for j := i; j < len(s.contacts); j++ {
			s.index[s.contacts[j].ID] = j
		}
		return removed, nil
	})
	return err
}

// ToggleFavorite flips the favorite flag and returns the updated contact.
func (s *Store) ToggleFavorite(id string) (types.Contact, error) {
	return s.run("toggle_favorite", func() (types.Contact, error) {
		i, ok := s.index[id]
		if !ok {
			return types.Contact{}, &types.NotFoundError{ID: id}
		}
		s.contacts[i].Favorite = !s.contacts[i].Favorite
		return s.contacts[i].Clone(), nil
	})
}

// Subscribe registers a listener and immediately calls it with the
// current snapshot, so a late subscriber never starts from stale state.
// The listener is then called after every change until Unsubscribe.
//
// On a closed store the listener receives the final snapshot once and is
// not registered.
func (s *Store) Subscribe(l types.Listener) *Subscription {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	sub := &Subscription{broker: s.broker}
	if closed {
		s.broker.deliver(subscriber{listener: l}, snap)
		return sub
	}
	sub.id = s.broker.add(l)
	s.broker.deliver(subscriber{id: sub.id, listener: l}, snap)
	return sub
}

// Close tears the store down: listeners are cleared, queued mutations
// fail with types.ErrClosed and later mutations do too. Reads keep
// returning the last state. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, op := range pending {
		op.done <- opResult{err: types.ErrClosed}
	}
	s.broker.clear()
	s.log.Debug("store closed")
	return nil
}
