package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Autosaver subscribes a Saver to a store and writes snapshots according
// to a sync strategy:
//
//	immediate  save after every change, inside the notification
//	on_close   save the last snapshot on Flush or Close
//	batch      save on a timer and on Flush or Close
//
// Only changes made after Autosave are written: the snapshot delivered on
// subscribe is the baseline and is never saved, and neither is any snapshot
// taken while the store is loading or not yet ready.
type Autosaver struct {
	saver    types.Saver
	strategy string
	interval time.Duration
	sub      *Subscription
	log      *logrus.Entry

	mu       sync.Mutex
	primed   bool
	baseline uint64          // version delivered on subscribe
	pending  *types.Snapshot // newest snapshot not yet saved
	timer    *time.Timer
	closed   bool

	saveMu sync.Mutex // serializes calls to saver
}

// Autosave wires saver to s. Call Close on the returned Autosaver before
// closing the store so the last changes are written.
func Autosave(s *Store, saver types.Saver, cfg types.SyncConfig) (*Autosaver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Autosaver{
		saver:    saver,
		strategy: cfg.GetStrategy(),
		interval: cfg.GetBatchInterval(),
		log:      s.log.WithField("sync", cfg.GetStrategy()),
	}
	if a.strategy == types.SyncBatch {
		a.mu.Lock()
		a.timer = time.AfterFunc(a.interval, a.tick)
		a.mu.Unlock()
	}
	a.sub = s.Subscribe(a.observe)
	return a, nil
}

// observe records the newest ready snapshot and, for the immediate
// strategy, writes it straight away.
func (a *Autosaver) observe(snap types.Snapshot) {
	a.mu.Lock()
	if !a.primed {
		a.primed = true
		a.baseline = snap.Version
		a.mu.Unlock()
		return
	}
	if snap.Loading || !snap.Ready || snap.Version <= a.baseline {
		a.mu.Unlock()
		return
	}
	a.pending = &snap
	a.mu.Unlock()

	if a.strategy != types.SyncImmediate {
		return
	}
	if err := a.Flush(context.Background()); err != nil {
		a.log.WithError(err).Error("autosave failed")
	}
}

// tick flushes on the batch interval and re-arms the timer.
func (a *Autosaver) tick() {
	if err := a.Flush(context.Background()); err != nil {
		a.log.WithError(err).Error("batch save failed")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed && a.timer != nil {
		a.timer.Reset(a.interval)
	}
}

// Flush writes the newest unsaved snapshot, if any. A failed save keeps
// the snapshot pending so the next Flush retries it.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	snap := a.pending
	a.mu.Unlock()
	if snap == nil {
		return nil
	}

	if err := a.saver.Save(ctx, snap.Contacts); err != nil {
		return fmt.Errorf("save snapshot version %d: %w", snap.Version, err)
	}

	a.mu.Lock()
	if a.pending == snap {
		a.pending = nil
	}
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"version":  snap.Version,
		"contacts": len(snap.Contacts),
	}).Debug("snapshot saved")
	return nil
}

// Close stops observing the store, stops the batch timer and flushes.
// Idempotent.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	a.sub.Unsubscribe()
	return a.Flush(ctx)
}
