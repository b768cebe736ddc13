package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// fakeSaver records every Save call.
type fakeSaver struct {
	mu    sync.Mutex
	saves [][]types.Contact
	err   error
}

func (f *fakeSaver) Save(_ context.Context, contacts []types.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, contacts)
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) last() []types.Contact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

func (f *fakeSaver) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestAutosaveRejectsInvalidConfig(t *testing.T) {
	s := newReadyStore(t)
	_, err := Autosave(s, &fakeSaver{}, types.SyncConfig{Strategy: "sometimes"})
	assert.ErrorIs(t, err, types.ErrSyncStrategyUnknown)
	assert.Equal(t, 0, s.broker.len())
}

func TestAutosaveImmediate(t *testing.T) {
	s := newReadyStore(t, name("Ada", "Lovelace"))
	saver := &fakeSaver{}
	a, err := Autosave(s, saver, types.SyncConfig{Strategy: types.SyncImmediate})
	require.NoError(t, err)

	assert.Equal(t, 0, saver.count(), "the state at subscribe time is already stored")

	c, err := s.Add(name("Alan", "Turing"))
	require.NoError(t, err)
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, s.List(), saver.last())

	require.NoError(t, s.Remove(c.ID))
	assert.Equal(t, 2, saver.count())
	assert.Len(t, saver.last(), 1)

	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 2, saver.count(), "nothing left to flush")

	_, err = s.Add(name("Grace", "Hopper"))
	require.NoError(t, err)
	assert.Equal(t, 2, saver.count(), "closed autosaver stops observing")
}

func TestAutosaveWithoutChangesNeverSaves(t *testing.T) {
	strategies := []string{types.SyncImmediate, types.SyncOnClose, types.SyncBatch}
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			s := newReadyStore(t, name("Ada", "Lovelace"))
			saver := &fakeSaver{}
			a, err := Autosave(s, saver, types.SyncConfig{Strategy: strategy})
			require.NoError(t, err)

			_, err = s.FindByID(s.List()[0].ID)
			require.NoError(t, err)
			require.NoError(t, a.Flush(context.Background()))
			require.NoError(t, a.Close(context.Background()))
			assert.Equal(t, 0, saver.count())
		})
	}
}

func TestAutosaveOnClose(t *testing.T) {
	s := newReadyStore(t)
	saver := &fakeSaver{}
	a, err := Autosave(s, saver, types.SyncConfig{Strategy: types.SyncOnClose})
	require.NoError(t, err)

	for _, first := range []string{"Ada", "Alan", "Grace"} {
		_, err := s.Add(name(first, ""))
		require.NoError(t, err)
	}
	assert.Equal(t, 0, saver.count())

	require.NoError(t, a.Close(context.Background()))
	require.Equal(t, 1, saver.count())
	assert.Len(t, saver.last(), 3)

	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 1, saver.count())
}

func TestAutosaveBatch(t *testing.T) {
	s := newReadyStore(t)
	saver := &fakeSaver{}
	a, err := Autosave(s, saver, types.SyncConfig{Strategy: types.SyncBatch, BatchInterval: 1})
	require.NoError(t, err)
	a.mu.Lock()
	a.interval = 10 * time.Millisecond
	a.timer.Reset(a.interval)
	a.mu.Unlock()
	defer a.Close(context.Background())

	_, err = s.Add(name("Ada", ""))
	require.NoError(t, err)
	_, err = s.Add(name("Alan", ""))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return saver.count() > 0 && len(saver.last()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestAutosaveSkipsLoadingSnapshots(t *testing.T) {
	src := &gatedSource{release: make(chan struct{}), drafts: []types.Draft{name("Ada", "Lovelace")}}
	s := New(WithDataSource(src), WithLogger(quietLogger()))
	defer s.Close()

	saver := &fakeSaver{}
	a, err := Autosave(s, saver, types.SyncConfig{Strategy: types.SyncImmediate})
	require.NoError(t, err)
	defer a.Close(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Initialize(context.Background()) }()
	require.Eventually(t, func() bool { return s.Snapshot().Loading }, time.Second, time.Millisecond)
	assert.Equal(t, 0, saver.count(), "an empty loading state must never overwrite stored data")

	close(src.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, saver.count())
	assert.Len(t, saver.last(), 1)
}

func TestAutosaveFlushRetriesAfterFailure(t *testing.T) {
	s := newReadyStore(t)
	saver := &fakeSaver{}
	a, err := Autosave(s, saver, types.SyncConfig{Strategy: types.SyncOnClose})
	require.NoError(t, err)

	_, err = s.Add(name("Ada", ""))
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	saver.fail(diskFull)
	err = a.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)

	saver.fail(nil)
	require.NoError(t, a.Flush(context.Background()))
	require.Equal(t, 1, saver.count())
	assert.Len(t, saver.last(), 1)

	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, saver.count(), "flush with nothing pending is a no-op")
	require.NoError(t, a.Close(context.Background()))
}
