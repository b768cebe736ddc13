package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rolodex/pkg/store"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func TestDemoDraftsAreValid(t *testing.T) {
	drafts := Demo()
	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		c, err := types.Validate(d)
		require.NoError(t, err, "demo contact %v", d.FirstName)
		assert.Empty(t, c.ID)
		assert.False(t, c.Favorite)
	}
}

func TestDemoReturnsIndependentCopies(t *testing.T) {
	a := Demo()
	*a[0].FirstName = "Changed"
	b := Demo()
	assert.Equal(t, "Ada", *b[0].FirstName)
}

func TestStaticSeedsStore(t *testing.T) {
	s := store.New(store.WithDataSource(Static(Demo())))
	defer s.Close()
	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, len(demoContacts), s.Len())
}

func TestStaticHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Static(Demo()).LoadInitial(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := types.Config{Backend: types.BackendMemory}
	m := NewMemory(Demo())

	_, err := m.LoadInitial(ctx)
	assert.ErrorIs(t, err, types.ErrBackendDetached)
	assert.ErrorIs(t, m.Save(ctx, nil), types.ErrBackendDetached)

	require.NoError(t, m.Attach(cfg))
	assert.ErrorIs(t, m.Attach(cfg), types.ErrAlreadyAttached)

	drafts, err := m.LoadInitial(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, len(demoContacts))

	saved := []types.Contact{{ID: "c1", FirstName: "Ada", Favorite: true, Notes: types.Ptr("n")}}
	require.NoError(t, m.Save(ctx, saved))
	*saved[0].Notes = "mutated after save"

	drafts, err = m.LoadInitial(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "c1", drafts[0].ID)
	assert.Equal(t, "n", *drafts[0].Notes)
	require.NotNil(t, drafts[0].Favorite)
	assert.True(t, *drafts[0].Favorite)

	require.NoError(t, m.Detach())
	require.NoError(t, m.Detach())
	require.NoError(t, m.Attach(cfg))
	drafts, err = m.LoadInitial(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 1, "saved contacts survive detach")
}

func TestMemoryAttachRejectsOtherBackends(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.Config
		want error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"sqlite", types.Config{Backend: types.BackendSQLite}, types.ErrBackendUnknown},
		{"bad sync", types.Config{Backend: types.BackendMemory, Sync: types.SyncConfig{Strategy: "never"}}, types.ErrSyncStrategyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, NewMemory(nil).Attach(tt.cfg), tt.want)
		})
	}
}

func TestMemoryRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.Attach(types.Config{Backend: types.BackendMemory}))

	s := store.New(store.WithDataSource(m))
	require.NoError(t, s.Initialize(ctx))
	a, err := store.Autosave(s, m, types.SyncConfig{Strategy: types.SyncImmediate})
	require.NoError(t, err)

	c, err := s.Add(types.Draft{FirstName: types.Ptr("Ada")})
	require.NoError(t, err)
	_, err = s.ToggleFavorite(c.ID)
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))
	require.NoError(t, s.Close())

	again := store.New(store.WithDataSource(m))
	defer again.Close()
	require.NoError(t, again.Initialize(ctx))
	got, err := again.FindByID(c.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
}
