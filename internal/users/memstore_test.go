package users

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_SeededOnStartup(t *testing.T) {
	t.Parallel()
	m := NewMemStore()

	got, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed, got)
}

func TestMemStore_ListReturnsCopy(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	got, err := m.List(ctx)
	require.NoError(t, err)
	got[0].Name = "mutated"

	u, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.Name)
}

func TestMemStore_EmptyListIsNotNil(t *testing.T) {
	t.Parallel()
	m := NewMemStore(WithSeed())

	got, err := m.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemStore_CreateThenGet(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	created, err := m.Create(ctx, "A", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	got, err := m.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestMemStore_CreateAcceptsEmptyFields(t *testing.T) {
	t.Parallel()
	m := NewMemStore()

	u, err := m.Create(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, User{ID: 3}, u)
}

func TestMemStore_UpdateKeepsPosition(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	u, err := m.Update(ctx, 1, "Johnny", "johnny@example.com")
	require.NoError(t, err)
	assert.Equal(t, User{ID: 1, Name: "Johnny", Email: "johnny@example.com"}, u)

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, u, all[0])
	assert.Equal(t, DefaultSeed[1], all[1])
}

func TestMemStore_NotFound(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	_, err := m.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Update(ctx, 99, "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete(ctx, 99), ErrNotFound)
}

func TestMemStore_DeleteDoesNotShiftIDs(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, 1))

	_, err := m.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := m.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed[1], u)
}

func TestMemStore_IDsNeverCollideAfterDelete(t *testing.T) {
	t.Parallel()
	m := NewMemStore()
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, 1))
	created, err := m.Create(ctx, "New", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	all, err := m.List(ctx)
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, u := range all {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}

func TestMemStore_WithSeedSetsCounter(t *testing.T) {
	t.Parallel()
	m := NewMemStore(WithSeed(User{ID: 10, Name: "n", Email: "e"}))

	u, err := m.Create(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(11), u.ID)
}

func TestMemStore_ConcurrentCreates(t *testing.T) {
	t.Parallel()
	m := NewMemStore(WithSeed())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx, "n", "e")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
