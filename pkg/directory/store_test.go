package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource serves a fixed structure, or a fixed error.
type mapSource struct {
	raw map[string]any
	err error
}

func (s mapSource) Read(context.Context) (map[string]any, error) {
	return s.raw, s.err
}

func (s mapSource) Name() string {
	return "memory"
}

func usersOf(names ...string) map[string]any {
	users := make(map[string]any, len(names))
	for _, n := range names {
		users[n] = n + " info"
	}
	return map[string]any{"users": users}
}

func TestStore_ReloadReplacesSnapshot(t *testing.T) {
	initial, err := Decode(usersOf("alice"))
	require.NoError(t, err)

	store := NewStore(initial)
	before := store.Current()
	assert.Equal(t, uint64(1), store.Generation())

	next, err := store.Reload(context.Background(), mapSource{raw: usersOf("bob")})
	require.NoError(t, err)
	assert.Same(t, next, store.Current())
	assert.Equal(t, uint64(2), store.Generation())

	after := store.Current()
	_, ok := after.Find("bob")
	assert.True(t, ok)
	_, ok = after.Find("alice")
	assert.False(t, ok)

	// A snapshot taken before the reload still sees the old content.
	_, ok = before.Find("alice")
	assert.True(t, ok)
	_, ok = before.Find("bob")
	assert.False(t, ok)
}

func TestStore_FailedReloadKeepsPrevious(t *testing.T) {
	initial, err := Decode(usersOf("alice"))
	require.NoError(t, err)
	store := NewStore(initial)

	_, err = store.Reload(context.Background(), mapSource{raw: map[string]any{"users": "broken"}})
	require.Error(t, err)
	assert.Same(t, initial, store.Current())
	assert.Equal(t, uint64(1), store.Generation())

	readErr := errors.New("disk on fire")
	_, err = store.Reload(context.Background(), mapSource{err: readErr})
	assert.ErrorIs(t, err, readErr)
	assert.Same(t, initial, store.Current())
}

func TestStore_NilDirectory(t *testing.T) {
	store := NewStore(nil)
	require.NotNil(t, store.Current())
	assert.Equal(t, 0, store.Current().Len())

	store.Replace(nil)
	assert.Equal(t, uint64(1), store.Generation())
}

func TestStore_ConcurrentReadersAndReloads(t *testing.T) {
	store := NewStore(Empty())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Reload(context.Background(), mapSource{raw: usersOf("a", "b")})
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d := store.Current()
				// A snapshot is either the empty directory or a complete one.
				n := d.Len()
				assert.True(t, n == 0 || n == 2, "torn snapshot with %d users", n)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(9), store.Generation())
}
