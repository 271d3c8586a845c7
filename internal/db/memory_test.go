package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pet struct {
	Name  string  `json:"name"`
	Owner *string `json:"owner"`
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "pets/a", pet{Name: "Rex"}))

	var got pet
	found, err := m.Get(ctx, "pets/a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Rex", got.Name)
	assert.Nil(t, got.Owner)

	var name string
	found, err = m.Get(ctx, "pets/a/name", &name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Rex", name)

	found, err = m.Get(ctx, "pets/missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	var all map[string]pet
	found, err = m.Get(ctx, "pets", &all)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, all, 1)
}

func TestMemoryUpdateDeletesAndPrunes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Update(ctx, map[string]any{
		"pets/a":      pet{Name: "Rex"},
		"pets/b":      pet{Name: "Tom"},
		"owners/o1/n": "Ann",
	}))

	require.NoError(t, m.Update(ctx, map[string]any{
		"pets/a":      nil,
		"pets/b/name": "Tommy",
		"owners/o1/n": nil,
	}))

	var all map[string]pet
	found, err := m.Get(ctx, "pets", &all)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]pet{"b": {Name: "Tommy"}}, all)

	var owners map[string]any
	found, err = m.Get(ctx, "owners", &owners)
	require.NoError(t, err)
	assert.False(t, found, "emptied parents disappear")
}

func TestMemoryUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "pets/a", pet{Name: "Rex"}))

	err := m.Update(ctx, map[string]any{
		"pets/a/name": "Max",
		"pets/bad":    make(chan int),
	})
	require.Error(t, err)

	var name string
	_, err = m.Get(ctx, "pets/a/name", &name)
	require.NoError(t, err)
	assert.Equal(t, "Rex", name)
}

func TestMemoryRejectsRootAndEmptyWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	assert.Error(t, m.Update(ctx, map[string]any{}))
	assert.Error(t, m.Set(ctx, "/", "x"))
}

func TestPushKeysAreUniqueAndOrdered(t *testing.T) {
	m := NewMemory()
	a, err := m.Push(context.Background(), "pets")
	require.NoError(t, err)
	b, err := m.Push(context.Background(), "pets")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}

func TestSplitJoinPath(t *testing.T) {
	assert.Equal(t, []string{"children", "abc", "guardian"}, SplitPath("/children//abc/guardian/"))
	assert.Empty(t, SplitPath("/"))
	assert.Equal(t, "children/abc", JoinPath("children", "abc"))
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	assert.ErrorIs(t, m.Set(ctx, "pets/a", pet{Name: "Rex"}), context.Canceled)
	assert.ErrorIs(t, m.Health(ctx), context.Canceled)
}
