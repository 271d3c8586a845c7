package db

import (
	"context"
	"os"
	"testing"

	"funnybanny-backend/internal/config"
	"funnybanny-backend/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behavior every Store backend must share. Collections
// are namespaced by ns so a shared database can be reused between runs.
func runStoreContract(t *testing.T, store ports.Store, ns string) {
	owners := ns + "-owners"
	pets := ns + "-pets"

	t.Run("nested write creates missing parents", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, JoinPath(owners, "o1", "devices", "d1"), pet{Name: "Rex"}))
		require.NoError(t, store.Set(ctx, JoinPath(owners, "o1", "devices", "d2"), pet{Name: "Tom"}))

		var devices map[string]pet
		found, err := store.Get(ctx, JoinPath(owners, "o1", "devices"), &devices)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, map[string]pet{"d1": {Name: "Rex"}, "d2": {Name: "Tom"}}, devices)

		var name string
		found, err = store.Get(ctx, JoinPath(owners, "o1", "devices", "d2", "name"), &name)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Tom", name)
	})

	t.Run("nested delete prunes emptied parents", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Update(ctx, map[string]any{
			JoinPath(owners, "o1", "devices", "d1"): nil,
			JoinPath(owners, "o1", "devices", "d2"): nil,
		}))

		var devices map[string]pet
		found, err := store.Get(ctx, JoinPath(owners, "o1", "devices"), &devices)
		require.NoError(t, err)
		assert.False(t, found)

		var owner map[string]any
		found, err = store.Get(ctx, JoinPath(owners, "o1"), &owner)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("entities and fields in one update", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, JoinPath(pets, "a"), pet{Name: "Rex"}))
		require.NoError(t, store.Update(ctx, map[string]any{
			JoinPath(pets, "a", "name"): "Max",
			JoinPath(pets, "b"):         pet{Name: "Tom"},
		}))

		var all map[string]pet
		found, err := store.Get(ctx, pets, &all)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, map[string]pet{"a": {Name: "Max"}, "b": {Name: "Tom"}}, all)
	})

	t.Run("missing paths are not found", func(t *testing.T) {
		ctx := context.Background()
		var p pet
		found, err := store.Get(ctx, JoinPath(pets, "missing"), &p)
		require.NoError(t, err)
		assert.False(t, found)

		var name string
		found, err = store.Get(ctx, JoinPath(pets, "missing", "name"), &name)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemory(), "mem")
}

func TestPostgresStoreContract(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pg, err := NewPostgres(ctx, config.Config{DatabaseURL: url})
	require.NoError(t, err)

	ns, err := NewKey()
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pg.Pool.Exec(context.Background(), `DELETE FROM store_nodes WHERE path LIKE $1`, ns+"-%")
		pg.Close()
	})

	runStoreContract(t, pg, ns)
}
