package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTreeStoreContract runs a suite of tests to verify that a TreeStore implementation
// adheres to the defined interface contract. newStore must return an empty store
// for every call.
func RunTreeStoreContract(t *testing.T, newStore func(t *testing.T) TreeStore) {
	t.Run("Set and Get", func(t *testing.T) {
		store := newStore(t)

		_, ok, err := store.Get("/files/contract/key")
		require.NoError(t, err)
		assert.False(t, ok, "missing path must not have a value")

		require.NoError(t, store.Set("/files/contract/key", "value"))
		value, ok, err := store.Get("/files/contract/key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "value", value)

		require.NoError(t, store.Set("/files/contract/empty", ""))
		value, ok, err = store.Get("/files/contract/empty")
		require.NoError(t, err)
		assert.True(t, ok, "empty string is a value")
		assert.Equal(t, "", value)
	})

	t.Run("Match", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("/files/contract/a", "1"))
		require.NoError(t, store.Set("/files/contract/b", "2"))

		paths, err := store.Match("/files/contract/*")
		require.NoError(t, err)
		assert.Equal(t, []string{"/files/contract/a", "/files/contract/b"}, paths)

		paths, err = store.Match("/files/contract/none")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("Remove", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("/files/contract/parent/child", "v"))

		n, err := store.Remove("/files/contract/none")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = store.Remove("/files/contract/parent")
		require.NoError(t, err)
		assert.Equal(t, 2, n, "removed count includes descendants")

		paths, err := store.Match("/files/contract/parent")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("Insert", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("/files/contract/middle", "m"))

		require.NoError(t, store.Insert("/files/contract/middle", "first", true))
		require.NoError(t, store.Insert("/files/contract/middle", "last", false))

		paths, err := store.Match("/files/contract/*")
		require.NoError(t, err)
		assert.Equal(t, []string{"/files/contract/first", "/files/contract/middle", "/files/contract/last"}, paths)

		_, ok, err := store.Get("/files/contract/first")
		require.NoError(t, err)
		assert.False(t, ok, "inserted node has no value")
	})

	t.Run("Insert Without Anchor", func(t *testing.T) {
		store := newStore(t)
		assert.Error(t, store.Insert("/files/contract/none", "label", true))
	})

	t.Run("Ambiguous Set", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("/files/contract/dup[1]", "a"))
		require.NoError(t, store.Set("/files/contract/dup[2]", "b"))

		err := store.Set("/files/contract/dup", "c")
		assert.ErrorIs(t, err, domain.ErrValidation)

		errs, err := store.Match(domain.ErrorPattern)
		require.NoError(t, err)
		assert.NotEmpty(t, errs, "rejected writes are reported in the error subtree")
	})

	t.Run("Save", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("/files/contract/key", "value"))
		assert.NoError(t, store.Save())
	})
}

// RunSnapshotBackendContract runs a suite of tests to verify that a SnapshotBackend
// implementation adheres to the defined interface contract.
func RunSnapshotBackendContract(t *testing.T, backend SnapshotBackend) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	snapshot := func(name string) *domain.Snapshot {
		return &domain.Snapshot{
			Name: name,
			Nodes: []domain.TreeNode{
				{Label: "etc", Children: []domain.TreeNode{
					{Label: "motd", Value: domain.StringPtr("hello")},
					{Label: "empty", Value: domain.StringPtr("")},
					{Label: "bare"},
				}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, snapshot(name)))

		loaded, err := backend.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, snapshot(name), loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := backend.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, snapshot(name)))
		require.NoError(t, backend.Delete(ctx, name))

		_, err := backend.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, backend.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, backend.Save(ctx, snapshot(id1)))
		require.NoError(t, backend.Save(ctx, snapshot(id2)))
		defer func() {
			_ = backend.Delete(ctx, id1)
			_ = backend.Delete(ctx, id2)
		}()

		names, err := backend.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
