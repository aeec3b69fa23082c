package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract. The store must already be provisioned.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	base := time.Now().UnixNano() % 1_000_000_000

	t.Run("Provisioned", func(t *testing.T) {
		ok, err := store.Provisioned(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		// Provisioning twice is harmless
		require.NoError(t, store.Provision(ctx))
	})

	t.Run("Unknown user has empty history", func(t *testing.T) {
		ids, err := store.ReadHistory(ctx, base+1)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Append and Read", func(t *testing.T) {
		user := base + 2
		require.NoError(t, store.AppendHistory(ctx, user, []int64{10, 20}))

		ids, err := store.ReadHistory(ctx, user)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{10, 20}, ids)
	})

	t.Run("Append is a union", func(t *testing.T) {
		user := base + 3
		require.NoError(t, store.AppendHistory(ctx, user, []int64{1, 2}))
		require.NoError(t, store.AppendHistory(ctx, user, []int64{2, 3}))
		require.NoError(t, store.AppendHistory(ctx, user, []int64{1}))

		ids, err := store.ReadHistory(ctx, user)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
	})

	t.Run("Append empty is a no-op", func(t *testing.T) {
		user := base + 4
		require.NoError(t, store.AppendHistory(ctx, user, nil))

		ids, err := store.ReadHistory(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Users are isolated", func(t *testing.T) {
		a, b := base+5, base+6
		require.NoError(t, store.AppendHistory(ctx, a, []int64{100}))
		require.NoError(t, store.AppendHistory(ctx, b, []int64{200}))

		ids, err := store.ReadHistory(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, []int64{100}, ids)
	})

	if lister, ok := store.(HistoryLister); ok {
		t.Run("ListUsers", func(t *testing.T) {
			users, err := lister.ListUsers(ctx)
			require.NoError(t, err)
			assert.Contains(t, users, base+2)
			assert.Contains(t, users, base+3)
		})
	}
}
