package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/kinder/pkg/adapters/sqlite"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, opts ...sqlite.Option) *sqlite.HistoryStore {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHistoryStore_Contract(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Provision(context.Background()))

	ports.RunHistoryStoreContract(t, store)
}

func TestHistoryStore_RequiresProvisioning(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, sqlite.WithTable("users_seen"))

	ok, err := store.Provisioned(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "Open must not create the schema")

	_, err = store.ReadHistory(ctx, 1)
	assert.Error(t, err, "reading before provisioning should fail")

	require.NoError(t, store.Provision(ctx))
	ok, err = store.Provisioned(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHistoryStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Provision(ctx))
	require.NoError(t, first.AppendHistory(ctx, 9, []int64{4, 5}))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(path)
	require.NoError(t, err)
	defer second.Close()

	ids, err := second.ReadHistory(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, ids)
}
