package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RememberIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, 42, "alice"))
	require.NoError(t, store.Remember(ctx, 42, "alice"))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	roster, err := store.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].Name)
}

func TestMemoryStore_RosterKeepsInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, 2, "b"))
	require.NoError(t, store.Remember(ctx, 1, "a"))

	roster, err := store.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, int64(2), roster[0].ID)
	assert.Equal(t, int64(1), roster[1].ID)
}
