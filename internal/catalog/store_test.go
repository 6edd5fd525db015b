package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/forms"
	"github.com/chazuruo/aoss-console/internal/kv"
)

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	c, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Len(t, c.Collections(), 24)
	assert.Empty(t, c.Created().Collections)

	require.NoError(t, c.AddGroup(Group{Name: "group-a", Version: forms.V2, Capacity: forms.DefaultCapacity()}))
	require.NoError(t, c.AddCollection(Collection{Name: "fresh", Group: "group-a", Type: forms.Search, Version: forms.V2}))
	require.NoError(t, c.AddIndex(Index{Collection: "fresh", Name: "idx", DataRetention: forms.IndefiniteRetention}))
	require.NoError(t, c.Save(ctx, store))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Len(t, reloaded.Collections(), 25)

	col, err := reloaded.Collection("fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, col.Status)
	assert.Equal(t, 1, reloaded.GroupCollections("group-a"))
	_, err = reloaded.Index("fresh", "idx")
	assert.NoError(t, err)

	// Restored resources stay in the created set so the next save keeps them.
	assert.Len(t, reloaded.Created().Collections, 1)
}

func TestLoad_BadSchema(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, kv.PutJSON(ctx, store, CreatedKey, File{SchemaVersion: 99}))

	_, err := Load(ctx, store)
	require.Error(t, err)
}
