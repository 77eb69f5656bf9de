package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKVTest(t *testing.T) KV {
	t.Helper()

	kv, err := NewSQLiteKV(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		kv.Close()
	})
	return kv
}

func TestSQLiteKV_SetAndGet(t *testing.T) {
	kv := setupKVTest(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "guest:cart", []byte(`{"seq":1}`)))

	value, err := kv.Get(ctx, "guest:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"seq":1}`), value)
}

func TestSQLiteKV_GetMissingKey(t *testing.T) {
	kv := setupKVTest(t)

	_, err := kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteKV_SetOverwrites(t *testing.T) {
	kv := setupKVTest(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "guest:cart", []byte("one")))
	require.NoError(t, kv.Set(ctx, "guest:cart", []byte("two")))

	value, err := kv.Get(ctx, "guest:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), value)
}

func TestSQLiteKV_Remove(t *testing.T) {
	kv := setupKVTest(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "guest:cart", []byte("one")))
	require.NoError(t, kv.Remove(ctx, "guest:cart"))

	_, err := kv.Get(ctx, "guest:cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteKV_RemoveMissingKeyIsNoop(t *testing.T) {
	kv := setupKVTest(t)

	assert.NoError(t, kv.Remove(context.Background(), "missing"))
}
