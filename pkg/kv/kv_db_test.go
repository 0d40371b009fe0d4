package kv

import (
	"context"
	"testing"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConditionStore {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	store := NewConditionStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleField(t *testing.T) *datastructure.ConditionField {
	t.Helper()
	field, err := datastructure.NewConditionField(
		[]datastructure.ConditionSample{
			{Weather: 0.1, Obstruction: 0.2, Traffic: 0.3},
			{Weather: 1, Obstruction: 0, Traffic: 0.5},
		},
		[]datastructure.ConditionSample{
			{Weather: 0.55, Obstruction: 0.1, Traffic: 0.4},
		},
	)
	require.NoError(t, err)
	return field
}

func TestPutGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	field := sampleField(t)

	require.NoError(t, store.Put(ctx, 0xabc, 333, field))

	got, err := store.Get(ctx, 0xabc, 333)
	require.NoError(t, err)
	assert.Equal(t, field.NodeSamples(), got.NodeSamples())
	assert.Equal(t, field.EdgeSamples(), got.EdgeSamples())
}

func TestGetMiss(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, 1, 7, sampleField(t)))

	_, err := store.Get(ctx, 1, 8)
	assert.ErrorIs(t, err, ErrConditionNotFound)

	_, err = store.Get(ctx, 2, 7)
	assert.ErrorIs(t, err, ErrConditionNotFound)
}

func TestDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, 1, 7, sampleField(t)))
	require.NoError(t, store.Put(ctx, 1, 8, sampleField(t)))
	require.NoError(t, store.Put(ctx, 2, 7, sampleField(t)))

	require.NoError(t, store.Delete(1))

	_, err := store.Get(ctx, 1, 7)
	assert.ErrorIs(t, err, ErrConditionNotFound)
	_, err = store.Get(ctx, 2, 7)
	assert.NoError(t, err)
}

func TestCancelledContext(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, 1, 1, sampleField(t)), context.Canceled)
	_, err := store.Get(ctx, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompressRoundTrip(t *testing.T) {
	in := []byte("weather weather weather traffic traffic obstruction")
	bb, err := compress(in)
	require.NoError(t, err)
	out, err := decompress(bb)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
