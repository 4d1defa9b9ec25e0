package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodingStoreSetMatchRemove(t *testing.T) {
	store, err := NewEncodingStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(1, "EMP001", []float32{1, 0, 0}))
	require.NoError(t, store.Set(1, "EMP002", []float32{0, 1, 0}))

	regID, similarity, ok := store.Match(1, []float32{0.9, 0.1, 0}, 0.5)
	require.True(t, ok)
	assert.Equal(t, "EMP001", regID)
	assert.Greater(t, similarity, float32(0.5))

	// nothing enrolled clears an impossible threshold
	_, _, ok = store.Match(1, []float32{0.9, 0.1, 0}, 1.1)
	assert.False(t, ok)

	// tenants never see each other's enrollments
	_, _, ok = store.Match(2, []float32{1, 0, 0}, 0.5)
	assert.False(t, ok)

	require.NoError(t, store.Remove(1, "EMP001"))
	regID, _, ok = store.Match(1, []float32{1, 0, 0}, 0.5)
	assert.False(t, ok, "removed enrollment should not match, got %s", regID)
	assert.Equal(t, 1, store.Count(1))
}

func TestEncodingStoreRejectsEmptyEmbedding(t *testing.T) {
	store, err := NewEncodingStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Set(1, "EMP001", nil))
}

func TestEncodingStorePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := NewEncodingStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(1, "EMP001", []float32{1, 0, 0}))
	require.NoError(t, store.Set(7, "EMP009", []float32{0, 0, 1}))

	reloaded, err := NewEncodingStore(dir)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())

	regID, _, ok := reloaded.Match(1, []float32{1, 0, 0}, 0.5)
	require.True(t, ok)
	assert.Equal(t, "EMP001", regID)
	assert.Equal(t, 1, reloaded.Count(7))
}

func TestEncodingStoreRemoveMissingIsNoop(t *testing.T) {
	store, err := NewEncodingStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Remove(1, "EMP404"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 0}, []float32{1}), "mismatched lengths read as no similarity")
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
}
