package hnswix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := Vector{1, 0, 0}
	b := Vector{0, 1, 0}
	require.InDelta(t, 0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := Vector{1, 2, 3}
	require.InDelta(t, 1, CosineSimilarity(a, a), 1e-6)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	a := Vector{0, 0, 0}
	b := Vector{1, 0, 0}
	require.Equal(t, float32(0), CosineSimilarity(a, b))
	require.Equal(t, float32(0), CosineSimilarity(a, a))
}

func TestEuclideanSimilarityBounded(t *testing.T) {
	a := Vector{0, 0}
	b := Vector{0, 0}
	require.InDelta(t, 1, EuclideanSimilarity(a, b), 1e-6)

	c := Vector{3, 4}
	sim := EuclideanSimilarity(a, c)
	require.Greater(t, sim, float32(0))
	require.Less(t, sim, float32(1))
}

func TestSimilarityForInvalidMetric(t *testing.T) {
	_, err := similarityFor("manhattan")
	require.ErrorIs(t, err, ErrInvalidMetric)
}

func TestSimilarityForDefault(t *testing.T) {
	fn, err := similarityFor("")
	require.NoError(t, err)
	require.NotNil(t, fn)
}
