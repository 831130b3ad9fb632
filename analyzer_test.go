package hnswix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzerOnEmptyGraph(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)
	a := &Analyzer{Graph: g}
	require.Equal(t, 0, a.Height())
	require.Nil(t, a.Topography())
	require.Nil(t, a.Connectivity())
	require.Equal(t, float64(0), a.TombstoneRatio())
}

func TestAnalyzerReportsTombstoneRatio(t *testing.T) {
	g := seedGraph(t)
	a := &Analyzer{Graph: g}
	require.Equal(t, float64(0), a.TombstoneRatio())

	require.NoError(t, g.RemovePoint("a"))
	require.InDelta(t, 0.25, a.TombstoneRatio(), 1e-9)
}

func TestAnalyzerTopographyAndConnectivity(t *testing.T) {
	g := seedGraph(t)
	a := &Analyzer{Graph: g}

	topo := a.Topography()
	require.Equal(t, a.Height(), len(topo))
	require.Equal(t, g.Len(), topo[0])

	conn := a.Connectivity()
	require.Equal(t, len(topo), len(conn))
	for _, c := range conn {
		require.GreaterOrEqual(t, c, float64(0))
	}
}
