package hnswix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotBlobRoundTrip(t *testing.T) {
	g := seedGraph(t)
	snap := g.ToSnapshot()

	blob, err := snap.ToBlob()
	require.NoError(t, err)

	back, err := SnapshotFromBlob(blob)
	require.NoError(t, err)
	require.Equal(t, snap.EntryPointID, back.EntryPointID)
	require.Equal(t, snap.LevelMax, back.LevelMax)
	require.Len(t, back.Nodes, len(snap.Nodes))
}

func TestSnapshotNodeEntryIsTuple(t *testing.T) {
	g := seedGraph(t)
	snap := g.ToSnapshot()
	blob, err := snap.ToBlob()
	require.NoError(t, err)

	var raw struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(blob, &raw))
	require.NotEmpty(t, raw.Nodes)

	var tuple []json.RawMessage
	require.NoError(t, json.Unmarshal(raw.Nodes[0], &tuple))
	require.Len(t, tuple, 2)

	var id string
	require.NoError(t, json.Unmarshal(tuple[0], &id))

	var record snapshotNodeRecord
	require.NoError(t, json.Unmarshal(tuple[1], &record))
	require.Equal(t, id, record.UniqueID)
}

func TestFromSnapshotRejectsInvalidMetric(t *testing.T) {
	g, err := NewGraph()
	require.NoError(t, err)
	snap := Snapshot{Metric: "manhattan"}
	require.ErrorIs(t, g.FromSnapshot(snap), ErrInvalidMetric)
}
