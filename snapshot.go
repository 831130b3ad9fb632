package hnswix

import "encoding/json"

// Snapshot is the wire-stable representation of a Graph's full state. Field
// names are part of the on-disk/over-the-wire contract and must not change
// independently of a version bump elsewhere in the store.
type Snapshot struct {
	M              int        `json:"M"`
	MMax0          int        `json:"mMax0"`
	EfConstruction int        `json:"efConstruction"`
	Metric         Metric     `json:"metric"`
	LevelMax       int        `json:"levelMax"`
	EntryPointID   string     `json:"entryPointId"`
	Nodes          []nodeEntry `json:"nodes"`
}

// nodeEntry marshals as a two-element [id, record] tuple, matching the
// legacy wire shape this format was carried over from.
type nodeEntry struct {
	ID     string
	Record snapshotNodeRecord
}

type snapshotNodeRecord struct {
	UniqueID  string     `json:"uniqueid"`
	Level     int        `json:"level"`
	Vector    []float32  `json:"vector"`
	Neighbors [][]string `json:"neighbors"`
	Deleted   bool       `json:"deleted"`
}

func (e nodeEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Record})
}

func (e *nodeEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &e.ID); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &e.Record)
}

// ToBlob serializes the snapshot to its wire form.
func (s Snapshot) ToBlob() ([]byte, error) {
	return json.Marshal(s)
}

// SnapshotFromBlob deserializes a snapshot previously produced by ToBlob.
func SnapshotFromBlob(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// ToSnapshot captures the graph's full state, including tombstoned nodes,
// in deterministic node order.
func (g *Graph) ToSnapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := sortedNodeIDs(g.nodes)
	nodes := make([]nodeEntry, 0, len(ids))
	for _, id := range ids {
		rec := g.nodes[id]
		neighbors := make([][]string, len(rec.neighbors))
		for l, list := range rec.neighbors {
			cp := make([]string, len(list))
			copy(cp, list)
			neighbors[l] = cp
		}
		nodes = append(nodes, nodeEntry{
			ID: id,
			Record: snapshotNodeRecord{
				UniqueID:  id,
				Level:     rec.topLevel,
				Vector:    []float32(cloneVector(rec.vector)),
				Neighbors: neighbors,
				Deleted:   rec.tombstone,
			},
		})
	}

	return Snapshot{
		M:              g.m,
		MMax0:          g.mMax0,
		EfConstruction: g.efConstruction,
		Metric:         g.metric,
		LevelMax:       g.lmax,
		EntryPointID:   g.entryPointID,
		Nodes:          nodes,
	}
}

// FromSnapshot replaces the graph's entire state with snap. Configuration
// (M, efConstruction, Mmax0, metric) is taken from the snapshot, not from
// however the graph was originally constructed.
func (g *Graph) FromSnapshot(snap Snapshot) error {
	sim, err := similarityFor(snap.Metric)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.m = snap.M
	g.efConstruction = snap.EfConstruction
	g.mMax0 = snap.MMax0
	if g.mMax0 == 0 {
		g.mMax0 = g.m
	}
	g.metric = snap.Metric
	g.sim = sim
	g.levelProbs = buildLevelTable(g.m)
	g.lmax = snap.LevelMax
	g.entryPointID = snap.EntryPointID

	nodes := make(map[string]*nodeRecord, len(snap.Nodes))
	dim := 0
	for _, e := range snap.Nodes {
		rec := &nodeRecord{
			id:        e.ID,
			vector:    cloneVector(Vector(e.Record.Vector)),
			topLevel:  e.Record.Level,
			tombstone: e.Record.Deleted,
		}
		rec.neighbors = make([][]string, len(e.Record.Neighbors))
		for l, list := range e.Record.Neighbors {
			rec.neighbors[l] = pruneEmpty(append([]string(nil), list...))
		}
		nodes[e.ID] = rec
		if len(rec.vector) > dim {
			dim = len(rec.vector)
		}
	}
	g.nodes = nodes
	g.dim = dim
	return nil
}
