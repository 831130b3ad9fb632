package hnswix

// Analyzer reports structural statistics about a Graph, useful for
// deciding when a soft-deleted index has accumulated enough dead weight to
// warrant RebuildFromSnapshot.
type Analyzer struct {
	Graph *Graph
}

// Height returns the number of layers currently in use (Lmax + 1), or 0
// for an empty graph.
func (a *Analyzer) Height() int {
	a.Graph.mu.RLock()
	defer a.Graph.mu.RUnlock()
	if a.Graph.entryPointID == "" {
		return 0
	}
	return a.Graph.lmax + 1
}

// Topography returns, per layer, the number of records present at that
// layer (topLevel >= layer), tombstoned or not.
func (a *Analyzer) Topography() []int {
	a.Graph.mu.RLock()
	defer a.Graph.mu.RUnlock()
	if a.Graph.entryPointID == "" {
		return nil
	}
	counts := make([]int, a.Graph.lmax+1)
	for _, rec := range a.Graph.nodes {
		for l := 0; l <= rec.topLevel && l < len(counts); l++ {
			counts[l]++
		}
	}
	return counts
}

// Connectivity returns, per layer, the average number of outgoing edges
// per record present at that layer.
func (a *Analyzer) Connectivity() []float64 {
	a.Graph.mu.RLock()
	defer a.Graph.mu.RUnlock()
	if a.Graph.entryPointID == "" {
		return nil
	}
	edges := make([]int, a.Graph.lmax+1)
	counts := make([]int, a.Graph.lmax+1)
	for _, rec := range a.Graph.nodes {
		for l := 0; l <= rec.topLevel && l < len(edges); l++ {
			counts[l]++
			if l < len(rec.neighbors) {
				edges[l] += len(rec.neighbors[l])
			}
		}
	}
	out := make([]float64, len(edges))
	for i := range out {
		if counts[i] > 0 {
			out[i] = float64(edges[i]) / float64(counts[i])
		}
	}
	return out
}

// TombstoneRatio returns the fraction of tracked records that are
// soft-deleted, in [0, 1]. A high ratio is a signal that
// RebuildFromSnapshot would shrink the graph meaningfully.
func (a *Analyzer) TombstoneRatio() float64 {
	a.Graph.mu.RLock()
	defer a.Graph.mu.RUnlock()
	if len(a.Graph.nodes) == 0 {
		return 0
	}
	dead := 0
	for _, rec := range a.Graph.nodes {
		if rec.tombstone {
			dead++
		}
	}
	return float64(dead) / float64(len(a.Graph.nodes))
}
