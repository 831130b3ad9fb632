package hnswix

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// sortedNodeIDs returns a deterministic, id-ascending view of a node map,
// the same order recomputeEntryPoint and RebuildFromSnapshot walk the node
// map in, so two snapshots of identical state list nodes in the same
// order.
func sortedNodeIDs(nodes map[string]*nodeRecord) []string {
	ids := maps.Keys(nodes)
	slices.Sort(ids)
	return ids
}
