package hnswix

// Node is the externally visible state of a stored point, returned by
// GetNode.
type Node struct {
	ID        string
	Vector    Vector
	TopLevel  int
	Tombstone bool
}

// nodeRecord is the internal adjacency-carrying representation. neighbors
// is indexed by level: neighbors[l] holds the ids of peers connected to
// this node at layer l, for l in [0, topLevel].
type nodeRecord struct {
	id        string
	vector    Vector
	topLevel  int
	neighbors [][]string
	tombstone bool
}

func (n *nodeRecord) toNode() Node {
	return Node{
		ID:        n.id,
		Vector:    cloneVector(n.vector),
		TopLevel:  n.topLevel,
		Tombstone: n.tombstone,
	}
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func pruneEmpty(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
