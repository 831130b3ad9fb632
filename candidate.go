package hnswix

import "sort"

// candidate is one entry in the ordered working set: a node id scored
// against a fixed query vector. Less defines the heap's preference order
// (highest similarity first, ties broken by id ascending for determinism).
type candidate struct {
	id  string
	sim float32
}

func (c candidate) Less(o candidate) bool {
	if c.sim != o.sim {
		return c.sim > o.sim
	}
	return c.id < o.id
}

// sortCandidates orders a slice most-similar-first with the same
// deterministic tie-break as candidate.Less, for callers that need a
// stable sequence rather than heap pop order.
func sortCandidates(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Less(cands[j]) })
	return cands
}

func idsOf(cands []candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}

func selectNeighborsSimple(w []candidate, k int) []candidate {
	if k >= len(w) {
		return w
	}
	return w[:k]
}

// scoredSet accumulates the best-known candidates across several layer
// searches, truncating to a capacity so memory stays bounded even for a
// pathologically wide beam.
type scoredSet struct {
	byID map[string]float32
}

func newScoredSet() *scoredSet {
	return &scoredSet{byID: make(map[string]float32)}
}

func (s *scoredSet) merge(cands []candidate, cap int) {
	for _, c := range cands {
		if prev, ok := s.byID[c.id]; !ok || c.sim > prev {
			s.byID[c.id] = c.sim
		}
	}
	if cap > 0 && len(s.byID) > cap {
		arr := make([]candidate, 0, len(s.byID))
		for id, sim := range s.byID {
			arr = append(arr, candidate{id: id, sim: sim})
		}
		sortCandidates(arr)
		arr = arr[:cap]
		s.byID = make(map[string]float32, len(arr))
		for _, c := range arr {
			s.byID[c.id] = c.sim
		}
	}
}

func (s *scoredSet) sorted() []candidate {
	arr := make([]candidate, 0, len(s.byID))
	for id, sim := range s.byID {
		arr = append(arr, candidate{id: id, sim: sim})
	}
	return sortCandidates(arr)
}
