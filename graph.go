package hnswix

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nnidx/hnswix/heap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is the layered proximity graph: level assignment, bidirectional
// edge maintenance, beam search and soft delete all live here. A Graph is
// safe for concurrent use: reads take a shared lock, mutations take an
// exclusive one. Index layers a FIFO mutation queue on top of this for
// command ordering; Graph itself only guarantees data-race safety.
type Graph struct {
	mu sync.RWMutex

	m              int
	mMax0          int
	efConstruction int
	metric         Metric
	sim            SimilarityFunc

	dim   int
	lmax  int
	nodes map[string]*nodeRecord

	entryPointID string

	levelProbs []float64
	rng        *rand.Rand
}

// GraphOption configures a Graph at construction time.
type GraphOption func(*Graph)

// WithM sets the per-level neighbor cap (levels >= 1) and, unless
// overridden by WithM0, the level-0 cap as well.
func WithM(m int) GraphOption {
	return func(g *Graph) {
		g.m = m
		g.mMax0 = m
	}
}

// WithM0 overrides the level-0 neighbor cap independently of M. Classical
// HNSW commonly sets this to 2*M; this package defaults it to M.
func WithM0(m0 int) GraphOption {
	return func(g *Graph) { g.mMax0 = m0 }
}

// WithEfConstruction sets the candidate-list size used while inserting.
func WithEfConstruction(ef int) GraphOption {
	return func(g *Graph) { g.efConstruction = ef }
}

// WithMetric selects the similarity kernel.
func WithMetric(metric Metric) GraphOption {
	return func(g *Graph) { g.metric = metric }
}

// WithSeed fixes the random source used for level assignment, for
// reproducible tests and benchmarks.
func WithSeed(seed int64) GraphOption {
	return func(g *Graph) { g.rng = rand.New(rand.NewSource(seed)) }
}

// NewGraph constructs an empty Graph with the given options applied over
// defaults (M=16, efConstruction=200, metric=cosine, Mmax0=M).
func NewGraph(opts ...GraphOption) (*Graph, error) {
	g := &Graph{
		m:              16,
		efConstruction: 200,
		metric:         MetricCosine,
		nodes:          make(map[string]*nodeRecord),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.mMax0 = g.m
	for _, opt := range opts {
		opt(g)
	}
	sim, err := similarityFor(g.metric)
	if err != nil {
		return nil, err
	}
	g.sim = sim
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.levelProbs = buildLevelTable(g.m)
	return g, nil
}

// Validate reports whether the graph's tuning parameters are usable.
func (g *Graph) Validate() error {
	if g.m < 2 {
		return fmt.Errorf("%w: M must be >= 2, got %d", ErrInvalidParameter, g.m)
	}
	if g.mMax0 < 1 {
		return fmt.Errorf("%w: Mmax0 must be >= 1, got %d", ErrInvalidParameter, g.mMax0)
	}
	if g.efConstruction < g.m {
		return fmt.Errorf("%w: efConstruction (%d) must be >= M (%d)", ErrInvalidParameter, g.efConstruction, g.m)
	}
	return nil
}

func (g *Graph) drawLevel() int {
	return drawLevel(g.rng.Float64(), g.levelProbs)
}

func (g *Graph) capAt(layer int) int {
	if layer == 0 {
		return g.mMax0
	}
	return g.m
}

// Len reports the number of records tracked by the graph, including
// tombstoned ones.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Dimensions reports the vector width fixed by the first inserted point,
// or 0 if the graph is empty.
func (g *Graph) Dimensions() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dim
}

// GetNode returns the current record for id, or false if unknown.
func (g *Graph) GetNode(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return rec.toNode(), true
}

// AddPoint inserts a new point, or replaces a live point with the same id
// (by tombstoning the old record and inserting a fresh one with a new
// level draw and adjacency), following the same reinsertion path
// UpdatePoint uses.
func (g *Graph) AddPoint(id string, v Vector) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addPointLocked(id, v)
}

// RemovePoint soft-deletes id: the record is marked tombstoned but kept
// for graph connectivity. It is a no-op if id is unknown. The entry point
// is never swapped just because it was tombstoned.
func (g *Graph) RemovePoint(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.nodes[id]
	if !ok {
		return nil
	}
	rec.tombstone = true
	return nil
}

// UpdatePoint replaces the vector stored under id: the existing record (if
// any) is tombstoned and a new record is inserted from scratch, exactly as
// AddPoint does for a colliding id. This is the only update path; there is
// no in-place "reassign neighbors" variant.
func (g *Graph) UpdatePoint(id string, v Vector) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addPointLocked(id, v)
}

func (g *Graph) addPointLocked(id string, v Vector) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(v) == 0 {
		return nil
	}
	if len(g.nodes) == 0 {
		g.dim = len(v)
	} else if len(v) != g.dim {
		return fmt.Errorf("%w: graph dimension %d, got %d", ErrDimensionMismatch, g.dim, len(v))
	}

	wasEntryPoint := id == g.entryPointID
	if existing, ok := g.nodes[id]; ok {
		existing.tombstone = true
	}

	level := g.drawLevel()
	newNode := &nodeRecord{
		id:        id,
		vector:    cloneVector(v),
		topLevel:  level,
		neighbors: make([][]string, level+1),
	}

	if g.entryPointID == "" {
		g.nodes[id] = newNode
		g.entryPointID = id
		g.lmax = level
		return nil
	}

	entry := []string{g.entryPointID}
	for layer := g.lmax; layer > level; layer-- {
		res := g.searchLayer(v, entry, 1, layer)
		if len(res) > 0 {
			entry = []string{res[0].id}
		}
	}

	g.nodes[id] = newNode

	top := g.lmax
	if level < top {
		top = level
	}
	for layer := top; layer >= 0; layer-- {
		w := g.searchLayer(v, entry, g.efConstruction, layer)
		selected := selectNeighborsSimple(w, g.m)
		for _, c := range selected {
			if c.id == id {
				continue
			}
			g.addEdge(id, c.id, layer)
			g.addEdge(c.id, id, layer)
		}
		for _, c := range selected {
			if c.id == id {
				continue
			}
			if nrec, ok := g.nodes[c.id]; ok && layer < len(nrec.neighbors) && len(nrec.neighbors[layer]) > g.capAt(layer) {
				g.shrinkLocked(c.id, layer)
			}
		}
		if len(w) > 0 {
			entry = idsOf(w)
		}
	}

	if newNode.topLevel > g.lmax {
		g.lmax = newNode.topLevel
		g.entryPointID = id
	} else if wasEntryPoint {
		g.recomputeEntryPoint()
	}
	return nil
}

func (g *Graph) recomputeEntryPoint() {
	ids := maps.Keys(g.nodes)
	slices.Sort(ids)
	best := ""
	bestLevel := -1
	for _, id := range ids {
		rec := g.nodes[id]
		if rec.topLevel > bestLevel {
			bestLevel = rec.topLevel
			best = id
		}
	}
	g.entryPointID = best
	g.lmax = bestLevel
}

func (g *Graph) addEdge(from, to string, layer int) {
	rec, ok := g.nodes[from]
	if !ok || layer >= len(rec.neighbors) {
		return
	}
	rec.neighbors[layer] = pruneEmpty(rec.neighbors[layer])
	if to == "" || to == from {
		return
	}
	for _, x := range rec.neighbors[layer] {
		if x == to {
			return
		}
	}
	rec.neighbors[layer] = append(rec.neighbors[layer], to)
}

// shrinkLocked truncates id's neighbor list at layer to the layer's cap,
// keeping the nearest peers by similarity to id's own vector and removing
// the dropped peers' back-references.
func (g *Graph) shrinkLocked(id string, layer int) {
	rec := g.nodes[id]
	cap := g.capAt(layer)
	if len(rec.neighbors[layer]) <= cap {
		return
	}
	cands := make([]candidate, 0, len(rec.neighbors[layer]))
	for _, nid := range rec.neighbors[layer] {
		nrec, ok := g.nodes[nid]
		if !ok {
			continue
		}
		cands = append(cands, candidate{id: nid, sim: g.sim(rec.vector, nrec.vector)})
	}
	sortCandidates(cands)
	if len(cands) > cap {
		cands = cands[:cap]
	}
	keep := make(map[string]bool, len(cands))
	newList := make([]string, 0, len(cands))
	for _, c := range cands {
		keep[c.id] = true
		newList = append(newList, c.id)
	}
	for _, nid := range rec.neighbors[layer] {
		if keep[nid] {
			continue
		}
		if nrec, ok := g.nodes[nid]; ok && layer < len(nrec.neighbors) {
			nrec.neighbors[layer] = removeID(nrec.neighbors[layer], id)
		}
	}
	rec.neighbors[layer] = newList
}

// searchLayer runs a bounded beam search at a single layer, starting from
// entry, and returns up to ef candidates ordered most-similar-first.
// Tombstoned nodes are traversed (they still carry connectivity) but
// filtering them out of results is the caller's responsibility.
func (g *Graph) searchLayer(q Vector, entry []string, ef int, layer int) []candidate {
	visited := make(map[string]bool, ef*2)
	candidates := &heap.Heap[candidate]{}
	results := &heap.Heap[candidate]{}

	for _, id := range entry {
		if visited[id] {
			continue
		}
		visited[id] = true
		rec, ok := g.nodes[id]
		if !ok {
			continue
		}
		c := candidate{id: id, sim: g.sim(q, rec.vector)}
		candidates.Push(c)
		results.Push(c)
	}

	for candidates.Len() > 0 {
		c := candidates.Pop()
		if results.Len() >= ef {
			if c.sim < results.Max().sim {
				break
			}
		}
		rec, ok := g.nodes[c.id]
		if !ok || layer >= len(rec.neighbors) {
			continue
		}
		for _, nid := range rec.neighbors[layer] {
			if nid == "" || visited[nid] {
				continue
			}
			visited[nid] = true
			nrec, ok := g.nodes[nid]
			if !ok {
				continue
			}
			nsim := g.sim(q, nrec.vector)
			if results.Len() < ef || nsim > results.Max().sim {
				nc := candidate{id: nid, sim: nsim}
				candidates.Push(nc)
				results.Push(nc)
				if results.Len() > ef {
					results.PopLast()
				}
			}
		}
	}

	return sortCandidates(results.Slice())
}

// SearchKNN finds the K points most similar to q, descending through the
// upper layers with a beam of up to beamSize entry points and finishing with
// an ef-bounded search at layer 0. Results below the similarity threshold
// tau or belonging to tombstoned nodes are excluded.
func (g *Graph) SearchKNN(q Vector, k int, tau float32, ef int, beamSize int) ([]Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.entryPointID == "" || k <= 0 {
		return nil, nil
	}
	if len(q) != g.dim {
		return nil, fmt.Errorf("%w: graph dimension %d, got %d", ErrDimensionMismatch, g.dim, len(q))
	}
	if ef <= 0 {
		ef = g.efConstruction
	}
	if beamSize <= 0 {
		beamSize = 10
	}

	capBest := k
	if ef > capBest {
		capBest = ef
	}
	best := newScoredSet()

	beam := []string{g.entryPointID}
	for layer := g.lmax; layer >= 1; layer-- {
		efLayer := ef
		if beamSize < efLayer {
			efLayer = beamSize
		}
		layerResults := g.searchLayer(q, beam, efLayer, layer)
		best.merge(filterTombstoned(layerResults, g.nodes), capBest)
		if len(layerResults) > 0 {
			beam = idsOf(layerResults)
			if len(beam) > beamSize {
				beam = beam[:beamSize]
			}
		}
	}

	bottom := g.searchLayer(q, beam, ef, 0)
	best.merge(filterTombstoned(bottom, g.nodes), capBest)

	out := make([]Result, 0, k)
	for _, c := range best.sorted() {
		if c.sim <= tau {
			continue
		}
		rec, ok := g.nodes[c.id]
		if !ok || rec.tombstone {
			continue
		}
		out = append(out, Result{ID: c.id, Vector: cloneVector(rec.vector), Score: c.sim})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func filterTombstoned(cands []candidate, nodes map[string]*nodeRecord) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if rec, ok := nodes[c.id]; ok && !rec.tombstone {
			out = append(out, c)
		}
	}
	return out
}

// RebuildFromSnapshot discards all adjacency and re-inserts every
// non-tombstoned record from the graph's current state, in deterministic
// id order. progress, if non-nil, is called after every processed record
// with a percentage in [0, 100].
func (g *Graph) RebuildFromSnapshot(progress func(pct int)) error {
	g.mu.Lock()
	prior := g.nodes
	ids := maps.Keys(prior)
	slices.Sort(ids)
	g.nodes = make(map[string]*nodeRecord)
	g.lmax = 0
	g.entryPointID = ""
	g.mu.Unlock()

	total := len(ids)
	done := 0
	report := func() {
		if progress == nil {
			return
		}
		if total == 0 {
			progress(100)
			return
		}
		progress(done * 100 / total)
	}

	for _, id := range ids {
		rec := prior[id]
		if rec.tombstone {
			done++
			report()
			continue
		}
		if err := g.AddPoint(id, rec.vector); err != nil {
			return fmt.Errorf("hnswix: rebuild failed on %q: %w", id, err)
		}
		done++
		report()
	}
	if progress != nil {
		progress(100)
	}
	return nil
}
