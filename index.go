package hnswix

import (
	"context"
	"fmt"

	"github.com/nnidx/hnswix/store"
)

// Index is the top-level façade: a Graph guarded by a FIFO mutation
// queue, an optional persistent snapshot adapter, and an optional
// mutation journal. This is the type applications construct and use;
// Graph itself is exported for callers who want the engine without the
// ambient plumbing.
type Index struct {
	name       string
	graph      *Graph
	serializer *Serializer
	logger     Logger
	store      store.Store
	opts       *Options
	journal    *Journal
}

// Open constructs an Index. name identifies the snapshot within the
// attached Store (see WithStore); it has no meaning without one.
func Open(name string, opts ...Option) (*Index, error) {
	o := applyOptions(opts...)

	graphOpts := []GraphOption{
		WithM(o.M),
		WithM0(o.MMax0),
		WithEfConstruction(o.EfConstruction),
		WithMetric(o.Metric),
	}
	if o.Seed != nil {
		graphOpts = append(graphOpts, WithSeed(*o.Seed))
	}
	g, err := NewGraph(graphOpts...)
	if err != nil {
		return nil, fmt.Errorf("hnswix: open %q: %w", name, err)
	}

	ser := NewSerializer(o.AsyncBufferSize, o.Logger)
	ser.Start()

	ix := &Index{
		name:       name,
		graph:      g,
		serializer: ser,
		logger:     o.Logger,
		store:      o.Store,
		opts:       o,
	}
	if o.JournalEnabled {
		if jdb, ok := o.Store.(journalBackend); ok {
			ix.journal = newJournal(jdb.DB())
		} else {
			o.Logger.Warn("hnswix: journal requested but store does not support it", "name", name)
		}
	}

	o.Logger.Info("hnswix: index opened", "name", name, "m", o.M, "mMax0", o.MMax0, "metric", o.Metric)
	return ix, nil
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// AddPoint inserts or replaces id, going through the mutation queue so
// concurrent callers see operations apply in submission order.
func (ix *Index) AddPoint(ctx context.Context, id string, v Vector) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	enqueue := ix.serializer.Enqueue
	if ix.opts.AsyncMutations {
		enqueue = ix.serializer.EnqueueAsync
	}
	err := enqueue(ctx, func(context.Context) error {
		if err := ix.graph.AddPoint(id, v); err != nil {
			return err
		}
		ix.appendJournal("add", id, v)
		return nil
	})
	if err == nil {
		ix.logger.Debug("hnswix: add point", "id", id, "dims", len(v))
	}
	return err
}

// RemovePoint soft-deletes id.
func (ix *Index) RemovePoint(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	enqueue := ix.serializer.Enqueue
	if ix.opts.AsyncMutations {
		enqueue = ix.serializer.EnqueueAsync
	}
	err := enqueue(ctx, func(context.Context) error {
		if err := ix.graph.RemovePoint(id); err != nil {
			return err
		}
		ix.appendJournal("remove", id, nil)
		return nil
	})
	if err == nil {
		ix.logger.Debug("hnswix: remove point", "id", id)
	}
	return err
}

// UpdatePoint replaces the vector stored under id.
func (ix *Index) UpdatePoint(ctx context.Context, id string, v Vector) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	enqueue := ix.serializer.Enqueue
	if ix.opts.AsyncMutations {
		enqueue = ix.serializer.EnqueueAsync
	}
	err := enqueue(ctx, func(context.Context) error {
		if err := ix.graph.UpdatePoint(id, v); err != nil {
			return err
		}
		ix.appendJournal("update", id, v)
		return nil
	})
	if err == nil {
		ix.logger.Debug("hnswix: update point", "id", id, "dims", len(v))
	}
	return err
}

// BuildIndex discards any existing state and inserts every item from
// scratch, preserving the graph's tuning parameters.
func (ix *Index) BuildIndex(ctx context.Context, items []Item) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return ix.serializer.Enqueue(ctx, func(context.Context) error {
		fresh, err := NewGraph(
			WithM(ix.opts.M),
			WithM0(ix.opts.MMax0),
			WithEfConstruction(ix.opts.EfConstruction),
			WithMetric(ix.opts.Metric),
		)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := fresh.AddPoint(item.ID, item.Vector); err != nil {
				return fmt.Errorf("hnswix: buildIndex failed on %q: %w", item.ID, err)
			}
		}
		ix.graph = fresh
		ix.logger.Info("hnswix: index rebuilt from scratch", "count", len(items))
		return nil
	})
}

// SearchOption overrides a single SearchKNN call's tau/ef/beamSize.
type SearchOption func(*searchParams)

type searchParams struct {
	tau      float32
	ef       int
	beamSize int
}

// WithTau overrides the similarity threshold for one search.
func WithTau(tau float32) SearchOption { return func(p *searchParams) { p.tau = tau } }

// WithEf overrides the candidate-list size for one search.
func WithEf(ef int) SearchOption { return func(p *searchParams) { p.ef = ef } }

// WithBeamSize overrides the upper-layer beam width for one search.
func WithBeamSize(beamSize int) SearchOption { return func(p *searchParams) { p.beamSize = beamSize } }

// SearchKNN returns the K most similar points to q. Reads bypass the
// mutation queue and run directly against the graph under its own lock.
func (ix *Index) SearchKNN(ctx context.Context, q Vector, k int, opts ...SearchOption) ([]Result, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	p := searchParams{tau: ix.opts.DefaultTau, ef: ix.opts.DefaultEf, beamSize: ix.opts.DefaultBeamSize}
	for _, opt := range opts {
		opt(&p)
	}
	return ix.graph.SearchKNN(q, k, p.tau, p.ef, p.beamSize)
}

// ToSnapshot returns the graph's current state.
func (ix *Index) ToSnapshot() Snapshot {
	return ix.graph.ToSnapshot()
}

// FromSnapshot replaces the graph's state with snap.
func (ix *Index) FromSnapshot(ctx context.Context, snap Snapshot) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return ix.serializer.Enqueue(ctx, func(context.Context) error {
		return ix.graph.FromSnapshot(snap)
	})
}

// RebuildFromSnapshot drops all adjacency and reinserts every
// non-tombstoned record, reporting progress via cb.
func (ix *Index) RebuildFromSnapshot(ctx context.Context, cb func(pct int)) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return ix.serializer.Enqueue(ctx, func(context.Context) error {
		ix.logger.Info("hnswix: rebuild starting", "name", ix.name)
		err := ix.graph.RebuildFromSnapshot(cb)
		if err != nil {
			ix.logger.Warn("hnswix: rebuild failed", "name", ix.name, "error", err)
			return err
		}
		ix.logger.Info("hnswix: rebuild finished", "name", ix.name)
		return nil
	})
}

// Save persists the current snapshot to the attached Store under the
// Index's name.
func (ix *Index) Save(ctx context.Context) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if ix.store == nil {
		return fmt.Errorf("%w: no store attached", ErrStorageUnavailable)
	}
	blob, err := ix.ToSnapshot().ToBlob()
	if err != nil {
		return fmt.Errorf("hnswix: encode snapshot: %w", err)
	}
	if err := ix.store.Put(ix.name, blob); err != nil {
		ix.logger.Warn("hnswix: save failed", "name", ix.name, "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	ix.logger.Info("hnswix: snapshot saved", "name", ix.name, "bytes", len(blob))
	return nil
}

// Load replaces the graph's state with the snapshot stored under the
// Index's name, returning ErrSnapshotMissing if none exists.
func (ix *Index) Load(ctx context.Context) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if ix.store == nil {
		return fmt.Errorf("%w: no store attached", ErrStorageUnavailable)
	}
	blob, err := ix.store.Get(ix.name)
	if err == store.ErrNotFound {
		return fmt.Errorf("%w: %q", ErrSnapshotMissing, ix.name)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	snap, err := SnapshotFromBlob(blob)
	if err != nil {
		return fmt.Errorf("hnswix: decode snapshot: %w", err)
	}
	return ix.FromSnapshot(ctx, snap)
}

// Wait blocks until every mutation already submitted has completed,
// useful after a burst of WithAsyncMutations calls.
func (ix *Index) Wait(ctx context.Context) error {
	return ix.serializer.Wait(ctx)
}

// Len reports the number of tracked records, including tombstoned ones.
func (ix *Index) Len() int { return ix.graph.Len() }

// Analyzer returns a structural analyzer over the index's current graph.
func (ix *Index) Analyzer() *Analyzer { return &Analyzer{Graph: ix.graph} }

// Close drains the mutation queue and releases the attached store.
func (ix *Index) Close() error {
	if err := ix.serializer.Close(); err != nil {
		return err
	}
	if ix.store != nil {
		return ix.store.Close()
	}
	return nil
}

func (ix *Index) appendJournal(op, id string, v Vector) {
	if ix.journal == nil {
		return
	}
	if err := ix.journal.Append(op, id, v); err != nil {
		ix.logger.Warn("hnswix: journal append failed", "op", op, "id", id, "error", err)
	}
}
