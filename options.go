// Copyright (c) 2013-2024 Matteo Collina and LevelGraph Contributors
// Copyright (c) 2024 LevelGraph Go Contributors
// Copyright (c) 2026 hnswix Contributors
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the
// Software is furnished to do so, subject to the following
// conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package hnswix

import "github.com/nnidx/hnswix/store"

// Options collects every Index-level configuration knob. Build one via
// Open's functional options rather than constructing it directly.
type Options struct {
	M              int
	MMax0          int
	EfConstruction int
	Metric         Metric
	Seed           *int64

	DefaultTau      float32
	DefaultEf       int
	DefaultBeamSize int

	Logger Logger
	Store  store.Store

	AsyncMutations  bool
	AsyncBufferSize int
	JournalEnabled  bool
}

// Option configures an Index at Open time.
type Option func(*Options)

// defaultOptions returns the default configuration: M=16, efConstruction
// =200, cosine metric, tau=0.5, ef=efConstruction, beamSize=10.
func defaultOptions() *Options {
	return &Options{
		M:               16,
		MMax0:           16,
		EfConstruction:  200,
		Metric:          MetricCosine,
		DefaultTau:      0.5,
		DefaultEf:       0, // 0 makes Graph.SearchKNN use efConstruction
		DefaultBeamSize: 10,
		Logger:          NewSlogLogger(nil),
		AsyncBufferSize: 100,
	}
}

// applyOptions applies a list of option functions over the defaults.
func applyOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithIndexM sets M; Mmax0 follows it unless WithIndexM0 is also given.
func WithIndexM(m int) Option {
	return func(o *Options) {
		o.M = m
		o.MMax0 = m
	}
}

// WithIndexM0 overrides the level-0 neighbor cap independently of M.
func WithIndexM0(m0 int) Option {
	return func(o *Options) { o.MMax0 = m0 }
}

// WithIndexEfConstruction sets the insertion-time candidate list size.
func WithIndexEfConstruction(ef int) Option {
	return func(o *Options) { o.EfConstruction = ef }
}

// WithIndexMetric selects the similarity kernel.
func WithIndexMetric(m Metric) Option {
	return func(o *Options) { o.Metric = m }
}

// WithIndexSeed fixes the random source used for level assignment, for
// reproducible tests.
func WithIndexSeed(seed int64) Option {
	return func(o *Options) { o.Seed = &seed }
}

// WithDefaultSearch overrides the tau/ef/beamSize SearchKNN falls back to
// when a SearchOption doesn't set them.
func WithDefaultSearch(tau float32, ef, beamSize int) Option {
	return func(o *Options) {
		o.DefaultTau = tau
		o.DefaultEf = ef
		o.DefaultBeamSize = beamSize
	}
}

// WithLogger overrides the structured logger.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStore attaches the persistent snapshot adapter backend used by
// Save/Load.
func WithStore(s store.Store) Option {
	return func(o *Options) { o.Store = s }
}

// WithAsyncMutations switches AddPoint/RemovePoint/UpdatePoint to return
// as soon as their job is queued rather than once the worker has run it,
// sizing the queue's buffer at bufferSize. Errors from an async mutation
// are only visible via the Logger's Warn output; use Wait to synchronize.
func WithAsyncMutations(bufferSize int) Option {
	return func(o *Options) {
		o.AsyncMutations = true
		o.AsyncBufferSize = bufferSize
	}
}

// WithJournal enables append-only journaling of every committed
// AddPoint/RemovePoint/UpdatePoint to the attached store, for later replay
// onto a fresh Index via Journal.Replay. Only a store that exposes its
// LevelDB handle (store.LevelDBStore) supports it; with any other store
// Open logs a warning and nothing is journaled.
func WithJournal() Option {
	return func(o *Options) { o.JournalEnabled = true }
}
