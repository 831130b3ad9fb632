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

import "errors"

// Sentinel errors returned by index and graph operations. Callers should
// compare with errors.Is: some are returned bare (ErrEmptyID,
// ErrQueueClosed) and others wrapped with additional context via
// fmt.Errorf("%w: ...").
var (
	ErrDimensionMismatch  = errors.New("hnswix: dimension mismatch")
	ErrInvalidMetric      = errors.New("hnswix: invalid metric")
	ErrEmptyVector        = errors.New("hnswix: empty vector")
	ErrEmptyID            = errors.New("hnswix: id must not be empty")
	ErrUnknownID          = errors.New("hnswix: unknown id")
	ErrSnapshotMissing    = errors.New("hnswix: snapshot missing")
	ErrStorageUnavailable = errors.New("hnswix: storage unavailable")
	ErrQueueClosed        = errors.New("hnswix: mutation queue closed")
	ErrClosed             = errors.New("hnswix: index is closed")
	ErrInvalidParameter   = errors.New("hnswix: invalid parameter")
)
