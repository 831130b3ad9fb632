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

import (
	"encoding/binary"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// journalBackend is implemented by Store backends that expose a raw
// *leveldb.DB, needed for the prefix-range scan journaling relies on.
type journalBackend interface {
	DB() *leveldb.DB
}

var journalPrefix = []byte("journal::")

// JournalEntry records one committed mutation.
type JournalEntry struct {
	Operation string    `json:"op"` // "add", "remove", "update"
	ID        string    `json:"id"`
	Vector    []float32 `json:"vector,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// Journal appends mutation entries keyed by nanosecond timestamp plus a
// monotonic counter, so entries sort in submission order even when two
// land in the same nanosecond.
type Journal struct {
	db      *leveldb.DB
	counter uint64
}

func newJournal(db *leveldb.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) key(ts time.Time) []byte {
	counter := atomic.AddUint64(&j.counter, 1)
	key := make([]byte, len(journalPrefix)+16)
	copy(key, journalPrefix)
	binary.BigEndian.PutUint64(key[len(journalPrefix):], uint64(ts.UnixNano()))
	binary.BigEndian.PutUint64(key[len(journalPrefix)+8:], counter)
	return key
}

// Append records a mutation. op is one of "add", "remove", "update".
func (j *Journal) Append(op, id string, v Vector) error {
	entry := JournalEntry{
		Operation: op,
		ID:        id,
		Vector:    []float32(v),
		Timestamp: time.Now(),
	}
	blob, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return j.db.Put(j.key(entry.Timestamp), blob, nil)
}

// Entries returns every recorded journal entry in submission order.
func (j *Journal) Entries() ([]JournalEntry, error) {
	iter := j.db.NewIterator(util.BytesPrefix(journalPrefix), nil)
	defer iter.Release()

	var entries []JournalEntry
	for iter.Next() {
		var entry JournalEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, iter.Error()
}

// Replay re-applies every journal entry, in order, onto target's graph.
// It returns the number of entries applied.
func (j *Journal) Replay(target *Index) (int, error) {
	entries, err := j.Entries()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		var err error
		switch entry.Operation {
		case "add":
			err = target.graph.AddPoint(entry.ID, entry.Vector)
		case "remove":
			err = target.graph.RemovePoint(entry.ID)
		case "update":
			err = target.graph.UpdatePoint(entry.ID, entry.Vector)
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
