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

//go:build !js

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore persists snapshots in an embedded LevelDB database,
// one key per snapshot name.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Put(name string, blob []byte) error {
	return s.db.Put([]byte(name), blob, nil)
}

func (s *LevelDBStore) Get(name string) ([]byte, error) {
	v, err := s.db.Get([]byte(name), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *LevelDBStore) Delete(name string) error {
	return s.db.Delete([]byte(name), nil)
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *leveldb.DB for callers that need range
// operations the Store interface doesn't cover, such as journaling.
func (s *LevelDBStore) DB() *leveldb.DB {
	return s.db
}
