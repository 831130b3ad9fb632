package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio"
)

// FileStore persists each snapshot as one file under a directory,
// replaced atomically on every Put via renameio so a crash mid-write never
// leaves a truncated snapshot on disk.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// OpenFileStore creates dir if necessary and returns a FileStore rooted
// there.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".snapshot")
}

func (s *FileStore) Put(name string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := renameio.TempFile("", s.path(name))
	if err != nil {
		return err
	}
	defer tmp.Cleanup()
	if _, err := tmp.Write(blob); err != nil {
		return err
	}
	return tmp.CloseAtomicallyReplace()
}

func (s *FileStore) Get(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return blob, err
}

func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) Close() error { return nil }
