package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStorePutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("idx", []byte("hello")))
	v, err := s.Get("idx")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), v)
}

func TestFileStoreGetMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreOverwriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("idx", []byte("first")))
	require.NoError(t, s.Put("idx", []byte("second")))

	v, err := s.Get("idx")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), v)
}

func TestFileStoreDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("idx", []byte("x")))
	require.NoError(t, s.Delete("idx"))
	_, err = s.Get("idx")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete("idx"))
}
