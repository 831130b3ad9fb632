package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelDBStorePutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := OpenLevelDB(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("idx", []byte("hello")))
	v, err := s.Get("idx")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), v)
}

func TestLevelDBStoreGetMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := OpenLevelDB(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLevelDBStoreExposesDB(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := OpenLevelDB(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.DB())
}
