package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBMissingKeyReadsNil(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	value, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	original := []byte("payload")
	require.NoError(t, db.Put([]byte("key"), original))
	original[0] = 'X'

	stored, err := db.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), stored)

	// Mutating the returned slice must not affect subsequent reads.
	stored[0] = 'Y'
	again, err := db.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), again)
}

func TestLevelDBRoundTrip(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	defer db.Close()

	value, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, db.Put([]byte("key"), []byte("payload")))
	stored, err := db.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), stored)
}
