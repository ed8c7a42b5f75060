package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bountyboard/storage"
)

type kvRecord struct {
	Name  string
	Count uint64
}

func TestKVPutGetRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	stored := kvRecord{Name: "alpha", Count: 7}
	require.NoError(t, manager.KVPut([]byte("records/alpha"), &stored))

	var loaded kvRecord
	ok, err := manager.KVGet([]byte("records/alpha"), &loaded)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stored, loaded)

	ok, err = manager.KVGet([]byte("records/missing"), &loaded)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = manager.KVGet(nil, &loaded)
	require.Error(t, err)
	require.Error(t, manager.KVPut(nil, &stored))
}

func TestKVAppendDeduplicates(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	key := []byte("index/members")

	require.NoError(t, manager.KVAppend(key, []byte("a")))
	require.NoError(t, manager.KVAppend(key, []byte("b")))
	require.NoError(t, manager.KVAppend(key, []byte("a")))

	var list [][]byte
	require.NoError(t, manager.KVGetList(key, &list))
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, list)
}

func TestKVGetListInitialisesEmpty(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	var list [][]byte
	require.NoError(t, manager.KVGetList([]byte("index/none"), &list))
	require.NotNil(t, list)
	require.Len(t, list, 0)

	require.Error(t, manager.KVGetList([]byte("index/none"), nil))
}

func TestNextSequenceStartsAtOne(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	key := []byte("seq/test")

	current, err := manager.Sequence(key)
	require.NoError(t, err)
	require.Equal(t, uint64(0), current)

	for want := uint64(1); want <= 3; want++ {
		next, err := manager.NextSequence(key)
		require.NoError(t, err)
		require.Equal(t, want, next)
	}

	current, err = manager.Sequence(key)
	require.NoError(t, err)
	require.Equal(t, uint64(3), current)
}
