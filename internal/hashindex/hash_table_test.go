package hashindex

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagedb/internal/bufferpool"
	"github.com/tuannm99/pagedb/internal/heap"
	"github.com/tuannm99/pagedb/internal/storage"
)

func newTestPool(t *testing.T, poolSize int) *bufferpool.Manager {
	t.Helper()

	dir, err := os.MkdirTemp("", "pagedb-hash-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	dm := storage.NewDiskManager(storage.LocalFileSet{Dir: dir, Base: "index"})
	return bufferpool.NewManager(dm, poolSize)
}

func newIntTable(t *testing.T, numBuckets int) *LinearProbeHashTable[int64, int64] {
	t.Helper()

	bp := newTestPool(t, numBuckets+4)
	ht, err := NewLinearProbeHashTable(bp, Int64Codec(), Int64Codec(), Int64Comparator, nil, numBuckets)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ht.Close() })
	return ht
}

func TestHashTable_InvalidBucketCount(t *testing.T) {
	bp := newTestPool(t, 4)

	_, err := NewLinearProbeHashTable(bp, Int64Codec(), Int64Codec(), Int64Comparator, nil, 0)
	require.ErrorIs(t, err, ErrInvalidBucketCount)

	_, err = NewLinearProbeHashTable(bp, Int64Codec(), Int64Codec(), Int64Comparator, nil, MaxBuckets+1)
	require.ErrorIs(t, err, ErrInvalidBucketCount)
}

func TestHashTable_SizeAndResizeNoop(t *testing.T) {
	ht := newIntTable(t, 2)
	require.Equal(t, 2, ht.Size())

	ht.Resize(64)
	require.Equal(t, 2, ht.Size())
}

func TestHashTable_DuplicatePairRejected(t *testing.T) {
	ht := newIntTable(t, 2)

	ok, err := ht.Insert(1, 10)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ht.Insert(1, 20)
	require.NoError(t, err)
	require.True(t, ok)

	// same key AND same value -> rejected
	ok, err = ht.Insert(1, 10)
	require.NoError(t, err)
	require.False(t, ok)

	vals, err := ht.GetValue(1)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{10, 20}, vals)
}

func TestHashTable_InsertGetRemoveLaw(t *testing.T) {
	ht := newIntTable(t, 4)

	ok, err := ht.Insert(42, 7)
	require.NoError(t, err)
	require.True(t, ok)

	vals, err := ht.GetValue(42)
	require.NoError(t, err)
	require.Contains(t, vals, int64(7))

	ok, err = ht.Remove(42, 7)
	require.NoError(t, err)
	require.True(t, ok)

	vals, err = ht.GetValue(42)
	require.NoError(t, err)
	require.NotContains(t, vals, int64(7))

	// removing a pair that is gone reports false
	ok, err = ht.Remove(42, 7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashTable_TombstoneSlotReused(t *testing.T) {
	ht := newIntTable(t, 1)

	ok, err := ht.Insert(5, 100)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ht.Remove(5, 100)
	require.NoError(t, err)
	require.True(t, ok)

	// the removed slot is refilled; the old value must not resurface
	ok, err = ht.Insert(5, 200)
	require.NoError(t, err)
	require.True(t, ok)

	vals, err := ht.GetValue(5)
	require.NoError(t, err)
	require.Equal(t, []int64{200}, vals)
}

func TestHashTable_ManyValuesPerKey(t *testing.T) {
	ht := newIntTable(t, 4)

	for v := int64(0); v < 30; v++ {
		ok, err := ht.Insert(9, v)
		require.NoError(t, err)
		require.True(t, ok)
	}

	vals, err := ht.GetValue(9)
	require.NoError(t, err)
	require.Len(t, vals, 30)
}

// wideInt64Codec pads int64 into a wide slot so a block page holds only a
// handful of entries, making bucket-full behavior testable.
func wideInt64Codec(width int) Codec[int64] {
	c := Int64Codec()
	c.Width = width
	return c
}

func TestHashTable_BucketFull(t *testing.T) {
	kc := wideInt64Codec(1024)
	vc := wideInt64Codec(1000)
	capacity := BlockCapacity(kc.Width, vc.Width)
	require.Equal(t, 4, capacity)

	bp := newTestPool(t, 8)
	ht, err := NewLinearProbeHashTable(bp, kc, vc, Int64Comparator, nil, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ht.Close() })

	// fill one bucket to its four slots
	key := int64(1)
	for v := int64(0); v < int64(capacity); v++ {
		ok, err := ht.Insert(key, v)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := ht.Insert(key, 99)
	require.NoError(t, err)
	require.False(t, ok)

	vals, err := ht.GetValue(key)
	require.NoError(t, err)
	require.Len(t, vals, capacity)
}

func TestHashTable_TIDValues(t *testing.T) {
	bp := newTestPool(t, 8)
	ht, err := NewLinearProbeHashTable(bp, Int64Codec(), TIDCodec(), Int64Comparator, nil, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ht.Close() })

	tid := heap.TID{PageID: 12, Slot: 3}
	ok, err := ht.Insert(77, tid)
	require.NoError(t, err)
	require.True(t, ok)

	vals, err := ht.GetValue(77)
	require.NoError(t, err)
	require.Equal(t, []heap.TID{tid}, vals)
}

func TestHashTable_BytesKeys(t *testing.T) {
	bp := newTestPool(t, 8)
	kc := BytesCodec(16)
	ht, err := NewLinearProbeHashTable[[]byte, int64](bp, kc, Int64Codec(), BytesComparator, XXHashOf(kc), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ht.Close() })

	// keys are fixed-width: encode pads, so compare padded forms too
	key := make([]byte, 16)
	copy(key, "alice")

	ok, err := ht.Insert(key, 1)
	require.NoError(t, err)
	require.True(t, ok)

	vals, err := ht.GetValue(key)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, vals)
}
