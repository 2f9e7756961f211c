package hashindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagedb/internal/storage"
)

func TestBlockCapacityFitsPage(t *testing.T) {
	cases := []struct{ kw, vw int }{
		{8, 8},
		{8, 6},
		{4, 6},
		{64, 6},
	}
	for _, c := range cases {
		n := BlockCapacity(c.kw, c.vw)
		require.Greater(t, n, 0)
		require.LessOrEqual(t, 2*((n+7)/8)+n*(c.kw+c.vw), storage.PageSize)
		// one more entry must not fit
		m := n + 1
		require.Greater(t, 2*((m+7)/8)+m*(c.kw+c.vw), storage.PageSize)
	}
}

func TestBlockPage_InsertRemoveBits(t *testing.T) {
	buf := make([]byte, storage.PageSize)
	b := NewBlockPage(buf, Int64Codec(), Int64Codec())

	require.False(t, b.IsOccupied(0))
	require.False(t, b.IsReadable(0))

	require.True(t, b.Insert(0, 11, 100))
	require.True(t, b.IsOccupied(0))
	require.True(t, b.IsReadable(0))
	require.Equal(t, int64(11), b.KeyAt(0))
	require.Equal(t, int64(100), b.ValueAt(0))

	// a live slot refuses a second insert
	require.False(t, b.Insert(0, 12, 200))

	// remove clears readable only; occupied stays as a tombstone
	b.Remove(0)
	require.True(t, b.IsOccupied(0))
	require.False(t, b.IsReadable(0))
	require.Equal(t, int64(0), b.KeyAt(0))
	require.Equal(t, int64(0), b.ValueAt(0))

	// tombstone slot is insertable again
	require.True(t, b.Insert(0, 13, 300))
	require.Equal(t, int64(13), b.KeyAt(0))
}

func TestBlockPage_SlotsAreIndependent(t *testing.T) {
	buf := make([]byte, storage.PageSize)
	b := NewBlockPage(buf, Int64Codec(), Int64Codec())

	for i := range 16 {
		require.True(t, b.Insert(i, int64(i), int64(i*10)))
	}
	b.Remove(7)
	for i := range 16 {
		require.True(t, b.IsOccupied(i))
		if i == 7 {
			require.False(t, b.IsReadable(i))
			continue
		}
		require.Equal(t, int64(i), b.KeyAt(i))
		require.Equal(t, int64(i*10), b.ValueAt(i))
	}
}
