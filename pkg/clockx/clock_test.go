package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClock_New_DefaultCapacity(t *testing.T) {
	c := New(0)
	require.NotNil(t, c)
	require.Equal(t, 1, c.Capacity())
	require.Equal(t, 0, c.Size())
}

func TestClock_Victim_Empty(t *testing.T) {
	c := New(4)
	_, ok := c.Victim()
	require.False(t, ok)
}

func TestClock_UnpinThenVictimInOrder(t *testing.T) {
	// seven slots, candidates 1..4 in order
	c := New(7)
	for _, id := range []int{1, 2, 3, 4} {
		c.Unpin(id)
	}
	require.Equal(t, 4, c.Size())

	for _, want := range []int{1, 2, 3, 4} {
		v, ok := c.Victim()
		require.True(t, ok)
		require.Equal(t, want, v)
	}

	_, ok := c.Victim()
	require.False(t, ok)
	require.Equal(t, 0, c.Size())
}

func TestClock_SecondChance(t *testing.T) {
	c := New(7)
	c.Unpin(1)
	c.Unpin(2)
	c.Unpin(3)
	// re-unpin grants 1 a second chance
	c.Unpin(1)
	require.Equal(t, 3, c.Size())

	v, ok := c.Victim()
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = c.Victim()
	require.True(t, ok)
	require.Equal(t, 3, v)

	// 1 lost its ref bit during the first sweep
	v, ok = c.Victim()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestClock_PinRemovesCandidate(t *testing.T) {
	c := New(3)
	c.Unpin(0)
	c.Unpin(1)
	require.Equal(t, 2, c.Size())

	c.Pin(0)
	require.Equal(t, 1, c.Size())

	// pinning an absent slot is a no-op
	c.Pin(0)
	require.Equal(t, 1, c.Size())

	v, ok := c.Victim()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestClock_InvalidIdsIgnored(t *testing.T) {
	c := New(2)
	c.Unpin(-1)
	c.Unpin(2)
	c.Pin(-1)
	c.Pin(99)
	require.Equal(t, 0, c.Size())
}

func TestClock_EveryFrameVictimizedOnce(t *testing.T) {
	const n = 8
	c := New(n)
	for i := range n {
		c.Unpin(i)
	}

	seen := make(map[int]bool)
	for range n {
		v, ok := c.Victim()
		require.True(t, ok)
		require.False(t, seen[v])
		seen[v] = true
	}
	require.Len(t, seen, n)

	_, ok := c.Victim()
	require.False(t, ok)
}
