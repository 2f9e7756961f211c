// Package clockx implements CLOCK (second-chance) replacement over a fixed
// set of frame slots. The buffer pool registers unpinned frames here and
// asks for eviction victims.
package clockx

import (
	"log/slog"
	"sync"
)

// Clock tracks, per slot id in [0..capacity):
//
//	in  - the slot is an eviction candidate
//	ref - the second-chance reference bit
//
// plus a sweep hand and the candidate count. All methods are safe for
// concurrent use; a single mutex serializes every access.
type Clock struct {
	mu   sync.Mutex
	in   []bool
	ref  []bool
	hand int
	size int // number of candidate slots
}

func New(capacity int) *Clock {
	if capacity <= 0 {
		capacity = 1
	}
	return &Clock{
		in:  make([]bool, capacity),
		ref: make([]bool, capacity),
	}
}

func (c *Clock) Capacity() int { return len(c.in) }

// Victim selects an eviction candidate and removes it from the candidate
// set. The sweep examines the slot under the hand first: a candidate with a
// clear ref bit is taken, a candidate with a set ref bit loses the bit and
// is passed over. The hand is left ON the chosen slot; the victim's in bit
// is already clear, so the next sweep moves off it immediately.
func (c *Clock) Victim() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.size == 0 {
		return -1, false
	}

	n := len(c.in)
	// size > 0 guarantees a hit within two sweeps: the first clears ref
	// bits, the second takes the first candidate.
	for range 2 * n {
		if c.in[c.hand] && !c.ref[c.hand] {
			c.in[c.hand] = false
			c.size--
			return c.hand, true
		}
		if c.in[c.hand] {
			c.ref[c.hand] = false
		}
		c.hand = (c.hand + 1) % n
	}
	return -1, false
}

// Pin removes id from the candidate set. No-op if already out.
func (c *Clock) Pin(id int) {
	if id < 0 || id >= len(c.in) {
		slog.Warn("clockx: pin of invalid frame id", "id", id, "capacity", len(c.in))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.in[id] {
		c.in[id] = false
		c.size--
	}
	c.ref[id] = false
}

// Unpin adds id to the candidate set. A slot entering the set starts with a
// clear ref bit; unpinning a slot that is already a candidate grants it a
// second chance by setting ref.
func (c *Clock) Unpin(id int) {
	if id < 0 || id >= len(c.in) {
		slog.Warn("clockx: unpin of invalid frame id", "id", id, "capacity", len(c.in))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.in[id] {
		c.in[id] = true
		c.ref[id] = false
		c.size++
		return
	}
	c.ref[id] = true
}

// Size returns the candidate count.
func (c *Clock) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
