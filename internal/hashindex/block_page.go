package hashindex

import "github.com/tuannm99/pagedb/internal/storage"

// Block page layout for capacity N and slot width W = key + value:
//
//	------------------------------------------------------------
//	| occupied bitmap ceil(N/8) | readable bitmap ceil(N/8) |
//	| (K,V)(0) | (K,V)(1) | ... | (K,V)(N-1)                 |
//	------------------------------------------------------------
//
// occupied is set on first insert and never cleared: a removed slot keeps
// its bit so probe scans can tell "removed" from "never used" and stop at
// the first truly empty slot. readable tracks live entries only.
//
// This layer does no locking; the caller serializes per bucket.
type BlockPage[K any, V any] struct {
	buf    []byte
	kc     Codec[K]
	vc     Codec[V]
	n      int
	bmSize int
}

// BlockCapacity returns the largest N whose two bitmaps and pair array fit
// in one page.
func BlockCapacity(keyWidth, valWidth int) int {
	slot := keyWidth + valWidth
	n := storage.PageSize * 8 / (slot*8 + 2)
	for 2*((n+7)/8)+n*slot > storage.PageSize {
		n--
	}
	return n
}

func NewBlockPage[K any, V any](buf []byte, kc Codec[K], vc Codec[V]) *BlockPage[K, V] {
	n := BlockCapacity(kc.Width, vc.Width)
	return &BlockPage[K, V]{
		buf:    buf,
		kc:     kc,
		vc:     vc,
		n:      n,
		bmSize: (n + 7) / 8,
	}
}

// Capacity is the number of slots in this block.
func (b *BlockPage[K, V]) Capacity() int { return b.n }

func (b *BlockPage[K, V]) slotOff(i int) int {
	return 2*b.bmSize + i*(b.kc.Width+b.vc.Width)
}

func (b *BlockPage[K, V]) IsOccupied(i int) bool {
	return b.buf[i/8]&(1<<(i%8)) != 0
}

func (b *BlockPage[K, V]) IsReadable(i int) bool {
	return b.buf[b.bmSize+i/8]&(1<<(i%8)) != 0
}

// KeyAt returns the key in slot i, or the zero key when the slot holds no
// live entry.
func (b *BlockPage[K, V]) KeyAt(i int) K {
	if !b.IsReadable(i) {
		var zero K
		return zero
	}
	off := b.slotOff(i)
	return b.kc.Decode(b.buf[off : off+b.kc.Width])
}

// ValueAt returns the value in slot i, or the zero value when the slot
// holds no live entry.
func (b *BlockPage[K, V]) ValueAt(i int) V {
	if !b.IsReadable(i) {
		var zero V
		return zero
	}
	off := b.slotOff(i) + b.kc.Width
	return b.vc.Decode(b.buf[off : off+b.vc.Width])
}

// Insert installs (key, value) in slot i. Fails if the slot already holds
// a live entry; a removed slot can be reused.
func (b *BlockPage[K, V]) Insert(i int, key K, value V) bool {
	if b.IsReadable(i) {
		return false
	}
	off := b.slotOff(i)
	b.kc.Encode(key, b.buf[off:off+b.kc.Width])
	b.vc.Encode(value, b.buf[off+b.kc.Width:off+b.kc.Width+b.vc.Width])
	b.buf[i/8] |= 1 << (i % 8)
	b.buf[b.bmSize+i/8] |= 1 << (i % 8)
	return true
}

// Remove clears only the readable bit; occupied stays set as a tombstone.
func (b *BlockPage[K, V]) Remove(i int) {
	b.buf[b.bmSize+i/8] &^= 1 << (i % 8)
}
