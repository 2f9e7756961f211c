package hashindex

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuannm99/pagedb/internal/bufferpool"
	"github.com/tuannm99/pagedb/internal/storage"
)

var (
	ErrInvalidBucketCount = errors.New("hashindex: bucket count must be in [1, MaxBuckets]")
)

// LinearProbeHashTable is a disk-resident K -> multiset<V> over a fixed
// number of buckets. Each bucket is one block page; lookups hash to a
// bucket and probe its slots linearly, using the occupied bitmap as the
// tombstone-aware terminator.
//
// The header page stays pinned for the table's lifetime. The table itself
// holds no lock; frame-level safety comes from the buffer pool, and
// concurrent writers into one bucket must be serialized by the caller.
type LinearProbeHashTable[K any, V comparable] struct {
	bp     *bufferpool.Manager
	header *bufferpool.Frame

	kc   Codec[K]
	vc   Codec[V]
	cmp  Comparator[K]
	hash HashFn[K]
}

// NewLinearProbeHashTable allocates the header page and numBuckets block
// pages. Pass nil hash to use xxhash over the encoded key.
func NewLinearProbeHashTable[K any, V comparable](
	bp *bufferpool.Manager,
	kc Codec[K],
	vc Codec[V],
	cmp Comparator[K],
	hash HashFn[K],
	numBuckets int,
) (*LinearProbeHashTable[K, V], error) {
	if numBuckets <= 0 || numBuckets > MaxBuckets {
		return nil, ErrInvalidBucketCount
	}
	if hash == nil {
		hash = XXHashOf(kc)
	}

	headerFrame, err := bp.NewPage()
	if err != nil {
		return nil, fmt.Errorf("hashindex: allocate header page: %w", err)
	}
	hp := headerPage{buf: headerFrame.Data()}
	hp.SetPageID(headerFrame.PageID())
	hp.SetSize(numBuckets)

	for i := 0; i < numBuckets; i++ {
		blockFrame, err := bp.NewPage()
		if err != nil {
			return nil, fmt.Errorf("hashindex: allocate block page %d: %w", i, err)
		}
		hp.AddBlockPageID(blockFrame.PageID())
		if err := bp.UnpinPage(blockFrame.PageID(), true); err != nil {
			return nil, err
		}
	}

	return &LinearProbeHashTable[K, V]{
		bp:     bp,
		header: headerFrame,
		kc:     kc,
		vc:     vc,
		cmp:    cmp,
		hash:   hash,
	}, nil
}

// HeaderPageID identifies the table on disk.
func (t *LinearProbeHashTable[K, V]) HeaderPageID() storage.PageID {
	return t.header.PageID()
}

// Size returns the bucket count.
func (t *LinearProbeHashTable[K, V]) Size() int {
	return headerPage{buf: t.header.Data()}.Size()
}

func (t *LinearProbeHashTable[K, V]) bucketOf(key K) storage.PageID {
	hp := headerPage{buf: t.header.Data()}
	bucket := int(t.hash(key) % uint64(hp.Size()))
	return hp.BlockPageID(bucket)
}

// GetValue collects every live value stored under key.
func (t *LinearProbeHashTable[K, V]) GetValue(key K) ([]V, error) {
	blockPID := t.bucketOf(key)
	frame, err := t.bp.FetchPage(blockPID)
	if err != nil {
		return nil, err
	}
	block := NewBlockPage(frame.Data(), t.kc, t.vc)

	var result []V
	for i := 0; i < block.Capacity(); i++ {
		if !block.IsOccupied(i) {
			break
		}
		if block.IsReadable(i) && t.cmp(block.KeyAt(i), key) == 0 {
			result = append(result, block.ValueAt(i))
		}
	}
	if err := t.bp.UnpinPage(blockPID, true); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores (key, value). Returns false when the exact pair is already
// present, or when the bucket has no free slot left.
func (t *LinearProbeHashTable[K, V]) Insert(key K, value V) (bool, error) {
	blockPID := t.bucketOf(key)
	frame, err := t.bp.FetchPage(blockPID)
	if err != nil {
		return false, err
	}
	block := NewBlockPage(frame.Data(), t.kc, t.vc)

	// pass 1: reject an exact duplicate
	for i := 0; i < block.Capacity(); i++ {
		if !block.IsOccupied(i) {
			break
		}
		if block.IsReadable(i) && t.cmp(block.KeyAt(i), key) == 0 && block.ValueAt(i) == value {
			if err := t.bp.UnpinPage(blockPID, true); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	// pass 2: take the first slot without a live entry (tombstones reused)
	inserted := false
	for i := 0; i < block.Capacity(); i++ {
		if !block.IsReadable(i) {
			block.Insert(i, key, value)
			inserted = true
			break
		}
	}
	if err := t.bp.UnpinPage(blockPID, true); err != nil {
		return false, err
	}
	return inserted, nil
}

// Remove deletes one live (key, value) pair. Returns false when no such
// pair exists.
func (t *LinearProbeHashTable[K, V]) Remove(key K, value V) (bool, error) {
	blockPID := t.bucketOf(key)
	frame, err := t.bp.FetchPage(blockPID)
	if err != nil {
		return false, err
	}
	block := NewBlockPage(frame.Data(), t.kc, t.vc)

	removed := false
	for i := 0; i < block.Capacity(); i++ {
		if !block.IsOccupied(i) {
			break
		}
		if block.IsReadable(i) && t.cmp(block.KeyAt(i), key) == 0 && block.ValueAt(i) == value {
			block.Remove(i)
			removed = true
			break
		}
	}
	if err := t.bp.UnpinPage(blockPID, true); err != nil {
		return false, err
	}
	return removed, nil
}

// Resize is not implemented: the bucket count is fixed at creation.
func (t *LinearProbeHashTable[K, V]) Resize(numBuckets int) {
	slog.Warn("hashindex: resize is not implemented", "requested", numBuckets, "current", t.Size())
}

// Close releases the header pin. The table must not be used afterwards.
func (t *LinearProbeHashTable[K, V]) Close() error {
	return t.bp.UnpinPage(t.header.PageID(), true)
}
