package hashindex

import (
	"bytes"

	"github.com/cespare/xxhash/v2"

	"github.com/tuannm99/pagedb/internal/alias/bx"
	"github.com/tuannm99/pagedb/internal/heap"
	"github.com/tuannm99/pagedb/internal/storage"
)

// Codec serializes fixed-width keys or values into block page slots.
// Plain function fields keep instantiation cheap and explicit.
type Codec[T any] struct {
	Width  int
	Encode func(T, []byte)
	Decode func([]byte) T
}

// HashFn maps a key onto the bucket space.
type HashFn[K any] func(K) uint64

// Comparator orders keys; 0 means equal.
type Comparator[K any] func(a, b K) int

func Int64Codec() Codec[int64] {
	return Codec[int64]{
		Width:  8,
		Encode: func(v int64, b []byte) { bx.PutI64(b, v) },
		Decode: func(b []byte) int64 { return bx.I64(b) },
	}
}

func Int64Comparator(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TIDCodec stores heap tuple ids as index values.
func TIDCodec() Codec[heap.TID] {
	return Codec[heap.TID]{
		Width: 6,
		Encode: func(v heap.TID, b []byte) {
			bx.PutI32(b, int32(v.PageID))
			bx.PutU16At(b, 4, v.Slot)
		},
		Decode: func(b []byte) heap.TID {
			return heap.TID{
				PageID: storage.PageID(bx.I32(b)),
				Slot:   bx.U16At(b, 4),
			}
		},
	}
}

// BytesCodec handles opaque fixed-width keys (4/8/16/32/64 byte columns).
// Shorter inputs are zero-padded, longer ones truncated.
func BytesCodec(width int) Codec[[]byte] {
	return Codec[[]byte]{
		Width: width,
		Encode: func(v []byte, b []byte) {
			n := copy(b[:width], v)
			for i := n; i < width; i++ {
				b[i] = 0
			}
		},
		Decode: func(b []byte) []byte {
			cp := make([]byte, width)
			copy(cp, b[:width])
			return cp
		},
	}
}

func BytesComparator(a, b []byte) int { return bytes.Compare(a, b) }

// XXHashOf builds the default hash function for any key codec: xxhash over
// the encoded key bytes.
func XXHashOf[K any](kc Codec[K]) HashFn[K] {
	return func(k K) uint64 {
		buf := make([]byte, kc.Width)
		kc.Encode(k, buf)
		return xxhash.Sum64(buf)
	}
}
