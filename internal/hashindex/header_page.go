package hashindex

import (
	"github.com/tuannm99/pagedb/internal/alias/bx"
	"github.com/tuannm99/pagedb/internal/storage"
)

// Header page layout (LE):
//
//	-----------------------------------------------------------
//	| PageId (4) | Size (4) | NumBlocks (4) | BlockPageIds... |
//	-----------------------------------------------------------
//
// Size is the bucket count, fixed at creation. BlockPageIds holds one page
// id per bucket, appended during construction.
const (
	hdrOffPageID    = 0
	hdrOffSize      = 4
	hdrOffNumBlocks = 8
	hdrOffBlockIDs  = 12
)

// MaxBuckets is the hard ceiling on bucket count: every block page id must
// fit in the single header page.
const MaxBuckets = (storage.PageSize - hdrOffBlockIDs) / 4

// headerPage is a view over a pinned frame's bytes; it owns no memory.
type headerPage struct {
	buf []byte
}

func (h headerPage) PageID() storage.PageID {
	return storage.PageID(bx.I32At(h.buf, hdrOffPageID))
}

func (h headerPage) SetPageID(id storage.PageID) {
	bx.PutI32At(h.buf, hdrOffPageID, int32(id))
}

func (h headerPage) Size() int        { return int(bx.U32At(h.buf, hdrOffSize)) }
func (h headerPage) SetSize(size int) { bx.PutU32At(h.buf, hdrOffSize, uint32(size)) }

func (h headerPage) NumBlocks() int { return int(bx.U32At(h.buf, hdrOffNumBlocks)) }

func (h headerPage) AddBlockPageID(id storage.PageID) {
	n := h.NumBlocks()
	bx.PutI32At(h.buf, hdrOffBlockIDs+4*n, int32(id))
	bx.PutU32At(h.buf, hdrOffNumBlocks, uint32(n+1))
}

func (h headerPage) BlockPageID(bucket int) storage.PageID {
	return storage.PageID(bx.I32At(h.buf, hdrOffBlockIDs+4*bucket))
}
