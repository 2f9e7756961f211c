package bufferpool

import "github.com/tuannm99/pagedb/internal/storage"

// FrameID indexes the pool's frame array, stable for the pool's lifetime.
type FrameID = int

// Frame is one fixed-size memory slot plus its bookkeeping. The pool hands
// out pinned frames; callers read/write Data() and release with UnpinPage.
type Frame struct {
	pageID storage.PageID
	pin    int32
	dirty  bool
	data   []byte // always exactly storage.PageSize bytes
}

func newFrame() *Frame {
	return &Frame{
		pageID: storage.InvalidPageID,
		data:   make([]byte, storage.PageSize),
	}
}

func (f *Frame) PageID() storage.PageID { return f.pageID }
func (f *Frame) PinCount() int32        { return f.pin }
func (f *Frame) IsDirty() bool          { return f.dirty }

// Data exposes the frame buffer. Only valid while the caller holds a pin.
func (f *Frame) Data() []byte { return f.data }

// reset returns the frame to the empty state: no page, no pins, zeroed
// memory. Caller holds the pool latch.
func (f *Frame) reset() {
	f.pageID = storage.InvalidPageID
	f.pin = 0
	f.dirty = false
	for i := range f.data {
		f.data[i] = 0
	}
}
