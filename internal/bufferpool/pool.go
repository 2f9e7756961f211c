package bufferpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tuannm99/pagedb/internal/storage"
	"github.com/tuannm99/pagedb/pkg/clockx"
)

var (
	DefaultPoolSize = 128

	ErrNoFreeFrame     = errors.New("bufferpool: no free frame available (all pinned)")
	ErrPagePinned      = errors.New("bufferpool: page is pinned")
	ErrPageNotResident = errors.New("bufferpool: page not resident")
	ErrNotPinned       = errors.New("bufferpool: page pin count already zero")
)

// Manager mediates between the fixed frame array and the disk manager:
// admission, residency, pinning, write-back, eviction.
//
// A single latch covers the whole of every operation, disk I/O included.
// The replacer has its own lock; lock order is always pool -> replacer.
type Manager struct {
	dm *storage.DiskManager

	mu        sync.Mutex
	frames    []*Frame
	pageTable map[storage.PageID]FrameID
	freeList  []FrameID // pop and push at the back
	repl      *clockx.Clock
}

func NewManager(dm *storage.DiskManager, poolSize int) *Manager {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	m := &Manager{
		dm:        dm,
		frames:    make([]*Frame, poolSize),
		pageTable: make(map[storage.PageID]FrameID),
		freeList:  make([]FrameID, 0, poolSize),
		repl:      clockx.New(poolSize),
	}
	for i := range m.frames {
		m.frames[i] = newFrame()
		m.freeList = append(m.freeList, i)
	}
	return m
}

func (m *Manager) PoolSize() int { return len(m.frames) }

// reserveFrame picks a reusable frame: free list first (back, LIFO), then a
// replacer victim. Caller holds the latch.
func (m *Manager) reserveFrame() (FrameID, bool) {
	if n := len(m.freeList); n > 0 {
		fid := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		return fid, true
	}
	return m.repl.Victim()
}

// evictInto writes back the frame's current page if needed and rebinds the
// frame to pid. On return the frame is clean, pinned once, and registered in
// the page table. Caller holds the latch.
func (m *Manager) evictInto(fid FrameID, pid storage.PageID) (*Frame, error) {
	f := m.frames[fid]
	if f.pageID.Valid() && f.dirty {
		if err := m.dm.WritePage(f.pageID, f.data); err != nil {
			// leave the old binding intact and hand the frame back to
			// the replacer so a later call can retry
			m.repl.Unpin(fid)
			return nil, fmt.Errorf("bufferpool: write back page %d: %w", f.pageID, err)
		}
	}
	if f.pageID.Valid() {
		delete(m.pageTable, f.pageID)
	}
	f.reset()
	f.pageID = pid
	f.pin = 1
	m.pageTable[pid] = fid
	return f, nil
}

// FetchPage pins the page, reading it from disk if it is not resident.
// Returns ErrNoFreeFrame when every frame is pinned.
func (m *Manager) FetchPage(pid storage.PageID) (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fid, ok := m.pageTable[pid]; ok {
		m.repl.Pin(fid)
		f := m.frames[fid]
		f.pin++
		return f, nil
	}

	fid, ok := m.reserveFrame()
	if !ok {
		return nil, ErrNoFreeFrame
	}
	m.repl.Pin(fid)

	f, err := m.evictInto(fid, pid)
	if err != nil {
		return nil, err
	}
	if err := m.dm.ReadPage(pid, f.data); err != nil {
		delete(m.pageTable, pid)
		f.reset()
		m.freeList = append(m.freeList, fid)
		return nil, fmt.Errorf("bufferpool: read page %d: %w", pid, err)
	}
	return f, nil
}

// NewPage allocates a fresh page id and pins a zeroed frame for it. The
// page is not read from disk.
func (m *Manager) NewPage() (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, ok := m.reserveFrame()
	if !ok {
		return nil, ErrNoFreeFrame
	}
	m.repl.Pin(fid)

	pid := m.dm.AllocatePage()
	return m.evictInto(fid, pid)
}

// UnpinPage drops one pin and ORs in dirty. The dirty bit, once set, stays
// set until the page is written back (on eviction, FlushAndEvict or
// FlushAllPages). Unpinning an unknown page or a page whose
// pin count is already zero is a client bug surfaced as an error.
func (m *Manager) UnpinPage(pid storage.PageID, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, ok := m.pageTable[pid]
	if !ok {
		return ErrPageNotResident
	}
	f := m.frames[fid]
	if f.pin <= 0 {
		return ErrNotPinned
	}

	f.pin--
	if dirty {
		f.dirty = true
	}
	if f.pin == 0 {
		m.repl.Unpin(fid)
	}
	return nil
}

// FlushAndEvict writes the page back if dirty, then expels it: the page
// table entry is removed and the frame goes to the free list. Intended to
// be called only when the page is unpinned; callers still holding pins on
// it will observe their frame rebound underneath them.
func (m *Manager) FlushAndEvict(pid storage.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, ok := m.pageTable[pid]
	if !ok {
		return ErrPageNotResident
	}
	f := m.frames[fid]
	if f.pageID.Valid() && f.dirty {
		if err := m.dm.WritePage(f.pageID, f.data); err != nil {
			return fmt.Errorf("bufferpool: flush page %d: %w", pid, err)
		}
	}
	delete(m.pageTable, pid)
	f.reset()
	m.freeList = append(m.freeList, fid)
	m.repl.Pin(fid)
	return nil
}

// DeletePage removes the page from the pool and releases its id. A page
// that is not resident is vacuously deleted. A pinned page cannot be
// deleted.
func (m *Manager) DeletePage(pid storage.PageID) error {
	m.mu.Lock()

	fid, ok := m.pageTable[pid]
	if !ok {
		// vacuously deleted from the pool
		m.mu.Unlock()
		return nil
	}
	f := m.frames[fid]
	if f.pin > 0 {
		m.mu.Unlock()
		return ErrPagePinned
	}
	delete(m.pageTable, pid)
	f.reset()
	m.freeList = append(m.freeList, fid)
	m.repl.Pin(fid)
	m.mu.Unlock()

	m.dm.DeallocatePage(pid)
	return nil
}

// FlushAllPages writes back every dirty frame and empties the pool.
// Pinned frames are written back but stay resident; everything else is
// reset and returned to the free list, rebuilt in frame-id order.
func (m *Manager) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for fid, f := range m.frames {
		if f.pageID.Valid() && f.dirty {
			if err := m.dm.WritePage(f.pageID, f.data); err != nil {
				return fmt.Errorf("bufferpool: flush page %d: %w", f.pageID, err)
			}
			f.dirty = false
		}
		if f.pin > 0 {
			continue // still in use, keep it resident
		}
		if f.pageID.Valid() {
			delete(m.pageTable, f.pageID)
		}
		f.reset()
		m.repl.Pin(fid)
	}

	m.freeList = m.freeList[:0]
	for fid, f := range m.frames {
		if !f.pageID.Valid() {
			m.freeList = append(m.freeList, fid)
		}
	}
	return nil
}
