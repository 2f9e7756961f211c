package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/tuannm99/pagedb/internal/alias/util"
)

type FileSet interface {
	OpenSegment(segNo int32) (*os.File, error)
}

var _ FileSet = (*LocalFileSet)(nil)

// LocalFileSet represents a local directory + base file name.
// Segments are stored as: Base, Base.1, Base.2, ...
type LocalFileSet struct {
	Dir  string
	Base string
}

func (lfs LocalFileSet) OpenSegment(segNo int32) (*os.File, error) {
	name := lfs.Base
	if segNo > 0 {
		name = fmt.Sprintf("%s.%d", lfs.Base, segNo)
	}
	path := filepath.Join(lfs.Dir, name)
	if err := os.MkdirAll(lfs.Dir, FileMode0755); err != nil {
		return nil, err
	}
	// RDWR | CREATE (no truncate)
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
}

// DiskManager maps a logical PageID -> (segment, offset) and owns page id
// allocation for one database file set.
type DiskManager struct {
	fs FileSet

	mu          sync.Mutex
	nextPageID  PageID
	deallocated map[PageID]struct{}
}

func NewDiskManager(fs FileSet) *DiskManager {
	return &DiskManager{
		fs:          fs,
		deallocated: make(map[PageID]struct{}),
	}
}

func (dm *DiskManager) pagesPerSegment() int32 {
	return int32(SegmentSize / PageSize)
}

func (dm *DiskManager) locate(pageID PageID) (segNo int32, offset int32) {
	pps := dm.pagesPerSegment()
	segNo = int32(pageID) / pps
	pageInSeg := int32(pageID) % pps
	offset = pageInSeg * PageSize
	return segNo, offset
}

// AllocatePage hands out the next page id. Ids are monotonic; the backing
// bytes come into existence lazily on the first WritePage.
func (dm *DiskManager) AllocatePage() PageID {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	id := dm.nextPageID
	dm.nextPageID++
	return id
}

// DeallocatePage records the id as released. Released ids are never handed
// out again; the record exists so callers can observe the release.
func (dm *DiskManager) DeallocatePage(pageID PageID) {
	if !pageID.Valid() {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.deallocated[pageID] = struct{}{}
}

func (dm *DiskManager) IsDeallocated(pageID PageID) bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	_, ok := dm.deallocated[pageID]
	return ok
}

// ReadPage reads exactly one page (PageSize bytes) into dst.
// If the underlying file is smaller than the requested offset+PageSize,
// the remainder is zero-filled. This allows "sparse" pages that are
// lazily initialized by higher layers.
func (dm *DiskManager) ReadPage(pageID PageID, dst []byte) error {
	if len(dst) != PageSize {
		return fmt.Errorf("dst must be exactly %d bytes", PageSize)
	}
	if !pageID.Valid() {
		return fmt.Errorf("read of invalid page id %d", pageID)
	}
	segNo, off := dm.locate(pageID)
	f, err := dm.fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer util.CloseFileFunc(f)

	n, err := f.ReadAt(dst, int64(off))
	if err != nil && err != io.EOF {
		return err
	}
	// Zero-fill the rest of the page if we hit EOF early or a short read.
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes exactly one page (PageSize bytes) from src to disk
// at the location computed from pageID.
func (dm *DiskManager) WritePage(pageID PageID, src []byte) error {
	if len(src) != PageSize {
		return fmt.Errorf("src must be exactly %d bytes", PageSize)
	}
	if !pageID.Valid() {
		return fmt.Errorf("write of invalid page id %d", pageID)
	}
	segNo, off := dm.locate(pageID)
	f, err := dm.fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer util.CloseFileFunc(f)

	n, err := f.WriteAt(src, int64(off))
	if err != nil {
		return err
	}
	if n != PageSize {
		return io.ErrShortWrite
	}
	return nil
}
