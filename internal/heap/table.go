package heap

import (
	"errors"

	"github.com/tuannm99/pagedb/internal/bufferpool"
	"github.com/tuannm99/pagedb/internal/storage"
)

var ErrRowNotFound = errors.New("heap: row not found")

// Table is a heap file: an unordered bag of rows spread over pages served
// by the buffer pool. Page ids are allocated through the pool and kept in
// order of creation; the list is table metadata, not page content.
type Table struct {
	Name   string
	Schema storage.Schema
	BP     *bufferpool.Manager

	pageIDs []storage.PageID
}

func NewTable(name string, schema storage.Schema, bp *bufferpool.Manager) *Table {
	return &Table{
		Name:   name,
		Schema: schema,
		BP:     bp,
	}
}

func (t *Table) PageCount() int { return len(t.pageIDs) }

// appendPage allocates and initializes a fresh heap page, leaving it pinned.
func (t *Table) appendPage() (*bufferpool.Frame, *storage.Page, error) {
	frame, err := t.BP.NewPage()
	if err != nil {
		return nil, nil, err
	}
	p, err := storage.InitPage(frame.Data(), frame.PageID())
	if err != nil {
		_ = t.BP.UnpinPage(frame.PageID(), false)
		return nil, nil, err
	}
	t.pageIDs = append(t.pageIDs, frame.PageID())
	return frame, p, nil
}

// Insert appends a row, preferring the last page and growing the file when
// it is full.
func (t *Table) Insert(values []any) (TID, error) {
	var (
		frame *bufferpool.Frame
		p     *storage.Page
		err   error
	)

	if n := len(t.pageIDs); n > 0 {
		last := t.pageIDs[n-1]
		frame, err = t.BP.FetchPage(last)
		if err != nil {
			return TID{}, err
		}
		p, err = storage.AsPage(frame.Data())
		if err != nil {
			_ = t.BP.UnpinPage(last, false)
			return TID{}, err
		}
	} else {
		frame, p, err = t.appendPage()
		if err != nil {
			return TID{}, err
		}
	}

	hp := HeapPage{Page: p, Schema: t.Schema}
	slot, err := hp.InsertRow(values)
	if err == storage.ErrNoSpace {
		// current page is full, move on to a fresh one
		_ = t.BP.UnpinPage(frame.PageID(), false)
		frame, p, err = t.appendPage()
		if err != nil {
			return TID{}, err
		}
		hp = HeapPage{Page: p, Schema: t.Schema}
		slot, err = hp.InsertRow(values)
	}
	if err != nil {
		_ = t.BP.UnpinPage(frame.PageID(), false)
		return TID{}, err
	}

	pid := frame.PageID()
	if err := t.BP.UnpinPage(pid, true); err != nil {
		return TID{}, err
	}
	return TID{PageID: pid, Slot: uint16(slot)}, nil
}

// Get reads a single row by TID.
func (t *Table) Get(id TID) ([]any, error) {
	frame, err := t.BP.FetchPage(id.PageID)
	if err != nil {
		return nil, err
	}
	p, err := storage.AsPage(frame.Data())
	if err != nil {
		_ = t.BP.UnpinPage(id.PageID, false)
		return nil, err
	}

	hp := HeapPage{Page: p, Schema: t.Schema}
	row, err := hp.ReadRow(int(id.Slot))

	// read-only access
	_ = t.BP.UnpinPage(id.PageID, false)

	if errors.Is(err, storage.ErrBadSlot) {
		return nil, ErrRowNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete marks the row's slot deleted.
func (t *Table) Delete(id TID) error {
	frame, err := t.BP.FetchPage(id.PageID)
	if err != nil {
		return err
	}
	p, err := storage.AsPage(frame.Data())
	if err != nil {
		_ = t.BP.UnpinPage(id.PageID, false)
		return err
	}

	hp := HeapPage{Page: p, Schema: t.Schema}
	err = hp.DeleteRow(int(id.Slot))
	if err != nil {
		_ = t.BP.UnpinPage(id.PageID, false)
		return err
	}
	return t.BP.UnpinPage(id.PageID, true)
}

// Iterator walks every live row in page, then slot, order. Pages are pinned
// one at a time; each Next releases its pin before returning.
type Iterator struct {
	table   *Table
	pageIdx int
	slot    int
}

// Begin positions an iterator before the first row.
func (t *Table) Begin() *Iterator {
	return &Iterator{table: t}
}

// Next returns the next row and its TID; ok is false past the end. Deleted
// slots are skipped.
func (it *Iterator) Next() (row []any, id TID, ok bool, err error) {
	for it.pageIdx < len(it.table.pageIDs) {
		pid := it.table.pageIDs[it.pageIdx]
		frame, err := it.table.BP.FetchPage(pid)
		if err != nil {
			return nil, TID{}, false, err
		}
		p, err := storage.AsPage(frame.Data())
		if err != nil {
			_ = it.table.BP.UnpinPage(pid, false)
			return nil, TID{}, false, err
		}

		hp := HeapPage{Page: p, Schema: it.table.Schema}
		for it.slot < p.NumSlots() {
			slot := it.slot
			it.slot++

			row, rerr := hp.ReadRow(slot)
			if errors.Is(rerr, storage.ErrBadSlot) {
				continue // deleted slot
			}
			if rerr != nil {
				_ = it.table.BP.UnpinPage(pid, false)
				return nil, TID{}, false, rerr
			}
			_ = it.table.BP.UnpinPage(pid, false)
			return row, TID{PageID: pid, Slot: uint16(slot)}, true, nil
		}

		_ = it.table.BP.UnpinPage(pid, false)
		it.pageIdx++
		it.slot = 0
	}
	return nil, TID{}, false, nil
}
