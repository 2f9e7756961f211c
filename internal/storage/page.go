package storage

import (
	"errors"

	"github.com/tuannm99/pagedb/internal/alias/bx"
)

// Header offsets
const (
	offFlags   = 0
	offPageID  = 2
	offLower   = 6
	offUpper   = 8
	offSpecial = 10
)

// Slot flags
const (
	SlotFlagNormal  uint16 = 0
	SlotFlagDeleted uint16 = 1 << 0
)

var (
	ErrTupleTooLarge = errors.New("page: tuple too large for inline")
	ErrNoSpace       = errors.New("page: not enough free space")
	ErrBadSlot       = errors.New("page: invalid slot")
	ErrCorruption    = errors.New("page: corrupt slot or tuple bounds")
	ErrWrongSize     = errors.New("page: buffer size != PageSize")
)

type Slot struct {
	Offset uint16
	Length uint16
	Flags  uint16
}

// +------------------+ 0
// | PageHeaderData   |
// | LinePointers[]   | <-- lower
// +------------------+
// |   Free space     |
// +------------------+ <-- upper
// |  Tuple Data      |
// |  (grows down)    |
// +------------------+ <-- special (unused)
// +------------------+ PageSize
//
// Page is a slotted-page view over a fixed-size buffer. It does not own the
// bytes; callers typically hand it a buffer pool frame's data.
type Page struct {
	Buf []byte
}

// AsPage wraps buf without touching its content. Use IsUninitialized to
// decide whether InitPage is needed first.
func AsPage(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrWrongSize
	}
	return &Page{Buf: buf}, nil
}

// InitPage zeroes buf and lays down a fresh slotted-page header.
func InitPage(buf []byte, pageID PageID) (*Page, error) {
	p, err := AsPage(buf)
	if err != nil {
		return nil, err
	}
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	p.setPageID(pageID)
	p.setLower(HeaderSize)
	p.setUpper(PageSize)
	p.setSpecial(PageSize) // unused for now
	return p, nil
}

// ---- low-level header getters/setters ----

func (p *Page) PageID() PageID { return PageID(bx.I32At(p.Buf, offPageID)) }

func (p *Page) setPageID(v PageID) { bx.PutI32At(p.Buf, offPageID, int32(v)) }

func (p *Page) lower() uint16 { return bx.U16At(p.Buf, offLower) }

func (p *Page) setLower(v uint16) { bx.PutU16At(p.Buf, offLower, v) }

func (p *Page) upper() uint16 { return bx.U16At(p.Buf, offUpper) }

func (p *Page) setUpper(v uint16) { bx.PutU16At(p.Buf, offUpper, v) }

func (p *Page) setSpecial(v uint16) { bx.PutU16At(p.Buf, offSpecial, v) }

// ---- public helpers ----

func (p *Page) FreeSpace() int {
	return int(p.upper() - p.lower())
}

func (p *Page) NumSlots() int {
	return int(p.lower()-HeaderSize) / SlotSize
}

func (p *Page) IsUninitialized() bool {
	return p.lower() == 0 && p.upper() == 0
}

// ---- slots ----

func (p *Page) slotOff(idx int) int {
	return HeaderSize + idx*SlotSize
}

func (p *Page) getSlot(i int) (Slot, error) {
	if i < 0 || i >= p.NumSlots() {
		return Slot{}, ErrBadSlot
	}
	o := p.slotOff(i)
	// slots live in [HeaderSize, lower)
	if o+SlotSize > int(p.lower()) {
		return Slot{}, ErrCorruption
	}
	return Slot{
		Offset: bx.U16At(p.Buf, o+0),
		Length: bx.U16At(p.Buf, o+2),
		Flags:  bx.U16At(p.Buf, o+4),
	}, nil
}

func (p *Page) putSlot(idx int, s Slot) error {
	// idx == NumSlots appends a new slot
	if idx < 0 || idx > p.NumSlots() {
		return ErrBadSlot
	}
	off := p.slotOff(idx)
	if idx == p.NumSlots() && off+SlotSize > int(p.upper()) {
		return ErrNoSpace
	}
	if off+SlotSize > len(p.Buf) {
		return ErrCorruption
	}
	bx.PutU16At(p.Buf, off+0, s.Offset)
	bx.PutU16At(p.Buf, off+2, s.Length)
	bx.PutU16At(p.Buf, off+4, s.Flags)
	return nil
}

func (p *Page) appendSlot(off, length, flags uint16) (int, error) {
	i := p.NumSlots()
	if err := p.putSlot(i, Slot{Offset: off, Length: length, Flags: flags}); err != nil {
		return -1, err
	}
	p.setLower(p.lower() + SlotSize)
	return i, nil
}

// ---- tuples (payload) ----

func (p *Page) InsertTuple(tup []byte) (slot int, err error) {
	maxInline := PageSize - HeaderSize - SlotSize
	if len(tup) > maxInline {
		return -1, ErrTupleTooLarge
	}
	need := len(tup) + SlotSize
	if p.FreeSpace() < need {
		return -1, ErrNoSpace
	}
	u := int(p.upper()) - len(tup)
	copy(p.Buf[u:], tup)
	p.setUpper(uint16(u))
	return p.appendSlot(uint16(u), uint16(len(tup)), SlotFlagNormal)
}

func (p *Page) ReadTuple(slot int) ([]byte, error) {
	s, err := p.getSlot(slot)
	if err != nil {
		return nil, err
	}
	switch s.Flags {
	case SlotFlagNormal:
		if s.Offset == 0 || s.Length == 0 {
			return nil, ErrCorruption
		}
		start, end := int(s.Offset), int(s.Offset)+int(s.Length)
		if start < int(p.upper()) || end > PageSize || start >= end {
			return nil, ErrCorruption
		}
		return p.Buf[start:end], nil

	case SlotFlagDeleted:
		return nil, ErrBadSlot

	default:
		return nil, ErrCorruption
	}
}

// DeleteTuple marks the slot deleted; the payload bytes stay behind until
// some future compaction.
func (p *Page) DeleteTuple(slot int) error {
	if _, err := p.getSlot(slot); err != nil {
		return err
	}
	return p.putSlot(slot, Slot{Offset: 0, Length: 0, Flags: SlotFlagDeleted})
}
