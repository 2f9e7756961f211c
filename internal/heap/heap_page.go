package heap

import (
	"github.com/tuannm99/pagedb/internal/storage"
)

// HeapPage is a row-level wrapper over a slotted page: it speaks
// (values []any) instead of raw []byte.
type HeapPage struct {
	Page   *storage.Page
	Schema storage.Schema
}

func NewHeapPage(p *storage.Page, s storage.Schema) HeapPage {
	return HeapPage{Page: p, Schema: s}
}

func (hp *HeapPage) InsertRow(values []any) (int, error) {
	data, err := storage.EncodeRow(hp.Schema, values)
	if err != nil {
		return -1, err
	}
	return hp.Page.InsertTuple(data)
}

func (hp *HeapPage) ReadRow(slot int) ([]any, error) {
	data, err := hp.Page.ReadTuple(slot)
	if err != nil {
		return nil, err
	}
	return storage.DecodeRow(hp.Schema, data)
}

func (hp *HeapPage) DeleteRow(slot int) error {
	return hp.Page.DeleteTuple(slot)
}
