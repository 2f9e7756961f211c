package executor

import (
	"log/slog"

	"github.com/tuannm99/pagedb/internal/catalog"
	"github.com/tuannm99/pagedb/internal/heap"
)

// Predicate filters scanned rows; nil means "accept everything".
type Predicate func(row []any) bool

// SeqScanExecutor walks a table front to back through its heap iterator.
type SeqScanExecutor struct {
	cat  *catalog.Catalog
	oid  catalog.OID
	pred Predicate

	iter *heap.Iterator
}

func NewSeqScan(cat *catalog.Catalog, oid catalog.OID, pred Predicate) *SeqScanExecutor {
	return &SeqScanExecutor{cat: cat, oid: oid, pred: pred}
}

func (e *SeqScanExecutor) Init() error {
	info, err := e.cat.GetTable(e.oid)
	if err != nil {
		return err
	}
	slog.Debug("seq scan", "table", info.Name)
	e.iter = info.Table.Begin()
	return nil
}

func (e *SeqScanExecutor) Next() ([]any, heap.TID, bool, error) {
	for {
		row, id, ok, err := e.iter.Next()
		if err != nil || !ok {
			return nil, heap.TID{}, false, err
		}
		if e.pred == nil || e.pred(row) {
			return row, id, true, nil
		}
	}
}
