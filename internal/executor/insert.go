package executor

import (
	"log/slog"

	"github.com/tuannm99/pagedb/internal/catalog"
	"github.com/tuannm99/pagedb/internal/heap"
)

// InsertExecutor appends rows into a table. Rows come either from a raw
// values list or from a child executor; each Next inserts one row and
// reports the TID it landed at.
type InsertExecutor struct {
	cat   *catalog.Catalog
	oid   catalog.OID
	raw   [][]any
	child Executor

	table *heap.Table
	index int
}

func NewRawInsert(cat *catalog.Catalog, oid catalog.OID, rows [][]any) *InsertExecutor {
	return &InsertExecutor{cat: cat, oid: oid, raw: rows}
}

func NewInsertFrom(cat *catalog.Catalog, oid catalog.OID, child Executor) *InsertExecutor {
	return &InsertExecutor{cat: cat, oid: oid, child: child}
}

func (e *InsertExecutor) Init() error {
	info, err := e.cat.GetTable(e.oid)
	if err != nil {
		return err
	}
	e.table = info.Table
	if e.child != nil {
		return e.child.Init()
	}
	return nil
}

func (e *InsertExecutor) Next() ([]any, heap.TID, bool, error) {
	var row []any

	if e.child == nil {
		if e.index >= len(e.raw) {
			return nil, heap.TID{}, false, nil
		}
		row = e.raw[e.index]
		e.index++
	} else {
		childRow, _, ok, err := e.child.Next()
		if err != nil || !ok {
			return nil, heap.TID{}, false, err
		}
		row = childRow
	}

	id, err := e.table.Insert(row)
	if err != nil {
		return nil, heap.TID{}, false, err
	}
	slog.Debug("insert", "table", e.table.Name, "page", id.PageID, "slot", id.Slot)
	return row, id, true, nil
}
