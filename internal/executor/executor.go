// Package executor holds the thin operators that sit on top of the storage
// runtime: a sequential scan and a raw insert. They exist to exercise the
// catalog/table/buffer-pool APIs, not to be a query engine.
package executor

import (
	"github.com/tuannm99/pagedb/internal/heap"
)

// Executor is the pull contract between operators: Init once, then Next
// until ok is false.
type Executor interface {
	Init() error
	Next() (row []any, id heap.TID, ok bool, err error)
}
