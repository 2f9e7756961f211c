package catalog

import (
	"errors"
	"sync"

	"github.com/tuannm99/pagedb/internal/bufferpool"
	"github.com/tuannm99/pagedb/internal/heap"
	"github.com/tuannm99/pagedb/internal/storage"
)

var (
	ErrTableNotFound = errors.New("catalog: table not found")
	ErrTableExists   = errors.New("catalog: table already exists")
)

// OID identifies a table for the lifetime of the process. The catalog is
// in-memory only; persistence is out of scope here.
type OID uint32

type TableInfo struct {
	OID    OID
	Name   string
	Schema storage.Schema
	Table  *heap.Table
}

type Catalog struct {
	bp *bufferpool.Manager

	mu      sync.RWMutex
	tables  map[OID]*TableInfo
	byName  map[string]OID
	nextOID OID
}

func New(bp *bufferpool.Manager) *Catalog {
	return &Catalog{
		bp:     bp,
		tables: make(map[OID]*TableInfo),
		byName: make(map[string]OID),
	}
}

func (c *Catalog) CreateTable(name string, schema storage.Schema) (*TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return nil, ErrTableExists
	}

	info := &TableInfo{
		OID:    c.nextOID,
		Name:   name,
		Schema: schema,
		Table:  heap.NewTable(name, schema, c.bp),
	}
	c.nextOID++
	c.tables[info.OID] = info
	c.byName[name] = info.OID
	return info, nil
}

func (c *Catalog) GetTable(oid OID) (*TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.tables[oid]
	if !ok {
		return nil, ErrTableNotFound
	}
	return info, nil
}

func (c *Catalog) GetTableByName(name string) (*TableInfo, error) {
	c.mu.RLock()
	oid, ok := c.byName[name]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrTableNotFound
	}
	return c.GetTable(oid)
}
