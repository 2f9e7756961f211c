package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/tuannm99/pagedb/internal"
	"github.com/tuannm99/pagedb/internal/bufferpool"
	"github.com/tuannm99/pagedb/internal/catalog"
	"github.com/tuannm99/pagedb/internal/executor"
	"github.com/tuannm99/pagedb/internal/hashindex"
	"github.com/tuannm99/pagedb/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML config file")
	dataDir := flag.String("data-dir", "", "Working directory for database files (overrides config)")
	flag.Parse()

	cfg := defaultConfig()
	if *cfgPath != "" {
		loaded, err := internal.LoadConfig(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.Storage.Workdir = *dataDir
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := os.MkdirAll(cfg.Storage.Workdir, storage.FileMode0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dm := storage.NewDiskManager(storage.LocalFileSet{Dir: cfg.Storage.Workdir, Base: "pagedb"})
	bp := bufferpool.NewManager(dm, cfg.Storage.PoolSize)
	cat := catalog.New(bp)

	slog.Info("pagedb started",
		"workdir", cfg.Storage.Workdir,
		"pool_size", bp.PoolSize(),
		"num_buckets", cfg.Index.NumBuckets)

	if err := demo(bp, cat, cfg.Index.NumBuckets); err != nil {
		log.Fatalf("Demo run failed: %v", err)
	}

	if err := bp.FlushAllPages(); err != nil {
		log.Fatalf("Failed to flush pool: %v", err)
	}
	slog.Info("pagedb shut down cleanly")
}

// demo exercises the storage runtime end to end: create a table, insert a
// few rows through the insert executor, scan them back, and index one
// column in a linear-probe hash table.
func demo(bp *bufferpool.Manager, cat *catalog.Catalog, numBuckets int) error {
	info, err := cat.CreateTable("people", storage.Schema{Cols: []storage.Column{
		{Name: "id", Type: storage.ColInt64},
		{Name: "name", Type: storage.ColText},
	}})
	if err != nil {
		return err
	}

	ins := executor.NewRawInsert(cat, info.OID, [][]any{
		{int64(1), "alice"},
		{int64(2), "bob"},
		{int64(3), "carol"},
	})
	if err := ins.Init(); err != nil {
		return err
	}

	idx, err := hashindex.NewLinearProbeHashTable(
		bp, hashindex.Int64Codec(), hashindex.TIDCodec(), hashindex.Int64Comparator, nil, numBuckets)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	for {
		row, tid, ok, err := ins.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if _, err := idx.Insert(row[0].(int64), tid); err != nil {
			return err
		}
	}

	scan := executor.NewSeqScan(cat, info.OID, nil)
	if err := scan.Init(); err != nil {
		return err
	}
	for {
		row, tid, ok, err := scan.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		slog.Info("row", "id", row[0], "name", row[1], "page", tid.PageID, "slot", tid.Slot)
	}

	tids, err := idx.GetValue(2)
	if err != nil {
		return err
	}
	slog.Info("index lookup", "key", 2, "matches", len(tids))
	return nil
}

func defaultConfig() *internal.PageDbConfig {
	cfg := &internal.PageDbConfig{AppName: "pagedb"}
	cfg.Storage.Workdir = "./data"
	cfg.Storage.PoolSize = bufferpool.DefaultPoolSize
	cfg.Index.NumBuckets = 16
	return cfg
}
