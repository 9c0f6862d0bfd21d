// Command server runs the novadb wire-protocol front end.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wim-web/novadb/internal/bufferpool"
	"github.com/wim-web/novadb/internal/catalog"
	"github.com/wim-web/novadb/internal/config"
	"github.com/wim-web/novadb/internal/diskmanager"
	"github.com/wim-web/novadb/internal/executor"
	"github.com/wim-web/novadb/internal/wire"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "novadb.yaml", "path to novadb yaml config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	addr := os.Getenv("NOVADB_ADDR")
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	basePath := cfg.Storage.BasePath
	if basePath == "" {
		basePath = "./data"
	}

	poolSize := cfg.BufferPool.PoolSize
	if poolSize == 0 {
		poolSize = 128
	}

	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = "schema.json"
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	dm, err := diskmanager.New(basePath)
	if err != nil {
		log.Fatalf("init disk manager: %v", err)
	}

	bp, err := bufferpool.New(dm, poolSize, cat.Schema)
	if err != nil {
		log.Fatalf("init buffer pool: %v", err)
	}

	eng := &wire.Engine{
		Catalog: cat,
		BP:      bp,
		Exec:    executor.New(bp, cat),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := wire.Run(ctx, addr, eng); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
