package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novadb.yaml")
	body := `
storage:
  base_path: ./data
  page_size: 4096
bufferpool:
  pool_size: 64
server:
  addr: 127.0.0.1:9090
  debug: true
catalog:
  path: schema.json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./data", cfg.Storage.BasePath)
	require.Equal(t, 4096, cfg.Storage.PageSize)
	require.Equal(t, 64, cfg.BufferPool.PoolSize)
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.True(t, cfg.Server.Debug)
	require.Equal(t, "schema.json", cfg.Catalog.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
