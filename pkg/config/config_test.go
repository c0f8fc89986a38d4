package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siloflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  file: /var/log/app.log
control:
  listen_addr: "127.0.0.1:9000"
ingress:
  destination_bucket: parquet-out
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/var/log/app.log", cfg.Agent.File)
	require.Equal(t, 1024, cfg.Agent.BufferSize) // default preserved
	require.Equal(t, "127.0.0.1:9000", cfg.Control.ListenAddr)
	require.Equal(t, 5, cfg.Control.URLPoolSize) // default preserved
	require.Equal(t, "parquet-out", cfg.Ingress.DestinationBucket)
	require.Equal(t, 10, cfg.Ingress.BatchSize) // default preserved
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}
