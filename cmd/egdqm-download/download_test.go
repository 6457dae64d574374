package main

import (
	"os"
	"path/filepath"
	"testing"

	dqmguiconfig "github.com/cms-egamma/egdqm/cmd/internal/config/dqmgui"
	downloadconfig "github.com/cms-egamma/egdqm/cmd/internal/config/download"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "egdqm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
download:
  dataset: /EGamma/Run2022C-PromptReco-v{}/DQMIO
  workers: 3
dqmgui:
  server: https://dqm.example.org/dqm/offline
`), 0o600))

	require.NoError(t, command.Flags().Set(configFlag, path))

	cfg, err := readConfig(command)
	require.NoError(t, err)
	require.Equal(t, "/EGamma/Run2022C-PromptReco-v{}/DQMIO", downloadconfig.Dataset(cfg))
	require.Equal(t, 3, downloadconfig.Workers(cfg))
	require.Equal(t, "https://dqm.example.org/dqm/offline", dqmguiconfig.Server(cfg))

	require.NoError(t, command.Flags().Set(workersFlag, "8"))
	require.NoError(t, command.Flags().Set(serverFlag, "https://localhost:8443"))

	require.Equal(t, 8, downloadconfig.Workers(cfg))
	require.Equal(t, "https://localhost:8443", dqmguiconfig.Server(cfg))
	require.Equal(t, "/EGamma/Run2022C-PromptReco-v{}/DQMIO", downloadconfig.Dataset(cfg))

	require.NoError(t, command.Flags().Set(configFlag, filepath.Join(t.TempDir(), "missing.yaml")))

	_, err = readConfig(command)
	require.Error(t, err)
}

func TestLoadRootCAs(t *testing.T) {
	pool, err := loadRootCAs("")
	require.NoError(t, err)
	require.Nil(t, pool)

	_, err = loadRootCAs(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bundle.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err = loadRootCAs(path)
	require.ErrorContains(t, err, "no certificates")
}
