package metrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cms-egamma/egdqm/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDownloadMetrics(t *testing.T) {
	m := metrics.NewDownloadMetrics("v0.1.0")

	m.IncFetchAttempts()
	m.IncFetchAttempts()
	m.AddRunResult("done")
	m.AddRunResult("failed")
	m.AddRunResult("done")
	m.AddHistograms(12)

	n, err := testutil.GatherAndCount(m.Registry(), "egdqm_download_runs_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	path := filepath.Join(t.TempDir(), "egdqm.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `egdqm_download_runs_total{status="done"} 2`)
	require.Contains(t, string(data), `egdqm_download_fetch_attempts_total 2`)
	require.Contains(t, string(data), `egdqm_download_histograms_total 12`)
	require.Contains(t, string(data), `egdqm_version{version="v0.1.0"} 1`)

	require.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "egdqm.txt")))
}
