package metrics

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile stamps the completion time and writes all metrics to path
// in the text exposition format read by the node exporter textfile
// collector. The file is replaced atomically.
func (m *DownloadMetrics) WriteTextfile(path string) error {
	if filepath.Ext(path) != defaultTextfileExt {
		return fmt.Errorf("metrics file %s must have %s extension", path, defaultTextfileExt)
	}

	m.lastRun.SetToCurrentTime()

	return prometheus.WriteToTextfile(path, m.registry)
}
