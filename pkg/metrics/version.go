package metrics

import "github.com/prometheus/client_golang/prometheus"

func registerVersionMetric(r prometheus.Registerer, version string) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "version",
		Help:      "Version of the running tool",
		ConstLabels: prometheus.Labels{
			versionLabelKey: version,
		},
	})

	r.MustRegister(g)
	g.Set(1)
}
