// Package dqmtest provides histograms streamed the way the DQM GUI serves
// them.
package dqmtest

import (
	"testing"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/root"
	"go-hep.org/x/hep/hbook"
)

// TH1F returns a 10-bin histogram filled once with every value.
func TH1F(tb testing.TB, name string, values ...float64) dqm.Histogram {
	h := hbook.NewH1D(10, 0, 10)
	h.Annotation()["name"] = name

	for _, v := range values {
		h.Fill(v, 1)
	}

	return histogram(tb, name, dqm.KindTH1F, rhist.NewH1FFrom(h))
}

// TH2F returns a 4x4 histogram filled once with the (v, v) point for
// every value.
func TH2F(tb testing.TB, name string, values ...float64) dqm.Histogram {
	h := hbook.NewH2D(4, 0, 4, 4, 0, 4)
	h.Annotation()["name"] = name

	for _, v := range values {
		h.Fill(v, v, 1)
	}

	return histogram(tb, name, dqm.KindTH2F, rhist.NewH2FFrom(h))
}

func histogram(tb testing.TB, name string, kind dqm.Kind, obj root.Object) dqm.Histogram {
	payload, err := dqm.Encode(obj)
	require.NoError(tb, err)

	return dqm.Histogram{Name: name, Kind: kind, Payload: payload, Object: obj}
}

// Entries returns the number of entries of the histogram object.
func Entries(tb testing.TB, h dqm.Histogram) float64 {
	switch obj := h.Object.(type) {
	case rhist.H1:
		return obj.Entries()
	case rhist.H2:
		return obj.Entries()
	default:
		require.Failf(tb, "not a histogram", "%s is %T", h.Name, h.Object)
		return 0
	}
}
