package inspect

import (
	"fmt"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"go-hep.org/x/hep/groot/rhist"
)

// entries returns the number of histogram entries and its binning.
func entries(h dqm.Histogram) (float64, string) {
	switch obj := h.Object.(type) {
	case interface {
		rhist.H2
		XAxis() rhist.Axis
		YAxis() rhist.Axis
	}:
		return obj.Entries(), fmt.Sprintf("%dx%d", obj.XAxis().NBins(), obj.YAxis().NBins())
	case interface {
		rhist.H1
		XAxis() rhist.Axis
	}:
		return obj.Entries(), fmt.Sprintf("%d", obj.XAxis().NBins())
	default:
		return 0, "?"
	}
}
