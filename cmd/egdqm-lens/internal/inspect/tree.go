package inspect

import (
	common "github.com/cms-egamma/egdqm/cmd/egdqm-lens/internal"
	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/spf13/cobra"
)

// TreeCMD prints every histogram stored in an archive.
var TreeCMD = &cobra.Command{
	Use:   "tree",
	Short: "Print all histograms in the archive",
	Args:  cobra.NoArgs,
	RunE:  treeFunc,
}

var vTreePath string

func init() {
	common.AddArchivePathFlag(TreeCMD, &vTreePath)
}

func treeFunc(cmd *cobra.Command, _ []string) error {
	a, err := common.OpenArchive(vTreePath)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Walk(func(e dqm.Entry) error {
		n, bins := entries(e.Histogram)
		cmd.Printf("%s/%s, Type: %s, Bins: %s, Entries: %g\n",
			e.Dir, e.Histogram.Name, e.Histogram.Kind, bins, n)
		return nil
	})
}
