package inspect

import (
	"fmt"

	common "github.com/cms-egamma/egdqm/cmd/egdqm-lens/internal"
	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/spf13/cobra"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/root"
)

// GetCMD prints or saves a histogram stored in an archive.
var GetCMD = &cobra.Command{
	Use:   "get",
	Short: "Get histogram from the archive",
	Long:  "Prints histogram type, title and entries, the histogram is copied into a new ROOT file with --out.",
	Args:  cobra.NoArgs,
	RunE:  getFunc,
}

var (
	vGetPath string
	vGetDir  string
	vGetName string
	vGetOut  string
)

const (
	dirFlagName  = "dir"
	nameFlagName = "name"
)

func init() {
	common.AddArchivePathFlag(GetCMD, &vGetPath)

	ff := GetCMD.Flags()
	ff.StringVar(&vGetDir, dirFlagName, "", "Slash-separated histogram directory")
	ff.StringVar(&vGetName, nameFlagName, "", "Histogram name")
	ff.StringVar(&vGetOut, "out", "", "ROOT file to copy the histogram to")

	for _, name := range []string{dirFlagName, nameFlagName} {
		if err := GetCMD.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func getFunc(cmd *cobra.Command, _ []string) error {
	a, err := common.OpenArchive(vGetPath)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.Get(dqm.ParsePath(vGetDir), vGetName)
	if err != nil {
		return common.Errf("get histogram: %w", err)
	}

	var title string
	if named, ok := h.Object.(root.Named); ok {
		title = named.Title()
	}

	n, bins := entries(h)

	cmd.Printf("Name: %s\nType: %s\nTitle: %s\nBins: %s\nEntries: %g\n", h.Name, h.Kind, title, bins, n)

	if vGetOut == "" {
		return nil
	}

	f, err := riofs.Create(vGetOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", vGetOut, err)
	}

	err = f.Put(h.Name, h.Object)
	if err != nil {
		_ = f.Close()
		return common.Errf("write histogram: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", vGetOut, err)
	}

	cmd.Printf("Histogram saved to %s\n", vGetOut)

	return nil
}
