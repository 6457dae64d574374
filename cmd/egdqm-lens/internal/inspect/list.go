package inspect

import (
	"strconv"
	"strings"

	common "github.com/cms-egamma/egdqm/cmd/egdqm-lens/internal"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ListCMD lists datasets and runs stored in an archive.
var ListCMD = &cobra.Command{
	Use:   "list",
	Short: "List datasets and runs in the archive",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var (
	vListPath string
	vListYAML bool
)

func init() {
	common.AddArchivePathFlag(ListCMD, &vListPath)
	ListCMD.Flags().BoolVar(&vListYAML, "yaml", false, "Print YAML map of datasets to runs")
}

func listFunc(cmd *cobra.Command, _ []string) error {
	a, err := common.OpenArchive(vListPath)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.DatasetRuns()
	if err != nil {
		return common.Errf("list runs: %w", err)
	}

	if vListYAML {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()

		return common.Errf("encode YAML: %w", enc.Encode(c))
	}

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Dataset", "Count", "Runs"})
	out.SetAutoWrapText(false)

	for _, ds := range c.Datasets() {
		out.Append([]string{
			ds,
			strconv.Itoa(len(c[ds])),
			strings.Join(c[ds], " "),
		})
	}

	out.Render()

	return nil
}
