package main

import (
	"fmt"
	"os"

	"github.com/cms-egamma/egdqm/cmd/internal/cmderr"
	"github.com/cms-egamma/egdqm/misc"
	"github.com/spf13/cobra"
)

const (
	configFlag   = "config"
	runsFlag     = "runs"
	outputFlag   = "output"
	datasetFlag  = "dataset"
	updateFlag   = "update"
	serverFlag   = "server"
	workersFlag  = "workers"
	progressFlag = "progress"
	reportFlag   = "report"
	metricsFlag  = "metrics"
	versionFlag  = "version"
)

var command = &cobra.Command{
	Use:   "egdqm-download [runs...]",
	Short: "Download E/gamma HLT DQM histograms",
	Long: `Downloads tag-and-probe efficiency histograms of the E/gamma HLT DQM from the
DQM GUI into a local archive. Runs are given by --runs as a list or a file
with one run per line; every run of the matching datasets is downloaded if
none are given. With --update runs already in the archive are skipped.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)

	ff := command.Flags()
	ff.StringP(configFlag, "c", "", "Path to the configuration file (yaml or json)")
	ff.StringSlice(runsFlag, nil, "Runs or a file containing runs, one per line")
	ff.String(outputFlag, "", "Output ROOT file")
	ff.String(datasetFlag, "", "Dataset pattern, {} matches any processing version")
	ff.Bool(updateFlag, false, "Update an existing archive, skipping runs already in it")
	ff.String(serverFlag, "", "DQM GUI server URL")
	ff.Int(workersFlag, 0, "Number of runs downloaded in parallel")
	ff.Bool(progressFlag, false, "Show progress bar on terminals")
	ff.String(reportFlag, "", "Write YAML report of the download to the file")
	ff.String(metricsFlag, "", "Write Prometheus metrics to the .prom file")
	ff.Bool(versionFlag, false, "Application version")
}

func entryPoint(cmd *cobra.Command, args []string) error {
	printVersion, _ := cmd.Flags().GetBool(versionFlag)
	if printVersion {
		cmd.Print(misc.BuildInfo("E/gamma HLT DQM downloader"))

		return nil
	}

	output, _ := cmd.Flags().GetString(outputFlag)
	if output == "" {
		return fmt.Errorf("required flag --%s is not set", outputFlag)
	}

	return download(cmd, args)
}

func main() {
	err := command.Execute()
	cmderr.ExitOnErr(err)
}
