package main

import (
	"os"

	"github.com/cms-egamma/egdqm/cmd/egdqm-lens/internal/inspect"
	"github.com/cms-egamma/egdqm/cmd/internal/cmderr"
	"github.com/cms-egamma/egdqm/misc"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:           "egdqm-lens",
	Short:         "E/gamma HLT DQM archive lens",
	Long:          `egdqm-lens provides tools to browse the contents of histogram archives written by egdqm-download.`,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Print(misc.BuildInfo("E/gamma HLT DQM lens"))

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")
	command.AddCommand(
		inspect.ListCMD,
		inspect.TreeCMD,
		inspect.GetCMD,
	)
}

func main() {
	err := command.Execute()
	cmderr.ExitOnErr(err)
}
