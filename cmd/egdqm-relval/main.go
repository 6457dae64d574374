package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cms-egamma/egdqm/cmd/internal/cmderr"
	"github.com/cms-egamma/egdqm/cmd/internal/config"
	loggerconfig "github.com/cms-egamma/egdqm/cmd/internal/config/logger"
	relvalconfig "github.com/cms-egamma/egdqm/cmd/internal/config/relval"
	"github.com/cms-egamma/egdqm/misc"
	"github.com/cms-egamma/egdqm/pkg/relval"
	"github.com/cms-egamma/egdqm/pkg/util/grace"
	"github.com/cms-egamma/egdqm/pkg/util/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	configFlag    = "config"
	outputDirFlag = "outputDir"
	updateFlag    = "update"
	plotterFlag   = "plotter"
	macroFlag     = "macro"
	entryFlag     = "entry"
	versionFlag   = "version"
)

var command = &cobra.Command{
	Use:   "egdqm-relval <filename> <refFilename>",
	Short: "Make E/gamma HLT RelVal validation plots",
	Long: `Reads DQM histogram files of a RelVal sample and its reference, produces
formatted comparison plots for easier validation and an HTML gallery of them.`,
	Args:          cobra.MaximumNArgs(2),
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)

	ff := command.Flags()
	ff.StringP(configFlag, "c", "", "Path to the configuration file (yaml or json)")
	ff.StringP(outputDirFlag, "o", "", "Output base directory")
	ff.Bool(updateFlag, false, "Allow overwriting of existing directory")
	ff.String(plotterFlag, "", "Plotting interpreter command line")
	ff.String(macroFlag, "", "Plotting macro")
	ff.String(entryFlag, "", "Macro function printing the plots")
	ff.Bool(versionFlag, false, "Application version")
}

func entryPoint(cmd *cobra.Command, args []string) error {
	printVersion, _ := cmd.Flags().GetBool(versionFlag)
	if printVersion {
		cmd.Print(misc.BuildInfo("E/gamma HLT RelVal plotter"))

		return nil
	}

	if len(args) != 2 {
		return errors.New("filename and refFilename arguments are required")
	}

	outputDir, _ := cmd.Flags().GetString(outputDirFlag)
	if outputDir == "" {
		return fmt.Errorf("required flag --%s is not set", outputDirFlag)
	}

	cfg, err := readConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(logger.Prm{
		Level:    loggerconfig.Level(cfg),
		Encoding: loggerconfig.Encoding(cfg),
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := grace.NewGracefulContext(log)
	defer cancel()

	plotter, err := relval.NewCommandPlotter(relvalconfig.Plotter(cfg), relvalconfig.Macro(cfg),
		relval.WithEntry(relvalconfig.Entry(cfg)),
		relval.WithWorkDir(relvalconfig.WorkDir(cfg)),
		relval.WithPlotterLogger(log),
	)
	if err != nil {
		return err
	}

	g := relval.NewGallery(relval.GalleryPrm{
		Plotter:  plotter,
		ImageExt: relvalconfig.ImageExt(cfg),
		Logger:   log,
	})

	update, _ := cmd.Flags().GetBool(updateFlag)

	dir, err := g.Make(ctx, relval.MakePrm{
		Filename:    args[0],
		RefFilename: args[1],
		BaseDir:     outputDir,
		Update:      update,
	})
	if err != nil {
		return err
	}

	log.Debug("gallery index written", zap.String("dir", dir))
	cmd.Println(dir)

	return nil
}

// readConfig reads the file given by the config flag and binds command
// line flags overriding configuration values.
func readConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.Option

	path, _ := cmd.Flags().GetString(configFlag)
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	cfg, err := config.New(config.Prm{}, opts...)
	if err != nil {
		return nil, err
	}

	sub := cfg.Sub("relval")

	for _, name := range []string{plotterFlag, macroFlag, entryFlag} {
		err = sub.BindFlag(name, cmd.Flags().Lookup(name))
		if err != nil {
			return nil, fmt.Errorf("bind --%s flag: %w", name, err)
		}
	}

	return cfg, nil
}

func main() {
	err := command.Execute()
	cmderr.ExitOnErr(err)
}
