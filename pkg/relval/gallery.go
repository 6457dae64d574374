package relval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/flynn-archive/go-shlex"
	"go.uber.org/zap"
)

const (
	// DefaultPlotter is the command line of the plotting interpreter.
	DefaultPlotter = "root -l -b -q"
	// DefaultMacro is the plotting macro loaded by DefaultPlotter.
	DefaultMacro = "rootScripts/makeDQMHLTRelValPlots.C+"
	// DefaultEntry is the function of DefaultMacro printing all plots.
	DefaultEntry = "printAllPlots"
	// DefaultImageExt is the extension of images produced by the plotter.
	DefaultImageExt = ".gif"

	defaultDirPerm = 0o755
)

// ErrOutputExists is returned by Gallery.Make when the output directory is
// already there and update is not requested.
var ErrOutputExists = errors.New("output directory exists already, use --update option to delete it and remake it")

// PlotPrm groups parameters of a single plotter invocation.
type PlotPrm struct {
	// OutputDir is the directory to print plots into.
	OutputDir string
	// Filename and RefFilename are the sample and the reference archives.
	Filename    string
	RefFilename string
	// Legend and RefLegend label the sample and the reference on plots.
	Legend    string
	RefLegend string
}

// Plotter renders comparison plots into PlotPrm.OutputDir, one
// subdirectory per plot group.
type Plotter interface {
	Plot(ctx context.Context, prm PlotPrm) error
}

// CommandPlotter runs an external interpreter with the plotting macro.
type CommandPlotter struct {
	argv  []string
	macro string
	entry string
	dir   string

	log *zap.Logger
}

// CommandPlotterOption configures CommandPlotter.
type CommandPlotterOption func(*CommandPlotter)

// WithWorkDir sets the working directory of the interpreter, macro path is
// resolved against it.
func WithWorkDir(dir string) CommandPlotterOption {
	return func(p *CommandPlotter) {
		p.dir = dir
	}
}

// WithEntry sets the macro function called with the plot parameters.
// Empty name keeps DefaultEntry.
func WithEntry(name string) CommandPlotterOption {
	return func(p *CommandPlotter) {
		if name != "" {
			p.entry = name
		}
	}
}

// WithPlotterLogger sets the logger receiving interpreter output.
func WithPlotterLogger(l *zap.Logger) CommandPlotterOption {
	return func(p *CommandPlotter) {
		p.log = l
	}
}

// NewCommandPlotter parses the shell-like interpreter command line. Empty
// line and macro mean DefaultPlotter and DefaultMacro.
func NewCommandPlotter(line, macro string, opts ...CommandPlotterOption) (*CommandPlotter, error) {
	if strings.TrimSpace(line) == "" {
		line = DefaultPlotter
	}

	if macro == "" {
		macro = DefaultMacro
	}

	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse plotter command %q: %w", line, err)
	}

	if len(argv) == 0 {
		return nil, errors.New("empty plotter command")
	}

	p := &CommandPlotter{
		argv:  argv,
		macro: macro,
		entry: DefaultEntry,
		log:   zap.NewNop(),
	}

	for i := range opts {
		opts[i](p)
	}

	return p, nil
}

// Call returns the interpreter statement calling the entry function with prm.
func (p *CommandPlotter) Call(prm PlotPrm) string {
	return fmt.Sprintf("%s(%q,%q,%q,%q,%q)", p.entry,
		prm.OutputDir, prm.Filename, prm.RefFilename, prm.Legend, prm.RefLegend)
}

// Args returns interpreter arguments following the command line: the macro
// is loaded by the first statement and the entry function is called by the
// second one.
func (p *CommandPlotter) Args(prm PlotPrm) []string {
	return append(p.argv[1:len(p.argv):len(p.argv)],
		"-e", ".L "+p.macro,
		"-e", p.Call(prm),
	)
}

// Plot implements Plotter.
func (p *CommandPlotter) Plot(ctx context.Context, prm PlotPrm) error {
	args := p.Args(prm)

	cmd := exec.CommandContext(ctx, p.argv[0], args...)
	cmd.Dir = p.dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	p.log.Debug("running plotter", zap.Strings("args", cmd.Args))

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("run plotter %s: %w: %s", p.argv[0], err, strings.TrimSpace(out.String()))
	}

	p.log.Debug("plotter finished", zap.String("output", out.String()))

	return nil
}

// Gallery makes RelVal comparison galleries.
type Gallery struct {
	plotter  Plotter
	imageExt string
	log      *zap.Logger
}

// GalleryPrm groups Gallery parameters. Plotter is required.
type GalleryPrm struct {
	Plotter Plotter
	// ImageExt is the extension of indexed images, DefaultImageExt if empty.
	ImageExt string
	Logger   *zap.Logger
}

// NewGallery creates Gallery.
func NewGallery(prm GalleryPrm) *Gallery {
	g := &Gallery{
		plotter:  prm.Plotter,
		imageExt: prm.ImageExt,
		log:      prm.Logger,
	}

	if g.imageExt == "" {
		g.imageExt = DefaultImageExt
	}

	if g.log == nil {
		g.log = zap.NewNop()
	}

	return g
}

// MakePrm groups Gallery.Make parameters.
type MakePrm struct {
	Filename    string
	RefFilename string
	// BaseDir is the directory the gallery is created in.
	BaseDir string
	// Update allows replacing an existing gallery.
	Update bool
}

// Make plots the sample against the reference into a new subdirectory of
// the base directory and indexes the result. It returns the gallery path.
func (g *Gallery) Make(ctx context.Context, prm MakePrm) (string, error) {
	sample, err := ParseInfo(prm.Filename)
	if err != nil {
		return "", err
	}

	ref, err := ParseInfo(prm.RefFilename)
	if err != nil {
		return "", err
	}

	// the plotter may run in another working directory
	filename, err := filepath.Abs(prm.Filename)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", prm.Filename, err)
	}

	refFilename, err := filepath.Abs(prm.RefFilename)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", prm.RefFilename, err)
	}

	baseDir, err := filepath.Abs(prm.BaseDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", prm.BaseDir, err)
	}

	dir := filepath.Join(baseDir, SubdirName(sample, ref))

	l := g.log.With(zap.String("dir", dir))

	_, err = os.Stat(dir)
	switch {
	case err == nil:
		if !prm.Update {
			return dir, fmt.Errorf("%s: %w", dir, ErrOutputExists)
		}

		l.Info("removing existing gallery")

		err = os.RemoveAll(dir)
		if err != nil {
			return dir, fmt.Errorf("remove %s: %w", dir, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return dir, fmt.Errorf("stat %s: %w", dir, err)
	}

	err = os.MkdirAll(dir, defaultDirPerm)
	if err != nil {
		return dir, fmt.Errorf("create output directory: %w", err)
	}

	err = g.plotter.Plot(ctx, PlotPrm{
		OutputDir:   dir,
		Filename:    filename,
		RefFilename: refFilename,
		Legend:      sample.Legend(),
		RefLegend:   ref.RefLegend(),
	})
	if err != nil {
		return dir, err
	}

	err = WriteIndexes(dir, g.imageExt)
	if err != nil {
		return dir, err
	}

	l.Info("gallery created",
		zap.String("sample", sample.SampleTypeFull),
		zap.String("version", sample.VersionFull),
		zap.String("reference", ref.VersionFull))

	return dir, nil
}
