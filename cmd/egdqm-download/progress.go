package main

import (
	"os"

	"github.com/cheggaaa/pb"
	"github.com/cms-egamma/egdqm/pkg/downloader"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// progress counts processed runs. Zero value does nothing.
type progress struct {
	bar *pb.ProgressBar
}

// newProgress starts the progress bar if it is enabled and the error
// output is a terminal.
func newProgress(cmd *cobra.Command, enabled bool, total int) *progress {
	if !enabled || total == 0 {
		return new(progress)
	}

	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return new(progress)
	}

	bar := pb.New(total)
	bar.Output = f
	bar.Prefix("runs ")
	bar.ShowSpeed = false

	return &progress{bar: bar.Start()}
}

func (p *progress) add(downloader.Result) {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
