package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cms-egamma/egdqm/pkg/downloader"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type runReport struct {
	Dataset    string            `yaml:"dataset"`
	Run        string            `yaml:"run"`
	Status     downloader.Status `yaml:"status"`
	Attempts   int               `yaml:"attempts"`
	Histograms int               `yaml:"histograms"`
	Error      string            `yaml:"error,omitempty"`
}

type report struct {
	Output   string      `yaml:"output"`
	Dataset  string      `yaml:"dataset"`
	Started  time.Time   `yaml:"started"`
	Finished time.Time   `yaml:"finished"`
	Done     int         `yaml:"done"`
	Skipped  int         `yaml:"skipped"`
	Failed   int         `yaml:"failed"`
	Runs     []runReport `yaml:"runs"`
}

func newReport(output, dataset string, started, finished time.Time, results []downloader.Result) report {
	rep := report{
		Output:   output,
		Dataset:  dataset,
		Started:  started.UTC(),
		Finished: finished.UTC(),
		Runs:     make([]runReport, len(results)),
	}

	for i, r := range results {
		switch r.Status {
		case downloader.StatusDone:
			rep.Done++
		case downloader.StatusSkipped:
			rep.Skipped++
		default:
			rep.Failed++
		}

		rep.Runs[i] = runReport{
			Dataset:    r.Dataset,
			Run:        r.Run,
			Status:     r.Status,
			Attempts:   r.Attempts,
			Histograms: r.Histograms,
		}

		if r.Err != nil {
			rep.Runs[i].Error = r.Err.Error()
		}
	}

	return rep
}

func (x report) write(path string) error {
	data, err := yaml.Marshal(x)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func printResults(w io.Writer, results []downloader.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No runs to download")
		return
	}

	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Dataset", "Run", "Status", "Attempts", "Histograms", "Error"})
	out.SetAutoWrapText(false)

	for _, r := range results {
		var errStr string
		if r.Err != nil {
			errStr = r.Err.Error()
		}

		out.Append([]string{
			r.Dataset,
			r.Run,
			r.Status.String(),
			strconv.Itoa(r.Attempts),
			strconv.Itoa(r.Histograms),
			errStr,
		})
	}

	out.Render()
}
