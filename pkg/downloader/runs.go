package downloader

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/cms-egamma/egdqm/pkg/dqm"
)

// SelectRuns returns runs to process. If the first argument is a readable
// file, its lines are the runs and the remaining arguments are ignored;
// otherwise the arguments are the runs themselves. Without arguments every
// run of the catalog is selected.
func SelectRuns(args []string, catalog dqm.Catalog) []string {
	if len(args) == 0 {
		return catalog.Runs()
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return trimRuns(args)
	}

	var lines []string

	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		lines = append(lines, s.Text())
	}

	return trimRuns(lines)
}

func trimRuns(in []string) []string {
	res := make([]string, 0, len(in))

	for i := range in {
		if run := strings.TrimSpace(in[i]); run != "" {
			res = append(res, run)
		}
	}

	return res
}
