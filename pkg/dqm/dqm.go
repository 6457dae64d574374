// Package dqm holds the types shared by the DQM download and RelVal tools:
// datasets, runs, archive paths and histogram records.
package dqm

import (
	"strings"
)

// RootDir is the top-level directory of every archive.
const RootDir = "DQMData"

// PathSeparator separates segments of a Path in its string form.
const PathSeparator = "/"

const (
	datasetSeparator = "--"
	runDirPrefix     = "Run "
)

// runSummaryPath is appended to the run directory of each downloaded run.
var runSummaryPath = []string{"HLT", "Run summary", "EGTagAndProbeEffs"}

// SanitizeDataset turns a dataset name into a single archive path segment:
// leading slashes are stripped and the remaining ones replaced with "--".
func SanitizeDataset(dataset string) string {
	return strings.ReplaceAll(strings.TrimLeft(dataset, PathSeparator), PathSeparator, datasetSeparator)
}

// RestoreDataset reverses SanitizeDataset.
func RestoreDataset(segment string) string {
	return PathSeparator + strings.ReplaceAll(segment, datasetSeparator, PathSeparator)
}

// RunDir returns the archive directory name of the run.
func RunDir(run string) string {
	return runDirPrefix + run
}

// RunFromDir extracts the run number from a directory named by RunDir.
// Returns false if the name has no second field.
func RunFromDir(dir string) (string, bool) {
	fs := strings.Fields(dir)
	if len(fs) < 2 {
		return "", false
	}

	return fs[1], true
}

// Path is a location inside the archive.
type Path []string

// ParsePath splits slash-separated s into a Path. Empty segments are dropped.
func ParsePath(s string) Path {
	var p Path

	for _, seg := range strings.Split(s, PathSeparator) {
		if seg != "" {
			p = append(p, seg)
		}
	}

	return p
}

// Join returns a new Path with segs appended.
func (p Path) Join(segs ...string) Path {
	res := make(Path, 0, len(p)+len(segs))
	res = append(res, p...)

	return append(res, segs...)
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// DatasetPath returns the archive directory holding all runs of the dataset.
func DatasetPath(dataset string) Path {
	return Path{RootDir, SanitizeDataset(dataset)}
}

// RunPath returns the archive directory receiving the tag-and-probe
// histograms of the run.
func RunPath(dataset, run string) Path {
	return DatasetPath(dataset).Join(RunDir(run)).Join(runSummaryPath...)
}
