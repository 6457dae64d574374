// Package relval builds release validation galleries comparing DQM
// histograms of a sample against a reference.
package relval

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMalformedFilename is returned for file names lacking the fields
// required by ParseInfo.
var ErrMalformedFilename = errors.New("malformed RelVal file name")

const (
	fieldSeparator = "__"
	versionPrefix  = len("CMSSW_")
	samplePrefix   = len("RelVal")
	sampleSuffix   = len("_14")
)

// Info is the metadata encoded in a RelVal DQM file name like
//
//	DQM_V0001_R000000001__RelValZEE_14__CMSSW_12_3_0-PU_123X_mcRun3_2021_realistic_v11-v1__DQMIO.root
type Info struct {
	// VersionFull is the release, e.g. CMSSW_12_3_0.
	VersionFull string
	// Version is the compact release number, e.g. 1230.
	Version string
	// PileupType is the pileup scenario, e.g. PU. Empty for samples
	// without pileup.
	PileupType string
	// GlobalTag is the conditions tag.
	GlobalTag string
	// SampleTypeFull is the sample name, e.g. RelValZEE_14.
	SampleTypeFull string
	// SampleType is the physics process, e.g. ZEE.
	SampleType string
}

// ParseInfo extracts Info from the base name of filename. Fields are cut at
// fixed offsets and separators without validation, so a name not following
// the convention gives meaningless values. An error is returned only when
// the name has fewer than three fields or a pileup marker without the tag.
func ParseInfo(filename string) (Info, error) {
	fields := strings.Split(filepath.Base(filename), fieldSeparator)
	if len(fields) < 3 {
		return Info{}, fmt.Errorf("%w: %s: %d fields", ErrMalformedFilename, filename, len(fields))
	}

	var (
		x       Info
		release = fields[2]
		gtStart = strings.Index(release, "-")
		gtEnd   = strings.LastIndex(release, "-v")
	)

	x.VersionFull = slice(release, 0, gtStart)
	x.Version = strings.ReplaceAll(slice(x.VersionFull, versionPrefix, len(x.VersionFull)), "_", "")

	gtPU := slice(release, gtStart+1, gtEnd)
	if strings.HasPrefix(gtPU, "PU") {
		parts := strings.Split(gtPU, "_")
		if len(parts) < 2 {
			return Info{}, fmt.Errorf("%w: %s: no global tag after pileup %s", ErrMalformedFilename, filename, gtPU)
		}

		x.PileupType = parts[0]
		x.GlobalTag = parts[1]
	} else {
		x.GlobalTag = gtPU
	}

	x.SampleTypeFull = fields[1]
	x.SampleType = slice(x.SampleTypeFull, samplePrefix, -sampleSuffix)

	return x, nil
}

// Legend returns the plot legend entry of the sample.
func (x Info) Legend() string {
	if x.PileupType == "" {
		return x.Version
	}

	return x.Version + "-" + x.PileupType
}

// RefLegend returns the plot legend entry of the archive used as the
// reference. Unlike Legend it has no separator before the pileup type.
func (x Info) RefLegend() string {
	return x.Version + x.PileupType
}

// SubdirName returns the gallery directory name for comparing sample
// against ref.
func SubdirName(sample, ref Info) string {
	return "EGRelVal_" + sample.SampleType + "_" +
		sample.Version + sample.PileupType + "Vs" + ref.Version + ref.PileupType
}

// slice returns s[lo:hi] where negative indices count from the end and
// out-of-range indices are clamped, an inverted range gives "".
func slice(s string, lo, hi int) string {
	lo, hi = clamp(lo, len(s)), clamp(hi, len(s))
	if lo >= hi {
		return ""
	}

	return s[lo:hi]
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}

	switch {
	case i < 0:
		return 0
	case i > n:
		return n
	default:
		return i
	}
}
