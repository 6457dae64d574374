package downloader

// Status is the outcome of a (dataset, run) download.
type Status uint8

const (
	// StatusFailed means every attempt failed or the download was
	// interrupted.
	StatusFailed Status = iota
	// StatusDone means histograms were committed to the archive.
	StatusDone
	// StatusSkipped means the run was already in the archive.
	StatusSkipped
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result describes the download of a run of a dataset.
type Result struct {
	Dataset    string
	Run        string
	Status     Status
	Attempts   int
	Histograms int
	// Err is the last error of a failed download.
	Err error
}

// Failed returns results with StatusFailed.
func Failed(rs []Result) []Result {
	var res []Result

	for i := range rs {
		if rs[i].Status == StatusFailed {
			res = append(res, rs[i])
		}
	}

	return res
}
