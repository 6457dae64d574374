package archiveconfig

import (
	"io/fs"
	"time"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
)

const (
	subsection = "archive"

	// PermDefault is a default permission bits of the archive file.
	PermDefault = 0o640

	// LockTimeoutDefault is a default time to wait for the archive journal
	// lock.
	LockTimeoutDefault = 5 * time.Second
)

// Compress returns the value of "compress" config parameter
// from "archive" section.
func Compress(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "compress")
}

// NoSync returns the value of "no_sync" config parameter
// from "archive" section.
func NoSync(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "no_sync")
}

// Perm returns the value of "perm" config parameter
// from "archive" section.
//
// Returns PermDefault if the value is not a positive number.
func Perm(c *config.Config) fs.FileMode {
	v := config.Uint32Safe(c.Sub(subsection), "perm")
	if v > 0 {
		return fs.FileMode(v)
	}

	return PermDefault
}

// LockTimeout returns the value of "lock_timeout" config parameter
// from "archive" section.
//
// Returns LockTimeoutDefault if the value is not positive.
func LockTimeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "lock_timeout")
	if v > 0 {
		return v
	}

	return LockTimeoutDefault
}
