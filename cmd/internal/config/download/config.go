package downloadconfig

import (
	"time"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
	"github.com/cms-egamma/egdqm/pkg/downloader"
)

const (
	subsection = "download"

	// DatasetDefault is a default dataset pattern, "{}" stands for any
	// processing version.
	DatasetDefault = "/EGamma/Run2018A-PromptReco-v{}/DQMIO"

	// WorkersDefault is a default number of runs downloaded in parallel.
	WorkersDefault = 1
)

// Dataset returns the value of "dataset" config parameter
// from "download" section.
//
// Returns DatasetDefault if the value is not set.
func Dataset(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "dataset")
	if v != "" {
		return v
	}

	return DatasetDefault
}

// Workers returns the value of "workers" config parameter
// from "download" section.
//
// Returns WorkersDefault if the value is not positive.
func Workers(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "workers")
	if v > 0 {
		return int(v)
	}

	return WorkersDefault
}

// Retries returns the value of "retries" config parameter
// from "download" section.
//
// Returns downloader.DefaultRetries if the value is not positive.
func Retries(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "retries")
	if v > 0 {
		return int(v)
	}

	return downloader.DefaultRetries
}

// RetryDelay returns the value of "retry_delay" config parameter
// from "download" section.
func RetryDelay(c *config.Config) time.Duration {
	return config.DurationSafe(c.Sub(subsection), "retry_delay")
}

// BaseFolder returns the value of "base_folder" config parameter
// from "download" section.
//
// Returns downloader.DefaultBaseFolder if the value is not set.
func BaseFolder(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "base_folder")
	if v != "" {
		return v
	}

	return downloader.DefaultBaseFolder
}

// Paths returns the value of "paths" config parameter
// from "download" section.
//
// Returns downloader.DefaultPaths if the value is empty.
func Paths(c *config.Config) []string {
	v := config.StringSliceSafe(c.Sub(subsection), "paths")
	if len(v) > 0 {
		return v
	}

	return downloader.DefaultPaths
}

// Exclusions returns the value of "exclusions" config parameter
// from "download" section.
//
// Returns downloader.DefaultExclusions if the value is empty.
func Exclusions(c *config.Config) []string {
	v := config.StringSliceSafe(c.Sub(subsection), "exclusions")
	if len(v) > 0 {
		return v
	}

	return downloader.DefaultExclusions
}
