package relvalconfig

import (
	"github.com/cms-egamma/egdqm/cmd/internal/config"
	"github.com/cms-egamma/egdqm/pkg/relval"
)

const subsection = "relval"

// Plotter returns the value of "plotter" config parameter
// from "relval" section.
//
// Returns relval.DefaultPlotter if the value is not set.
func Plotter(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "plotter")
	if v != "" {
		return v
	}

	return relval.DefaultPlotter
}

// Macro returns the value of "macro" config parameter
// from "relval" section.
//
// Returns relval.DefaultMacro if the value is not set.
func Macro(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "macro")
	if v != "" {
		return v
	}

	return relval.DefaultMacro
}

// Entry returns the value of "entry" config parameter
// from "relval" section.
//
// Returns relval.DefaultEntry if the value is not set.
func Entry(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "entry")
	if v != "" {
		return v
	}

	return relval.DefaultEntry
}

// WorkDir returns the value of "work_dir" config parameter
// from "relval" section.
func WorkDir(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "work_dir")
}

// ImageExt returns the value of "image_ext" config parameter
// from "relval" section.
//
// Returns relval.DefaultImageExt if the value is not set.
func ImageExt(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "image_ext")
	if v != "" {
		return v
	}

	return relval.DefaultImageExt
}
