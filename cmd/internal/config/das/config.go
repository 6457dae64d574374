package dasconfig

import (
	"github.com/cms-egamma/egdqm/cmd/internal/config"
	"github.com/cms-egamma/egdqm/pkg/das"
)

// Command returns the value of "command" config parameter
// from "das" section.
//
// Returns das.DefaultCommand if the value is not set.
func Command(c *config.Config) string {
	v := config.StringSafe(c.Sub("das"), "command")
	if v != "" {
		return v
	}

	return das.DefaultCommand
}
