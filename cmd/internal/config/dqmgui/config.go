package dqmguiconfig

import (
	"time"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
	"github.com/cms-egamma/egdqm/pkg/dqmgui"
)

const subsection = "dqmgui"

// Server returns the value of "server" config parameter
// from "dqmgui" section.
//
// Returns dqmgui.DefaultServer if the value is not set.
func Server(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "server")
	if v != "" {
		return v
	}

	return dqmgui.DefaultServer
}

// Timeout returns the value of "timeout" config parameter
// from "dqmgui" section.
//
// Returns dqmgui.DefaultTimeout if the value is not positive.
func Timeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "timeout")
	if v > 0 {
		return v
	}

	return dqmgui.DefaultTimeout
}

// UserAgent returns the value of "user_agent" config parameter
// from "dqmgui" section.
//
// Returns dqmgui.DefaultUserAgent if the value is not set.
func UserAgent(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "user_agent")
	if v != "" {
		return v
	}

	return dqmgui.DefaultUserAgent
}

// CAFile returns the value of "ca_file" config parameter
// from "dqmgui" section: PEM bundle of server CAs trusted in addition
// to the system pool.
func CAFile(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "ca_file")
}
