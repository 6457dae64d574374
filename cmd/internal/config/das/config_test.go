package dasconfig_test

import (
	"testing"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
	dasconfig "github.com/cms-egamma/egdqm/cmd/internal/config/das"
	configtest "github.com/cms-egamma/egdqm/cmd/internal/config/test"
	"github.com/cms-egamma/egdqm/pkg/das"
	"github.com/stretchr/testify/require"
)

const path = "../../../../config/example/egdqm"

func TestDASSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		require.Equal(t, das.DefaultCommand, dasconfig.Command(configtest.EmptyConfig(t)))
	})

	var fileConfigTest = func(c *config.Config) {
		require.Equal(t, "/cvmfs/cms.cern.ch/common/dasgoclient -timeout 60", dasconfig.Command(c))
	}

	configtest.ForEachFileType(t, path, fileConfigTest)

	t.Run("ENV", func(t *testing.T) {
		configtest.ForEnvFileType(t, path, fileConfigTest)
	})
}
