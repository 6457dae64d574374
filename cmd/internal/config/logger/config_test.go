package loggerconfig_test

import (
	"testing"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
	loggerconfig "github.com/cms-egamma/egdqm/cmd/internal/config/logger"
	configtest "github.com/cms-egamma/egdqm/cmd/internal/config/test"
	"github.com/cms-egamma/egdqm/pkg/util/logger"
	"github.com/stretchr/testify/require"
)

const path = "../../../../config/example/egdqm"

func TestLoggerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig(t)

		require.Equal(t, loggerconfig.LevelDefault, loggerconfig.Level(empty))
		require.Equal(t, logger.EncodingConsole, loggerconfig.Encoding(empty))
	})

	var fileConfigTest = func(c *config.Config) {
		require.Equal(t, "debug", loggerconfig.Level(c))
		require.Equal(t, logger.EncodingJSON, loggerconfig.Encoding(c))
	}

	configtest.ForEachFileType(t, path, fileConfigTest)

	t.Run("ENV", func(t *testing.T) {
		configtest.ForEnvFileType(t, path, fileConfigTest)
	})
}
