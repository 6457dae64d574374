package configtest

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/cms-egamma/egdqm/cmd/internal/config"
	"github.com/stretchr/testify/require"
)

func fromFile(tb testing.TB, path string) *config.Config {
	var p config.Prm

	c, err := config.New(p,
		config.WithConfigFile(path),
	)
	require.NoError(tb, err)

	return c
}

// ForEachFileType passes configs read from next files:
//   - `<pref>.yaml`;
//   - `<pref>.json`.
func ForEachFileType(tb testing.TB, pref string, f func(*config.Config)) {
	for _, ext := range []string{".yaml", ".json"} {
		f(fromFile(tb, pref+ext))
	}
}

// ForEnvFileType sets environment variables from `<pref>.env` file
// of KEY=VALUE lines and passes the config without a file.
func ForEnvFileType(tb testing.TB, pref string, f func(*config.Config)) {
	file, err := os.Open(pref + ".env")
	require.NoError(tb, err)
	defer file.Close()

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		require.True(tb, ok, "malformed env line %q", line)

		v = strings.Trim(v, `"`)
		tb.Setenv(k, v)
	}

	require.NoError(tb, s.Err())

	f(EmptyConfig(tb))
}

// EmptyConfig returns config without any values and sections.
func EmptyConfig(tb testing.TB) *config.Config {
	var p config.Prm

	c, err := config.New(p)
	require.NoError(tb, err)

	return c
}
