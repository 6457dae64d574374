package gridcert_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cms-egamma/egdqm/pkg/gridcert"
	"github.com/stretchr/testify/require"
)

func touch(tb testing.TB, path string) string {
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(tb, os.WriteFile(path, []byte("pem"), 0o600))

	return path
}

func resolver(env map[string]string) gridcert.Resolver {
	return gridcert.Resolver{
		Getenv: func(name string) string { return env[name] },
		HomeDir: func() (string, error) {
			return "", errors.New("no home")
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("proxy", func(t *testing.T) {
		dir := t.TempDir()
		proxy := touch(t, filepath.Join(dir, "x509up_u1000"))
		key := touch(t, filepath.Join(dir, "key.pem"))

		p, err := resolver(map[string]string{
			gridcert.EnvProxy: proxy,
			gridcert.EnvKey:   key,
		}).Resolve()
		require.NoError(t, err)
		require.Equal(t, gridcert.Pair{Key: proxy, Cert: proxy}, p)
	})

	t.Run("missing proxy falls through", func(t *testing.T) {
		dir := t.TempDir()
		key := touch(t, filepath.Join(dir, "key.pem"))
		cert := touch(t, filepath.Join(dir, "cert.pem"))

		p, err := resolver(map[string]string{
			gridcert.EnvProxy: filepath.Join(dir, "missing"),
			gridcert.EnvKey:   key,
			gridcert.EnvCert:  cert,
		}).Resolve()
		require.NoError(t, err)
		require.Equal(t, gridcert.Pair{Key: key, Cert: cert}, p)
	})

	t.Run("globus", func(t *testing.T) {
		home := t.TempDir()
		key := touch(t, filepath.Join(home, ".globus", "userkey.pem"))
		cert := touch(t, filepath.Join(home, ".globus", "usercert.pem"))

		p, err := resolver(map[string]string{
			gridcert.EnvHome: home,
		}).Resolve()
		require.NoError(t, err)
		require.Equal(t, gridcert.Pair{Key: key, Cert: cert}, p)
	})

	t.Run("mixed tiers", func(t *testing.T) {
		home := t.TempDir()
		key := touch(t, filepath.Join(t.TempDir(), "key.pem"))
		touch(t, filepath.Join(home, ".globus", "userkey.pem"))
		cert := touch(t, filepath.Join(home, ".globus", "usercert.pem"))

		p, err := resolver(map[string]string{
			gridcert.EnvHome: home,
			gridcert.EnvKey:  key,
		}).Resolve()
		require.NoError(t, err)
		require.Equal(t, gridcert.Pair{Key: key, Cert: cert}, p)
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		key := touch(t, filepath.Join(home, ".globus", "userkey.pem"))
		cert := touch(t, filepath.Join(home, ".globus", "usercert.pem"))

		r := resolver(nil)
		r.HomeDir = func() (string, error) { return home, nil }

		p, err := r.Resolve()
		require.NoError(t, err)
		require.Equal(t, gridcert.Pair{Key: key, Cert: cert}, p)
	})

	t.Run("no key", func(t *testing.T) {
		home := t.TempDir()
		touch(t, filepath.Join(home, ".globus", "usercert.pem"))

		_, err := resolver(map[string]string{
			gridcert.EnvHome: home,
		}).Resolve()
		require.ErrorIs(t, err, gridcert.ErrNoPrivateKey)
	})

	t.Run("no cert", func(t *testing.T) {
		key := touch(t, filepath.Join(t.TempDir(), "key.pem"))

		_, err := resolver(map[string]string{
			gridcert.EnvHome: t.TempDir(),
			gridcert.EnvKey:  key,
		}).Resolve()
		require.ErrorIs(t, err, gridcert.ErrNoCertificate)
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := resolver(nil).Resolve()
		require.ErrorIs(t, err, gridcert.ErrNoPrivateKey)
	})
}
