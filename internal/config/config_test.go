package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"projection-engine/internal/tax"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"HORIZON_CONFIG", "HORIZON_SERVER_PORT", "PORT", "HORIZON_STORE_PATH", "HORIZON_TAX_YEAR", "HORIZON_TAX_REGISTRY_URL", "HORIZON_TAX_TABLE_PATH"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, 4<<20, c.Server.MaxBodyBytes)
	require.Equal(t, filepath.Join(home, ".local", "share", "horizon", "scenarios.db"), c.Store.Path)
	require.Zero(t, c.Tax.Year)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "horizon.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[store]
path = "/tmp/plans.db"

[tax]
year = 2024
`), 0o600))
	t.Setenv("HORIZON_CONFIG", path)
	t.Setenv("HORIZON_STORE_PATH", "/srv/plans.db")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, c.Server.Port)
	require.Equal(t, "/srv/plans.db", c.Store.Path)
	require.Equal(t, 2024, c.Tax.Year)
}

func TestLegacyPortVariable(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "7070")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, c.Server.Port)

	t.Setenv("HORIZON_SERVER_PORT", "6060")
	c, err = Load()
	require.NoError(t, err)
	require.Equal(t, 6060, c.Server.Port)
}

func TestExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HORIZON_CONFIG", filepath.Join(dir, "missing.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestTaxResolver(t *testing.T) {
	r, err := TaxConfig{}.Resolver()
	require.NoError(t, err)
	_, isSchedule := r.(*tax.Schedule)
	require.True(t, isSchedule)

	r, err = TaxConfig{Year: 2024, RegistryURL: "http://tables.invalid"}.Resolver()
	require.NoError(t, err)
	fixed, ok := r.(tax.FixedYear)
	require.True(t, ok)
	require.Equal(t, 2024, fixed.Year)
	_, isRegistry := fixed.Resolver.(*tax.Registry)
	require.True(t, isRegistry)

	_, err = TaxConfig{TablePath: filepath.Join(t.TempDir(), "none.toml")}.Resolver()
	require.Error(t, err)
}
