package config

import (
	"database/sql"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoadMissingFile(t *testing.T) {
	t.Parallel()
	cfg := NewConfig(memoryfs.New(), "/etc/strata/config.json")

	require.NoError(t, cfg.Load())
	assert.False(t, cfg.Database.Path.Valid)
	assert.False(t, cfg.Migrations.Dir.Valid)

	cfg.SetDefaults("/data")
	assert.Equal(t, "/data/strata.db", cfg.Database.Path.V)
	assert.Equal(t, "migrations", cfg.Migrations.Dir.V)
}

func TestConfigLoad(t *testing.T) {
	t.Parallel()
	fsys := memoryfs.New()
	require.NoError(t, fsys.MkdirAll("/etc/strata", 0o755))
	contents := []byte(`{
  "database": {"path": "/srv/app.db"},
  "migrations": {"dir": "/srv/migrations"}
}`)
	require.NoError(t, vfs.WriteFile(fsys, "/etc/strata/config.json", contents, 0o644))

	cfg := NewConfig(fsys, "/etc/strata/config.json")
	require.NoError(t, cfg.Load())
	assert.Equal(t, "/srv/app.db", cfg.Database.Path.V)
	assert.Equal(t, "/srv/migrations", cfg.Migrations.Dir.V)

	// Defaults don't overwrite loaded values.
	cfg.SetDefaults("/data")
	assert.Equal(t, "/srv/app.db", cfg.Database.Path.V)
}

func TestConfigSaveRoundTrip(t *testing.T) {
	t.Parallel()
	fsys := memoryfs.New()

	cfg := NewConfig(fsys, "/etc/strata/config.json")
	cfg.Database.Path = sql.Null[string]{V: "/srv/app.db", Valid: true}
	cfg.Migrations.Dir = sql.Null[string]{V: "db/migrations", Valid: true}
	require.NoError(t, cfg.Save())

	loaded := NewConfig(fsys, "/etc/strata/config.json")
	require.NoError(t, loaded.Load())
	assert.Equal(t, cfg.Database.Path, loaded.Database.Path)
	assert.Equal(t, cfg.Migrations.Dir, loaded.Migrations.Dir)
}
