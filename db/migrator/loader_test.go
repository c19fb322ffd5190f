package migrator_test

import (
	"fmt"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/strata/db/migrator"
)

func writeMigrationFiles(t *testing.T, fsys vfs.FileSystem, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(dir, 0o755))
	for name, contents := range files {
		err := vfs.WriteFile(fsys, fmt.Sprintf("%s/%s", dir, name), []byte(contents), 0o644)
		require.NoError(t, err)
	}
}

func TestLoadMigrations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    map[string]string
		expNames []string
		expErr   string
	}{
		{
			name: "ok/sorted_by_name",
			files: map[string]string{
				"20230102100000-add-email.up.sql":      "ALTER TABLE users ADD COLUMN email TEXT;",
				"20230102100000-add-email.down.sql":    "ALTER TABLE users DROP COLUMN email;",
				"20230101100000-create-users.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY);",
				"20230101100000-create-users.down.sql": "DROP TABLE users;",
			},
			expNames: []string{"20230101100000-create-users", "20230102100000-add-email"},
		},
		{
			name: "ok/ignores_non_sql_files",
			files: map[string]string{
				"README.md":                  "notes",
				"0001-initial.up.sql":        "CREATE TABLE t (id INTEGER);",
				"0001-initial.down.sql":      "DROP TABLE t;",
				".0002-hidden.up.sql.swp":    "junk",
				"0002-other.up.sql.disabled": "junk",
			},
			expNames: []string{"0001-initial"},
		},
		{
			name: "err/malformed_file_name",
			files: map[string]string{
				"create-users.up.sql": "CREATE TABLE users (id INTEGER);",
			},
			expErr: "failed loading migration file 'create-users.up.sql': " +
				"file name must be in the format '{id}-{label}.{up|down}.sql'",
		},
		{
			name: "err/missing_down_file",
			files: map[string]string{
				"0001-initial.up.sql": "CREATE TABLE t (id INTEGER);",
			},
			expErr: "failed loading migration file '0001-initial.up.sql': " +
				"migration '0001-initial' is missing its down file",
		},
		{
			name: "err/missing_up_file",
			files: map[string]string{
				"0001-initial.down.sql": "DROP TABLE t;",
			},
			expErr: "failed loading migration file '0001-initial.down.sql': " +
				"migration '0001-initial' is missing its up file",
		},
		{
			name: "err/duplicate_id",
			files: map[string]string{
				"0001-initial.up.sql":   "CREATE TABLE t (id INTEGER);",
				"0001-initial.down.sql": "DROP TABLE t;",
				"0001-extra.up.sql":     "CREATE TABLE t2 (id INTEGER);",
				"0001-extra.down.sql":   "DROP TABLE t2;",
			},
			expErr: "migration id 1 is already used by",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := memoryfs.New()
			writeMigrationFiles(t, fsys, "/migrations", tt.files)

			migrations, err := migrator.LoadMigrations(fsys, "/migrations")
			if tt.expErr != "" {
				require.Error(t, err)
				var loadErr *migrator.LoadError
				require.ErrorAs(t, err, &loadErr)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}

			require.NoError(t, err)
			names := make([]string, len(migrations))
			for i, m := range migrations {
				names[i] = m.Name
				assert.NotNil(t, m.Up)
				assert.NotNil(t, m.Down)
			}
			assert.Equal(t, tt.expNames, names)
		})
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	t.Parallel()
	fsys := memoryfs.New()

	_, err := migrator.LoadMigrations(fsys, "/nonexistent")
	assert.ErrorContains(t, err, "failed reading migrations directory '/nonexistent'")
}

func TestLoadMigrationsParsesIDAndLabel(t *testing.T) {
	t.Parallel()
	fsys := memoryfs.New()
	writeMigrationFiles(t, fsys, "/migrations", map[string]string{
		"20230101100000-create-users.up.sql":   "CREATE TABLE users (id INTEGER);",
		"20230101100000-create-users.down.sql": "DROP TABLE users;",
	})

	migrations, err := migrator.LoadMigrations(fsys, "/migrations")
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, uint64(20230101100000), migrations[0].ID)
	assert.Equal(t, "create-users", migrations[0].Label)
	assert.Equal(t, "20230101100000-create-users", migrations[0].Name)
}
