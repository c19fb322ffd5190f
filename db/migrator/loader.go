package migrator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// LoadMigrations discovers migration files in dir on the given filesystem,
// and returns the assembled migrations sorted ascending by name. Every
// migration must consist of exactly one "{id}-{label}.up.sql" and one
// "{id}-{label}.down.sql" file; `.sql` files that don't match this pattern,
// incomplete pairs, and id collisions between differently labelled
// migrations result in a LoadError. Files without the `.sql` extension are
// ignored.
func LoadMigrations(fsys vfs.FileSystem, dir string) ([]*Migration, error) {
	entries, err := vfs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory '%s': %w", dir, err)
	}

	type unit struct {
		m        *Migration
		up, down string // file names, for error reporting
	}
	units := map[string]*unit{}
	ids := map[uint64]string{}

	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, ".sql") {
			continue
		}

		match := migrationFileRx.FindStringSubmatch(fileName)
		if match == nil {
			return nil, &LoadError{File: fileName,
				Msg: "file name must be in the format '{id}-{label}.{up|down}.sql'"}
		}

		id, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, &LoadError{File: fileName, Msg: "invalid migration id", Err: err}
		}
		name := fmt.Sprintf("%s-%s", match[1], match[2])

		if prevName, ok := ids[id]; ok && prevName != name {
			return nil, &LoadError{File: fileName,
				Msg: fmt.Sprintf("migration id %d is already used by '%s'", id, prevName)}
		}
		ids[id] = name

		u, ok := units[name]
		if !ok {
			u = &unit{m: &Migration{Name: name, ID: id, Label: match[2]}}
			units[name] = u
		}

		contents, err := vfs.ReadFile(fsys, filepath.Join(dir, fileName))
		if err != nil {
			return nil, &LoadError{File: fileName, Msg: "failed reading file", Err: err}
		}

		switch match[3] {
		case "up":
			u.m.Up = sqlProcedure(string(contents))
			u.up = fileName
		case "down":
			u.m.Down = sqlProcedure(string(contents))
			u.down = fileName
		}
	}

	migrations := make([]*Migration, 0, len(units))
	for name, u := range units {
		if u.m.Up == nil {
			return nil, &LoadError{File: u.down,
				Msg: fmt.Sprintf("migration '%s' is missing its up file", name)}
		}
		if u.m.Down == nil {
			return nil, &LoadError{File: u.up,
				Msg: fmt.Sprintf("migration '%s' is missing its down file", name)}
		}
		migrations = append(migrations, u.m)
	}

	// The ids are fixed-width timestamps, so the lexicographic order of the
	// names is also their chronological order.
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}
