package cli

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/db/types"
)

// labelRx restricts migration labels to characters that are safe in file
// names on all platforms.
var labelRx = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// The Create command generates a new pair of timestamped up/down migration
// files in the migrations directory.
type Create struct {
	Label string `arg:"" help:"A short label describing the schema change, e.g. 'create-users'."`
}

// Run the create command.
func (c *Create) Run(appCtx *actx.Context) error {
	if !labelRx.MatchString(c.Label) {
		return types.InvalidInputError{Msg: fmt.Sprintf(
			"invalid migration label '%s'; use only letters, digits, '.', '_' and '-'", c.Label)}
	}

	dir := appCtx.Config.Migrations.Dir.V
	if err := appCtx.FS.MkdirAll(dir, 0o755); err != nil {
		return aerrors.NewWithCause("failed creating migrations directory", err, "dir", dir)
	}

	name := fmt.Sprintf("%s-%s", appCtx.TimeNow().UTC().Format("20060102150405"), c.Label)
	for _, direction := range []string{"up", "down"} {
		fileName := fmt.Sprintf("%s.%s.sql", name, direction)
		path := filepath.Join(dir, fileName)
		if _, err := appCtx.FS.Stat(path); err == nil {
			return types.DuplicateError{ModelName: "migration file", ID: fmt.Sprintf("path '%s'", path)}
		}

		skeleton := fmt.Sprintf("-- %s\n-- Statements applied by 'strata %s'.\n", fileName, direction)
		if err := vfs.WriteFile(appCtx.FS, path, []byte(skeleton), 0o644); err != nil {
			return aerrors.NewWithCause("failed writing migration file", err, "path", path)
		}

		fmt.Fprintf(appCtx.Stdout, "Created %s\n", path)
	}

	return nil
}
