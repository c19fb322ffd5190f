package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/strata/app/config"
	"go.hackfix.me/strata/db"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context  // global context
	FS      vfs.FileSystem   // filesystem
	Logger  *slog.Logger     // global logger
	DB      *db.DB           // database the migrations are run against
	Config  *config.Config   // application configuration
	TimeNow func() time.Time // current time function

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
	// VersionInit is the version the database was initialized with, or empty
	// if it wasn't initialized.
	VersionInit string
}
