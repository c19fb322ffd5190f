package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/strata/db"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	fs             vfs.FileSystem
	stdout, stderr *bytes.Buffer
}

func newTestApp(t *testing.T, ctx context.Context) *testApp {
	t.Helper()

	// A unique name per app, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(ctx,
		fmt.Sprintf("file:strata-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	fsys := memoryfs.New()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithDB(d),
		WithContext(ctx),
		WithFDs(strings.NewReader(""), stdout, stderr),
		WithFS(fsys),
		WithLogger(false),
	}
	app, err := New("strata", "/config.json", "/data", opts...)
	require.NoError(t, err)

	return &testApp{App: app, fs: fsys, stdout: stdout, stderr: stderr}
}

// Run executes a single command, resetting the output buffers beforehand.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
}

// writeMigration writes a pair of up/down migration files directly to the
// migrations directory.
func (ta *testApp) writeMigration(t *testing.T, name, upSQL, downSQL string) {
	t.Helper()
	require.NoError(t, ta.fs.MkdirAll("migrations", 0o755))
	err := vfs.WriteFile(ta.fs,
		fmt.Sprintf("migrations/%s.up.sql", name), []byte(upSQL), 0o644)
	require.NoError(t, err)
	err = vfs.WriteFile(ta.fs,
		fmt.Sprintf("migrations/%s.down.sql", name), []byte(downSQL), 0o644)
	require.NoError(t, err)
}
