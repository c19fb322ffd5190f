package migrator

import "fmt"

// LoadError represents a failure to assemble a valid migration set from a
// directory, due to a malformed file name, a missing up or down counterpart,
// or a duplicate migration.
type LoadError struct {
	File string
	Msg  string
	Err  error
}

// Error returns a string representation of the error.
func (e LoadError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("failed loading migration file '%s': %s", e.File, msg)
}

// Unwrap returns the underlying error for error unwrapping.
func (e LoadError) Unwrap() error {
	return e.Err
}

// MigrationError represents a failure of a single migration procedure. The
// run stops at the failed migration; changes made by it are rolled back,
// while migrations processed earlier in the run remain in effect.
type MigrationError struct {
	Name      string
	Direction MigrationDirection
	Err       error
}

// Error returns a string representation of the error.
func (e MigrationError) Error() string {
	return fmt.Sprintf("migration '%s' failed during %s: %s", e.Name, e.Direction, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e MigrationError) Unwrap() error {
	return e.Err
}
