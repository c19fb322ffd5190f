// Package migrator provides functionality to manage database schema migrations.
//
// Features:
// - Supports both forward (`up`) and rollback (`down`) migrations
// - Loads SQL migration files from a filesystem with structured naming (`{id}-{label}.{up|down}.sql`)
// - Tracks migration history in a dedicated database table
// - Executes migration plans to a target state or "all" migrations
// - Maintains chronological migration history with timestamps
//
// Each migration runs inside its own transaction, together with the ledger
// write that records it, so a migration and its history entry commit or roll
// back as one. Applying is strictly sequential and assumes a single writer;
// a run that fails part-way leaves earlier migrations applied and recorded,
// and reports the failed migration to the caller. Re-running after fixing
// the cause resumes from the first unapplied migration.
package migrator
