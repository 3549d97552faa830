// Package state persists workflow progress and upload history in SQLite.
//
// The Store holds two tables: workflow_state, a key/value blob store whose
// single "workflow-state" row is read-modify-written whole on every
// orchestrator mutation, and upload_history, one row per finished upload
// attempt. A file lock guards the database so a second debtwatch process
// cannot race the single-writer blob.
//
// The database is working state, not an archive. Schema changes bump the
// version in schema.go; users clear the database to adopt the new schema.
package state
