package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WorkflowStateKey is the durable key the orchestrator's state blob lives
// under.
const WorkflowStateKey = "workflow-state"

// LoadWorkflowState returns the persisted workflow-state blob. The second
// return value reports whether an entry exists.
func (s *Store) LoadWorkflowState(ctx context.Context) ([]byte, bool, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM workflow_state WHERE key = ?", WorkflowStateKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load workflow state: %w", err)
	}
	return []byte(payload), true, nil
}

// SaveWorkflowState replaces the persisted workflow-state blob.
func (s *Store) SaveWorkflowState(ctx context.Context, payload []byte) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO workflow_state (key, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		WorkflowStateKey, string(payload), timestamp,
	)
	if err != nil {
		return fmt.Errorf("save workflow state: %w", err)
	}
	return nil
}

// ClearWorkflowState removes the persisted entry entirely.
func (s *Store) ClearWorkflowState(ctx context.Context) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		"DELETE FROM workflow_state WHERE key = ?", WorkflowStateKey,
	)
	if err != nil {
		return fmt.Errorf("clear workflow state: %w", err)
	}
	return nil
}
