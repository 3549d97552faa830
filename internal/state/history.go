package state

import (
	"context"
	"fmt"
	"time"
)

// UploadRecord captures one finished upload attempt.
type UploadRecord struct {
	ID           int64
	SessionID    string
	UploadType   string
	Filename     string
	SizeBytes    int64
	Organization string
	Status       string
	RowCount     int
	ValidRows    int
	InvalidRows  int
	ErrorMessage string
	CreatedAt    time.Time
}

// RecordUpload appends a history row for a terminal upload outcome.
func (s *Store) RecordUpload(ctx context.Context, rec UploadRecord) error {
	timestamp := rec.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	_, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO upload_history (
            session_id, upload_type, filename, size_bytes, organization,
            status, row_count, valid_rows, invalid_rows, error_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.UploadType,
		rec.Filename,
		rec.SizeBytes,
		nullableString(rec.Organization),
		rec.Status,
		rec.RowCount,
		rec.ValidRows,
		rec.InvalidRows,
		nullableString(rec.ErrorMessage),
		timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// ListUploads returns the most recent upload attempts, newest first.
func (s *Store) ListUploads(ctx context.Context, limit int) ([]UploadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, session_id, upload_type, filename, size_bytes,
                COALESCE(organization, ''), status, row_count, valid_rows,
                invalid_rows, COALESCE(error_message, ''), created_at
         FROM upload_history ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var records []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.UploadType, &rec.Filename, &rec.SizeBytes,
			&rec.Organization, &rec.Status, &rec.RowCount, &rec.ValidRows,
			&rec.InvalidRows, &rec.ErrorMessage, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan upload record: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload records: %w", err)
	}
	return records, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
