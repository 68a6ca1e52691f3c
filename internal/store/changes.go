package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/numberdesk/internal/record"
)

// Outcome is the result of a status change attempt.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeFailed   Outcome = "failed"
	OutcomeDeclined Outcome = "declined"
)

// Change is one journaled status change attempt.
type Change struct {
	ID        string        `json:"id"`
	Seq       int64         `json:"seq"`
	RowIndex  int           `json:"row_index"`
	MSISDN    string        `json:"msisdn"`
	OldStatus record.Status `json:"old_status"`
	NewStatus record.Status `json:"new_status"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// AppendChange writes c to the journal.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) AppendChange(ctx context.Context, c Change) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO changes
		(id, seq, row_index, msisdn, old_status, new_status, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ID,
		c.Seq,
		c.RowIndex,
		c.MSISDN,
		string(c.OldStatus),
		string(c.NewStatus),
		string(c.Outcome),
		c.Error,
		c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append change: %w", err)
	}
	return nil
}

// ListChanges returns up to limit changes, newest first.
// A non-positive limit returns every change.
// Returns an empty slice (not nil) when the journal is empty.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, row_index, msisdn, old_status, new_status, outcome, error, created_at
		FROM changes
		ORDER BY created_at DESC, seq DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var (
			c                    Change
			oldStatus, newStatus string
			outcome              string
			createdAt            int64
		)
		if err := rows.Scan(&c.ID, &c.Seq, &c.RowIndex, &c.MSISDN, &oldStatus, &newStatus, &outcome, &c.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.OldStatus = record.Status(oldStatus)
		c.NewStatus = record.Status(newStatus)
		c.Outcome = Outcome(outcome)
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}

	return changes, nil
}
