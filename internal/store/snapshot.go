package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/numberdesk/internal/record"
)

// ErrNoSnapshot is returned by LatestSnapshot when nothing has been cached.
var ErrNoSnapshot = errors.New("no cached snapshot")

// Snapshot is a cached record sequence.
type Snapshot struct {
	Seq       int64
	FetchedAt time.Time
	Records   []record.Record
}

// SaveSnapshot replaces the cached snapshot in a single transaction.
// Row order is preserved through row_index.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows`); err != nil {
		return fmt.Errorf("save snapshot: clear rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_rows
		(row_index, assign_date, msisdn, category, status, back_office_status, date, owner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range snap.Records {
		if _, err := stmt.ExecContext(ctx,
			i,
			r.AssignDate,
			r.MSISDN,
			r.Category,
			string(r.CallCenterStatus),
			r.BackOfficeStatus,
			r.Date,
			r.Owner,
		); err != nil {
			return fmt.Errorf("save snapshot: row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, seq, fetched_at, row_count)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seq = excluded.seq,
			fetched_at = excluded.fetched_at,
			row_count = excluded.row_count
	`, snap.Seq, snap.FetchedAt.UnixMilli(), len(snap.Records)); err != nil {
		return fmt.Errorf("save snapshot: meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// LatestSnapshot returns the cached snapshot, or ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap      Snapshot
		fetchedAt int64
		count     int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, fetched_at, row_count FROM snapshot_meta WHERE id = 1
	`).Scan(&snap.Seq, &fetchedAt, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot meta: %w", err)
	}
	snap.FetchedAt = time.UnixMilli(fetchedAt).UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT assign_date, msisdn, category, status, back_office_status, date, owner
		FROM snapshot_rows
		ORDER BY row_index ASC
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshot rows: %w", err)
	}
	defer rows.Close()

	snap.Records = make([]record.Record, 0, count)
	for rows.Next() {
		var (
			r      record.Record
			status string
		)
		if err := rows.Scan(&r.AssignDate, &r.MSISDN, &r.Category, &status, &r.BackOfficeStatus, &r.Date, &r.Owner); err != nil {
			return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		r.CallCenterStatus = record.Status(status)
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	if len(snap.Records) != count {
		return Snapshot{}, fmt.Errorf("snapshot has %d rows, expected %d", len(snap.Records), count)
	}
	return snap, nil
}
