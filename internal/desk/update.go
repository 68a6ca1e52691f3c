package desk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/store"
)

var (
	// ErrDeclined is returned when the confirmation for a change is refused.
	ErrDeclined = errors.New("status change declined")

	// ErrRowNotFound is returned for an index outside the loaded sequence.
	ErrRowNotFound = errors.New("row not found")
)

// ChangeRequest describes a pending status change presented for
// confirmation.
type ChangeRequest struct {
	Index     int           `json:"index"`
	Record    record.Record `json:"record"`
	NewStatus record.Status `json:"new_status"`
}

// Confirmer asks the user to approve a risky change. It returns false to
// abort. A nil Confirmer declines.
type Confirmer func(ctx context.Context, req ChangeRequest) bool

// Confirmed returns a Confirmer with a fixed answer, for callers that
// collected the user's decision up front.
func Confirmed(answer bool) Confirmer {
	return func(context.Context, ChangeRequest) bool {
		return answer
	}
}

// NeedsConfirmation reports whether moving to s requires a Confirmer.
func NeedsConfirmation(s record.Status) bool {
	return s == record.StatusReserved
}

// RequestStatusChange sets the call-center status of the row at index in
// the authoritative sequence (not a position in a filtered or paginated
// view).
//
// Changing to Reserved requires confirm to approve first; declining returns
// ErrDeclined with no side effect on the sequence or the record store. On a
// persist failure a notice is posted, the full sequence is reloaded, and
// the store error is returned. On success the in-memory record is updated.
//
// The returned Change describes the attempt; it is also journaled when a
// cache is configured.
func (d *Desk) RequestStatusChange(ctx context.Context, index int, status record.Status, confirm Confirmer) (store.Change, error) {
	if !status.Valid() {
		return store.Change{}, fmt.Errorf("invalid status %q", status)
	}

	d.mu.RLock()
	if index < 0 || index >= len(d.records) {
		n := len(d.records)
		d.mu.RUnlock()
		return store.Change{}, fmt.Errorf("%w: index %d of %d", ErrRowNotFound, index, n)
	}
	current := d.records[index]
	d.mu.RUnlock()

	change := store.Change{
		ID:        d.ids.Generate(),
		RowIndex:  index,
		MSISDN:    current.MSISDN,
		OldStatus: current.CallCenterStatus,
		NewStatus: status,
	}

	if NeedsConfirmation(status) {
		req := ChangeRequest{Index: index, Record: current, NewStatus: status}
		if confirm == nil || !confirm(ctx, req) {
			slog.Info("status change declined", "row", index, "status", status)
			change.Outcome = store.OutcomeDeclined
			d.journal(ctx, &change)
			return change, ErrDeclined
		}
	}

	if err := d.source.UpdateStatus(ctx, index, status); err != nil {
		slog.Warn("status update failed", "row", index, "status", status, "error", err)
		d.notify(NoticeUpdateFailed, MsgUpdateFailed, err)
		change.Outcome = store.OutcomeFailed
		change.Error = err.Error()
		d.journal(ctx, &change)

		// Resynchronize with the store. Load reports its own failure.
		_ = d.Load(ctx)
		return change, err
	}

	d.applyStatus(index, status)
	d.notices.Resolve(NoticeUpdateFailed)

	slog.Info("status updated", "row", index, "msisdn", current.MSISDN, "status", status)
	change.Outcome = store.OutcomeApplied
	d.journal(ctx, &change)
	return change, nil
}

// applyStatus records a persisted change. It counts as a write, so fetches
// that started before it are treated as superseded.
func (d *Desk) applyStatus(index int, status record.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.appliedSeq = d.clock.Next()
	if index < len(d.records) {
		// Copy on write: Records() and cached snapshots share the old slice.
		next := make([]record.Record, len(d.records))
		copy(next, d.records)
		next[index] = next[index].WithStatus(status)
		d.records = next
	}
}

func (d *Desk) journal(ctx context.Context, c *store.Change) {
	c.Seq = d.clock.Next()
	c.CreatedAt = d.now().UTC()
	if d.cache == nil {
		return
	}
	if err := d.cache.AppendChange(ctx, *c); err != nil {
		slog.Warn("failed to journal change", "id", c.ID, "error", err)
	}
}
