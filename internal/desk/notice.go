package desk

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// NoticeKind categorizes user-visible notices.
type NoticeKind string

const (
	NoticeFetchFailed  NoticeKind = "fetch_failed"
	NoticeUpdateFailed NoticeKind = "update_failed"
)

// User-facing notice messages.
const (
	MsgLoadFailed   = "Failed to load data. Please try again."
	MsgUpdateFailed = "Failed to update status. Please try again."
)

// Notice is a user-visible failure report.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
	At      time.Time  `json:"at"`
}

// Notifier receives every notice a Desk posts.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// DefaultNoticeHistory is how many notices Notices keeps.
const DefaultNoticeHistory = 50

// Notices keeps recent notices and the currently active one per kind.
// A notice stays active until it is resolved (a later success of the same
// kind) or dismissed.
//
// Thread-safety: all methods are safe for concurrent use.
type Notices struct {
	mu      sync.Mutex
	history []Notice
	active  map[NoticeKind]Notice
	max     int
}

// NewNotices creates a notice board keeping up to limit notices of history.
func NewNotices(limit int) *Notices {
	if limit <= 0 {
		limit = DefaultNoticeHistory
	}
	return &Notices{
		active: make(map[NoticeKind]Notice),
		max:    limit,
	}
}

// Notify records n and makes it the active notice of its kind.
func (b *Notices) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, n)
	if len(b.history) > b.max {
		b.history = slices.Delete(b.history, 0, len(b.history)-b.max)
	}
	b.active[n.Kind] = n
}

// Resolve clears the active notice of kind.
func (b *Notices) Resolve(kind NoticeKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, kind)
}

// Dismiss clears every active notice.
func (b *Notices) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.active)
}

// Active returns the active notices, oldest first.
func (b *Notices) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Notice, 0, len(b.active))
	for _, n := range b.active {
		out = append(out, n)
	}
	slices.SortFunc(out, func(x, y Notice) int {
		if c := x.At.Compare(y.At); c != 0 {
			return c
		}
		return cmp.Compare(x.Kind, y.Kind)
	})
	return out
}

// History returns recent notices, oldest first.
func (b *Notices) History() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.history)
}
