package desk

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/sheet"
	"github.com/roach88/numberdesk/internal/store"
)

// DefaultRefreshInterval is the polling period when none is configured.
const DefaultRefreshInterval = 15 * time.Second

// DefaultFetchTimeout bounds a shared refresh fetch.
const DefaultFetchTimeout = sheet.DefaultTimeout

// Cache is the local persistence a Desk writes through to.
// *store.Store implements it.
type Cache interface {
	SaveSnapshot(ctx context.Context, snap store.Snapshot) error
	LatestSnapshot(ctx context.Context) (store.Snapshot, error)
	AppendChange(ctx context.Context, c store.Change) error
}

// Status describes the desk's current sequence.
type Status struct {
	Rows     int       `json:"rows"`
	Seq      int64     `json:"seq"`
	Loading  bool      `json:"loading"`
	Stale    bool      `json:"stale"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Desk owns the authoritative record sequence.
type Desk struct {
	source  sheet.Store
	engine  *query.Engine
	cache   Cache
	notices *Notices
	sinks   []Notifier
	ids     IDGenerator
	clock   *Clock
	now     func() time.Time
	timeout time.Duration
	group   singleflight.Group
	loading atomic.Int32

	mu         sync.RWMutex
	records    []record.Record
	appliedSeq int64
	loadedAt   time.Time
	stale      bool

	saveMu   sync.Mutex
	savedSeq int64
}

// Option configures a Desk.
type Option func(*Desk)

// WithCache writes applied snapshots and the change journal through to c.
func WithCache(c Cache) Option {
	return func(d *Desk) {
		d.cache = c
	}
}

// WithNotifier adds a sink that receives every notice in addition to the
// desk's own notice board.
func WithNotifier(n Notifier) Option {
	return func(d *Desk) {
		d.sinks = append(d.sinks, n)
	}
}

// WithLanguage sets the collation language used for sorting.
func WithLanguage(tag language.Tag) Option {
	return func(d *Desk) {
		d.engine = query.NewEngine(tag)
	}
}

// WithIDGenerator overrides the change id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Desk) {
		d.ids = g
	}
}

// WithClock sets the logical clock.
func WithClock(c *Clock) Option {
	return func(d *Desk) {
		d.clock = c
	}
}

// WithNow overrides the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(d *Desk) {
		d.now = now
	}
}

// WithFetchTimeout bounds each shared refresh fetch. The fetch outlives
// the caller that started it, so it needs its own deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(dk *Desk) {
		if d > 0 {
			dk.timeout = d
		}
	}
}

// New creates a Desk reading from source. The sequence is empty until Load,
// Refresh, Restore or Run succeeds.
func New(source sheet.Store, opts ...Option) *Desk {
	d := &Desk{
		source:  source,
		engine:  query.NewEngine(language.English),
		notices: NewNotices(DefaultNoticeHistory),
		ids:     UUIDv7Generator{},
		clock:   NewClock(),
		now:     time.Now,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notices returns the desk's notice board.
func (d *Desk) Notices() *Notices {
	return d.notices
}

// Engine returns the query engine.
func (d *Desk) Engine() *query.Engine {
	return d.engine
}

// Records returns a copy of the authoritative sequence.
func (d *Desk) Records() []record.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.records)
}

// Query runs p against the current sequence.
func (d *Desk) Query(p query.Params) query.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.engine.Execute(d.records, p)
}

// Status reports the state of the current sequence.
func (d *Desk) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Status{
		Rows:     len(d.records),
		Seq:      d.appliedSeq,
		Loading:  d.loading.Load() > 0,
		Stale:    d.stale,
		LoadedAt: d.loadedAt,
	}
}

// Restore seeds the sequence from the cache's last snapshot. The restored
// rows are marked stale until a fetch succeeds. Restore does nothing when
// no cache is configured, the cache is empty, or a fetch already applied.
func (d *Desk) Restore(ctx context.Context) error {
	if d.cache == nil {
		return nil
	}

	snap, err := d.cache.LatestSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		slog.Warn("failed to restore cached snapshot", "error", err)
		return err
	}

	// Keep tickets increasing across restarts. The restored rows themselves
	// stay at seq 0 so any fetch, including one already in flight, replaces
	// them.
	d.clock.AdvanceTo(snap.Seq)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.appliedSeq > 0 || d.records != nil {
		return nil
	}
	d.records = snap.Records
	d.loadedAt = snap.FetchedAt
	d.stale = true

	slog.Info("restored cached snapshot", "rows", len(snap.Records), "seq", snap.Seq)
	return nil
}

// Load fetches the full sequence and applies it unless a newer write has
// landed in the meantime. On failure the previous sequence is kept and a
// notice is posted.
func (d *Desk) Load(ctx context.Context) error {
	seq := d.clock.Next()

	d.loading.Add(1)
	defer d.loading.Add(-1)

	records, err := d.source.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The caller went away; the store is not at fault.
			slog.Debug("fetch cancelled", "seq", seq)
			return err
		}
		slog.Warn("fetch failed", "seq", seq, "error", err)
		d.notify(NoticeFetchFailed, MsgLoadFailed, err)
		return err
	}

	if !d.apply(seq, records) {
		slog.Debug("discarding superseded fetch", "seq", seq, "rows", len(records))
		return nil
	}
	d.notices.Resolve(NoticeFetchFailed)

	slog.Debug("applied fetch", "seq", seq, "rows", len(records))
	d.saveSnapshot(ctx, seq, records)
	return nil
}

// Refresh is Load with concurrent callers sharing one in-flight fetch.
// It backs both the polling loop and the manual refresh action.
//
// The shared fetch is detached from any single caller: cancelling ctx
// returns ctx.Err() to this caller only, and the fetch completes for the
// others under the desk's fetch timeout.
func (d *Desk) Refresh(ctx context.Context) error {
	ch := d.group.DoChan("refresh", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return nil, d.Load(fctx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run loads immediately and then refreshes every interval until ctx is
// cancelled. The ticker is stopped before Run returns.
func (d *Desk) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	_ = d.Restore(ctx)
	_ = d.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("desk polling", "interval", interval)

	for {
		select {
		case <-ticker.C:
			_ = d.Refresh(ctx)
		case <-ctx.Done():
			slog.Info("desk stopping")
			return ctx.Err()
		}
	}
}

// apply swaps in records if seq is newer than the last write.
func (d *Desk) apply(seq int64, records []record.Record) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq <= d.appliedSeq {
		return false
	}
	if records == nil {
		records = []record.Record{}
	}
	d.records = records
	d.appliedSeq = seq
	d.loadedAt = d.now()
	d.stale = false
	return true
}

// saveSnapshot writes through to the cache. Saves are serialized and an
// older snapshot never replaces a newer one.
func (d *Desk) saveSnapshot(ctx context.Context, seq int64, records []record.Record) {
	if d.cache == nil {
		return
	}

	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	if seq < d.savedSeq {
		return
	}

	snap := store.Snapshot{Seq: seq, FetchedAt: d.now(), Records: records}
	if err := d.cache.SaveSnapshot(ctx, snap); err != nil {
		slog.Warn("failed to cache snapshot", "seq", seq, "error", err)
		return
	}
	d.savedSeq = seq
}

func (d *Desk) notify(kind NoticeKind, msg string, err error) {
	n := Notice{Kind: kind, Message: msg, At: d.now()}
	if err != nil {
		n.Detail = err.Error()
	}
	d.notices.Notify(n)
	for _, s := range d.sinks {
		s.Notify(n)
	}
}
