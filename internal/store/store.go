// Package store maintains the client-side canonical notification list.
//
// The list is fed by two independent sources that must never produce
// visible duplicates or lost updates: a paginated REST snapshot and a
// live stream of push-delivered notifications. The merge is keyed by
// notification identity; on collision the fetched, server-authoritative
// copy wins for every field except an unread-to-read transition the
// client already applied optimistically.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/stocktray/stocktray/internal/alert"
	"github.com/stocktray/stocktray/internal/api"
	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/logging"
)

// Phase describes the store's relationship to its two sources.
type Phase string

const (
	// PhaseUninitialized is the initial and post-teardown state.
	PhaseUninitialized Phase = "uninitialized"
	// PhaseSyncing means the initial snapshot or channel connect is in
	// flight.
	PhaseSyncing Phase = "syncing"
	// PhaseLive means the snapshot is loaded and the channel connected.
	PhaseLive Phase = "live"
	// PhaseDegraded means the channel is down; the store serves the
	// last-known state and still accepts manual refreshes.
	PhaseDegraded Phase = "degraded"
)

// Fetcher is the REST surface the store depends on.
type Fetcher interface {
	ListNotifications(ctx context.Context, page, limit int, filter domain.Filter) (api.Snapshot, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// Persister mirrors the reconciled list to local storage.
type Persister interface {
	Save(notifications []domain.Notification) error
}

// Options configure a Store.
type Options struct {
	Client   Fetcher
	Notifier alert.Notifier
	Cache    Persister
	Logger   logging.Logger
	PageSize int
}

// Store is the single owner of the notification sequence and unread
// counter. All mutation goes through its methods; a single mutex
// serializes every read-modify-write.
type Store struct {
	client   Fetcher
	notifier alert.Notifier
	cache    Persister
	logger   logging.Logger
	pageSize int

	mu             sync.Mutex
	began          bool
	connected      bool
	snapshotLoaded bool
	notifications  []domain.Notification
	known          map[string]bool
	// pushedOnly tracks identities delivered by push and not yet seen
	// in any snapshot; they survive a page-1 rebuild.
	pushedOnly map[string]bool
	// pendingRead tracks optimistic read flips not yet confirmed by the
	// server; a snapshot must not revert them.
	pendingRead map[string]bool
	unread      int
	lastErr     error

	onChange func()
}

// New creates an uninitialized Store.
func New(opts Options) *Store {
	if opts.Notifier == nil {
		opts.Notifier = alert.Noop()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	return &Store{
		client:      opts.Client,
		notifier:    opts.Notifier,
		cache:       opts.Cache,
		logger:      opts.Logger,
		pageSize:    opts.PageSize,
		known:       make(map[string]bool),
		pushedOnly:  make(map[string]bool),
		pendingRead: make(map[string]bool),
	}
}

// SetOnChange registers a callback invoked after every accepted
// mutation, outside the store lock. Used by the TUI to refresh.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notifyChange() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Begin marks the session as started: the store leaves Uninitialized
// and enters Syncing until the first snapshot lands.
func (s *Store) Begin() {
	s.mu.Lock()
	s.began = true
	s.mu.Unlock()
}

// Teardown resets the store to Uninitialized, dropping all state. Used
// on logout and unmount.
func (s *Store) Teardown() {
	s.mu.Lock()
	s.began = false
	s.connected = false
	s.snapshotLoaded = false
	s.notifications = nil
	s.known = make(map[string]bool)
	s.pushedOnly = make(map[string]bool)
	s.pendingRead = make(map[string]bool)
	s.unread = 0
	s.lastErr = nil
	s.mu.Unlock()
}

// SetConnected records channel health. The notification sequence and
// counter are untouched: a disconnect only degrades the phase.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
	s.notifyChange()
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.began:
		return PhaseUninitialized
	case !s.snapshotLoaded:
		return PhaseSyncing
	case s.connected:
		return PhaseLive
	default:
		return PhaseDegraded
	}
}

// Notifications returns a copy of the reconciled sequence, most recent
// first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// UnreadCount returns the unread counter. Maintained incrementally
// under push and mark-read; recomputed at every snapshot boundary.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Err returns the most recent operation error, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LoadSnapshot fetches one page from the REST store and merges it into
// the sequence. Page 1 rebuilds the list from the server page while
// retaining push-delivered entries the page does not cover; later pages
// append in order. Returns whether more pages may exist.
//
// A failed fetch leaves the store's contents untouched and is returned
// to the caller.
func (s *Store) LoadSnapshot(ctx context.Context, page int, filter domain.Filter) (bool, error) {
	snap, err := s.client.ListNotifications(ctx, page, s.pageSize, filter)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("snapshot fetch failed", "page", page, "error", err.Error())
		return false, err
	}

	s.mu.Lock()
	if page == 1 {
		s.applyFirstPage(snap.Notifications)
	} else {
		s.appendPage(snap.Notifications)
	}
	s.snapshotLoaded = true
	s.lastErr = nil
	// Snapshot boundary: reconcile the incremental counter.
	s.unread = domain.CountUnread(s.notifications)
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
	s.logger.Debug("snapshot merged", "page", page, "count", len(snap.Notifications))
	return len(snap.Notifications) == s.pageSize, nil
}

// applyFirstPage rebuilds the sequence from the server page. Entries
// known only from the push stream and absent from the page are kept in
// front, in their existing order, so a concurrent push is never lost.
func (s *Store) applyFirstPage(fetched []domain.Notification) {
	inPage := make(map[string]bool, len(fetched))
	for _, n := range fetched {
		inPage[n.ID] = true
	}

	var retained []domain.Notification
	for _, existing := range s.notifications {
		if s.pushedOnly[existing.ID] && !inPage[existing.ID] {
			retained = append(retained, existing)
		}
	}

	merged := make([]domain.Notification, 0, len(retained)+len(fetched))
	merged = append(merged, retained...)
	for _, n := range fetched {
		merged = append(merged, s.reconcileFetched(n))
	}

	s.notifications = merged
	s.known = make(map[string]bool, len(merged))
	for _, n := range merged {
		s.known[n.ID] = true
	}
}

// appendPage grows the sequence with a later page, preserving prior
// order and skipping identities already present.
func (s *Store) appendPage(fetched []domain.Notification) {
	for _, n := range fetched {
		if s.known[n.ID] {
			// The fetched copy is authoritative: update in place.
			for i := range s.notifications {
				if s.notifications[i].ID == n.ID {
					s.notifications[i] = s.reconcileFetched(n)
					break
				}
			}
			continue
		}
		s.notifications = append(s.notifications, s.reconcileFetched(n))
		s.known[n.ID] = true
	}
}

// reconcileFetched applies the collision rule to a server copy: the
// fetched copy wins for all fields except an optimistic unread-to-read
// transition, which is preserved until the server confirms it.
func (s *Store) reconcileFetched(n domain.Notification) domain.Notification {
	if s.pendingRead[n.ID] {
		if n.Read {
			// Server caught up; the optimistic flip is confirmed.
			delete(s.pendingRead, n.ID)
		} else {
			n.Read = true
		}
	}
	// Seen in a snapshot: no longer a push-only entry.
	delete(s.pushedOnly, n.ID)
	return n
}

// IngestPushed merges one push-delivered notification. A duplicate
// identity is a no-op; a genuinely new notification is prepended, the
// unread counter grows by exactly one, and a desktop alert fires exactly
// once.
func (s *Store) IngestPushed(n domain.Notification) bool {
	s.mu.Lock()
	if s.known[n.ID] {
		s.mu.Unlock()
		return false
	}
	// Push-delivered notifications are unread by construction.
	n.Read = false
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	s.known[n.ID] = true
	s.pushedOnly[n.ID] = true
	s.unread++
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Notify(n.ID, n.Title, n.Message)
	s.notifyChange()
	s.logger.Debug("pushed notification ingested", "id", n.ID, "category", n.Category.String())
	return true
}

// MarkRead optimistically flips one notification to read and asks the
// server to do the same. The local flip is never rolled back; a failed
// confirmation is returned so the caller may retry.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	flipped := false
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		flipped = s.notifications[i].MarkRead()
		break
	}
	if flipped {
		if s.unread > 0 {
			s.unread--
		}
		s.pendingRead[id] = true
		s.persistLocked()
	}
	s.mu.Unlock()

	if !flipped {
		// Unknown or already read: idempotent no-op locally, and the
		// server is not asked again.
		return nil
	}
	s.notifyChange()

	if err := s.client.MarkRead(ctx, id); err != nil {
		s.mu.Lock()
		s.lastErr = fmt.Errorf("mark-read confirmation failed for %s: %w", id, err)
		err = s.lastErr
		s.mu.Unlock()
		s.logger.Warn("mark-read confirmation failed", "id", id, "error", err.Error())
		return err
	}

	s.mu.Lock()
	delete(s.pendingRead, id)
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// MarkAllRead optimistically flips every known notification to read,
// zeroes the counter, and requests the bulk operation server-side. Same
// no-rollback policy as MarkRead.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	changed := false
	for i := range s.notifications {
		if s.notifications[i].MarkRead() {
			s.pendingRead[s.notifications[i].ID] = true
			changed = true
		}
	}
	s.unread = 0
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notifyChange()
	}

	if err := s.client.MarkAllRead(ctx); err != nil {
		s.mu.Lock()
		s.lastErr = fmt.Errorf("mark-all-read confirmation failed: %w", err)
		err = s.lastErr
		s.mu.Unlock()
		s.logger.Warn("mark-all-read confirmation failed", "error", err.Error())
		return err
	}

	s.mu.Lock()
	s.pendingRead = make(map[string]bool)
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// persistLocked mirrors the sequence to the cache. Callers hold s.mu.
// Cache failures are logged, never propagated: the in-memory view is
// authoritative within the session.
func (s *Store) persistLocked() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(s.notifications); err != nil {
		s.logger.Warn("cache write failed", "error", err.Error())
	}
}

// RestoreFromCache seeds the sequence from previously persisted state,
// before any snapshot has loaded. No-op once live data is present.
func (s *Store) RestoreFromCache(notifications []domain.Notification) {
	s.mu.Lock()
	if s.snapshotLoaded || len(s.notifications) > 0 {
		s.mu.Unlock()
		return
	}
	seen := make(map[string]bool, len(notifications))
	var restored []domain.Notification
	for _, n := range notifications {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		restored = append(restored, n)
	}
	s.notifications = restored
	s.known = seen
	s.unread = domain.CountUnread(restored)
	s.mu.Unlock()
	s.notifyChange()
}
