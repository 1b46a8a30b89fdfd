package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tray/internal/core/logging"
)

const (
	// MaxNotifications is the default number of simultaneously active
	// notifications.
	MaxNotifications = 4
	// DefaultDuration is used when a notification does not specify one.
	DefaultDuration = 5 * time.Second
)

// Subscriber receives the active notifications after every mutation.
type Subscriber func(Snapshot)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCapacity sets the maximum number of active notifications. Values below
// 1 are ignored.
func WithCapacity(n int) ManagerOption {
	return func(m *Manager) {
		if n >= 1 {
			m.capacity = n
		}
	}
}

// WithDefaultDuration sets the lifetime used when a notification does not
// carry its own duration.
func WithDefaultDuration(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.defaultDuration = normalizeDuration(d)
	}
}

// WithScheduler replaces the timer source used for auto-expiry.
func WithScheduler(s Scheduler) ManagerOption {
	return func(m *Manager) {
		m.scheduler = s
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// Manager is the public entry point for posting and dismissing
// notifications. All mutations of the underlying Store, together with the
// timer table, happen under a single mutex. Snapshots are queued under that
// mutex and delivered after it is released, one at a time and in version
// order, so the subscriber may call back into the Manager.
type Manager struct {
	mu              sync.Mutex
	store           *Store
	timers          map[ID]Timer
	version         uint64
	outbox          []Snapshot
	delivering      bool
	idle            *sync.Cond
	capacity        int
	defaultDuration time.Duration
	scheduler       Scheduler
	now             func() time.Time
	log             zerolog.Logger

	subMu    sync.Mutex
	sub      Subscriber
	subToken uint64
}

// NewManager creates a manager with an empty store.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		store:           NewStore(),
		timers:          make(map[ID]Timer),
		capacity:        MaxNotifications,
		defaultDuration: DefaultDuration,
		scheduler:       RealScheduler{},
		now:             time.Now,
		log:             logging.Component("notify"),
	}
	m.idle = sync.NewCond(&m.mu)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Capacity returns the maximum number of active notifications.
func (m *Manager) Capacity() int {
	return m.capacity
}

// SetDefaultDuration changes the lifetime applied to subsequent
// notifications that do not carry their own duration.
func (m *Manager) SetDefaultDuration(d time.Duration) {
	m.mu.Lock()
	m.defaultDuration = normalizeDuration(d)
	m.mu.Unlock()
}

// Notify posts a default-kind notification and returns its id.
func (m *Manager) Notify(message string, opts ...Option) ID {
	return m.NotifyKind(KindDefault, message, opts...)
}

// Success posts a success notification.
func (m *Manager) Success(message string, opts ...Option) ID {
	return m.NotifyKind(KindSuccess, message, opts...)
}

// Error posts an error notification.
func (m *Manager) Error(message string, opts ...Option) ID {
	return m.NotifyKind(KindError, message, opts...)
}

// Info posts an info notification.
func (m *Manager) Info(message string, opts ...Option) ID {
	return m.NotifyKind(KindInfo, message, opts...)
}

// Warning posts a warning notification.
func (m *Manager) Warning(message string, opts ...Option) ID {
	return m.NotifyKind(KindWarning, message, opts...)
}

// NotifyKind posts a notification of the given kind and returns its id. The
// id can later be passed to Remove, which is the only way to dismiss a
// persistent notification short of ClearAll.
func (m *Manager) NotifyKind(kind Kind, message string, opts ...Option) ID {
	if kind == "" {
		kind = KindDefault
	}
	desc := Describe(kind)

	m.mu.Lock()

	req := request{duration: m.defaultDuration}
	for _, opt := range opts {
		opt(&req)
	}
	duration := normalizeDuration(req.duration)

	id := m.store.AllocateID()
	m.store.Insert(Notification{
		ID:        id,
		Kind:      kind,
		Message:   message,
		Icon:      desc.Icon,
		Style:     desc.Style,
		Duration:  duration,
		CreatedAt: m.now(),
	})

	evicted := m.evictLocked()
	retained := true
	for _, n := range evicted {
		m.stopTimerLocked(n.ID)
		if n.ID == id {
			retained = false
		}
	}

	if retained && duration > 0 {
		m.timers[id] = m.scheduler.AfterFunc(duration, func() {
			m.Remove(id)
		})
	}

	m.queueSnapshotLocked()
	m.mu.Unlock()

	m.log.Debug().
		Int64("notification_id", int64(id)).
		Str("kind", string(kind)).
		Dur("duration", duration).
		Int("evicted", len(evicted)).
		Msg("notification added")

	m.deliver()
	return id
}

// Remove dismisses the notification with the given id and cancels its
// pending expiry. Removing an unknown or already removed id is a no-op. It
// returns true when a notification was removed.
func (m *Manager) Remove(id ID) bool {
	m.mu.Lock()
	m.stopTimerLocked(id)
	removed := m.store.RemoveByID(id)
	if removed {
		m.queueSnapshotLocked()
	}
	m.mu.Unlock()

	if !removed {
		return false
	}

	m.log.Debug().Int64("notification_id", int64(id)).Msg("notification removed")
	m.deliver()
	return true
}

// ClearAll removes every active notification and cancels all pending
// expiries.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.stopAllTimersLocked()
	m.store.ReplaceAll(nil)
	m.queueSnapshotLocked()
	m.mu.Unlock()

	m.log.Debug().Msg("notifications cleared")
	m.deliver()
}

// Snapshot returns the current active notifications without publishing.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Version: m.version, Items: m.store.Snapshot()}
}

// Pending returns the number of scheduled expiries.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Flush blocks until every queued snapshot has been handed to the
// subscriber. It must not be called from inside the subscriber.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.delivering || len(m.outbox) > 0 {
		m.idle.Wait()
	}
}

// Subscribe installs fn as the single subscriber, replacing any previous
// one. The returned function detaches fn if it is still the active
// subscriber.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	if m.sub != nil {
		m.log.Warn().Msg("replacing active subscriber")
	}

	m.subToken++
	token := m.subToken
	m.sub = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if m.subToken == token {
			m.sub = nil
		}
	}
}

// Close cancels all pending expiries and detaches the subscriber. Active
// notifications are left in place.
func (m *Manager) Close() {
	m.mu.Lock()
	m.stopAllTimersLocked()
	m.mu.Unlock()

	m.subMu.Lock()
	m.sub = nil
	m.subToken++
	m.subMu.Unlock()
}

// evictLocked enforces the capacity on the post-insertion collection. It
// keeps the most recently created records, breaking CreatedAt ties in favor
// of later insertions, and preserves insertion order among the survivors.
func (m *Manager) evictLocked() []Notification {
	items := m.store.Snapshot()
	if len(items) <= m.capacity {
		return nil
	}

	rank := make([]int, len(items))
	for i := range rank {
		rank[i] = i
	}
	slices.SortFunc(rank, func(a, b int) int {
		ta, tb := items[a].CreatedAt, items[b].CreatedAt
		switch {
		case ta.After(tb):
			return -1
		case tb.After(ta):
			return 1
		}
		return b - a
	})

	keep := make([]bool, len(items))
	for _, i := range rank[:m.capacity] {
		keep[i] = true
	}

	retained := make([]Notification, 0, m.capacity)
	var evicted []Notification
	for i, n := range items {
		if keep[i] {
			retained = append(retained, n)
		} else {
			evicted = append(evicted, n)
		}
	}

	m.store.ReplaceAll(retained)
	return evicted
}

func (m *Manager) stopTimerLocked(id ID) {
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) stopAllTimersLocked() {
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) queueSnapshotLocked() {
	m.version++
	m.outbox = append(m.outbox, Snapshot{Version: m.version, Items: m.store.Snapshot()})
}

// deliver drains the outbox. Only one goroutine delivers at a time; callers
// that find a delivery in progress leave their snapshot to it, which keeps
// the subscriber seeing versions in order.
func (m *Manager) deliver() {
	m.mu.Lock()
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true

	for len(m.outbox) > 0 {
		snap := m.outbox[0]
		m.outbox = m.outbox[1:]
		m.mu.Unlock()

		m.subMu.Lock()
		fn := m.sub
		m.subMu.Unlock()
		if fn != nil {
			fn(snap)
		}

		m.mu.Lock()
	}

	m.delivering = false
	m.idle.Broadcast()
	m.mu.Unlock()
}
