package notify_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/notify/notifytest"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts ...notify.ManagerOption) (*notify.Manager, *notifytest.Scheduler) {
	t.Helper()

	sched := notifytest.NewScheduler(epoch)
	base := []notify.ManagerOption{
		notify.WithScheduler(sched),
		notify.WithClock(sched.Now),
		notify.WithLogger(zerolog.Nop()),
	}
	m := notify.NewManager(append(base, opts...)...)
	t.Cleanup(m.Close)
	return m, sched
}

func messages(s notify.Snapshot) []string {
	out := make([]string, 0, len(s.Items))
	for _, n := range s.Items {
		out = append(out, n.Message)
	}
	return out
}

func TestManager_example_scenario(t *testing.T) {
	m, _ := newTestManager(t)

	a := m.NotifyKind(notify.KindInfo, "A", notify.WithDuration(5000*time.Millisecond))
	assert.Equal(t, notify.ID(0), a)
	assert.Equal(t, []string{"A"}, messages(m.Snapshot()))

	b := m.NotifyKind(notify.KindError, "B", notify.Persistent())
	assert.Equal(t, notify.ID(1), b)
	assert.Equal(t, []string{"A", "B"}, messages(m.Snapshot()))

	assert.True(t, m.Remove(a))
	assert.Equal(t, []string{"B"}, messages(m.Snapshot()))

	m.ClearAll()
	assert.Empty(t, m.Snapshot().Items)
}

func TestManager_record_fields(t *testing.T) {
	m, sched := newTestManager(t)

	id := m.Warning("disk almost full")
	snap := m.Snapshot()
	require.Len(t, snap.Items, 1)

	n := snap.Items[0]
	assert.Equal(t, id, n.ID)
	assert.Equal(t, notify.KindWarning, n.Kind)
	assert.Equal(t, "disk almost full", n.Message)
	assert.Equal(t, notify.Describe(notify.KindWarning).Icon, n.Icon)
	assert.Equal(t, notify.StyleWarning, n.Style)
	assert.Equal(t, notify.DefaultDuration, n.Duration)
	assert.Equal(t, sched.Now(), n.CreatedAt)
}

func TestManager_shorthands_fix_kind(t *testing.T) {
	m, _ := newTestManager(t)

	m.Success("s")
	m.Error("e")
	m.Info("i")
	m.Notify("d")

	kinds := []notify.Kind{}
	for _, n := range m.Snapshot().Items {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []notify.Kind{notify.KindSuccess, notify.KindError, notify.KindInfo, notify.KindDefault}, kinds)
}

func TestManager_unknown_kind_uses_default_descriptor(t *testing.T) {
	m, _ := newTestManager(t)

	m.NotifyKind(notify.Kind("sparkly"), "x")
	m.NotifyKind("", "y")

	items := m.Snapshot().Items
	require.Len(t, items, 2)
	assert.Equal(t, notify.Kind("sparkly"), items[0].Kind)
	assert.Equal(t, notify.StyleMuted, items[0].Style)
	assert.Equal(t, notify.KindDefault, items[1].Kind)
}

func TestManager_auto_expiry(t *testing.T) {
	m, sched := newTestManager(t)

	id := m.Info("bye", notify.WithDuration(2*time.Second))
	assert.True(t, m.Snapshot().Has(id))
	assert.Equal(t, 1, m.Pending())

	sched.Advance(2*time.Second - time.Millisecond)
	assert.True(t, m.Snapshot().Has(id), "still present just before deadline")

	sched.Advance(time.Millisecond)
	assert.False(t, m.Snapshot().Has(id), "expired at deadline")
	assert.Equal(t, 0, m.Pending())
}

func TestManager_default_duration(t *testing.T) {
	m, sched := newTestManager(t)

	id := m.Notify("default lifetime")

	sched.Advance(notify.DefaultDuration - time.Millisecond)
	assert.True(t, m.Snapshot().Has(id))

	sched.Advance(time.Millisecond)
	assert.False(t, m.Snapshot().Has(id))
}

func TestManager_SetDefaultDuration(t *testing.T) {
	m, sched := newTestManager(t, notify.WithDefaultDuration(time.Second))

	first := m.Notify("one second")
	m.SetDefaultDuration(3 * time.Second)
	second := m.Notify("three seconds")

	sched.Advance(time.Second)
	assert.False(t, m.Snapshot().Has(first))
	assert.True(t, m.Snapshot().Has(second))

	sched.Advance(2 * time.Second)
	assert.False(t, m.Snapshot().Has(second))
}

func TestManager_persistent(t *testing.T) {
	m, sched := newTestManager(t)

	id := m.Error("sticky", notify.Persistent())
	assert.Equal(t, 0, m.Pending(), "no timer for persistent notifications")

	sched.Advance(24 * time.Hour)
	assert.True(t, m.Snapshot().Has(id))

	assert.True(t, m.Remove(id))
	assert.Empty(t, m.Snapshot().Items)
}

func TestManager_negative_duration_is_persistent(t *testing.T) {
	m, sched := newTestManager(t)

	id := m.Info("negative", notify.WithDuration(-5*time.Second))

	n := m.Snapshot().Items[0]
	assert.Equal(t, time.Duration(0), n.Duration)
	assert.True(t, n.Persistent())
	assert.Equal(t, 0, m.Pending())

	sched.Advance(time.Hour)
	assert.True(t, m.Snapshot().Has(id))
}

func TestManager_eviction_keeps_just_added(t *testing.T) {
	m, sched := newTestManager(t)

	var added []notify.ID
	for i := range 5 {
		added = append(added, m.Info(fmt.Sprintf("n%d", i)))
		sched.Advance(time.Millisecond)
	}

	snap := m.Snapshot()
	require.Len(t, snap.Items, notify.MaxNotifications)

	// Regression: the fifth (just added) record must survive eviction.
	assert.True(t, snap.Has(added[4]), "just-added notification was dropped")
	assert.False(t, snap.Has(added[0]), "oldest notification should be evicted")
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, messages(snap))
}

func TestManager_eviction_cancels_evicted_timer(t *testing.T) {
	m, sched := newTestManager(t)
	rec := &notifytest.Recorder{}
	m.Subscribe(rec.Record)

	for i := range 5 {
		m.Info(fmt.Sprintf("n%d", i))
		sched.Advance(time.Millisecond)
	}
	assert.Equal(t, notify.MaxNotifications, m.Pending())
	assert.Equal(t, notify.MaxNotifications, sched.Pending())

	published := len(rec.Snapshots())
	sched.FireAll()

	// The evicted timer callback is inert; the four live ones remove their records.
	assert.Empty(t, m.Snapshot().Items)
	assert.Len(t, rec.Snapshots(), published+notify.MaxNotifications)
}

func TestManager_eviction_ties_prefer_later_insertion(t *testing.T) {
	fixed := func() time.Time { return epoch }
	m, _ := newTestManager(t, notify.WithClock(fixed))

	for i := range 6 {
		m.Info(fmt.Sprintf("n%d", i))
	}

	assert.Equal(t, []string{"n2", "n3", "n4", "n5"}, messages(m.Snapshot()))
}

func TestManager_eviction_drops_stale_creation_time(t *testing.T) {
	times := []time.Time{
		epoch.Add(4 * time.Second),
		epoch.Add(5 * time.Second),
		epoch.Add(6 * time.Second),
		epoch.Add(7 * time.Second),
		epoch, // older than everything already active
	}
	i := 0
	clock := func() time.Time {
		ts := times[i]
		i++
		return ts
	}
	m, _ := newTestManager(t, notify.WithClock(clock))

	for j := range times {
		m.Info(fmt.Sprintf("n%d", j))
	}

	snap := m.Snapshot()
	assert.Equal(t, []string{"n0", "n1", "n2", "n3"}, messages(snap))
	assert.Equal(t, 4, m.Pending(), "no timer is scheduled for an evicted record")
}

func TestManager_custom_capacity(t *testing.T) {
	m, sched := newTestManager(t, notify.WithCapacity(2))
	assert.Equal(t, 2, m.Capacity())

	for i := range 3 {
		m.Info(fmt.Sprintf("n%d", i))
		sched.Advance(time.Millisecond)
	}
	assert.Equal(t, []string{"n1", "n2"}, messages(m.Snapshot()))

	ignored, _ := newTestManager(t, notify.WithCapacity(0))
	assert.Equal(t, notify.MaxNotifications, ignored.Capacity())
}

func TestManager_Remove_idempotent(t *testing.T) {
	m, _ := newTestManager(t)
	rec := &notifytest.Recorder{}
	m.Subscribe(rec.Record)

	a := m.Info("a")
	m.Info("b")

	assert.True(t, m.Remove(a))
	before := m.Snapshot()
	published := len(rec.Snapshots())

	assert.False(t, m.Remove(a))
	assert.False(t, m.Remove(notify.ID(999)))

	assert.Equal(t, before, m.Snapshot())
	assert.Len(t, rec.Snapshots(), published, "no-op removals do not publish")
}

func TestManager_Remove_cancels_timer(t *testing.T) {
	m, sched := newTestManager(t)

	a := m.Info("a")
	b := m.Info("b")
	require.Equal(t, 2, m.Pending())

	m.Remove(a)
	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(notify.DefaultDuration)
	assert.False(t, m.Snapshot().Has(b))
	assert.Empty(t, m.Snapshot().Items)
}

func TestManager_ClearAll_makes_timers_inert(t *testing.T) {
	m, sched := newTestManager(t)
	rec := &notifytest.Recorder{}
	m.Subscribe(rec.Record)

	m.Info("a")
	m.Error("b", notify.Persistent())
	m.Success("c", notify.WithDuration(time.Second))

	m.ClearAll()
	assert.Empty(t, m.Snapshot().Items)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 0, sched.Pending())

	published := len(rec.Snapshots())
	assert.NotPanics(t, sched.FireAll)
	sched.Advance(time.Hour)

	assert.Empty(t, m.Snapshot().Items)
	assert.Len(t, rec.Snapshots(), published, "stale timers do not publish")

	// New notifications after a clear keep allocating fresh ids.
	assert.Equal(t, notify.ID(3), m.Info("d"))
}

func TestManager_subscriber_receives_every_mutation(t *testing.T) {
	m, sched := newTestManager(t)
	rec := &notifytest.Recorder{}
	m.Subscribe(rec.Record)

	a := m.Info("a", notify.WithDuration(time.Second))
	m.Info("b", notify.Persistent())
	sched.Advance(time.Second)
	m.ClearAll()

	snaps := rec.Snapshots()
	require.Len(t, snaps, 4)
	assert.Equal(t, []string{"a"}, messages(snaps[0]))
	assert.Equal(t, []string{"a", "b"}, messages(snaps[1]))
	assert.Equal(t, []string{"b"}, messages(snaps[2]))
	assert.False(t, snaps[2].Has(a))
	assert.Empty(t, snaps[3].Items)

	for i := 1; i < len(snaps); i++ {
		assert.Greater(t, snaps[i].Version, snaps[i-1].Version)
	}
	assert.Equal(t, snaps[3].Version, m.Snapshot().Version)
}

func TestManager_Subscribe_replaces_previous(t *testing.T) {
	m, _ := newTestManager(t)
	first := &notifytest.Recorder{}
	second := &notifytest.Recorder{}

	unsubFirst := m.Subscribe(first.Record)
	m.Info("one")
	m.Subscribe(second.Record)
	m.Info("two")

	assert.Len(t, first.Snapshots(), 1)
	assert.Len(t, second.Snapshots(), 1)

	// A stale unsubscribe must not detach the newer subscriber.
	unsubFirst()
	m.Info("three")
	assert.Len(t, second.Snapshots(), 2)
}

func TestManager_Unsubscribe(t *testing.T) {
	m, _ := newTestManager(t)
	rec := &notifytest.Recorder{}

	unsub := m.Subscribe(rec.Record)
	m.Info("seen")
	unsub()
	m.Info("unseen")

	assert.Len(t, rec.Snapshots(), 1)
}

func TestManager_subscriber_may_reenter(t *testing.T) {
	m, _ := newTestManager(t)

	done := make(chan struct{})
	m.Subscribe(func(s notify.Snapshot) {
		for _, n := range s.Items {
			if n.Kind == notify.KindError {
				m.Remove(n.ID)
			}
		}
	})

	go func() {
		m.Error("auto dismissed")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber calling back into the manager deadlocked")
	}
	assert.Empty(t, m.Snapshot().Items)
}

func TestManager_delivers_in_version_order(t *testing.T) {
	m, _ := newTestManager(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var versions []uint64
	m.Subscribe(func(s notify.Snapshot) {
		if s.Version == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		versions = append(versions, s.Version)
		mu.Unlock()
	})

	posted := make(chan notify.ID)
	go func() { posted <- m.Info("slow subscriber") }()
	<-entered

	// The first delivery is still in flight while this removal publishes.
	require.True(t, m.Remove(0))
	close(release)
	<-posted
	m.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, m.Snapshot().Version, versions[len(versions)-1])
}

func TestManager_Flush_without_subscriber(t *testing.T) {
	m, _ := newTestManager(t)
	m.Info("a")
	m.ClearAll()

	done := make(chan struct{})
	go func() {
		m.Flush()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flush blocked with nothing queued")
	}
}

func TestManager_Close_stops_timers(t *testing.T) {
	m, sched := newTestManager(t)
	rec := &notifytest.Recorder{}
	m.Subscribe(rec.Record)

	m.Info("a")
	m.Close()

	assert.Equal(t, 0, m.Pending())
	sched.Advance(time.Hour)
	assert.Len(t, m.Snapshot().Items, 1)
	assert.Len(t, rec.Snapshots(), 1)
}

func TestManager_invariants_random_ops(t *testing.T) {
	m, sched := newTestManager(t)
	rng := rand.New(rand.NewSource(7))

	var issued []notify.ID
	for step := range 500 {
		switch op := rng.Intn(10); {
		case op < 5:
			d := time.Duration(rng.Intn(4)) * time.Second
			issued = append(issued, m.Info(fmt.Sprintf("m%d", step), notify.WithDuration(d)))
		case op < 7 && len(issued) > 0:
			m.Remove(issued[rng.Intn(len(issued))])
		case op < 8:
			sched.Advance(time.Duration(rng.Intn(1500)) * time.Millisecond)
		case op < 9:
			m.Remove(notify.ID(rng.Intn(1000) + 10000))
		default:
			m.ClearAll()
		}

		snap := m.Snapshot()
		require.LessOrEqual(t, len(snap.Items), notify.MaxNotifications, "capacity exceeded at step %d", step)

		seen := map[notify.ID]bool{}
		for _, n := range snap.Items {
			require.False(t, seen[n.ID], "duplicate id %d at step %d", n.ID, step)
			seen[n.ID] = true
		}
		require.LessOrEqual(t, m.Pending(), len(snap.Items), "timer outlived its notification at step %d", step)
	}
}

func TestManager_concurrent_real_timers(t *testing.T) {
	m := notify.NewManager(
		notify.WithDefaultDuration(5*time.Millisecond),
		notify.WithLogger(zerolog.Nop()),
	)
	t.Cleanup(m.Close)

	var mu sync.Mutex
	var last notify.Snapshot
	m.Subscribe(func(s notify.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Version > last.Version {
			last = s
		}
		assert.LessOrEqual(t, len(s.Items), notify.MaxNotifications)
	})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				id := m.Info(fmt.Sprintf("w%d-%d", w, i))
				if i%3 == 0 {
					m.Remove(id)
				}
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(m.Snapshot().Items) == 0 && last.Version == m.Snapshot().Version
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, last.Items, "newest published snapshot reflects expiry")
	assert.Equal(t, 0, m.Pending())
}
