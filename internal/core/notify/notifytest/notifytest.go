// Package notifytest provides a manual clock scheduler and a snapshot
// recorder for testing code built on notify.Manager.
package notifytest

import (
	"sort"
	"sync"
	"time"

	"github.com/colonyops/tray/internal/core/notify"
)

// Scheduler is a notify.Scheduler driven by a manual clock. Timers fire only
// when Advance moves the clock past their deadline.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

type timer struct {
	s       *Scheduler
	seq     int
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

var _ notify.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// AfterFunc registers fn to run once the clock has advanced by d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) notify.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &timer{s: s, seq: s.seq, at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now returns the current manual time. It can be passed to notify.WithClock.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d and runs every timer whose deadline
// has been reached, in deadline order. Callbacks run on the calling
// goroutine without the scheduler lock held.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now

	var due []*timer
	live := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
			live = append(live, t)
		case !t.at.After(now):
			t.fired = true
			due = append(due, t)
		default:
			live = append(live, t)
		}
	}
	s.timers = live
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})

	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// FireAll runs every registered timer regardless of deadline, including
// stopped ones. It simulates callbacks that were already in flight when
// they were cancelled.
func (s *Scheduler) FireAll() {
	s.mu.Lock()
	all := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range all {
		t.fn()
	}
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Recorder collects every snapshot published by a manager.
type Recorder struct {
	mu        sync.Mutex
	snapshots []notify.Snapshot
}

// Record is a notify.Subscriber.
func (r *Recorder) Record(s notify.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

// Snapshots returns a copy of all recorded snapshots.
func (r *Recorder) Snapshots() []notify.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notify.Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Last returns the most recent snapshot and false if none was recorded.
func (r *Recorder) Last() (notify.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) == 0 {
		return notify.Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}
