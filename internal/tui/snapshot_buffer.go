package tui

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tray/internal/core/notify"
)

// snapshotReadyMsg tells the model a newer snapshot is waiting in the buffer.
type snapshotReadyMsg struct{}

// SnapshotBuffer bridges manager callbacks, which arrive on arbitrary
// goroutines, into the bubbletea update loop. Only the newest snapshot is
// kept. A push wakes every pending WaitForSignal by closing the current
// signal channel, so a waiter left behind by a program that has quit cannot
// swallow the wake-up meant for its successor.
type SnapshotBuffer struct {
	mu     sync.Mutex
	latest notify.Snapshot
	seen   uint64
	ready  bool
	signal chan struct{}
}

// NewSnapshotBuffer constructs an empty buffer.
func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{
		signal: make(chan struct{}),
	}
}

// Push records snap if it is newer than what the buffer holds and wakes all
// waiters. It satisfies notify.Subscriber.
func (b *SnapshotBuffer) Push(snap notify.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if snap.Version <= b.seen {
		return
	}
	b.seen = snap.Version
	b.latest = snap
	b.ready = true

	close(b.signal)
	b.signal = make(chan struct{})
}

// Take returns the buffered snapshot and whether one was pending. The
// version high-water mark is kept so older snapshots are still rejected.
func (b *SnapshotBuffer) Take() (notify.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return notify.Snapshot{}, false
	}
	b.ready = false
	return b.latest, true
}

// WaitForSignal blocks until a snapshot is ready to take. It returns at once
// when one is already pending.
func (b *SnapshotBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		b.mu.Lock()
		ready, ch := b.ready, b.signal
		b.mu.Unlock()

		if !ready {
			<-ch
		}
		return snapshotReadyMsg{}
	}
}
