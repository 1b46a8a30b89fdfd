package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/notify/notifytest"
)

type fixture struct {
	mgr    *notify.Manager
	sched  *notifytest.Scheduler
	out    *bytes.Buffer
	runner *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sched: notifytest.NewScheduler(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		out:   &bytes.Buffer{},
	}
	f.mgr = notify.NewManager(notify.WithScheduler(f.sched), notify.WithClock(f.sched.Now))
	t.Cleanup(f.mgr.Close)

	sleep := func(ctx context.Context, d time.Duration) error {
		f.sched.Advance(d)
		return ctx.Err()
	}
	f.runner = NewRunner(f.mgr, NewPrinter(f.out, &bytes.Buffer{}), sleep)
	return f
}

func (f *fixture) snapshots(t *testing.T) []notify.Snapshot {
	t.Helper()

	var out []notify.Snapshot
	dec := json.NewDecoder(f.out)
	for dec.More() {
		var raw struct {
			Version uint64 `json:"version"`
			Items   []struct {
				ID      notify.ID   `json:"id"`
				Kind    notify.Kind `json:"kind"`
				Message string      `json:"message"`
			} `json:"items"`
		}
		require.NoError(t, dec.Decode(&raw))

		s := notify.Snapshot{Version: raw.Version}
		for _, it := range raw.Items {
			s.Items = append(s.Items, notify.Notification{ID: it.ID, Kind: it.Kind, Message: it.Message})
		}
		out = append(out, s)
	}
	return out
}

func ids(s notify.Snapshot) []notify.ID {
	out := make([]notify.ID, 0, len(s.Items))
	for _, n := range s.Items {
		out = append(out, n.ID)
	}
	return out
}

func TestRunner_example_scenario(t *testing.T) {
	f := newFixture(t)
	s, err := Parse([]byte(`
name: example
steps:
  - notify: [info, A, 5000]
  - notify: [error, B, 0]
  - snapshot: true
  - remove: 0
  - snapshot: true
  - clear: true
  - snapshot: true
`))
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(context.Background(), s))

	snaps := f.snapshots(t)
	require.Len(t, snaps, 3)
	assert.Equal(t, []notify.ID{0, 1}, ids(snaps[0]))
	assert.Equal(t, []notify.ID{1}, ids(snaps[1]))
	assert.Equal(t, "B", snaps[1].Items[0].Message)
	assert.Empty(t, snaps[2].Items)
	assert.Zero(t, f.sched.Pending())
}

func TestRunner_wait_expires_notifications(t *testing.T) {
	f := newFixture(t)
	s, err := Parse([]byte(`
steps:
  - notify: {kind: success, message: quick, duration: 1s}
  - notify: {kind: warning, message: slow, duration: 10s}
  - wait: 1500
  - snapshot: true
`))
	require.NoError(t, err)
	require.NoError(t, f.runner.Run(context.Background(), s))

	snaps := f.snapshots(t)
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Items, 1)
	assert.Equal(t, "slow", snaps[0].Items[0].Message)
}

func TestRunner_invalid_duration_is_persistent(t *testing.T) {
	f := newFixture(t)
	s, err := Parse([]byte(`
steps:
  - notify: {kind: info, message: sticky, duration: -250}
  - notify: {kind: info, message: junk, duration: later}
`))
	require.NoError(t, err)
	require.NoError(t, f.runner.Run(context.Background(), s))

	snap := f.mgr.Snapshot()
	require.Len(t, snap.Items, 2)
	for _, n := range snap.Items {
		assert.True(t, n.Persistent(), n.Message)
	}
	assert.Zero(t, f.sched.Pending())
}

func TestRunner_remove_missing_is_noop(t *testing.T) {
	f := newFixture(t)
	s, err := Parse([]byte("steps:\n  - remove: 42\n  - remove: 42\n"))
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(context.Background(), s))
	assert.Zero(t, f.mgr.Snapshot().Version)
}

func TestRunner_cancelled_context(t *testing.T) {
	f := newFixture(t)
	s, err := Parse([]byte("steps:\n  - clear: true\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = f.runner.Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_WaitExpiry(t *testing.T) {
	f := newFixture(t)
	f.mgr.Info("timed", notify.WithDuration(2*time.Second))
	f.mgr.Info("sticky", notify.Persistent())

	require.NoError(t, f.runner.WaitExpiry(context.Background()))

	snap := f.mgr.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "sticky", snap.Items[0].Message)
}

func TestPrinter_subscribed_prints_every_mutation(t *testing.T) {
	f := newFixture(t)
	unsub := f.mgr.Subscribe(f.runner.printer.Print)
	defer unsub()

	f.mgr.Info("one", notify.WithDuration(time.Second))
	f.mgr.Remove(99)
	f.sched.Advance(time.Second)

	snaps := f.snapshots(t)
	require.Len(t, snaps, 2, "no-op removals publish nothing")
	assert.Equal(t, uint64(1), snaps[0].Version)
	assert.Equal(t, uint64(2), snaps[1].Version)
	assert.Empty(t, snaps[1].Items)
}

func TestPrinter_writes_indented_json(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, &bytes.Buffer{}).Print(notify.Snapshot{Version: 1})

	assert.True(t, strings.HasPrefix(out.String(), "{\n  \"version\": 1"))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPrinter_logs_write_failure(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var logs bytes.Buffer
	log.Logger = zerolog.New(&logs)

	NewPrinter(brokenWriter{}, &bytes.Buffer{}).Print(notify.Snapshot{Version: 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "script", entry["cmp"])
	assert.Equal(t, "broken pipe", entry["error"])
	assert.InDelta(t, 3, entry["version"], 0)
}
