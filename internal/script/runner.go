package script

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tray/internal/core/logging"
	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/pkg/iojson"
)

const expiryPollInterval = 50 * time.Millisecond

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Printer writes snapshots as indented JSON. It is safe for concurrent use
// so it can be subscribed to a manager whose timers fire on other goroutines.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
	log zerolog.Logger
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut, log: logging.Component("script")}
}

// Print writes snap. It satisfies notify.Subscriber, so write failures are
// logged rather than returned.
func (p *Printer) Print(snap notify.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := iojson.WriteWith(p.out, p.err, snap); err != nil {
		p.log.Warn().Err(err).Uint64("version", snap.Version).Msg("failed to write snapshot")
	}
}

// Runner plays scripts against a manager.
type Runner struct {
	mgr     *notify.Manager
	printer *Printer
	sleep   SleepFunc
	log     zerolog.Logger
}

// NewRunner creates a runner. Explicit snapshot steps are written to printer.
func NewRunner(mgr *notify.Manager, printer *Printer, sleep SleepFunc) *Runner {
	if sleep == nil {
		sleep = Sleep
	}
	return &Runner{
		mgr:     mgr,
		printer: printer,
		sleep:   sleep,
		log:     logging.Component("script"),
	}
}

// Run executes every step of s in order.
func (r *Runner) Run(ctx context.Context, s Script) error {
	ctx = logging.WithScript(ctx, s.Name)
	r.log.Info().Ctx(ctx).Int("steps", len(s.Steps)).Msg("playing script")

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		stepCtx := logging.WithStep(ctx, i)
		if err := r.runStep(stepCtx, step); err != nil {
			return fmt.Errorf("%s step %d (%s): %w", s.Name, i, step, err)
		}
	}

	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	action, err := step.action()
	if err != nil {
		return err
	}

	r.log.Debug().Ctx(ctx).Str("action", step.String()).Msg("step")

	switch action {
	case "notify":
		var opts []notify.Option
		if n := step.Notify; n.Duration != nil {
			d, ok := n.Duration.Parse()
			if !ok {
				r.log.Warn().Ctx(ctx).Str("duration", string(*n.Duration)).Msg("invalid duration, notification is persistent")
			}
			opts = append(opts, notify.WithDuration(d))
		}
		id := r.mgr.NotifyKind(step.Notify.Kind, step.Notify.Message, opts...)
		r.log.Debug().Ctx(ctx).Int64("notification_id", int64(id)).Msg("posted")
	case "remove":
		if !r.mgr.Remove(*step.Remove) {
			r.log.Debug().Ctx(ctx).Int64("notification_id", int64(*step.Remove)).Msg("remove: not present")
		}
	case "clear":
		r.mgr.ClearAll()
	case "wait":
		d, _ := step.Wait.Parse()
		return r.sleep(ctx, d)
	case "snapshot":
		if r.printer != nil {
			r.printer.Print(r.mgr.Snapshot())
		}
	}

	return nil
}

// WaitExpiry blocks until every timed notification has expired and the
// resulting snapshots have been delivered. Persistent notifications do not
// hold it up.
func (r *Runner) WaitExpiry(ctx context.Context) error {
	for r.mgr.Pending() > 0 {
		if err := r.sleep(ctx, expiryPollInterval); err != nil {
			return err
		}
	}
	r.mgr.Flush()
	return nil
}
