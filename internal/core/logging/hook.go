package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts script and step from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if script := GetScript(ctx); script != "" {
		e.Str("script", script)
	}

	if step := GetStep(ctx); step >= 0 {
		e.Int("step", step)
	}
}
