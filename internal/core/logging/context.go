package logging

import "context"

type contextKey string

const (
	scriptKey contextKey = "script"
	stepKey   contextKey = "step"
)

// WithScript adds the name of the script being played to the context.
func WithScript(ctx context.Context, script string) context.Context {
	return context.WithValue(ctx, scriptKey, script)
}

// WithStep adds the current script step index to the context.
func WithStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// GetScript retrieves the script name from the context.
// Returns empty string if not present.
func GetScript(ctx context.Context) string {
	if s, ok := ctx.Value(scriptKey).(string); ok {
		return s
	}
	return ""
}

// GetStep retrieves the step index from the context.
// Returns -1 if not present.
func GetStep(ctx context.Context) int {
	if s, ok := ctx.Value(stepKey).(int); ok {
		return s
	}
	return -1
}
