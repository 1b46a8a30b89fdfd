package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "script and step",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithScript(ctx, "demo.yaml")
				ctx = WithStep(ctx, 2)
				return ctx
			},
			wantKeys: []string{"script", "step"},
		},
		{
			name: "only script",
			setupCtx: func() context.Context {
				return WithScript(context.Background(), "demo.yaml")
			},
			wantKeys:  []string{"script"},
			wantEmpty: []string{"step"},
		},
		{
			name: "only step",
			setupCtx: func() context.Context {
				return WithStep(context.Background(), 0)
			},
			wantKeys:  []string{"step"},
			wantEmpty: []string{"script"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"script", "step"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
