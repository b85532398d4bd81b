package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLChainsLevelStarters(t *testing.T) {
	var buf bytes.Buffer
	old := global
	global = zerolog.New(&buf)
	defer func() { global = old }()

	L().Warn().Str(FieldUserID, "u1").Msg("slow consumer")

	assert.Contains(t, buf.String(), `"user_id":"u1"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("service", "test").Logger()
	ctx := WithLogger(context.Background(), logger)

	Ctx(ctx).Info().Str(FieldConnID, "c1").Msg("connected")

	assert.Contains(t, buf.String(), `"service":"test"`)
	assert.Contains(t, buf.String(), `"conn_id":"c1"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLevel(tc.in), "level %q", tc.in)
	}
}
