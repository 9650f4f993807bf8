package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestTraceLevel(t *testing.T) {
	assert.Equal(t, zapcore.Level(-2), TraceLevel)
	assert.Less(t, TraceLevel, zapcore.DebugLevel)
	assert.False(t, zapcore.DebugLevel.Enabled(TraceLevel))
	assert.True(t, TraceLevel.Enabled(TraceLevel))
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"trace", TraceLevel},
		{"TRACE", TraceLevel},
		{"debug", zapcore.DebugLevel},
		{"Info", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	lvl, err := LevelFromString("verbose")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestEncodeLevel(t *testing.T) {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{LevelKey: "level", EncodeLevel: encodeLevel})
	for lvl, want := range map[zapcore.Level]string{
		TraceLevel:         `"level":"trace"`,
		zapcore.DebugLevel: `"level":"debug"`,
		zapcore.WarnLevel:  `"level":"warn"`,
	} {
		buf, err := enc.EncodeEntry(zapcore.Entry{Level: lvl}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), want)
		buf.Free()
	}
}
