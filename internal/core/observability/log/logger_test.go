package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "", want: LevelInfo},
		{in: " WARN ", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "off", want: LevelSilent},
		{in: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", Tag("color"), Component("tint"))
	l.Error("failed", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, "color", entries[0].ContextMap()["tag"])
	assert.Equal(t, "tint", entries[0].ContextMap()["component"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	l.SetLevel(LevelSilent)
	l.Error("dropped")
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, LevelSilent, l.GetLevel())
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core, LevelDebug).With(String("registry", "default"))

	l.Info("defined", Strings("tags", []string{"number"}), Int("count", 1))

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "default", ctx["registry"])
	assert.EqualValues(t, 1, ctx["count"])
}

func TestNew_Encodings(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
		want string
	}{
		{name: "json", enc: EncodingJSON, want: `"msg":"scanned"`},
		{name: "console", enc: EncodingConsole, want: "scanned\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.log")
			l := New(LevelInfo, WithEncoding(tt.enc), WithOutput(path))
			l.Info("scanned", Int("entries", 3))
			require.NoError(t, l.Sync())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.want)
			assert.Contains(t, string(raw), "entries")
		})
	}
}

func TestProvideWithoutNew(t *testing.T) {
	assert.NotNil(t, Provide())
	Nop().Error("nothing")
}
