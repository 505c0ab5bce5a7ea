package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "warn", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Info("hidden")
	l.Warn("shown", zap.String("identifier", "alice"))
	cleanup()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"identifier":"alice"`)
	assert.Contains(t, out, `"ts":`)
}

func TestBuild_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "loud", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Debug("debug")
	l.Info("info")
	cleanup()

	assert.NotContains(t, buf.String(), `"msg":"debug"`)
	assert.Contains(t, buf.String(), `"msg":"info"`)
}

func TestNewWithRotate_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := NewWithRotate("info", true, FileRotate{Filename: path, MaxSizeMB: 1})
	l.Info("to file")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	_, err := fmt.Fprintf(w, "slow sql %d\n", 42)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "slow sql 42", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
