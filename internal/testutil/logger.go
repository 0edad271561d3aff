// Package testutil provides logging helpers for tests.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// NewBufferLogger returns a logger writing text records at debug level into
// the returned buffer, for asserting on what was logged.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
