package sink

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purin2/sql-practice-tutor/pkg/core"
)

type recordingSink struct {
	location string
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(context.Context, *core.Document) error { return nil }

func TestUnknownSinkError(t *testing.T) {
	err := &UnknownSinkError{
		Type:      "fake_db",
		Available: []string{"duckdb", "sqlite"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "duckdb, sqlite", "error should list available sinks")
	assert.Contains(t, msg, "type=location", "error should show the target syntax")
	assert.True(t, errors.Is(err, ErrUnknownSink))
}

func TestRegister(t *testing.T) {
	Register("test_sink_internal", func(location string, _ *slog.Logger) Sink {
		return &recordingSink{location: location}
	})

	assert.True(t, IsRegistered("test_sink_internal"))
	assert.Contains(t, List(), "test_sink_internal")

	s, err := New(Target{Type: "test_sink_internal", Location: "somewhere"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "somewhere", s.(*recordingSink).location)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Target{}, nil)
	require.Error(t, err)
	assert.Equal(t, "sink type not specified", err.Error())

	_, err = New(Target{Type: "nope", Location: "x"}, nil)
	var unknown *UnknownSinkError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Type)
	assert.ErrorIs(t, err, ErrUnknownSink)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    Target
		wantErr bool
	}{
		{input: "sqlite=out/practice.db", want: Target{Type: "sqlite", Location: "out/practice.db"}},
		{input: "DuckDB = practice.duckdb", want: Target{Type: "duckdb", Location: "practice.duckdb"}},
		{
			input: "postgres=postgres://u:p@localhost/db?sslmode=disable",
			want:  Target{Type: "postgres", Location: "postgres://u:p@localhost/db?sslmode=disable"},
		},
		{input: "postgres=host=localhost dbname=x", want: Target{Type: "postgres", Location: "host=localhost dbname=x"}},
		{input: "sqlite", wantErr: true},
		{input: "=path", wantErr: true},
		{input: "sqlite=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
