package log_test

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/log"
	"go.jacobcolvin.com/treelog/sink"
)

var fixedTime = time.Date(2024, time.January, 2, 12, 34, 56, 789000, time.UTC)

func fixedClock() time.Time { return fixedTime }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// plainFormatter returns a plain formatter in ctx with the given layout.
func plainFormatter(t *testing.T, ctx *log.Context, lay string) *log.PlainFormatter {
	t.Helper()

	f, err := log.NewPlainFormatter(&log.FormatterOptions{Context: ctx, Layout: lay})
	require.NoError(t, err)

	return f
}

// bufferHandler returns a handler writing lines formatted by f into a buffer.
func bufferHandler(ctx *log.Context, spec level.Spec, f log.Formatter) (*log.Handler, *bytes.Buffer) {
	var buf bytes.Buffer

	h := log.NewHandler(sink.NewWriter(&buf), &log.HandlerOptions{
		Context:   ctx,
		Formatter: f,
		Level:     spec,
	})

	return h, &buf
}

// spyFormatter counts calls and renders the raw message.
type spyFormatter struct {
	ctx   *log.Context
	calls atomic.Int32
}

func (s *spyFormatter) Format(r *log.Record) (string, error) {
	s.calls.Add(1)

	return r.Message, nil
}

func (s *spyFormatter) FormatException(err error) string { return err.Error() }

func (s *spyFormatter) FormatTime(time.Time) (string, error) { return "", nil }

func (s *spyFormatter) Context() *log.Context { return s.ctx }

func (s *spyFormatter) TracksOffsets() bool { return false }

func (s *spyFormatter) SetOffsets(log.Offsets) {}
