package log

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"go.jacobcolvin.com/treelog/level"
)

// SlogHandler is a [slog.Handler] that forwards records to a [Logger].
// Attributes are appended to the message as " key=value" fields, and their
// values are rendered like any other argument.
//
// Create instances with [NewSlogHandler].
type SlogHandler struct {
	logger *Logger
	prefix string
	attrs  []slog.Attr
}

// NewSlogHandler creates a [SlogHandler] writing through l.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// SlogLevel maps a [slog.Level] to a default level name.
func SlogLevel(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return level.Debug
	case l < slog.LevelWarn:
		return level.Info
	case l < slog.LevelError:
		return level.Warn
	case l < slog.LevelError+4:
		return level.Error
	}

	return level.Critical
}

// Enabled implements [slog.Handler]. It reports whether some handler of the
// logger would accept a record at lvl.
func (h *SlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	if !h.logger.Enabled() {
		return false
	}

	ref := level.ByName(SlogLevel(lvl))
	ctx := h.logger.Context()

	for _, hd := range h.logger.Handlers().All() {
		if !hd.Enabled() {
			continue
		}

		ok, err := ctx.Levels().Allows(hd.Level(), ref)
		if err == nil && ok {
			return true
		}
	}

	return false
}

// Handle implements [slog.Handler].
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(escapeBraces(r.Message))

	for _, a := range h.attrs {
		args = appendAttr(&sb, args, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		args = appendAttr(&sb, args, h.prefix, a)
		return true
	})

	return h.logger.Log(SlogLevel(r.Level), sb.String(), args...)
}

func appendAttr(sb *strings.Builder, args []any, prefix string, a slog.Attr) []any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return args
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			args = appendAttr(sb, args, p, ga)
		}

		return args
	}

	sb.WriteString(" ")
	sb.WriteString(escapeBraces(prefix + a.Key))
	sb.WriteString("={}")

	if err, ok := a.Value.Any().(error); ok {
		return append(args, err.Error())
	}

	return append(args, a.Value.Any())
}

// WithAttrs implements [slog.Handler].
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := *h
	h2.attrs = slices.Concat(h.attrs, prefixed(h.prefix, attrs))

	return &h2
}

// WithGroup implements [slog.Handler].
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.prefix += name + "."

	return &h2
}

// prefixed qualifies attrs bound before a later WithGroup call, so that
// they keep the group path in effect when they were added.
func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func escapeBraces(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}
