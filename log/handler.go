package log

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/sink"
)

// ErrorPolicy decides what a [Handler] returns when its sink fails. It
// receives the sink error and returns the error to surface, or nil.
type ErrorPolicy func(err error) error

// Propagate returns sink errors to the caller.
func Propagate(err error) error { return err }

// Ignore drops sink errors.
func Ignore(error) error { return nil }

// ReportTo writes sink errors to w and drops them.
func ReportTo(w io.Writer) ErrorPolicy {
	return func(err error) error {
		//nolint:errcheck // Nowhere left to report a failure to report.
		fmt.Fprintf(w, "log handler: %v\n", err)

		return nil
	}
}

// HandlerOptions configures a [Handler].
type HandlerOptions struct {
	// Formatter renders records. Defaults to a [PlainFormatter] in Context.
	Formatter Formatter
	// Context whose level registry gates records. Defaults to the
	// formatter's context.
	Context *Context
	// OnError handles sink failures. Defaults to [Propagate].
	OnError ErrorPolicy
	// Level gates records. Defaults to [level.Named]("info").
	Level level.Spec
	// SkipExceptions disables rendering of attached errors.
	SkipExceptions bool
	// Disabled creates the handler disabled.
	Disabled bool
}

// Handler gates records by level, renders them and writes them to a sink.
// Safe for concurrent use.
//
// Create instances with [NewHandler].
type Handler struct {
	sink      sink.Sink
	formatter Formatter
	ctx       *Context
	onError   ErrorPolicy
	spec      level.Spec
	mu        sync.RWMutex
	enabled   atomic.Bool
	exception atomic.Bool
}

// NewHandler creates a [Handler] writing to s. opts may be nil.
func NewHandler(s sink.Sink, opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}

	h := &Handler{
		sink:      s,
		formatter: opts.Formatter,
		ctx:       opts.Context,
		onError:   opts.OnError,
		spec:      opts.Level,
	}

	if h.spec.Kind() == level.KindNamed && h.spec.Name() == "" {
		h.spec = level.Named(level.Info)
	}

	if h.ctx == nil && h.formatter != nil {
		h.ctx = h.formatter.Context()
	}

	if h.ctx == nil {
		h.ctx = Default()
	}

	if h.formatter == nil {
		// The default layout is a constant and always parses.
		f, err := NewPlainFormatter(&FormatterOptions{Context: h.ctx})
		if err != nil {
			panic(err)
		}

		h.formatter = f
	}

	if h.onError == nil {
		h.onError = Propagate
	}

	h.enabled.Store(!opts.Disabled)
	h.exception.Store(!opts.SkipExceptions)

	return h
}

// Enable enables h.
func (h *Handler) Enable() { h.enabled.Store(true) }

// Disable disables h. A disabled handler does no formatting and no I/O.
func (h *Handler) Disable() { h.enabled.Store(false) }

// Enabled reports whether h is enabled.
func (h *Handler) Enabled() bool { return h.enabled.Load() }

// SetLogExceptions sets whether attached errors are rendered.
func (h *Handler) SetLogExceptions(on bool) { h.exception.Store(on) }

// Level returns the level spec of h.
func (h *Handler) Level() level.Spec {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.spec
}

// SetLevel replaces the level spec of h.
func (h *Handler) SetLevel(spec level.Spec) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.spec = spec
}

// Formatter returns the formatter of h.
func (h *Handler) Formatter() Formatter {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.formatter
}

// SetFormatter replaces the formatter of h.
func (h *Handler) SetFormatter(f Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.formatter = f
}

// Sink returns the sink of h.
func (h *Handler) Sink() sink.Sink { return h.sink }

// Handle gates, renders and writes r. The message line and the attached
// error, if any, are written with a single sink call and then flushed.
func (h *Handler) Handle(r *Record) error {
	if !h.enabled.Load() {
		return nil
	}

	h.mu.RLock()
	spec, f := h.spec, h.formatter
	h.mu.RUnlock()

	ok, err := h.ctx.Levels().Allows(spec, r.Ref)
	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	line, err := f.Format(r)
	if err != nil {
		return err
	}

	if r.Err != nil && h.exception.Load() {
		line += "\n" + formatException(f, r.Err)
	}

	if es, ok := h.sink.(sink.EntrySink); ok {
		err = es.WriteEntry(sink.Entry{
			Time:   r.Time,
			Level:  r.Level,
			Logger: r.LoggerName,
			Group:  r.GroupName,
			Line:   line,
		})
	} else {
		err = h.sink.WriteLine(line)
	}

	if err != nil {
		return h.onError(err)
	}

	err = h.sink.Flush()
	if err != nil {
		return h.onError(err)
	}

	return nil
}

// formatException keeps a panicking formatter from losing the message line.
func formatException(f Formatter, err error) (text string) {
	defer func() {
		if p := recover(); p != nil {
			text = fmt.Sprintf("<error rendering %T: %v>", err, p)
		}
	}()

	return f.FormatException(err)
}

// Close closes the sink if it owns a resource, such as a file.
func (h *Handler) Close() error {
	if c, ok := h.sink.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
