package log

import (
	"errors"
	"sync"
	"time"

	"go.jacobcolvin.com/treelog/level"
)

// UngroupedPath is the group path of a logger outside any group.
const UngroupedPath = "*"

// Logger is a named emitter of records. Safe for concurrent use.
//
// Create instances with [NewLogger] or [Group.Logger].
type Logger struct {
	ctx        *Context
	group      *Group
	handlers   *Handlers
	now        func() time.Time
	name       string
	color      string
	groupPath  string
	groupColor string
	mu         sync.RWMutex
	enabled    bool
	colorSet   bool
}

// NewLogger creates a logger and registers it in its context. With
// [WithGroup] or [WithGroupName] the logger binds to that group's handler
// list, color and enabled state, unless overridden by options.
func NewLogger(name string, opts ...Option) (*Logger, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		ctx:       o.ctx,
		now:       o.now,
		name:      name,
		handlers:  o.handlers,
		enabled:   true,
		groupPath: UngroupedPath,
	}

	if o.color != nil {
		l.color = *o.color
		l.colorSet = true
	}

	if o.group != nil {
		l.bind(o.group, o.handlers == nil)
		o.group.attach(l)
	}

	if l.handlers == nil {
		l.handlers = NewHandlers()
	}

	if o.enabled != nil {
		l.enabled = *o.enabled
	}

	l.ctx.addLogger(l)

	return l, nil
}

// bind copies the current state of g into l. Callers hold l.mu or own l
// exclusively.
func (l *Logger) bind(g *Group, handlers bool) {
	hs, color, enabled := g.state()

	l.group = g
	l.groupPath = g.namePath
	l.groupColor = color
	l.enabled = enabled

	if handlers {
		l.handlers = hs
	}

	if !l.colorSet {
		l.color = color
	}
}

// ChangeGroup moves l into g, rebinding its handler list, enabled state,
// color and group path to the current values of g. Later changes to g reach
// l only through [Group.Enable] or [Group.Disable]. If g belongs to another
// context, l moves to that context.
func (l *Logger) ChangeGroup(g *Group) {
	l.mu.Lock()
	old, oldCtx := l.group, l.ctx
	l.bind(g, true)
	l.ctx = g.ctx
	l.mu.Unlock()

	if old != nil {
		old.detach(l)
	}

	g.attach(l)

	if oldCtx != g.ctx {
		oldCtx.removeLogger(l)
		g.ctx.addLogger(l)
	}
}

// drop detaches l from its group and its context.
func (l *Logger) drop() {
	l.mu.RLock()
	g, ctx := l.group, l.ctx
	l.mu.RUnlock()

	if g != nil {
		g.detach(l)
	}

	ctx.removeLogger(l)
}

// ChangeGroupByName is like [Logger.ChangeGroup], resolving the group by
// its dotted path. It fails with [ErrUnknownGroup].
func (l *Logger) ChangeGroupByName(name string) error {
	g, err := l.Context().Group(name)
	if err != nil {
		return err
	}

	l.ChangeGroup(g)

	return nil
}

// Name returns the name of l.
func (l *Logger) Name() string { return l.name }

// Context returns the context of l.
func (l *Logger) Context() *Context {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.ctx
}

// Group returns the group of l, or nil.
func (l *Logger) Group() *Group {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.group
}

// GroupPath returns the path of the group of l, or [UngroupedPath].
func (l *Logger) GroupPath() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.groupPath
}

// Color returns the display color of l.
func (l *Logger) Color() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.color
}

// Handlers returns the handler list of l.
func (l *Logger) Handlers() *Handlers {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.handlers
}

// Enable enables l.
func (l *Logger) Enable() { l.setEnabled(true) }

// Disable disables l. A disabled logger consults no handler.
func (l *Logger) Disable() { l.setEnabled(false) }

func (l *Logger) setEnabled(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enabled = on
}

// Enabled reports whether l is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.enabled
}

// Log records msg at the level called lvl. The message is a template
// (see [go.jacobcolvin.com/treelog/layout]); args fill its positional
// fields, except [Fields] values, which fill keyword fields, and errors
// wrapped with [Attach].
func (l *Logger) Log(lvl, msg string, args ...any) error {
	return l.record(level.ByName(lvl), msg, args)
}

// LogPriority records msg at a raw priority. See [Logger.Log].
func (l *Logger) LogPriority(priority int, msg string, args ...any) error {
	return l.record(level.ByPriority(priority), msg, args)
}

// Debug records msg at the debug level.
func (l *Logger) Debug(msg string, args ...any) error {
	return l.record(level.ByName(level.Debug), msg, args)
}

// Exception records msg at the exception level.
func (l *Logger) Exception(msg string, args ...any) error {
	return l.record(level.ByName(level.Exception), msg, args)
}

// Info records msg at the info level.
func (l *Logger) Info(msg string, args ...any) error {
	return l.record(level.ByName(level.Info), msg, args)
}

// Warn records msg at the warn level.
func (l *Logger) Warn(msg string, args ...any) error {
	return l.record(level.ByName(level.Warn), msg, args)
}

// Error records msg at the error level.
func (l *Logger) Error(msg string, args ...any) error {
	return l.record(level.ByName(level.Error), msg, args)
}

// Critical records msg at the critical level.
func (l *Logger) Critical(msg string, args ...any) error {
	return l.record(level.ByName(level.Critical), msg, args)
}

// record dispatches one record to every handler in attachment order. All
// handlers are attempted; their errors are joined.
func (l *Logger) record(ref level.Ref, msg string, args []any) error {
	l.mu.RLock()
	enabled := l.enabled
	hs := l.handlers.All()
	r := &Record{
		Message:     msg,
		Ref:         ref,
		LoggerName:  l.name,
		LoggerColor: l.color,
		GroupName:   l.groupPath,
		GroupColor:  l.groupColor,
	}
	ctx, now := l.ctx, l.now
	l.mu.RUnlock()

	if !enabled || len(hs) == 0 {
		return nil
	}

	r.Time = now()
	r.Level = displayName(ctx, ref)
	r.Args, r.Fields, r.Err = splitArgs(args)

	var errs []error

	for _, h := range hs {
		err := h.Handle(r)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// displayName returns the level name shown for ref. Unregistered
// priorities show as numbers.
func displayName(ctx *Context, ref level.Ref) string {
	if !ref.IsNumeric() {
		return ref.String()
	}

	name, _, err := ctx.Levels().Resolve(ref)
	if err != nil {
		return ref.String()
	}

	return name
}
