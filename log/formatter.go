package log

import (
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"go.jacobcolvin.com/treelog/layout"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/value"
)

// Static variable names bound by every formatter.
const (
	VarLevelOffset      = "levelOffset"
	VarLoggerNameOffset = "loggerNameOffset"
	VarGroupNameOffset  = "groupNameOffset"
	VarFore             = "fore"
	VarBack             = "bg"
	VarStyle            = "style"
	VarReset            = "reset"
)

// Formatter renders records into lines.
type Formatter interface {
	// Format renders r into one line.
	Format(r *Record) (string, error)
	// FormatException renders err for display after a message line.
	FormatException(err error) string
	// FormatTime renders t with the time layout; the zero time renders "".
	FormatTime(t time.Time) (string, error)
	// Context returns the context the formatter is registered in.
	Context() *Context
	// TracksOffsets reports whether the formatter receives offset updates.
	TracksOffsets() bool
	// SetOffsets stores new column widths.
	SetOffsets(o Offsets)
}

// FormatterOptions configures a [PlainFormatter].
type FormatterOptions struct {
	// Context to register in. Defaults to [Default].
	Context *Context
	// StaticVariables are extra template variables available to every
	// layout and message.
	StaticVariables map[string]any
	// Layout of each line. Defaults to [MinimalLayout].
	Layout string
	// TimeLayout of the "{time}" field. Defaults to [MinimalTimeLayout].
	TimeLayout string
	// DisableOffsets pins all offsets to 0 instead of tracking the
	// context.
	DisableOffsets bool
}

const messageCacheSize = 256

// formatter holds the state shared by the plain and colored formatters.
type formatter struct {
	ctx        *Context
	layout     *layout.Template
	timeLayout *layout.Template
	vars       layout.Map
	messages   map[string]*layout.Template
	mu         sync.RWMutex
	cacheMu    sync.Mutex
	offsets    bool
	timed      bool
}

func newFormatter(opts FormatterOptions, defLayout, defTime string) (*formatter, error) {
	if opts.Context == nil {
		opts.Context = Default()
	}

	if opts.Layout == "" {
		opts.Layout = defLayout
	}

	if opts.TimeLayout == "" {
		opts.TimeLayout = defTime
	}

	f := &formatter{
		ctx:      opts.Context,
		vars:     make(layout.Map, len(opts.StaticVariables)+7),
		messages: make(map[string]*layout.Template),
		offsets:  !opts.DisableOffsets,
	}

	maps.Copy(f.vars, opts.StaticVariables)

	f.vars[VarLevelOffset] = 0
	f.vars[VarLoggerNameOffset] = 0
	f.vars[VarGroupNameOffset] = 0

	err := f.SetLayout(opts.Layout)
	if err != nil {
		return nil, err
	}

	err = f.SetTimeLayout(opts.TimeLayout)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Context implements [Formatter].
func (f *formatter) Context() *Context { return f.ctx }

// TracksOffsets implements [Formatter].
func (f *formatter) TracksOffsets() bool { return f.offsets }

// SetOffsets implements [Formatter].
func (f *formatter) SetOffsets(o Offsets) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.vars[VarLevelOffset] = o.Level
	f.vars[VarLoggerNameOffset] = o.LoggerName
	f.vars[VarGroupNameOffset] = o.GroupName
}

// Layout returns the line layout.
func (f *formatter) Layout() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.layout.String()
}

// SetLayout replaces the line layout. Time formatting is skipped entirely
// when the layout has no "{time}" field.
func (f *formatter) SetLayout(s string) error {
	t, err := layout.Parse(s)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.layout = t
	f.timed = t.Has("time")

	return nil
}

// SetTimeLayout replaces the layout of the "{time}" field.
func (f *formatter) SetTimeLayout(s string) error {
	t, err := layout.Parse(s)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.timeLayout = t

	return nil
}

// AddStaticVariable binds name to v in every template.
func (f *formatter) AddStaticVariable(name string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.vars[name] = v
}

// DeleteStaticVariable removes name and reports whether it was bound.
func (f *formatter) DeleteStaticVariable(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.vars[name]
	delete(f.vars, name)

	return ok
}

// StaticVariable returns the value bound to name.
func (f *formatter) StaticVariable(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.vars[name]

	return v, ok
}

// FormatTime implements [Formatter].
func (f *formatter) FormatTime(t time.Time) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.formatTime(t)
}

func (f *formatter) formatTime(t time.Time) (string, error) {
	if t.IsZero() {
		return "", nil
	}

	fields := layout.Map{
		"year":        t.Year(),
		"month":       int(t.Month()),
		"day":         t.Day(),
		"hour":        t.Hour(),
		"minute":      t.Minute(),
		"second":      t.Second(),
		"microsecond": t.Nanosecond() / int(time.Microsecond),
	}

	return f.timeLayout.Execute(nil, layout.Chain{fields, f.vars})
}

// message returns the parsed template of a record message.
func (f *formatter) message(src string) (*layout.Template, error) {
	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()

	if t, ok := f.messages[src]; ok {
		return t, nil
	}

	t, err := layout.Parse(src)
	if err != nil {
		return nil, err
	}

	if len(f.messages) >= messageCacheSize {
		clear(f.messages)
	}

	f.messages[src] = t

	return t, nil
}

// render runs both template passes: the record message first, then the
// line layout with the rendered message bound to "{message}".
func (f *formatter) render(r *Record, args []any, fields map[string]any, bound layout.Map) (string, error) {
	msg, err := f.message(r.Message)
	if err != nil {
		return "", err
	}

	bound["level"] = r.Level
	bound["loggerName"] = r.LoggerName
	bound["loggerColor"] = r.LoggerColor
	bound["groupName"] = r.GroupName
	bound["groupColor"] = r.GroupColor

	f.mu.RLock()
	defer f.mu.RUnlock()

	vars := layout.Chain{bound, layout.Map(fields), f.vars}

	text, err := msg.Execute(args, vars)
	if err != nil {
		return "", fmt.Errorf("message %q: %w", r.Message, err)
	}

	timeText := "*"
	if f.timed {
		timeText, err = f.formatTime(r.Time)
		if err != nil {
			return "", fmt.Errorf("time: %w", err)
		}
	}

	outer := layout.Chain{layout.Map{"message": text, "time": timeText}, vars}

	line, err := f.layout.Execute(args, outer)
	if err != nil {
		return "", fmt.Errorf("layout: %w", err)
	}

	return line, nil
}

// exceptionText renders err with its verbose form, without the trailing
// newline. A panicking Error method yields a placeholder.
func exceptionText(err error) (text string) {
	defer func() {
		if p := recover(); p != nil {
			text = fmt.Sprintf("<error rendering %T: %v>", err, p)
		}
	}()

	return strings.TrimSuffix(fmt.Sprintf("%+v", err), "\n")
}

// PlainFormatter renders records without color. Arguments are substituted
// as bare values; containers render as "[a, b]", "(a, b)" and "{k: v}".
//
// Create instances with [NewPlainFormatter].
type PlainFormatter struct {
	*formatter
}

// NewPlainFormatter creates a [PlainFormatter] and registers it in its
// context. opts may be nil.
func NewPlainFormatter(opts *FormatterOptions) (*PlainFormatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}

	base, err := newFormatter(*opts, MinimalLayout, MinimalTimeLayout)
	if err != nil {
		return nil, err
	}

	base.vars[VarFore] = palette.EmptyFore
	base.vars[VarBack] = palette.EmptyBack
	base.vars[VarStyle] = palette.EmptyStyle
	base.vars[VarReset] = ""

	f := &PlainFormatter{formatter: base}
	base.ctx.AddFormatter(f)

	return f, nil
}

// Format implements [Formatter].
func (f *PlainFormatter) Format(r *Record) (string, error) {
	args := make([]any, len(r.Args))
	for i, a := range r.Args {
		args[i] = plainArg(a)
	}

	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = plainArg(v)
	}

	return f.render(r, args, fields, layout.Map{"levelColor": ""})
}

// FormatException implements [Formatter].
func (f *PlainFormatter) FormatException(err error) string {
	return exceptionText(err)
}

// plainArg keeps scalars as-is so format specs apply to them, and renders
// everything else as uncolored text.
func plainArg(x any) any {
	v := value.Of(x)
	if v.Variant() == value.Scalar {
		if _, wrapped := x.(value.Value); !wrapped {
			return x
		}

		return v.Raw()
	}

	if v.Variant() == value.UncoloredVariant {
		return v.Raw()
	}

	return value.Renderer{}.Render(v)
}
