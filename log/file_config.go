package log

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/sink"
	"go.jacobcolvin.com/treelog/value"
)

// ErrInvalidConfig indicates a configuration file that cannot be built.
var ErrInvalidConfig = errors.New("invalid log configuration")

// Sink names accepted by [HandlerConfig].
const (
	SinkStdout    = "stdout"
	SinkStderr    = "stderr"
	SinkFile      = "file"
	SinkDiscard   = "discard"
	SinkPublisher = "publisher"
)

// FileConfig describes a whole logger tree. It is usually decoded from YAML
// with [ParseConfig] or [LoadFile], then built with [FileConfig.Build].
//
//	levels:
//	  - {name: trace, priority: 1}
//	formatters:
//	  console: {format: colored, preset: grouped}
//	handlers:
//	  stderr: {sink: stderr, level: debug, formatter: console}
//	groups:
//	  - name: core
//	    handlers: [stderr]
//	    loggers: [{name: net}]
type FileConfig struct {
	Colors     *ColorsConfig              `yaml:"colors,omitempty"`
	Formatters map[string]FormatterConfig `yaml:"formatters,omitempty"`
	Handlers   map[string]HandlerConfig   `yaml:"handlers,omitempty"`
	Levels     []LevelConfig              `yaml:"levels,omitempty"`
	Groups     []GroupConfig              `yaml:"groups,omitempty"`
	Loggers    []LoggerConfig             `yaml:"loggers,omitempty"`
}

// LevelConfig registers an extra level.
type LevelConfig struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
}

// ColorsConfig overrides entries of [DefaultColorDict]. Values are palette
// expressions such as "fore.red+bold" (see [palette.Parse]).
type ColorsConfig struct {
	Types     map[string]string `yaml:"types,omitempty"`
	Levels    map[string]string `yaml:"levels,omitempty"`
	Exception string            `yaml:"exception,omitempty"`
	All       string            `yaml:"all,omitempty"`
}

// FormatterConfig describes one formatter.
type FormatterConfig struct {
	Variables      map[string]any `yaml:"variables,omitempty"`
	Format         string         `yaml:"format,omitempty"`
	Preset         string         `yaml:"preset,omitempty"`
	Layout         string         `yaml:"layout,omitempty"`
	TimeLayout     string         `yaml:"timeLayout,omitempty"`
	DisableOffsets bool           `yaml:"disableOffsets,omitempty"`
	Repr           bool           `yaml:"repr,omitempty"`
}

// HandlerConfig describes one handler. Level is a level name, a priority,
// a comma-separated allow-list or a list of level names.
type HandlerConfig struct {
	Level         any    `yaml:"level,omitempty"`
	LogExceptions *bool  `yaml:"logExceptions,omitempty"`
	Enabled       *bool  `yaml:"enabled,omitempty"`
	Sink          string `yaml:"sink"`
	Path          string `yaml:"path,omitempty"`
	Formatter     string `yaml:"formatter,omitempty"`
	BufferSize    int    `yaml:"bufferSize,omitempty"`
}

// GroupConfig describes a group and everything under it.
type GroupConfig struct {
	Enabled  *bool          `yaml:"enabled,omitempty"`
	Name     string         `yaml:"name"`
	Color    string         `yaml:"color,omitempty"`
	Handlers []string       `yaml:"handlers,omitempty"`
	Groups   []GroupConfig  `yaml:"groups,omitempty"`
	Loggers  []LoggerConfig `yaml:"loggers,omitempty"`
}

// LoggerConfig describes a logger.
type LoggerConfig struct {
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Name     string   `yaml:"name"`
	Color    string   `yaml:"color,omitempty"`
	Handlers []string `yaml:"handlers,omitempty"`
}

// ParseConfig validates data against [ConfigSchema] and decodes it.
func ParseConfig(data []byte) (*FileConfig, error) {
	err := ValidateConfig(data)
	if err != nil {
		return nil, err
	}

	fc := &FileConfig{}

	err = yaml.UnmarshalWithOptions(data, fc, yaml.DisallowUnknownField())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return fc, nil
}

// LoadFile reads and parses the configuration file at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path.
	if err != nil {
		return nil, fmt.Errorf("read log config: %w", err)
	}

	return ParseConfig(data)
}

// Tree is a logger tree built from a [FileConfig].
type Tree struct {
	Context    *Context
	Formatters map[string]Formatter
	Handlers   map[string]*Handler
	// Groups by dotted path.
	Groups  map[string]*Group
	Loggers map[string]*Logger

	dryRun bool
}

// Logger returns the logger called name.
func (t *Tree) Logger(name string) (*Logger, error) {
	l, ok := t.Loggers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown logger %q", ErrInvalidArgument, name)
	}

	return l, nil
}

// Close closes every handler of t.
func (t *Tree) Close() error {
	var errs []error

	for _, name := range slices.Sorted(maps.Keys(t.Handlers)) {
		err := t.Handlers[name].Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("handler %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// Build creates the tree described by fc in ctx, or in a new context when
// ctx is nil. Any error wraps [ErrInvalidConfig].
//
// fc is first checked with the levels of ctx (see [FileConfig.Check]), so a
// broken configuration leaves ctx untouched and no file truncated. If
// opening a sink still fails, everything added to ctx apart from levels is
// removed again and the opened sinks are closed.
func (fc *FileConfig) Build(ctx *Context) (*Tree, error) {
	if ctx == nil {
		ctx = NewContext()
	}

	err := fc.check(ctx.Levels().Levels())
	if err != nil {
		return nil, err
	}

	for _, path := range fc.groupPaths() {
		if _, lookupErr := ctx.Group(path); lookupErr == nil {
			return nil, fmt.Errorf("%w: group %q already exists", ErrInvalidConfig, path)
		}
	}

	t := newTree(ctx)

	err = fc.build(t)
	if err != nil {
		t.discard()

		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return t, nil
}

// Check reports whether fc builds, without side effects: it builds into a
// scratch context with the default levels, every sink replaced by
// [sink.Discard]. File sink paths are checked with [sink.CheckPath], so
// nothing is created or truncated. Any error wraps [ErrInvalidConfig].
func (fc *FileConfig) Check() error {
	return fc.check(level.Defaults())
}

func (fc *FileConfig) check(levels []level.Level) error {
	t := newTree(NewContext(levels...))
	t.dryRun = true

	err := fc.build(t)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// groupPaths returns the dotted path of every configured group.
func (fc *FileConfig) groupPaths() []string {
	var (
		paths []string
		walk  func(prefix string, gs []GroupConfig)
	)

	walk = func(prefix string, gs []GroupConfig) {
		for _, gc := range gs {
			path := prefix + gc.Name
			paths = append(paths, path)
			walk(path+".", gc.Groups)
		}
	}

	walk("", fc.Groups)

	return paths
}

func newTree(ctx *Context) *Tree {
	return &Tree{
		Context:    ctx,
		Formatters: make(map[string]Formatter),
		Handlers:   make(map[string]*Handler),
		Groups:     make(map[string]*Group),
		Loggers:    make(map[string]*Logger),
	}
}

// discard closes the handlers of a partially built t and unregisters its
// loggers, groups and formatters from its context. Levels stay registered.
func (t *Tree) discard() {
	//nolint:errcheck // The build error is more useful.
	t.Close()

	for _, l := range t.Loggers {
		l.drop()
	}

	for _, g := range t.Groups {
		g.drop()
	}

	for _, f := range t.Formatters {
		t.Context.RemoveFormatter(f)
	}
}

func (fc *FileConfig) build(t *Tree) error {
	for _, l := range fc.Levels {
		if strings.TrimSpace(l.Name) == "" {
			return errors.New("level without a name")
		}

		t.Context.RegisterLevel(l.Name, l.Priority)
	}

	colors, err := fc.Colors.dict()
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(fc.Formatters)) {
		f, err := fc.Formatters[name].build(t.Context, colors)
		if err != nil {
			return fmt.Errorf("formatter %q: %w", name, err)
		}

		t.Formatters[name] = f
	}

	for _, name := range slices.Sorted(maps.Keys(fc.Handlers)) {
		h, err := fc.Handlers[name].build(t)
		if err != nil {
			return fmt.Errorf("handler %q: %w", name, err)
		}

		t.Handlers[name] = h
	}

	for _, gc := range fc.Groups {
		err := gc.build(t, nil)
		if err != nil {
			return err
		}
	}

	for _, lc := range fc.Loggers {
		err := lc.build(t, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *ColorsConfig) dict() (*ColorDict, error) {
	d := DefaultColorDict()
	if c == nil {
		return d, nil
	}

	for name, expr := range c.Types {
		k, ok := value.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown value kind %q", name)
		}

		code, err := palette.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("color of %q: %w", name, err)
		}

		d.Types.Types[k] = code
	}

	for name, expr := range c.Levels {
		code, err := palette.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("color of level %q: %w", name, err)
		}

		d.Levels[level.Normalize(name)] = code
	}

	for dst, expr := range map[*string]string{&d.Types.Exception: c.Exception, &d.Types.All: c.All} {
		if expr == "" {
			continue
		}

		code, err := palette.Parse(expr)
		if err != nil {
			return nil, err
		}

		*dst = code
	}

	return d, nil
}

func (c FormatterConfig) build(ctx *Context, colors *ColorDict) (Formatter, error) {
	format := FormatPlain
	if c.Format != "" {
		f, err := ParseFormat(c.Format)
		if err != nil {
			return nil, err
		}

		format = f
	}

	colored := format.Colored(os.Stderr)

	lay := c.Layout
	if lay == "" && c.Preset != "" {
		preset, err := ParsePreset(c.Preset)
		if err != nil {
			return nil, err
		}

		lay, err = preset.Layouts(colored)
		if err != nil {
			return nil, err
		}
	}

	opts := FormatterOptions{
		Context:         ctx,
		StaticVariables: c.Variables,
		Layout:          lay,
		TimeLayout:      c.TimeLayout,
		DisableOffsets:  c.DisableOffsets,
	}

	if colored {
		return NewColoredFormatter(&ColoredOptions{
			Colors:           colors,
			FormatterOptions: opts,
			Repr:             c.Repr,
		})
	}

	return NewPlainFormatter(&opts)
}

func (c HandlerConfig) build(t *Tree) (*Handler, error) {
	spec, err := parseLevelValue(c.Level)
	if err != nil {
		return nil, err
	}

	err = CheckSpec(t.Context, spec)
	if err != nil {
		return nil, err
	}

	var f Formatter
	if c.Formatter != "" {
		var ok bool

		f, ok = t.Formatters[c.Formatter]
		if !ok {
			return nil, fmt.Errorf("unknown formatter %q", c.Formatter)
		}
	}

	s, err := c.sink(t.dryRun)
	if err != nil {
		return nil, err
	}

	return NewHandler(s, &HandlerOptions{
		Formatter:      f,
		Context:        t.Context,
		Level:          spec,
		SkipExceptions: c.LogExceptions != nil && !*c.LogExceptions,
		Disabled:       c.Enabled != nil && !*c.Enabled,
	}), nil
}

// sink opens the sink of c. In a dry run nothing is opened: file paths are
// checked and [sink.Discard] stands in for every sink.
func (c HandlerConfig) sink(dryRun bool) (sink.Sink, error) {
	if c.Sink == SinkFile && c.Path == "" {
		return nil, errors.New("file sink without a path")
	}

	if dryRun {
		switch c.Sink {
		case SinkStdout, SinkStderr, "", SinkDiscard, SinkPublisher:
			return sink.Discard, nil
		case SinkFile:
			err := sink.CheckPath(c.Path)
			if err != nil {
				return nil, err
			}

			return sink.Discard, nil
		}

		return nil, fmt.Errorf("unknown sink %q", c.Sink)
	}

	switch c.Sink {
	case SinkStdout:
		return sink.Stdout(), nil
	case SinkStderr, "":
		return sink.Stderr(), nil
	case SinkDiscard:
		return sink.Discard, nil
	case SinkPublisher:
		return sink.NewPublisher(c.BufferSize), nil
	case SinkFile:
		return sink.Create(c.Path)
	}

	return nil, fmt.Errorf("unknown sink %q", c.Sink)
}

// parseLevelValue converts a decoded YAML level into a [level.Spec]. A
// missing level means "info".
func parseLevelValue(v any) (level.Spec, error) {
	switch x := v.(type) {
	case nil:
		return level.Named(level.Info), nil
	case string:
		return level.ParseSpec(x)
	case int:
		return level.Numeric(x), nil
	case int64:
		return level.Numeric(int(x)), nil
	case uint64:
		return level.Numeric(int(x)), nil //nolint:gosec // Priorities are small.
	case float64:
		if x != float64(int(x)) {
			return level.Spec{}, fmt.Errorf("%w: fractional priority %s", level.ErrUnknownLevel,
				strconv.FormatFloat(x, 'g', -1, 64))
		}

		return level.Numeric(int(x)), nil
	case []any:
		names := make([]string, 0, len(x))
		for _, n := range x {
			s, ok := n.(string)
			if !ok {
				return level.Spec{}, fmt.Errorf("%w: allow-list member %v", level.ErrUnknownLevel, n)
			}

			names = append(names, s)
		}

		return level.Only(names...), nil
	}

	return level.Spec{}, fmt.Errorf("%w: unsupported level %T", level.ErrUnknownLevel, v)
}

func (t *Tree) handlerList(names []string) (*Handlers, error) {
	if names == nil {
		return nil, nil
	}

	hs := NewHandlers()
	for _, n := range names {
		h, ok := t.Handlers[n]
		if !ok {
			return nil, fmt.Errorf("unknown handler %q", n)
		}

		hs.Add(h)
	}

	return hs, nil
}

func nodeOptions(t *Tree, handlers []string, color string, enabled *bool) ([]Option, error) {
	opts := []Option{WithContext(t.Context)}

	hs, err := t.handlerList(handlers)
	if err != nil {
		return nil, err
	}

	if hs != nil {
		opts = append(opts, WithHandlerList(hs))
	}

	if color != "" {
		code, err := palette.Parse(color)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithColor(code))
	}

	if enabled != nil {
		opts = append(opts, WithEnabled(*enabled))
	}

	return opts, nil
}

func (c GroupConfig) build(t *Tree, parent *Group) error {
	opts, err := nodeOptions(t, c.Handlers, c.Color, c.Enabled)
	if err != nil {
		return fmt.Errorf("group %q: %w", c.Name, err)
	}

	if parent != nil {
		opts = append(opts, WithGroup(parent))
	}

	g, err := NewGroup(c.Name, opts...)
	if err != nil {
		return fmt.Errorf("group %q: %w", c.Name, err)
	}

	t.Groups[g.NamePath()] = g

	for _, sub := range c.Groups {
		err := sub.build(t, g)
		if err != nil {
			return err
		}
	}

	for _, lc := range c.Loggers {
		err := lc.build(t, g)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c LoggerConfig) build(t *Tree, g *Group) error {
	if _, dup := t.Loggers[c.Name]; dup {
		return fmt.Errorf("duplicate logger %q", c.Name)
	}

	opts, err := nodeOptions(t, c.Handlers, c.Color, c.Enabled)
	if err != nil {
		return fmt.Errorf("logger %q: %w", c.Name, err)
	}

	if g != nil {
		opts = append(opts, WithGroup(g))
	}

	l, err := NewLogger(c.Name, opts...)
	if err != nil {
		return fmt.Errorf("logger %q: %w", c.Name, err)
	}

	t.Loggers[c.Name] = l

	return nil
}

// WriteConfig encodes fc as YAML to w.
func WriteConfig(w io.Writer, fc *FileConfig) error {
	data, err := yaml.MarshalWithOptions(fc, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode log config: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write log config: %w", err)
	}

	return nil
}
