package log

import (
	"fmt"
	"slices"
	"sync"

	"go.jacobcolvin.com/treelog/level"
)

// Offsets are the column widths used to align level names, logger names and
// group paths.
type Offsets struct {
	Level      int
	LoggerName int
	GroupName  int
}

// Context owns the level registry and tracks every live logger, group and
// formatter created in it. Safe for concurrent use.
//
// Create instances with [NewContext], or use the shared [Default].
type Context struct {
	levels     *level.Registry
	groupIndex map[string]*Group
	loggers    []*Logger
	groups     []*Group
	formatters []Formatter
	offsets    Offsets
	mu         sync.Mutex
}

// NewContext creates a [Context] with the given levels, or with
// [level.Defaults] when none are given.
func NewContext(levels ...level.Level) *Context {
	if len(levels) == 0 {
		levels = level.Defaults()
	}

	c := &Context{
		levels:     level.NewRegistry(levels...),
		groupIndex: make(map[string]*Group),
	}
	c.offsets.Level = c.levels.MaxNameWidth()

	return c
}

var defaultContext = NewContext()

// Default returns the shared context used when no context is given.
func Default() *Context { return defaultContext }

// Levels returns the level registry of c.
func (c *Context) Levels() *level.Registry { return c.levels }

// RegisterLevel registers a level (see [level.Registry.Register]) and
// pushes the new level width to every formatter tracking offsets. It returns
// the normalized name.
func (c *Context) RegisterLevel(name string, priority int) string {
	name = c.levels.Register(name, priority)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.offsets.Level = c.levels.MaxNameWidth()
	c.broadcast()

	return name
}

// Offsets returns the current column widths.
func (c *Context) Offsets() Offsets {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.offsets
}

// Group returns the group whose dotted path is name.
func (c *Context) Group(name string) (*Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groupIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}

	return g, nil
}

// Groups returns every group registered in c.
func (c *Context) Groups() []*Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.groups)
}

// Loggers returns every logger registered in c.
func (c *Context) Loggers() []*Logger {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.loggers)
}

// EnableAll enables every logger in c.
func (c *Context) EnableAll() {
	for _, l := range c.Loggers() {
		l.Enable()
	}
}

// DisableAll disables every logger in c.
func (c *Context) DisableAll() {
	for _, l := range c.Loggers() {
		l.Disable()
	}
}

// AddFormatter registers f to receive offset updates and pushes the current
// offsets into it. Formatter constructors in this package call it; custom
// [Formatter] implementations may call it themselves.
func (c *Context) AddFormatter(f Formatter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.formatters, f) {
		return
	}

	c.formatters = append(c.formatters, f)
	if f.TracksOffsets() {
		f.SetOffsets(c.offsets)
	}
}

// RemoveFormatter stops offset updates for f. It reports whether f was
// registered.
func (c *Context) RemoveFormatter(f Formatter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.formatters, f)
	if i < 0 {
		return false
	}

	c.formatters = slices.Delete(c.formatters, i, i+1)

	return true
}

// Formatters returns the formatters registered in c.
func (c *Context) Formatters() []Formatter {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.formatters)
}

func (c *Context) addLogger(l *Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loggers = append(c.loggers, l)
	c.offsets.LoggerName = max(c.offsets.LoggerName, len(l.name))
	c.broadcast()
}

func (c *Context) removeLogger(l *Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.loggers, l)
	if i < 0 {
		return
	}

	c.loggers = slices.Delete(c.loggers, i, i+1)
	c.offsets.LoggerName = c.loggerNameWidth()
	c.broadcast()
}

func (c *Context) addGroup(g *Group) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.groupIndex[g.namePath]; dup {
		return fmt.Errorf("%w: group %q already exists", ErrInvalidArgument, g.namePath)
	}

	c.groups = append(c.groups, g)
	c.groupIndex[g.namePath] = g
	c.offsets.GroupName = max(c.offsets.GroupName, len(g.namePath))
	c.broadcast()

	return nil
}

func (c *Context) removeGroup(g *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.groups, g)
	if i < 0 {
		return
	}

	c.groups = slices.Delete(c.groups, i, i+1)
	delete(c.groupIndex, g.namePath)

	c.offsets.GroupName = 0
	for _, other := range c.groups {
		c.offsets.GroupName = max(c.offsets.GroupName, len(other.namePath))
	}

	c.broadcast()
}

func (c *Context) loggerNameWidth() int {
	width := 0
	for _, l := range c.loggers {
		width = max(width, len(l.name))
	}

	return width
}

// broadcast pushes the current offsets into every formatter tracking them.
// Callers hold c.mu.
func (c *Context) broadcast() {
	for _, f := range c.formatters {
		if f.TracksOffsets() {
			f.SetOffsets(c.offsets)
		}
	}
}
