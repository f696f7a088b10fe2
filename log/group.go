package log

import (
	"slices"
	"sync"
)

// Group is a node of the logger tree. It supplies handlers, color and
// enabled state to the loggers and subgroups created under it. Safe for
// concurrent use.
//
// Create instances with [NewGroup] or [Group.Subgroup].
type Group struct {
	ctx      *Context
	parent   *Group
	handlers *Handlers
	name     string
	namePath string
	color    string
	children []*Group
	loggers  []*Logger
	mu       sync.RWMutex
	enabled  bool
}

// NewGroup creates a group and registers it in its context. Dotted paths are
// unique within a context: a second group at the same path fails with
// [ErrInvalidArgument]. With
// [WithGroup] or [WithGroupName] the new group is a child of that group and
// inherits its context, its handler list (by reference), its color and its
// current enabled state, unless overridden by options.
func NewGroup(name string, opts ...Option) (*Group, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	g := &Group{
		ctx:      o.ctx,
		parent:   o.group,
		name:     name,
		namePath: name,
		enabled:  true,
		handlers: o.handlers,
	}

	if p := o.group; p != nil {
		p.mu.RLock()
		g.namePath = p.namePath + "." + name
		g.color = p.color
		g.enabled = p.enabled

		if g.handlers == nil {
			g.handlers = p.handlers
		}
		p.mu.RUnlock()
	}

	if g.handlers == nil {
		g.handlers = NewHandlers()
	}

	if o.color != nil {
		g.color = *o.color
	}

	if o.enabled != nil {
		g.enabled = *o.enabled
	}

	err = g.ctx.addGroup(g)
	if err != nil {
		return nil, err
	}

	if p := o.group; p != nil {
		p.mu.Lock()
		p.children = append(p.children, g)
		p.mu.Unlock()
	}

	return g, nil
}

// Subgroup creates a child group of g. See [NewGroup].
func (g *Group) Subgroup(name string, opts ...Option) (*Group, error) {
	return NewGroup(name, append(opts, WithGroup(g))...)
}

// Logger creates a logger in g. See [NewLogger].
func (g *Group) Logger(name string, opts ...Option) (*Logger, error) {
	return NewLogger(name, append(opts, WithGroup(g))...)
}

// Enable enables g, then every logger and subgroup under it.
func (g *Group) Enable() { g.setEnabled(true) }

// Disable disables g, then every logger and subgroup under it.
func (g *Group) Disable() { g.setEnabled(false) }

func (g *Group) setEnabled(on bool) {
	g.mu.Lock()
	g.enabled = on
	loggers := slices.Clone(g.loggers)
	children := slices.Clone(g.children)
	g.mu.Unlock()

	for _, l := range loggers {
		l.setEnabled(on)
	}

	for _, c := range children {
		c.setEnabled(on)
	}
}

// Enabled reports whether g is enabled.
func (g *Group) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.enabled
}

// Name returns the name of g.
func (g *Group) Name() string { return g.name }

// NamePath returns the dot-joined path from the root group to g.
func (g *Group) NamePath() string { return g.namePath }

// Color returns the display color of g.
func (g *Group) Color() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.color
}

// Parent returns the parent of g, or nil for a root group.
func (g *Group) Parent() *Group { return g.parent }

// Context returns the context of g.
func (g *Group) Context() *Context { return g.ctx }

// Handlers returns the handler list of g, shared with its descendants.
func (g *Group) Handlers() *Handlers { return g.handlers }

// AddHandler appends h to the shared handler list of g.
func (g *Group) AddHandler(h *Handler) { g.handlers.Add(h) }

// Subgroups returns the direct children of g.
func (g *Group) Subgroups() []*Group {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.children)
}

// Loggers returns the loggers attached directly to g.
func (g *Group) Loggers() []*Logger {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.loggers)
}

func (g *Group) attach(l *Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.loggers = append(g.loggers, l)
}

func (g *Group) detach(l *Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i := slices.Index(g.loggers, l); i >= 0 {
		g.loggers = slices.Delete(g.loggers, i, i+1)
	}
}

// drop removes g from its parent and its context. Loggers under g keep
// their bindings.
func (g *Group) drop() {
	if p := g.parent; p != nil {
		p.mu.Lock()
		p.children = slices.DeleteFunc(p.children, func(c *Group) bool { return c == g })
		p.mu.Unlock()
	}

	g.ctx.removeGroup(g)
}

// state returns the values a joining logger binds to.
func (g *Group) state() (*Handlers, string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.handlers, g.color, g.enabled
}
