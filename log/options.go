package log

import (
	"fmt"
	"time"
)

// Option configures a [Logger] or [Group] at creation.
type Option func(*options)

type options struct {
	ctx       *Context
	group     *Group
	handlers  *Handlers
	color     *string
	enabled   *bool
	now       func() time.Time
	groupName string
}

// WithContext places the node in ctx. Nodes created under a group always
// use the group's context.
func WithContext(ctx *Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithGroup sets the group a logger joins, or the parent of a new group.
func WithGroup(g *Group) Option {
	return func(o *options) { o.group = g }
}

// WithGroupName is like [WithGroup], resolving the group by its dotted path
// in the context. Resolution fails with [ErrUnknownGroup].
func WithGroupName(name string) Option {
	return func(o *options) { o.groupName = name }
}

// WithHandlers gives the node its own handler list instead of inheriting
// one.
func WithHandlers(hs ...*Handler) Option {
	return func(o *options) { o.handlers = NewHandlers(hs...) }
}

// WithHandlerList shares an existing handler list with the node.
func WithHandlerList(l *Handlers) Option {
	return func(o *options) { o.handlers = l }
}

// WithColor sets the display color of the node.
func WithColor(color string) Option {
	return func(o *options) { o.color = &color }
}

// WithEnabled sets the initial enabled state of the node.
func WithEnabled(enabled bool) Option {
	return func(o *options) { o.enabled = &enabled }
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.group != nil {
		if o.ctx != nil && o.ctx != o.group.ctx {
			return nil, fmt.Errorf("%w: group %q belongs to another context", ErrInvalidArgument, o.group.namePath)
		}

		o.ctx = o.group.ctx
	}

	if o.ctx == nil {
		o.ctx = Default()
	}

	if o.group == nil && o.groupName != "" {
		g, err := o.ctx.Group(o.groupName)
		if err != nil {
			return nil, err
		}

		o.group = g
	}

	if o.now == nil {
		o.now = time.Now
	}

	return o, nil
}
