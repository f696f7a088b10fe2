package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/log"
)

func TestGroupInheritance(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	h, buf := bufferHandler(ctx, level.Named(level.Debug), plainFormatter(t, ctx, "{groupName}/{loggerName}: {message}"))

	core, err := log.NewGroup("core", log.WithContext(ctx), log.WithHandlers(h), log.WithColor("<core>"))
	require.NoError(t, err)

	net, err := core.Subgroup("net")
	require.NoError(t, err)

	dial, err := net.Logger("dial")
	require.NoError(t, err)

	assert.Equal(t, "core.net", net.NamePath())
	assert.Same(t, core, net.Parent())
	assert.Same(t, core.Handlers(), net.Handlers(), "subgroups share the handler list")
	assert.Equal(t, "<core>", net.Color())
	assert.Equal(t, "<core>", dial.Color())
	assert.Equal(t, "core.net", dial.GroupPath())
	assert.Same(t, ctx, dial.Context())

	require.NoError(t, dial.Info("connected"))
	assert.Equal(t, "core.net/dial: connected\n", buf.String())

	found, err := ctx.Group("core.net")
	require.NoError(t, err)
	assert.Same(t, net, found)
	assert.Equal(t, []*log.Logger{dial}, net.Loggers())
	assert.Equal(t, []*log.Group{net}, core.Subgroups())
}

func TestSharedHandlerList(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()

	core, err := log.NewGroup("core", log.WithContext(ctx))
	require.NoError(t, err)

	l, err := core.Logger("late")
	require.NoError(t, err)

	h, buf := bufferHandler(ctx, level.Named(level.Debug), plainFormatter(t, ctx, "{message}"))
	core.AddHandler(h)

	require.NoError(t, l.Info("seen"))
	assert.Equal(t, "seen\n", buf.String(), "handlers added to a group reach existing loggers")
}

func TestDisabledCascade(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	spy := &spyFormatter{ctx: ctx}
	h, buf := bufferHandler(ctx, level.Numeric(0), spy)

	root, err := log.NewGroup("root", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	child, err := root.Subgroup("child")
	require.NoError(t, err)

	direct, err := root.Logger("direct")
	require.NoError(t, err)

	nested, err := child.Logger("nested")
	require.NoError(t, err)

	root.Disable()

	assert.False(t, root.Enabled())
	assert.False(t, child.Enabled())
	assert.False(t, direct.Enabled())
	assert.False(t, nested.Enabled())

	for _, l := range []*log.Logger{direct, nested} {
		require.NoError(t, l.Critical("dropped"))
	}

	assert.Zero(t, spy.calls.Load(), "disabled loggers do no formatting work")
	assert.Empty(t, buf.String())

	late, err := child.Logger("late")
	require.NoError(t, err)
	assert.False(t, late.Enabled(), "loggers created in a disabled group start disabled")

	root.Enable()

	require.NoError(t, nested.Info("back"))
	assert.Equal(t, int32(1), spy.calls.Load())
	assert.Equal(t, "back\n", buf.String())
}

func TestDisabledHandler(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	spy := &spyFormatter{ctx: ctx}
	h, buf := bufferHandler(ctx, level.Numeric(0), spy)
	h.Disable()

	l, err := log.NewLogger("quiet", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	require.NoError(t, l.Critical("dropped"))
	assert.Zero(t, spy.calls.Load())
	assert.Empty(t, buf.String())
}

func TestHandlerIndependence(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	f := plainFormatter(t, ctx, "{message}")
	errH, errBuf := bufferHandler(ctx, level.Named(level.Error), f)
	dbgH, dbgBuf := bufferHandler(ctx, level.Named(level.Debug), f)

	l, err := log.NewLogger("svc", log.WithContext(ctx), log.WithHandlers(errH, dbgH))
	require.NoError(t, err)

	require.NoError(t, l.Info("hello"))
	assert.Empty(t, errBuf.String())
	assert.Equal(t, "hello\n", dbgBuf.String())
}

func TestAllowSetHandler(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	h, buf := bufferHandler(ctx, level.Only(level.Debug, level.Error), plainFormatter(t, ctx, "{level}:{message}"))

	l, err := log.NewLogger("svc", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	require.NoError(t, l.Debug("a"))
	require.NoError(t, l.Info("b"))
	require.NoError(t, l.Error("c"))
	require.NoError(t, l.Critical("d"))
	require.NoError(t, l.LogPriority(25, "e"))

	assert.Equal(t, "debug:a\nerror:c\nerror:e\n", buf.String())
}

func TestNumericLevels(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	h, buf := bufferHandler(ctx, level.Numeric(16), plainFormatter(t, ctx, "{level}:{message}"))

	l, err := log.NewLogger("svc", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	require.NoError(t, l.LogPriority(15, "below"))
	require.NoError(t, l.LogPriority(17, "custom"))
	require.NoError(t, l.Warn("named"))

	assert.Equal(t, "17:custom\nwarn:named\n", buf.String())
}

func TestUnknownLevel(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	h, _ := bufferHandler(ctx, level.Named(level.Debug), plainFormatter(t, ctx, "{message}"))

	l, err := log.NewLogger("svc", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	err = l.Log("verbose", "x")
	require.ErrorIs(t, err, level.ErrUnknownLevel)

	ctx.RegisterLevel("Verbose", 1)
	require.NoError(t, l.Log("verbose", "x"))
}

func TestGroupByName(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()

	_, err := log.NewLogger("x", log.WithContext(ctx), log.WithGroupName("missing"))
	require.ErrorIs(t, err, log.ErrUnknownGroup)

	_, err = log.NewGroup("child", log.WithContext(ctx), log.WithGroupName("missing"))
	require.ErrorIs(t, err, log.ErrUnknownGroup)

	g, err := log.NewGroup("present", log.WithContext(ctx))
	require.NoError(t, err)

	l, err := log.NewLogger("x", log.WithContext(ctx), log.WithGroupName("present"))
	require.NoError(t, err)
	assert.Same(t, g, l.Group())

	err = l.ChangeGroupByName("missing")
	require.ErrorIs(t, err, log.ErrUnknownGroup)
	assert.Same(t, g, l.Group(), "failed moves leave the logger in place")
}

func TestContextMismatch(t *testing.T) {
	t.Parallel()

	g, err := log.NewGroup("g", log.WithContext(log.NewContext()))
	require.NoError(t, err)

	_, err = log.NewLogger("x", log.WithContext(log.NewContext()), log.WithGroup(g))
	require.ErrorIs(t, err, log.ErrInvalidArgument)
}

func TestChangeGroup(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	f := plainFormatter(t, ctx, "{groupName}:{message}")
	ha, bufA := bufferHandler(ctx, level.Named(level.Debug), f)
	hb, bufB := bufferHandler(ctx, level.Named(level.Debug), f)

	a, err := log.NewGroup("a", log.WithContext(ctx), log.WithHandlers(ha), log.WithColor("<a>"))
	require.NoError(t, err)

	b, err := log.NewGroup("b", log.WithContext(ctx), log.WithHandlers(hb), log.WithColor("<b>"))
	require.NoError(t, err)

	b.Disable()

	l, err := a.Logger("mover")
	require.NoError(t, err)

	pinned, err := a.Logger("pinned", log.WithColor("<own>"))
	require.NoError(t, err)

	l.ChangeGroup(b)
	pinned.ChangeGroup(b)

	assert.Equal(t, "b", l.GroupPath())
	assert.Equal(t, "<b>", l.Color())
	assert.Equal(t, "<own>", pinned.Color(), "explicit colors survive a move")
	assert.False(t, l.Enabled(), "enabled state comes from the new group")
	assert.Empty(t, a.Loggers())
	assert.Len(t, b.Loggers(), 2)

	b.Enable()
	require.NoError(t, l.Info("moved"))

	assert.Empty(t, bufA.String())
	assert.Equal(t, "b:moved\n", bufB.String())
}

func TestLoggerOutsideGroup(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	h, buf := bufferHandler(ctx, level.Named(level.Debug), plainFormatter(t, ctx, "{groupName} {message}"))

	l, err := log.NewLogger("solo", log.WithContext(ctx), log.WithHandlers(h), log.WithEnabled(false))
	require.NoError(t, err)

	assert.Nil(t, l.Group())
	assert.Equal(t, log.UngroupedPath, l.GroupPath())

	require.NoError(t, l.Info("hidden"))
	assert.Empty(t, buf.String())

	l.Enable()
	require.NoError(t, l.Info("shown"))
	assert.Equal(t, "* shown\n", buf.String())

	ctx.DisableAll()
	assert.False(t, l.Enabled())

	ctx.EnableAll()
	assert.True(t, l.Enabled())
}

func TestLoggerWithoutHandlers(t *testing.T) {
	t.Parallel()

	l, err := log.NewLogger("bare", log.WithContext(log.NewContext()))
	require.NoError(t, err)
	require.NoError(t, l.Critical("nowhere"))
}

func TestDuplicateGroupPath(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()

	first, err := log.NewGroup("svc", log.WithContext(ctx))
	require.NoError(t, err)

	_, err = log.NewGroup("svc", log.WithContext(ctx))
	require.ErrorIs(t, err, log.ErrInvalidArgument)

	api, err := first.Subgroup("api")
	require.NoError(t, err)

	_, err = first.Subgroup("api")
	require.ErrorIs(t, err, log.ErrInvalidArgument)

	found, err := ctx.Group("svc")
	require.NoError(t, err)
	assert.Same(t, first, found)
	assert.Len(t, ctx.Groups(), 2)
	assert.Equal(t, []*log.Group{api}, first.Subgroups(), "rejected groups never join their parent")
}
