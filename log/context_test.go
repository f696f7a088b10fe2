package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/log"
)

func TestOffsetsTrackLoggerNames(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	f := plainFormatter(t, ctx, "{loggerName:<{loggerNameOffset}}|{message}")
	h, buf := bufferHandler(ctx, level.Named(level.Debug), f)

	net, err := log.NewLogger("net", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	long, err := log.NewLogger("VeryLongLoggerName", log.WithContext(ctx), log.WithHandlers(h))
	require.NoError(t, err)

	require.NoError(t, net.Info("x"))
	assert.Equal(t, "net               |x\n", buf.String())
	assert.Equal(t, len("VeryLongLoggerName"), ctx.Offsets().LoggerName)

	// Moving the widest logger out of the context recomputes the offset.
	other, err := log.NewGroup("other", log.WithContext(log.NewContext()))
	require.NoError(t, err)

	long.ChangeGroup(other)
	assert.Equal(t, len("net"), ctx.Offsets().LoggerName)

	buf.Reset()
	require.NoError(t, net.Info("x"))
	assert.Equal(t, "net|x\n", buf.String())
	assert.Same(t, other.Context(), long.Context())
}

func TestOffsetsTrackGroupPaths(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()

	core, err := log.NewGroup("core", log.WithContext(ctx))
	require.NoError(t, err)

	_, err = core.Subgroup("network")
	require.NoError(t, err)

	assert.Equal(t, len("core.network"), ctx.Offsets().GroupName)
}

func TestRegisterLevelBroadcast(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	tracked := plainFormatter(t, ctx, log.MinimalLayout)

	pinned, err := log.NewPlainFormatter(&log.FormatterOptions{Context: ctx, DisableOffsets: true})
	require.NoError(t, err)

	got, ok := tracked.StaticVariable(log.VarLevelOffset)
	require.True(t, ok)
	assert.Equal(t, len(level.Exception), got)

	name := ctx.RegisterLevel("  Verbose_Trace ", 1)
	assert.Equal(t, "verbose_trace", name)

	got, _ = tracked.StaticVariable(log.VarLevelOffset)
	assert.Equal(t, len("verbose_trace"), got)

	got, _ = pinned.StaticVariable(log.VarLevelOffset)
	assert.Equal(t, 0, got)
}

func TestFormatterRegistry(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	f := plainFormatter(t, ctx, log.MinimalLayout)

	assert.Equal(t, []log.Formatter{f}, ctx.Formatters())

	ctx.AddFormatter(f)
	assert.Len(t, ctx.Formatters(), 1, "formatters register once")

	assert.True(t, ctx.RemoveFormatter(f))
	assert.False(t, ctx.RemoveFormatter(f))

	_, err := log.NewLogger("AnExtremelyLongName", log.WithContext(ctx))
	require.NoError(t, err)

	got, _ := f.StaticVariable(log.VarLoggerNameOffset)
	assert.Equal(t, 0, got, "removed formatters stop receiving offsets")
}

func TestContextRegistry(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext(level.Level{Name: "low", Priority: 1}, level.Level{Name: "high", Priority: 2})

	assert.Equal(t, []string{"low", "high"}, ctx.Levels().Names())
	assert.Equal(t, len("high"), ctx.Offsets().Level)

	g, err := log.NewGroup("g", log.WithContext(ctx))
	require.NoError(t, err)

	l, err := g.Logger("l")
	require.NoError(t, err)

	assert.Equal(t, []*log.Group{g}, ctx.Groups())
	assert.Equal(t, []*log.Logger{l}, ctx.Loggers())

	_, err = ctx.Group("nope")
	require.ErrorIs(t, err, log.ErrUnknownGroup)
}
