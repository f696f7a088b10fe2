package log_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/log"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/sink"
)

const treeConfig = `
levels:
  - name: trace
    priority: 1
formatters:
  plain:
    format: plain
    layout: "{level}:{groupName}:{loggerName}: {message}"
handlers:
  out:
    sink: publisher
    level: trace
    formatter: plain
    bufferSize: 8
  errors:
    sink: publisher
    level: [error, critical]
    formatter: plain
groups:
  - name: core
    color: fore.cyan
    handlers: [out]
    groups:
      - name: net
        loggers:
          - name: dial
  - name: quiet
    enabled: false
    handlers: [out]
    loggers:
      - name: muted
loggers:
  - name: root
    color: fore.red+bold
    handlers: [out, errors]
`

func subscribe(t *testing.T, tree *log.Tree, handler string) *sink.Subscription {
	t.Helper()

	pub, ok := tree.Handlers[handler].Sink().(*sink.Publisher)
	require.True(t, ok)

	return pub.Subscribe(nil)
}

func TestFileConfigBuild(t *testing.T) {
	t.Parallel()

	fc, err := log.ParseConfig([]byte(treeConfig))
	require.NoError(t, err)

	tree, err := fc.Build(nil)
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, tree.Close()) })

	out := subscribe(t, tree, "out")
	errs := subscribe(t, tree, "errors")

	dial, err := tree.Logger("dial")
	require.NoError(t, err)

	require.NoError(t, dial.Log("trace", "connecting"))
	assert.Equal(t, "trace:core.net:dial: connecting", (<-out.C()).Line)

	muted, err := tree.Logger("muted")
	require.NoError(t, err)
	assert.False(t, muted.Enabled())

	root, err := tree.Logger("root")
	require.NoError(t, err)
	assert.Equal(t, palette.Fore["red"]+palette.Style["bold"], root.Color())

	require.NoError(t, root.Error("down"))
	assert.Equal(t, "error:*:root: down", (<-out.C()).Line)

	got := <-errs.C()
	assert.Equal(t, "error:*:root: down", got.Line)
	assert.Equal(t, "root", got.Logger)
	assert.Equal(t, log.UngroupedPath, got.Group)

	assert.Equal(t, palette.Fore["cyan"], tree.Groups["core.net"].Color())
	assert.Len(t, out.C(), 0)

	_, err = tree.Logger("ghost")
	require.ErrorIs(t, err, log.ErrInvalidArgument)
}

func TestFileConfigBuildErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"unknown handler reference": `
loggers:
  - name: a
    handlers: [missing]
`,
		"unknown formatter reference": `
handlers:
  h: {sink: discard, formatter: missing}
`,
		"unknown level": `
handlers:
  h: {sink: discard, level: loud}
`,
		"file sink without path": `
handlers:
  h: {sink: file}
`,
		"bad color": `
groups:
  - name: g
    color: fore.mauve
`,
		"unknown type color": `
colors:
  types: {int: fore.red}
  levels: {info: blurple}
`,
		"duplicate logger": `
loggers:
  - name: a
  - name: a
`,
	}

	for name, doc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fc, err := log.ParseConfig([]byte(doc))
			require.NoError(t, err)

			_, err = fc.Build(nil)
			require.ErrorIs(t, err, log.ErrInvalidConfig)
		})
	}
}

func TestFileConfigFileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.log")

	fc := &log.FileConfig{
		Formatters: map[string]log.FormatterConfig{
			"f": {Format: "plain", Preset: "minimal", DisableOffsets: true},
		},
		Handlers: map[string]log.HandlerConfig{
			"file": {Sink: log.SinkFile, Path: path, Formatter: "f", Level: 20},
		},
		Loggers: []log.LoggerConfig{{Name: "app", Handlers: []string{"file"}}},
	}

	tree, err := fc.Build(log.NewContext())
	require.NoError(t, err)

	app, err := tree.Logger("app")
	require.NoError(t, err)

	require.NoError(t, app.Info("skipped"))
	require.NoError(t, app.Warn("kept"))
	require.NoError(t, tree.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn kept\n", string(data))
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()

	fc, err := log.ParseConfig([]byte(treeConfig))
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, log.WriteConfig(&buf, fc))

	again, err := log.ParseConfig(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, fc.Groups, again.Groups)
	assert.Equal(t, fc.Levels, again.Levels)
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := log.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		doc     string
		wantErr bool
	}{
		"empty document": {
			doc: "",
		},
		"full document": {
			doc: treeConfig,
		},
		"numeric level": {
			doc: "handlers:\n  h: {sink: stderr, level: 15}\n",
		},
		"unknown top-level key": {
			doc:     "sinks: {}\n",
			wantErr: true,
		},
		"unknown sink": {
			doc:     "handlers:\n  h: {sink: kafka}\n",
			wantErr: true,
		},
		"logger without name": {
			doc:     "loggers:\n  - color: fore.red\n",
			wantErr: true,
		},
		"nested group with unknown key": {
			doc:     "groups:\n  - name: a\n    groups:\n      - name: b\n        colour: red\n",
			wantErr: true,
		},
		"level of the wrong type": {
			doc:     "handlers:\n  h: {sink: stderr, level: true}\n",
			wantErr: true,
		},
		"not yaml": {
			doc:     "levels: [",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := log.ValidateConfig([]byte(tc.doc))
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigSchemaResolves(t *testing.T) {
	t.Parallel()

	s := log.ConfigSchema()

	_, err := s.Resolve(nil)
	require.NoError(t, err)
	assert.Contains(t, s.Properties, "handlers")
	assert.Contains(t, s.Defs, "group")
}

func TestParseLevelValues(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level any
		kind  level.Kind
	}{
		"missing":  {level: nil, kind: level.KindNamed},
		"name":     {level: "warn", kind: level.KindNamed},
		"priority": {level: 12, kind: level.KindNumeric},
		"list":     {level: []any{"info"}, kind: level.KindAllowSet},
		"csv":      {level: "info,warn", kind: level.KindAllowSet},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fc := &log.FileConfig{
				Handlers: map[string]log.HandlerConfig{"h": {Sink: log.SinkDiscard, Level: tc.level}},
			}

			tree, err := fc.Build(nil)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, tree.Handlers["h"].Level().Kind())
		})
	}
}

func TestFileConfigCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(existing, []byte("earlier run\n"), 0o600))

	tcs := map[string]struct {
		path    string
		wantErr bool
	}{
		"existing file is kept":   {path: existing},
		"new file is not created": {path: filepath.Join(dir, "new.log")},
		"missing directory":       {path: filepath.Join(dir, "missing", "x.log"), wantErr: true},
		"directory":               {path: dir, wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			fc := &log.FileConfig{
				Handlers: map[string]log.HandlerConfig{"f": {Sink: log.SinkFile, Path: tc.path}},
				Loggers:  []log.LoggerConfig{{Name: "app", Handlers: []string{"f"}}},
			}

			err := fc.Check()
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrInvalidConfig)
				require.ErrorIs(t, err, sink.ErrWrite)
			} else {
				require.NoError(t, err)
			}
		})
	}

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "new.log"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileConfigBuildLeavesContextUntouched(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"dangling handler": `
levels:
  - {name: trace, priority: 1}
formatters:
  f: {format: plain}
groups:
  - name: fresh
    loggers: [{name: a, handlers: [missing]}]
`,
		"group already in the context": `
levels:
  - {name: trace, priority: 1}
formatters:
  f: {format: plain}
groups:
  - name: core
    groups: [{name: net}]
`,
		"duplicate group path": `
groups:
  - name: fresh
  - name: fresh
`,
	}

	for name, doc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := log.NewContext()

			core, err := log.NewGroup("core", log.WithContext(ctx))
			require.NoError(t, err)

			_, err = core.Subgroup("net")
			require.NoError(t, err)

			before := ctx.Offsets()

			fc, err := log.ParseConfig([]byte(doc))
			require.NoError(t, err)

			_, err = fc.Build(ctx)
			require.ErrorIs(t, err, log.ErrInvalidConfig)

			assert.Len(t, ctx.Groups(), 2)
			assert.Empty(t, ctx.Loggers())
			assert.Empty(t, ctx.Formatters())
			assert.False(t, ctx.Levels().Has("trace"))
			assert.Equal(t, before, ctx.Offsets())
			assert.Len(t, core.Subgroups(), 1)
		})
	}
}

func TestFileConfigBuildUsesContextLevels(t *testing.T) {
	t.Parallel()

	ctx := log.NewContext()
	ctx.RegisterLevel("audit", 40)

	fc := &log.FileConfig{
		Handlers: map[string]log.HandlerConfig{"h": {Sink: log.SinkDiscard, Level: "audit"}},
	}

	_, err := fc.Build(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, fc.Check(), log.ErrInvalidConfig, "Check only knows the default levels")
}

func TestFileConfigUnknownColor(t *testing.T) {
	t.Parallel()

	fc := &log.FileConfig{Groups: []log.GroupConfig{{Name: "g", Color: "fore.mauve"}}}

	_, err := fc.Build(nil)
	require.ErrorIs(t, err, log.ErrInvalidConfig)
	require.ErrorIs(t, err, palette.ErrUnknownColor)
}
