package level_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/level"
)

func TestAllowsThreshold(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)
	levels := reg.Levels()

	for _, a := range levels {
		for _, b := range levels {
			okAB, err := reg.Allows(level.Named(a.Name), level.ByName(b.Name))
			require.NoError(t, err)

			okNumeric, err := reg.Allows(level.Numeric(a.Priority), level.ByName(b.Name))
			require.NoError(t, err)

			want := a.Priority <= b.Priority
			assert.Equal(t, want, okAB, "threshold %s, record %s", a.Name, b.Name)
			assert.Equal(t, want, okNumeric, "threshold %d, record %s", a.Priority, b.Name)
		}
	}
}

func TestAllows(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		spec    level.Spec
		ref     level.Ref
		want    bool
		wantErr error
	}{
		"debug threshold passes info": {
			spec: level.Named("debug"),
			ref:  level.ByName("info"),
			want: true,
		},
		"error threshold blocks info": {
			spec: level.Named("error"),
			ref:  level.ByName("info"),
			want: false,
		},
		"equal priority passes": {
			spec: level.Named("warn"),
			ref:  level.ByName("warn"),
			want: true,
		},
		"numeric record passes through": {
			spec: level.Named("info"),
			ref:  level.ByPriority(16),
			want: true,
		},
		"numeric threshold": {
			spec: level.Numeric(21),
			ref:  level.ByName("warn"),
			want: false,
		},
		"case insensitive names": {
			spec: level.Named("INFO"),
			ref:  level.ByName("Error"),
			want: true,
		},
		"allow-set admits member": {
			spec: level.Only("warn", "error"),
			ref:  level.ByName("error"),
			want: true,
		},
		"allow-set resolves numeric record": {
			spec: level.Only("warn", "error"),
			ref:  level.ByPriority(20),
			want: true,
		},
		"unknown threshold": {
			spec:    level.Named("verbose"),
			ref:     level.ByName("info"),
			wantErr: level.ErrUnknownLevel,
		},
		"unknown record level": {
			spec:    level.Named("info"),
			ref:     level.ByName("verbose"),
			wantErr: level.ErrUnknownLevel,
		},
		"unknown allow-set member": {
			spec:    level.Only("warn", "verbose"),
			ref:     level.ByName("warn"),
			wantErr: level.ErrUnknownLevel,
		},
		"allow-set with unregistered priority": {
			spec:    level.Only("warn"),
			ref:     level.ByPriority(99),
			wantErr: level.ErrUnknownLevel,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			reg := level.NewRegistry(level.Defaults()...)

			got, err := reg.Allows(tc.spec, tc.ref)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAllowSetGate(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)
	spec := level.Only("warn", "error")

	want := map[string]bool{
		"debug":    false,
		"info":     false,
		"warn":     true,
		"error":    true,
		"critical": false,
	}

	for name, pass := range want {
		got, err := reg.Allows(spec, level.ByName(name))
		require.NoError(t, err)
		assert.Equal(t, pass, got, name)
	}
}

func TestRegisterInvalidatesGate(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)

	ok, err := reg.Allows(level.Named("warn"), level.ByName("info"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Moving info above warn must not be answered from a stale decision.
	reg.Register("info", 22)

	ok, err = reg.Allows(level.Named("warn"), level.ByName("info"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)

	name := reg.Register("  Verbose ", 1)
	assert.Equal(t, "verbose", name)
	assert.True(t, reg.Has("VERBOSE"))
	assert.Equal(t, len("exception"), reg.MaxNameWidth())

	reg.Register("extraordinarily", 40)
	assert.Equal(t, len("extraordinarily"), reg.MaxNameWidth())

	p, err := reg.Priority("verbose")
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	levels := reg.Levels()
	assert.Equal(t, "verbose", levels[0].Name)
	assert.Equal(t, "extraordinarily", levels[len(levels)-1].Name)

	names := reg.Names()
	assert.Equal(t, "debug", names[0])
	assert.Equal(t, "extraordinarily", names[len(names)-1])
}

func TestNameFirstRegisteredWins(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)
	reg.Register("notice", 15)

	name, err := reg.Name(15)
	require.NoError(t, err)
	assert.Equal(t, "info", name)

	ok, err := reg.Allows(level.Only("notice"), level.ByPriority(15))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reg.Name(3)
	require.ErrorIs(t, err, level.ErrUnknownLevel)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := level.NewRegistry(level.Defaults()...)

	name, p, err := reg.Resolve(level.ByPriority(25))
	require.NoError(t, err)
	assert.Equal(t, "error", name)
	assert.Equal(t, 25, p)

	name, p, err = reg.Resolve(level.ByName("Debug"))
	require.NoError(t, err)
	assert.Equal(t, "debug", name)
	assert.Equal(t, 5, p)

	_, _, err = reg.Resolve(level.ByName("nope"))
	require.ErrorIs(t, err, level.ErrUnknownLevel)
}

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		wantKind level.Kind
		wantStr  string
		wantErr  bool
	}{
		"name": {
			input:    "Info",
			wantKind: level.KindNamed,
			wantStr:  "info",
		},
		"number": {
			input:    "15",
			wantKind: level.KindNumeric,
			wantStr:  "15",
		},
		"negative number": {
			input:    "-3",
			wantKind: level.KindNumeric,
			wantStr:  "-3",
		},
		"allow-set": {
			input:    "warn, ERROR,",
			wantKind: level.KindAllowSet,
			wantStr:  "warn,error",
		},
		"empty": {
			input:   " ",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			spec, err := level.ParseSpec(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, level.ErrUnknownLevel)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, spec.Kind())
			assert.Equal(t, tc.wantStr, spec.String())
		})
	}
}
