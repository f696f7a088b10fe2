package palette_test

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/treelog/palette"
)

func TestSGR(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\x1b[0m", palette.Reset)
	assert.Equal(t, "\x1b[95m", palette.Fore["lightmagenta"])
	assert.Equal(t, "\x1b[93;1m", palette.SGR(color.FgHiYellow, color.Bold))
	assert.Empty(t, palette.SGR())
}

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expr    string
		want    string
		wantErr bool
	}{
		"empty": {
			expr: "",
			want: "",
		},
		"foreground": {
			expr: "cyan",
			want: "\x1b[36m",
		},
		"combined": {
			expr: "lightyellow + bold",
			want: "\x1b[93m\x1b[1m",
		},
		"qualified background": {
			expr: "bg.red",
			want: "\x1b[41m",
		},
		"unknown": {
			expr:    "chartreuse",
			wantErr: true,
		},
		"unknown table": {
			expr:    "glow.red",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := palette.Parse(tc.expr)
			if tc.wantErr {
				require.ErrorIs(t, err, palette.ErrUnknownColor)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEmptyTables(t *testing.T) {
	t.Parallel()

	assert.Equal(t, palette.Fore.Names(), palette.EmptyFore.Names())

	v, ok := palette.EmptyFore.Lookup("cyan")
	require.True(t, ok)
	assert.Empty(t, v)

	_, ok = palette.Style.Lookup("sparkle")
	assert.False(t, ok)
}
