package log

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.jacobcolvin.com/treelog/level"
	"go.jacobcolvin.com/treelog/sink"
)

// Format selects the formatter variant.
type Format string

const (
	// FormatPlain renders lines without color.
	FormatPlain Format = "plain"
	// FormatColored renders lines with terminal colors.
	FormatColored Format = "colored"
	// FormatAuto renders colored lines when the destination is a terminal.
	FormatAuto Format = "auto"
)

// Preset names a built-in layout.
type Preset string

const (
	// PresetMinimal shows level and message.
	PresetMinimal Preset = "minimal"
	// PresetTimed shows time, level and message.
	PresetTimed Preset = "timed"
	// PresetMaximum shows time, level, logger name and message.
	PresetMaximum Preset = "maximum"
	// PresetGrouped shows time, level, group path, logger name and message.
	PresetGrouped Preset = "grouped"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownFormat indicates an unrecognized format string.
	ErrUnknownFormat = errors.New("unknown log format")
	// ErrUnknownPreset indicates an unrecognized layout preset.
	ErrUnknownPreset = errors.New("unknown layout preset")
	// ErrUnknownGroup indicates a group name that is not registered in the
	// context.
	ErrUnknownGroup = errors.New("unknown group")
)

var (
	allFormats = []Format{FormatPlain, FormatColored, FormatAuto}
	allPresets = []Preset{PresetMinimal, PresetTimed, PresetMaximum, PresetGrouped}
)

// ParseFormat parses a format string and returns the corresponding [Format].
func ParseFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains(allFormats, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ParsePreset parses a preset string and returns the corresponding [Preset].
func ParsePreset(preset string) (Preset, error) {
	p := Preset(strings.ToLower(preset))
	if slices.Contains(allPresets, p) {
		return p, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
}

// GetAllFormatStrings returns every format name.
func GetAllFormatStrings() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = string(f)
	}

	return out
}

// GetAllPresetStrings returns every layout preset name.
func GetAllPresetStrings() []string {
	out := make([]string, len(allPresets))
	for i, p := range allPresets {
		out[i] = string(p)
	}

	return out
}

// GetAllLevelStrings returns the names of the default levels.
func GetAllLevelStrings() []string {
	var out []string
	for _, l := range level.Defaults() {
		out = append(out, l.Name)
	}

	return out
}

// Layouts returns the layout template of preset p for plain or colored
// output.
func (p Preset) Layouts(colored bool) (string, error) {
	switch p {
	case PresetMinimal:
		return pick(colored, ColoredMinimalLayout, MinimalLayout), nil
	case PresetTimed:
		return pick(colored, ColoredTimedMinimalLayout, TimedMinimalLayout), nil
	case PresetMaximum:
		return pick(colored, ColoredMaximumLayout, MaximumLayout), nil
	case PresetGrouped:
		return pick(colored, ColoredGroupedLayout, GroupedLayout), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
}

func pick(colored bool, a, b string) string {
	if colored {
		return a
	}

	return b
}

// Colored reports whether f produces colored output when writing to dst.
func (f Format) Colored(dst any) bool {
	switch f {
	case FormatColored:
		return true
	case FormatAuto:
		return sink.ColorEnabled(dst)
	}

	return false
}

// NewFormatter creates a plain or colored [Formatter] in ctx, using the
// layout of preset. dst is consulted by [FormatAuto].
func NewFormatter(ctx *Context, format Format, preset Preset, dst any) (Formatter, error) {
	colored := format.Colored(dst)

	lay, err := preset.Layouts(colored)
	if err != nil {
		return nil, err
	}

	if colored {
		return NewColoredFormatter(&ColoredOptions{
			FormatterOptions: FormatterOptions{Context: ctx, Layout: lay},
		})
	}

	return NewPlainFormatter(&FormatterOptions{Context: ctx, Layout: lay})
}

// CheckSpec verifies that every level named by spec is registered in ctx.
func CheckSpec(ctx *Context, spec level.Spec) error {
	var names []string

	switch spec.Kind() {
	case level.KindNamed:
		names = []string{spec.Name()}
	case level.KindAllowSet:
		names = spec.Levels()
	case level.KindNumeric:
		return nil
	}

	for _, n := range names {
		if !ctx.Levels().Has(n) {
			return fmt.Errorf("%w: %q", level.ErrUnknownLevel, n)
		}
	}

	return nil
}
