package log

import (
	"strings"

	"go.jacobcolvin.com/treelog/layout"
	"go.jacobcolvin.com/treelog/palette"
	"go.jacobcolvin.com/treelog/value"
)

// ColoredOptions configures a [ColoredFormatter].
type ColoredOptions struct {
	// Colors used for values and levels. Defaults to [DefaultColorDict].
	Colors *ColorDict
	// Reset is the sequence ending each colored span. Defaults to
	// [palette.Reset].
	Reset string
	FormatterOptions
	// Repr renders values in Go syntax (%#v) instead of %v.
	Repr bool
}

// ColoredFormatter renders records with terminal colors. Every argument is
// rendered recursively by [value.Renderer], so containers color their
// delimiters and each element by its own kind.
//
// Create instances with [NewColoredFormatter].
type ColoredFormatter struct {
	*formatter
	colors   *ColorDict
	reset    string
	renderer value.Renderer
}

// NewColoredFormatter creates a [ColoredFormatter] and registers it in its
// context. opts may be nil.
func NewColoredFormatter(opts *ColoredOptions) (*ColoredFormatter, error) {
	if opts == nil {
		opts = &ColoredOptions{}
	}

	base, err := newFormatter(opts.FormatterOptions, ColoredMinimalLayout, ColoredMinimalTimeLayout)
	if err != nil {
		return nil, err
	}

	colors := opts.Colors
	if colors == nil {
		colors = DefaultColorDict()
	}

	reset := opts.Reset
	if reset == "" {
		reset = palette.Reset
	}

	base.vars[VarFore] = palette.Fore
	base.vars[VarBack] = palette.Back
	base.vars[VarStyle] = palette.Style
	base.vars[VarReset] = reset

	f := &ColoredFormatter{
		formatter: base,
		colors:    colors,
		reset:     reset,
		renderer: value.Renderer{
			Palette: &colors.Types,
			Reset:   reset,
			Repr:    opts.Repr,
		},
	}
	base.ctx.AddFormatter(f)

	return f, nil
}

// Colors returns the color dictionary in use.
func (f *ColoredFormatter) Colors() *ColorDict { return f.colors }

// FormatValue renders x with colors.
func (f *ColoredFormatter) FormatValue(x any) string {
	return f.renderer.RenderAny(x)
}

// Format implements [Formatter]. Lines end with the reset sequence.
func (f *ColoredFormatter) Format(r *Record) (string, error) {
	args := make([]any, len(r.Args))
	for i, a := range r.Args {
		args[i] = f.renderer.RenderAny(a)
	}

	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = f.renderer.RenderAny(v)
	}

	line, err := f.render(r, args, fields, layout.Map{"levelColor": f.colors.LevelColor(r.Level)})
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(line, f.reset) {
		line += f.reset
	}

	return line, nil
}

// FormatException implements [Formatter].
func (f *ColoredFormatter) FormatException(err error) string {
	return f.colors.Types.Exception + exceptionText(err) + f.reset
}
