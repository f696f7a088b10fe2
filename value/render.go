package value

import (
	"fmt"
	"strings"
)

// Palette maps kinds to color codes, with two fallback buckets.
type Palette struct {
	Types map[Kind]string
	// Exception colors errors without an entry in Types.
	Exception string
	// All colors any other kind without an entry in Types.
	All string
}

// Color returns the color of kind k.
func (p *Palette) Color(k Kind) string {
	if p == nil {
		return ""
	}

	if c, ok := p.Types[k]; ok {
		return c
	}

	if k == KindError {
		return p.Exception
	}

	return p.All
}

// Renderer turns values into text. With a nil Palette it renders plain text
// and never consults colors.
type Renderer struct {
	Palette *Palette
	// Reset is appended after each colored leaf and container.
	Reset string
	// Repr renders leaves in Go syntax (%#v) instead of %v.
	Repr bool
}

// Render returns the text of v.
func (r Renderer) Render(v Value) string {
	var sb strings.Builder

	r.render(&sb, v)

	return sb.String()
}

// RenderAny adapts x with [Of] and renders it.
func (r Renderer) RenderAny(x any) string {
	return r.Render(Of(x))
}

func (r Renderer) render(sb *strings.Builder, v Value) {
	switch v.variant {
	case Directive:
		// The caller's reset stays outside the directive.
		sb.WriteString(r.Palette.Color(v.kind))
		sb.WriteString(v.text)

	case Sequence:
		r.container(sb, v, "[", "]")

	case TupleVariant:
		r.container(sb, v, "(", ")")

	case Mapping:
		r.mapping(sb, v)

	case UncoloredVariant:
		sb.WriteString(r.leaf(v.raw))
		sb.WriteString(r.Reset)

	default:
		sb.WriteString(r.Palette.Color(v.kind))
		sb.WriteString(r.leaf(v.raw))
		sb.WriteString(r.Reset)
	}
}

func (r Renderer) container(sb *strings.Builder, v Value, open, closing string) {
	c := r.Palette.Color(v.kind)

	if !v.unpack {
		sb.WriteString(c)
		sb.WriteString(open)
	}

	for i, e := range v.elems {
		if i > 0 {
			sb.WriteString(c)
			sb.WriteString(", ")
		}

		r.render(sb, e)
	}

	if !v.unpack {
		sb.WriteString(c)
		sb.WriteString(closing)
	}

	sb.WriteString(r.Reset)
}

func (r Renderer) mapping(sb *strings.Builder, v Value) {
	c := r.Palette.Color(v.kind)

	sep := ": "
	if v.unpack {
		sep = " => "
	} else {
		sb.WriteString(c)
		sb.WriteString("{")
	}

	for i, e := range v.entries {
		if i > 0 {
			sb.WriteString(c)
			sb.WriteString(", ")
		}

		r.render(sb, e.Key)
		sb.WriteString(c)
		sb.WriteString(sep)
		r.render(sb, e.Val)
	}

	if !v.unpack {
		sb.WriteString(c)
		sb.WriteString("}")
	}

	sb.WriteString(r.Reset)
}

func (r Renderer) leaf(x any) string {
	if x == nil {
		if r.Repr {
			return "nil"
		}

		return "<nil>"
	}

	if err, ok := x.(error); ok {
		if r.Repr {
			return fmt.Sprintf("%q", err.Error())
		}

		return err.Error()
	}

	if r.Repr {
		return fmt.Sprintf("%#v", x)
	}

	if b, ok := x.([]byte); ok {
		return string(b)
	}

	return fmt.Sprint(x)
}
