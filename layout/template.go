package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrFormatKey indicates a field that is supplied neither by the
	// positional arguments nor by the variables.
	ErrFormatKey = errors.New("unknown format key")
	// ErrFormatSpec indicates an invalid format spec or a value that the
	// spec cannot be applied to.
	ErrFormatSpec = errors.New("invalid format spec")
	// ErrTemplate indicates malformed template syntax.
	ErrTemplate = errors.New("invalid template")
)

// Vars supplies keyword values to a [Template].
type Vars interface {
	Lookup(name string) (any, bool)
}

// Map is a [Vars] backed by a map.
type Map map[string]any

// Lookup implements [Vars].
func (m Map) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Chain is a [Vars] that consults each element in order and returns the
// first hit. Nil elements are skipped.
type Chain []Vars

// Lookup implements [Vars].
func (c Chain) Lookup(name string) (any, bool) {
	for _, vars := range c {
		if vars == nil {
			continue
		}

		if v, ok := vars.Lookup(name); ok {
			return v, true
		}
	}

	return nil, false
}

// Template is a parsed template. Safe for concurrent use.
type Template struct {
	src      string
	segments []segment
}

type segment struct {
	field   *field
	literal string
}

type field struct {
	spec       *Template
	name       string
	raw        string
	attrs      []string
	index      int
	positional bool
	auto       bool
	conv       byte
}

// Parse parses src into a [Template].
func Parse(src string) (*Template, error) {
	t := &Template{src: src}

	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			if i+1 < len(src) && src[i+1] == '{' {
				lit.WriteByte('{')
				i++

				continue
			}

			end, err := matchBrace(src, i)
			if err != nil {
				return nil, err
			}

			f, err := parseField(src[i+1 : end])
			if err != nil {
				return nil, err
			}

			flush()
			t.segments = append(t.segments, segment{field: f})
			i = end

		case '}':
			if i+1 < len(src) && src[i+1] == '}' {
				lit.WriteByte('}')
				i++

				continue
			}

			return nil, fmt.Errorf("%w: single '}' at offset %d in %q", ErrTemplate, i, src)

		default:
			lit.WriteByte(c)
		}
	}

	flush()

	return t, nil
}

// MustParse is like [Parse] but panics on error. Use it for templates that
// are constants.
func MustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return t
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(src string, open int) (int, error) {
	depth := 0
	for j := open; j < len(src); j++ {
		switch src[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrTemplate, open, src)
}

func parseField(raw string) (*field, error) {
	f := &field{raw: raw}

	name := raw
	rest := ""

	if i := strings.IndexAny(raw, "!:"); i >= 0 {
		name, rest = raw[:i], raw[i:]
	}

	if strings.ContainsAny(name, "{}") {
		return nil, fmt.Errorf("%w: invalid field name %q", ErrTemplate, name)
	}

	if strings.HasPrefix(rest, "!") {
		if len(rest) < 2 || (rest[1] != 'r' && rest[1] != 's') {
			return nil, fmt.Errorf("%w: invalid conversion in field %q", ErrTemplate, raw)
		}

		f.conv = rest[1]
		rest = rest[2:]

		if rest != "" && rest[0] != ':' {
			return nil, fmt.Errorf("%w: expected ':' after conversion in field %q", ErrTemplate, raw)
		}
	}

	if strings.HasPrefix(rest, ":") {
		spec, err := Parse(rest[1:])
		if err != nil {
			return nil, err
		}

		f.spec = spec
	}

	parts := strings.Split(name, ".")
	head := parts[0]
	f.attrs = parts[1:]

	for _, a := range f.attrs {
		if a == "" {
			return nil, fmt.Errorf("%w: empty attribute in field %q", ErrTemplate, raw)
		}
	}

	switch {
	case head == "":
		f.positional = true
		f.auto = true
	case isDigits(head):
		idx, err := strconv.Atoi(head)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
		}

		f.positional = true
		f.index = idx
	default:
		f.name = head
	}

	return f, nil
}

func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return s != ""
}

// String returns the source text of t.
func (t *Template) String() string { return t.src }

// Has reports whether t references the keyword field name, either directly
// or inside a format spec.
func (t *Template) Has(name string) bool {
	for _, seg := range t.segments {
		if seg.field == nil {
			continue
		}

		if !seg.field.positional && seg.field.name == name {
			return true
		}

		if seg.field.spec != nil && seg.field.spec.Has(name) {
			return true
		}
	}

	return false
}

// Execute renders t with the given positional arguments and keyword
// variables. vars may be nil.
func (t *Template) Execute(args []any, vars Vars) (string, error) {
	st := &state{args: args, vars: vars}

	return t.execute(st)
}

type state struct {
	vars Vars
	args []any
	next int
}

func (t *Template) execute(st *state) (string, error) {
	var sb strings.Builder

	for _, seg := range t.segments {
		if seg.field == nil {
			sb.WriteString(seg.literal)
			continue
		}

		s, err := seg.field.render(st)
		if err != nil {
			return "", err
		}

		sb.WriteString(s)
	}

	return sb.String(), nil
}

func (f *field) render(st *state) (string, error) {
	v, err := f.resolve(st)
	if err != nil {
		return "", err
	}

	switch f.conv {
	case 'r':
		v = fmt.Sprintf("%#v", v)
	case 's':
		v = fmt.Sprint(v)
	}

	if f.spec == nil {
		return fmt.Sprint(v), nil
	}

	specText, err := f.spec.execute(st)
	if err != nil {
		return "", err
	}

	out, err := Apply(v, specText)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", f.raw, err)
	}

	return out, nil
}

func (f *field) resolve(st *state) (any, error) {
	var v any

	switch {
	case f.auto:
		if st.next >= len(st.args) {
			return nil, fmt.Errorf("%w: positional field %d out of range (%d arguments)",
				ErrFormatKey, st.next, len(st.args))
		}

		v = st.args[st.next]
		st.next++

	case f.positional:
		if f.index >= len(st.args) {
			return nil, fmt.Errorf("%w: positional field %d out of range (%d arguments)",
				ErrFormatKey, f.index, len(st.args))
		}

		v = st.args[f.index]

	default:
		if st.vars == nil {
			return nil, fmt.Errorf("%w: %q", ErrFormatKey, f.name)
		}

		var ok bool

		v, ok = st.vars.Lookup(f.name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrFormatKey, f.name)
		}
	}

	for _, attr := range f.attrs {
		next, ok := attribute(v, attr)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no attribute %q", ErrFormatKey, f.raw, attr)
		}

		v = next
	}

	return v, nil
}

func attribute(v any, name string) (any, bool) {
	switch x := v.(type) {
	case Vars:
		return x.Lookup(name)
	case map[string]string:
		s, ok := x[name]
		return s, ok
	case map[string]any:
		a, ok := x[name]
		return a, ok
	}

	return nil, false
}
