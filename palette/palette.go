// Package palette provides the terminal color tables bound into formatter
// templates as "fore", "bg" and "style".
//
// Each [Table] maps a symbolic color name to an escape sequence built from
// [github.com/fatih/color] attributes. The Empty tables hold the same names
// mapped to "", so templates written for colored output render cleanly in
// plain output:
//
//	"{fore.cyan}{hour:02d}{fore.reset}"
package palette

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// ErrUnknownColor indicates a color name that no table defines.
var ErrUnknownColor = errors.New("unknown color")

// SGR returns the Select Graphic Rendition escape sequence for attrs.
func SGR(attrs ...color.Attribute) string {
	if len(attrs) == 0 {
		return ""
	}

	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = strconv.Itoa(int(a))
	}

	return "\x1b[" + strings.Join(parts, ";") + "m"
}

// Attributes without a named constant in fatih/color.
const (
	fgDefault color.Attribute = 39
	bgDefault color.Attribute = 49
)

// Table maps color names to escape sequences. It implements the Lookup
// method used by templates for "{fore.cyan}" style attribute access.
type Table map[string]string

// Lookup returns the escape sequence called name.
func (t Table) Lookup(name string) (any, bool) {
	s, ok := t[name]
	return s, ok
}

// Code returns the escape sequence called name, or "" if absent.
func (t Table) Code(name string) string {
	return t[name]
}

// Names returns the color names in t, sorted.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

// Empty returns a table with the same names as t, all mapped to "".
func (t Table) Empty() Table {
	out := make(Table, len(t))
	for n := range t {
		out[n] = ""
	}

	return out
}

// Reset clears every attribute.
var Reset = SGR(color.Reset)

var (
	// Fore holds foreground colors.
	Fore = Table{
		"reset":        SGR(fgDefault),
		"black":        SGR(color.FgBlack),
		"red":          SGR(color.FgRed),
		"green":        SGR(color.FgGreen),
		"yellow":       SGR(color.FgYellow),
		"blue":         SGR(color.FgBlue),
		"magenta":      SGR(color.FgMagenta),
		"cyan":         SGR(color.FgCyan),
		"white":        SGR(color.FgWhite),
		"lightblack":   SGR(color.FgHiBlack),
		"lightred":     SGR(color.FgHiRed),
		"lightgreen":   SGR(color.FgHiGreen),
		"lightyellow":  SGR(color.FgHiYellow),
		"lightblue":    SGR(color.FgHiBlue),
		"lightmagenta": SGR(color.FgHiMagenta),
		"lightcyan":    SGR(color.FgHiCyan),
		"lightwhite":   SGR(color.FgHiWhite),
	}

	// Back holds background colors.
	Back = Table{
		"reset":        SGR(bgDefault),
		"black":        SGR(color.BgBlack),
		"red":          SGR(color.BgRed),
		"green":        SGR(color.BgGreen),
		"yellow":       SGR(color.BgYellow),
		"blue":         SGR(color.BgBlue),
		"magenta":      SGR(color.BgMagenta),
		"cyan":         SGR(color.BgCyan),
		"white":        SGR(color.BgWhite),
		"lightblack":   SGR(color.BgHiBlack),
		"lightred":     SGR(color.BgHiRed),
		"lightgreen":   SGR(color.BgHiGreen),
		"lightyellow":  SGR(color.BgHiYellow),
		"lightblue":    SGR(color.BgHiBlue),
		"lightmagenta": SGR(color.BgHiMagenta),
		"lightcyan":    SGR(color.BgHiCyan),
		"lightwhite":   SGR(color.BgHiWhite),
	}

	// Style holds text styles.
	Style = Table{
		"reset":     Reset,
		"bold":      SGR(color.Bold),
		"faint":     SGR(color.Faint),
		"italic":    SGR(color.Italic),
		"underline": SGR(color.Underline),
		"blink":     SGR(color.BlinkSlow),
		"reverse":   SGR(color.ReverseVideo),
	}

	// EmptyFore, EmptyBack and EmptyStyle are the plain-output counterparts
	// of Fore, Back and Style.
	EmptyFore  = Fore.Empty()
	EmptyBack  = Back.Empty()
	EmptyStyle = Style.Empty()
)

// Parse resolves a color expression to an escape sequence. An expression is
// a "+"-separated list of names, each optionally qualified with its table
// ("fore.", "bg." or "style."). Unqualified names are looked up in Fore, then
// Style. Example: "lightyellow+bold", "bg.red+style.underline".
func Parse(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", nil
	}

	var sb strings.Builder

	for part := range strings.SplitSeq(expr, "+") {
		part = strings.ToLower(strings.TrimSpace(part))

		code, ok := lookupQualified(part)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownColor, part)
		}

		sb.WriteString(code)
	}

	return sb.String(), nil
}

func lookupQualified(name string) (string, bool) {
	table, key, qualified := strings.Cut(name, ".")
	if qualified {
		switch table {
		case "fore":
			s, ok := Fore[key]
			return s, ok
		case "bg", "back":
			s, ok := Back[key]
			return s, ok
		case "style":
			s, ok := Style[key]
			return s, ok
		}

		return "", false
	}

	if s, ok := Fore[name]; ok {
		return s, true
	}

	s, ok := Style[name]

	return s, ok
}
