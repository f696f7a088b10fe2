package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	grouping  byte
	typ       byte
	width     int
	precision int
	alt       bool
	zero      bool
}

func isAlign(c byte) bool {
	return c == '<' || c == '>' || c == '^' || c == '='
}

func parseSpec(s string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}

	if s == "" {
		return fs, nil
	}

	// Fill is any rune followed by an alignment character.
	if r, size := utf8.DecodeRuneInString(s); size < len(s) && isAlign(s[size]) {
		fs.fill = r
		fs.align = s[size]
		s = s[size+1:]
	} else if isAlign(s[0]) {
		fs.align = s[0]
		s = s[1:]
	}

	if s != "" && (s[0] == '+' || s[0] == '-' || s[0] == ' ') {
		fs.sign = s[0]
		s = s[1:]
	}

	if s != "" && s[0] == '#' {
		fs.alt = true
		s = s[1:]
	}

	if s != "" && s[0] == '0' {
		fs.zero = true
		s = s[1:]
	}

	digits := leadingDigits(s)
	if digits != "" {
		w, err := strconv.Atoi(digits)
		if err != nil {
			return fs, fmt.Errorf("%w: width %q", ErrFormatSpec, digits)
		}

		fs.width = w
		s = s[len(digits):]
	}

	if s != "" && (s[0] == ',' || s[0] == '_') {
		fs.grouping = s[0]
		s = s[1:]
	}

	if s != "" && s[0] == '.' {
		digits = leadingDigits(s[1:])
		if digits == "" {
			return fs, fmt.Errorf("%w: missing precision", ErrFormatSpec)
		}

		p, err := strconv.Atoi(digits)
		if err != nil {
			return fs, fmt.Errorf("%w: precision %q", ErrFormatSpec, digits)
		}

		fs.precision = p
		s = s[1+len(digits):]
	}

	if len(s) == 1 && strings.IndexByte("sdboxXeEfFgG%", s[0]) >= 0 {
		fs.typ = s[0]
		s = ""
	}

	if s != "" {
		return fs, fmt.Errorf("%w: unexpected %q", ErrFormatSpec, s)
	}

	return fs, nil
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	return s[:i]
}

// Apply formats v according to the format spec mini-language described in
// the package documentation.
func Apply(v any, spec string) (string, error) {
	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}

	i, isInt := asInt(v)
	f, isFloat := asFloat(v)

	var (
		body    string
		neg     bool
		numeric bool
	)

	switch fs.typ {
	case 'd', 'b', 'o', 'x', 'X':
		if !isInt {
			return "", fmt.Errorf("%w: type %q requires an integer, got %T", ErrFormatSpec, fs.typ, v)
		}

		numeric = true
		neg, body = formatInt(i, fs)

	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		switch {
		case isFloat:
		case isInt:
			f = i.float()
		default:
			return "", fmt.Errorf("%w: type %q requires a number, got %T", ErrFormatSpec, fs.typ, v)
		}

		numeric = true
		neg, body = formatFloat(f, fs)

	case 's':
		body = truncate(fmt.Sprint(v), fs.precision)

	default:
		switch {
		case isInt:
			numeric = true
			neg, body = formatInt(i, fs)
		case isFloat:
			numeric = true

			if fs.precision >= 0 {
				fs.typ = 'g'
				neg, body = formatFloat(f, fs)
			} else {
				neg = math.Signbit(f)
				body = fmt.Sprint(math.Abs(f))
			}
		default:
			body = truncate(fmt.Sprint(v), fs.precision)
		}
	}

	prefix := ""
	if numeric {
		switch {
		case neg:
			prefix = "-"
		case fs.sign == '+':
			prefix = "+"
		case fs.sign == ' ':
			prefix = " "
		}

		if fs.alt {
			switch fs.typ {
			case 'b':
				prefix += "0b"
			case 'o':
				prefix += "0o"
			case 'x':
				prefix += "0x"
			case 'X':
				prefix += "0X"
			}
		}

		if fs.grouping != 0 {
			body = group(body, fs.grouping)
		}
	}

	align := fs.align
	fill := fs.fill

	if fs.zero && align == 0 {
		fill = '0'
		if numeric {
			align = '='
		}
	}

	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}

	return pad(prefix, body, fs.width, fill, align), nil
}

// integer is an integer value split into sign and magnitude, so the full
// range of both int64 and uint64 is representable.
type integer struct {
	mag uint64
	neg bool
}

func (n integer) float() float64 {
	f := float64(n.mag)
	if n.neg {
		return -f
	}

	return f
}

func signed(i int64) integer {
	if i < 0 {
		// Two's complement negation also holds for math.MinInt64.
		return integer{mag: -uint64(i), neg: true}
	}

	return integer{mag: uint64(i)}
}

func asInt(v any) (integer, bool) {
	switch x := v.(type) {
	case int:
		return signed(int64(x)), true
	case int8:
		return signed(int64(x)), true
	case int16:
		return signed(int64(x)), true
	case int32:
		return signed(int64(x)), true
	case int64:
		return signed(x), true
	case uint:
		return integer{mag: uint64(x)}, true
	case uint8:
		return integer{mag: uint64(x)}, true
	case uint16:
		return integer{mag: uint64(x)}, true
	case uint32:
		return integer{mag: uint64(x)}, true
	case uint64:
		return integer{mag: x}, true
	case uintptr:
		return integer{mag: uint64(x)}, true
	}

	return integer{}, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}

	return 0, false
}

func formatInt(n integer, fs formatSpec) (bool, string) {
	neg, u := n.neg, n.mag

	switch fs.typ {
	case 'b':
		return neg, strconv.FormatUint(u, 2)
	case 'o':
		return neg, strconv.FormatUint(u, 8)
	case 'x':
		return neg, strconv.FormatUint(u, 16)
	case 'X':
		return neg, strings.ToUpper(strconv.FormatUint(u, 16))
	}

	return neg, strconv.FormatUint(u, 10)
}

func formatFloat(f float64, fs formatSpec) (bool, string) {
	neg := math.Signbit(f)
	f = math.Abs(f)

	prec := fs.precision
	if prec < 0 {
		prec = 6
	}

	switch fs.typ {
	case 'e', 'E':
		s := strconv.FormatFloat(f, 'e', prec, 64)
		if fs.typ == 'E' {
			s = strings.ToUpper(s)
		}

		return neg, s
	case 'g', 'G':
		if prec == 0 {
			prec = 1
		}

		s := strconv.FormatFloat(f, 'g', prec, 64)
		if fs.typ == 'G' {
			s = strings.ToUpper(s)
		}

		return neg, s
	case '%':
		return neg, strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
	}

	return neg, strconv.FormatFloat(f, 'f', prec, 64)
}

// group inserts sep every three digits of the integer part of s.
func group(s string, sep byte) string {
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s)
	}

	digits, rest := s[:end], s[end:]
	if len(digits) <= 3 {
		return s
	}

	var sb strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(sep)
		}

		sb.WriteString(digits[i : i+3])
	}

	sb.WriteString(rest)

	return sb.String()
}

func truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func pad(prefix, body string, width int, fill rune, align byte) string {
	n := width - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(body)
	if n <= 0 {
		return prefix + body
	}

	fillStr := func(k int) string { return strings.Repeat(string(fill), k) }

	switch align {
	case '>':
		return fillStr(n) + prefix + body
	case '^':
		left := n / 2
		return fillStr(left) + prefix + body + fillStr(n-left)
	case '=':
		return prefix + fillStr(n) + body
	}

	return prefix + body + fillStr(n)
}
