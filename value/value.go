// Package value provides the closed value model that log arguments are
// converted to before rendering, and the recursive [Renderer] that turns a
// [Value] into (optionally colored) text.
//
// Arguments are adapted with [Of]: slices become sequences, arrays become
// tuples, maps become mappings, and everything else becomes a scalar tagged
// with a [Kind]. Explicit constructors ([List], [Tuple], [Map], [Uncolored],
// [Fmt], [Unpack]) build values the adapter cannot infer.
package value

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"go.jacobcolvin.com/treelog/layout"
)

// Variant identifies the shape of a [Value].
type Variant uint8

const (
	// Scalar is a leaf value.
	Scalar Variant = iota
	// Sequence is an ordered, list-like container.
	Sequence
	// TupleVariant is a fixed-size, tuple-like container.
	TupleVariant
	// Mapping is a key to value container.
	Mapping
	// UncoloredVariant is a leaf rendered without a color prefix.
	UncoloredVariant
	// Directive is a leaf rendered through an explicit format spec.
	Directive
)

// Kind buckets runtime types for color lookup.
type Kind uint8

// Kinds.
const (
	KindOther Kind = iota
	KindNil
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindTuple
	KindMap
	KindError
)

var kindNames = map[Kind]string{
	KindOther:  "other",
	KindNil:    "nil",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
	KindTuple:  "tuple",
	KindMap:    "map",
	KindError:  "error",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the [Kind] called name.
func ParseKind(name string) (Kind, bool) {
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}

	return KindOther, false
}

// KindNames returns every kind name, sorted.
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for _, s := range kindNames {
		names = append(names, s)
	}

	slices.Sort(names)

	return names
}

// Value is one node of the value model. The zero value is a nil scalar.
type Value struct {
	raw     any
	text    string
	elems   []Value
	entries []Entry
	variant Variant
	kind    Kind
	unpack  bool
}

// Entry is a key/value pair of a mapping.
type Entry struct {
	Key Value
	Val Value
}

// Variant returns the shape of v.
func (v Value) Variant() Variant { return v.variant }

// Kind returns the color bucket of v.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the wrapped Go value of a leaf.
func (v Value) Raw() any { return v.raw }

// Elems returns the elements of a sequence or tuple.
func (v Value) Elems() []Value { return v.elems }

// Entries returns the entries of a mapping.
func (v Value) Entries() []Entry { return v.entries }

// Unpacked reports whether a container renders without its delimiters.
func (v Value) Unpacked() bool { return v.unpack }

// IsLeaf reports whether v holds no children.
func (v Value) IsLeaf() bool {
	switch v.variant {
	case Sequence, TupleVariant, Mapping:
		return false
	}

	return true
}

// Of adapts an arbitrary Go value to the value model. A [Value] passes
// through unchanged.
func Of(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case nil:
		return Value{kind: KindNil}
	case error:
		return Value{raw: t, kind: KindError}
	case fmt.Stringer:
		return Value{raw: t, kind: KindOther}
	case []byte:
		return Value{raw: t, kind: KindBytes}
	case string:
		return Value{raw: t, kind: KindString}
	case bool:
		return Value{raw: t, kind: KindBool}
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{raw: x, kind: KindInt}

	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return Value{raw: x, kind: KindFloat}

	case reflect.String:
		return Value{raw: x, kind: KindString}

	case reflect.Bool:
		return Value{raw: x, kind: KindBool}

	case reflect.Slice:
		if rv.IsNil() {
			return Value{raw: x, kind: KindNil}
		}

		return Value{variant: Sequence, kind: KindList, elems: elemsOf(rv)}

	case reflect.Array:
		return Value{variant: TupleVariant, kind: KindTuple, elems: elemsOf(rv)}

	case reflect.Map:
		if rv.IsNil() {
			return Value{raw: x, kind: KindNil}
		}

		return Value{variant: Mapping, kind: KindMap, entries: entriesOf(rv)}
	}

	return Value{raw: x, kind: KindOther}
}

func elemsOf(rv reflect.Value) []Value {
	out := make([]Value, rv.Len())
	for i := range out {
		out[i] = Of(rv.Index(i).Interface())
	}

	return out
}

// entriesOf returns the entries of a map ordered by the text of their keys,
// so output is stable across runs.
func entriesOf(rv reflect.Value) []Entry {
	type keyed struct {
		text  string
		entry Entry
	}

	tmp := make([]keyed, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().Interface()
		tmp = append(tmp, keyed{
			text:  fmt.Sprint(k),
			entry: Entry{Key: Of(k), Val: Of(iter.Value().Interface())},
		})
	}

	slices.SortFunc(tmp, func(a, b keyed) int { return cmp.Compare(a.text, b.text) })

	out := make([]Entry, len(tmp))
	for i, k := range tmp {
		out[i] = k.entry
	}

	return out
}

// List returns a sequence of the given elements.
func List(elems ...any) Value {
	return Value{variant: Sequence, kind: KindList, elems: ofAll(elems)}
}

// Tuple returns a tuple of the given elements.
func Tuple(elems ...any) Value {
	return Value{variant: TupleVariant, kind: KindTuple, elems: ofAll(elems)}
}

// Map returns a mapping with entries in the given order. kv alternates keys
// and values; a trailing key without a value maps to nil.
func Map(kv ...any) Value {
	entries := make([]Entry, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		e := Entry{Key: Of(kv[i])}
		if i+1 < len(kv) {
			e.Val = Of(kv[i+1])
		} else {
			e.Val = Of(nil)
		}

		entries = append(entries, e)
	}

	return Value{variant: Mapping, kind: KindMap, entries: entries}
}

// Uncolored wraps x so it renders without a color prefix.
func Uncolored(x any) Value {
	return Value{variant: UncoloredVariant, raw: x, kind: Of(x).kind}
}

// Fmt renders x through a format spec, the part after the colon in a
// template field (e.g. ".2f" or ">8,d"), colored by the kind of x. A spec x
// cannot satisfy renders inline as "%!(error)".
func Fmt(spec string, x any) Value {
	text, err := layout.Apply(x, spec)
	if err != nil {
		text = fmt.Sprintf("%%!(%v)", err)
	}

	return Value{variant: Directive, raw: x, text: text, kind: Of(x).kind}
}

// Unpack marks a sequence, tuple or mapping to render without delimiters.
// Other values are returned adapted but otherwise unchanged.
func Unpack(x any) Value {
	v := Of(x)
	if !v.IsLeaf() {
		v.unpack = true
	}

	return v
}

func ofAll(xs []any) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Of(x)
	}

	return out
}
