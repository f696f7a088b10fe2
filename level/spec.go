package level

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a [Spec] holds.
type Kind uint8

const (
	// KindNamed is a threshold given by level name.
	KindNamed Kind = iota
	// KindNumeric is a threshold given by raw priority.
	KindNumeric
	// KindAllowSet admits only an explicit set of level names.
	KindAllowSet
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindNumeric:
		return "numeric"
	case KindAllowSet:
		return "allow-set"
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Spec is the level configuration of a handler. The zero value is a named
// threshold with an empty name, which fails every comparison with
// [ErrUnknownLevel].
//
// Create instances with [Named], [Numeric], [Only] or [ParseSpec].
type Spec struct {
	name     string
	allow    []string
	priority int
	kind     Kind
}

// Named returns a threshold [Spec] for the level called name.
func Named(name string) Spec {
	return Spec{kind: KindNamed, name: Normalize(name)}
}

// Numeric returns a threshold [Spec] for a raw priority.
func Numeric(priority int) Spec {
	return Spec{kind: KindNumeric, priority: priority}
}

// Only returns an allow-set [Spec] admitting exactly the given level names.
func Only(names ...string) Spec {
	allow := make([]string, 0, len(names))
	for _, n := range names {
		allow = append(allow, Normalize(n))
	}

	return Spec{kind: KindAllowSet, allow: allow}
}

// ParseSpec parses the textual form of a [Spec]:
//
//   - a base-10 integer is a [Numeric] threshold,
//   - a comma-separated list (e.g. "warn,error") is an [Only] allow-set,
//   - anything else is a [Named] threshold.
//
// Names are not checked against a registry.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty level", ErrUnknownLevel)
	}

	if n, err := strconv.Atoi(s); err == nil {
		return Numeric(n), nil
	}

	if strings.Contains(s, ",") {
		var names []string

		for part := range strings.SplitSeq(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			names = append(names, part)
		}

		return Only(names...), nil
	}

	return Named(s), nil
}

// Kind returns the variant held by s.
func (s Spec) Kind() Kind { return s.kind }

// Name returns the level name of a [KindNamed] spec.
func (s Spec) Name() string { return s.name }

// Priority returns the priority of a [KindNumeric] spec.
func (s Spec) Priority() int { return s.priority }

// Levels returns a copy of the names admitted by a [KindAllowSet] spec.
func (s Spec) Levels() []string {
	out := make([]string, len(s.allow))
	copy(out, s.allow)

	return out
}

// String returns the textual form accepted by [ParseSpec].
func (s Spec) String() string {
	switch s.kind {
	case KindNumeric:
		return strconv.Itoa(s.priority)
	case KindAllowSet:
		return strings.Join(s.allow, ",")
	}

	return s.name
}

// key identifies s inside the gate cache.
func (s Spec) key() string {
	return s.kind.String() + ":" + s.String()
}

// Ref is the level of a single record, given either by name or by priority.
type Ref struct {
	name     string
	priority int
	numeric  bool
}

// ByName refers to a level by name.
func ByName(name string) Ref {
	return Ref{name: Normalize(name)}
}

// ByPriority refers to a level by raw priority.
func ByPriority(priority int) Ref {
	return Ref{priority: priority, numeric: true}
}

// IsNumeric reports whether r was created with [ByPriority].
func (r Ref) IsNumeric() bool { return r.numeric }

// String returns the level name, or the priority for numeric refs.
func (r Ref) String() string {
	if r.numeric {
		return strconv.Itoa(r.priority)
	}

	return r.name
}

// Normalize returns the canonical (lower-case) form of a level name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
