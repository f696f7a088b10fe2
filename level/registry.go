package level

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownLevel indicates a level name that is not present in the registry.
var ErrUnknownLevel = errors.New("unknown level")

// Level is a named priority.
type Level struct {
	Name     string
	Priority int
}

// Default level names.
const (
	Debug     = "debug"
	Exception = "exception"
	Info      = "info"
	Warn      = "warn"
	Error     = "error"
	Critical  = "critical"
)

// Defaults returns the default levels, most verbose first.
func Defaults() []Level {
	return []Level{
		{Name: Debug, Priority: 5},
		{Name: Exception, Priority: 10},
		{Name: Info, Priority: 15},
		{Name: Warn, Priority: 20},
		{Name: Error, Priority: 25},
		{Name: Critical, Priority: 30},
	}
}

// gateCacheSize bounds the number of memoized gate decisions.
const gateCacheSize = 10

type gateKey struct {
	spec string
	ref  Ref
}

// Registry maps level names to priorities. Safe for concurrent use.
//
// Create instances with [NewRegistry].
type Registry struct {
	priorities map[string]int
	cache      map[gateKey]bool
	names      []string
	cacheOrder []gateKey
	mu         sync.Mutex
}

// NewRegistry creates a [Registry] holding the given levels, registered in
// order.
func NewRegistry(levels ...Level) *Registry {
	r := &Registry{
		priorities: make(map[string]int, len(levels)),
		cache:      make(map[gateKey]bool, gateCacheSize),
	}
	for _, l := range levels {
		r.Register(l.Name, l.Priority)
	}

	return r
}

// Register inserts or overwrites the level called name and returns the
// normalized name. Memoized gate decisions are discarded.
func (r *Registry) Register(name string, priority int) string {
	name = Normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.priorities[name]; !ok {
		r.names = append(r.names, name)
	}

	r.priorities[name] = priority

	clear(r.cache)
	r.cacheOrder = r.cacheOrder[:0]

	return name
}

// Priority returns the priority of the level called name.
func (r *Registry) Priority(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.priority(Normalize(name))
}

func (r *Registry) priority(name string) (int, error) {
	p, ok := r.priorities[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}

	return p, nil
}

// Name returns the name of the first-registered level with the given
// priority.
func (r *Registry) Name(priority int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.name(priority)
}

func (r *Registry) name(priority int) (string, error) {
	for _, n := range r.names {
		if r.priorities[n] == priority {
			return n, nil
		}
	}

	return "", fmt.Errorf("%w: no level with priority %d", ErrUnknownLevel, priority)
}

// Has reports whether a level called name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.priorities[Normalize(name)]

	return ok
}

// Names returns the registered level names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.names)
}

// Levels returns the registered levels sorted by priority, ties in
// registration order.
func (r *Registry) Levels() []Level {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Level, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, Level{Name: n, Priority: r.priorities[n]})
	}

	slices.SortStableFunc(out, func(a, b Level) int {
		return a.Priority - b.Priority
	})

	return out
}

// MaxNameWidth returns the length of the longest registered level name.
func (r *Registry) MaxNameWidth() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	width := 0
	for _, n := range r.names {
		width = max(width, len(n))
	}

	return width
}

// Resolve returns the name and priority of the level referred to by ref.
func (r *Registry) Resolve(ref Ref) (string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref.numeric {
		name, err := r.name(ref.priority)
		if err != nil {
			return "", 0, err
		}

		return name, ref.priority, nil
	}

	p, err := r.priority(ref.name)
	if err != nil {
		return "", 0, err
	}

	return ref.name, p, nil
}

// Allows reports whether a record at level ref passes a handler configured
// with spec.
//
// Thresholds pass when the threshold priority is lower than or equal to the
// record priority. Allow-sets pass when the record's level name (resolved
// from its priority if needed) is a member of the set.
func (r *Registry) Allows(spec Spec, ref Ref) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gateKey{spec: spec.key(), ref: ref}
	if ok, hit := r.cache[key]; hit {
		return ok, nil
	}

	ok, err := r.allows(spec, ref)
	if err != nil {
		return false, err
	}

	r.remember(key, ok)

	return ok, nil
}

func (r *Registry) allows(spec Spec, ref Ref) (bool, error) {
	switch spec.kind {
	case KindAllowSet:
		name := ref.name
		if ref.numeric {
			var err error

			name, err = r.name(ref.priority)
			if err != nil {
				return false, err
			}
		} else if _, err := r.priority(name); err != nil {
			return false, err
		}

		for _, allowed := range spec.allow {
			if _, err := r.priority(allowed); err != nil {
				return false, err
			}
		}

		return slices.Contains(spec.allow, name), nil

	case KindNumeric:
		candidate, err := r.candidate(ref)
		if err != nil {
			return false, err
		}

		return spec.priority <= candidate, nil

	case KindNamed:
		threshold, err := r.priority(spec.name)
		if err != nil {
			return false, err
		}

		candidate, err := r.candidate(ref)
		if err != nil {
			return false, err
		}

		return threshold <= candidate, nil
	}

	return false, fmt.Errorf("%w: invalid spec kind %s", ErrUnknownLevel, spec.kind)
}

// candidate returns the priority of ref; numeric refs pass through.
func (r *Registry) candidate(ref Ref) (int, error) {
	if ref.numeric {
		return ref.priority, nil
	}

	return r.priority(ref.name)
}

func (r *Registry) remember(key gateKey, ok bool) {
	if len(r.cacheOrder) >= gateCacheSize {
		oldest := r.cacheOrder[0]
		r.cacheOrder = r.cacheOrder[1:]
		delete(r.cache, oldest)
	}

	r.cache[key] = ok
	r.cacheOrder = append(r.cacheOrder, key)
}

// cached returns the number of memoized gate decisions.
func (r *Registry) cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cache)
}
