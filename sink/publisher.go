package sink

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed indicates a write to a sink that has been closed.
var ErrClosed = errors.New("sink closed")

const defaultDepth = 64

// Entry is a rendered line together with the record metadata a subscriber
// may route on.
type Entry struct {
	Time   time.Time
	Level  string
	Logger string
	Group  string
	Line   string
}

// EntrySink is a [Sink] that also accepts record metadata. Handlers call
// WriteEntry instead of WriteLine when their sink implements it.
type EntrySink interface {
	Sink
	WriteEntry(e Entry) error
}

// Publisher is an [EntrySink] that delivers entries to in-process
// subscribers, such as a live log view.
//
// Every [Subscription] owns a queue of fixed depth. A subscriber that falls
// behind loses its oldest queued entries and the loss is counted, so writers
// never block on readers. Safe for concurrent use.
type Publisher struct {
	subs   map[*Subscription]struct{}
	depth  int
	mu     sync.Mutex
	closed bool
}

// NewPublisher creates a [Publisher] whose subscriptions queue up to depth
// entries. A depth below 1 selects the default of 64.
func NewPublisher(depth int) *Publisher {
	if depth < 1 {
		depth = defaultDepth
	}

	return &Publisher{
		subs:  make(map[*Subscription]struct{}),
		depth: depth,
	}
}

// WriteEntry implements [EntrySink].
func (p *Publisher) WriteEntry(e Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("%w: %w", ErrWrite, ErrClosed)
	}

	for sub := range p.subs {
		if sub.match != nil && !sub.match(e) {
			continue
		}

		sub.push(e)
	}

	return nil
}

// WriteLine implements [Sink] for callers without record metadata.
func (p *Publisher) WriteLine(line string) error {
	return p.WriteEntry(Entry{Line: line})
}

// Flush implements [Sink]. Entries are queued on write.
func (p *Publisher) Flush() error { return nil }

// Subscribe registers a subscription receiving the entries for which match
// returns true. A nil match receives everything. Subscribing to a closed
// Publisher returns a subscription whose channel is already closed.
func (p *Publisher) Subscribe(match func(Entry) bool) *Subscription {
	sub := &Subscription{
		pub:   p,
		match: match,
		ch:    make(chan Entry, p.depth),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		close(sub.ch)
		return sub
	}

	p.subs[sub] = struct{}{}

	return sub
}

// Subscribers returns the number of open subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.subs)
}

// Close closes every subscription channel. Later writes fail with
// [ErrClosed]. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	for sub := range p.subs {
		close(sub.ch)
	}

	p.subs = nil

	return nil
}

// Subscription is a queue of entries from a [Publisher].
type Subscription struct {
	pub     *Publisher
	match   func(Entry) bool
	ch      chan Entry
	dropped atomic.Uint64
}

// C returns the channel entries are delivered on. It is closed by
// [Subscription.Close] or [Publisher.Close].
func (s *Subscription) C() <-chan Entry { return s.ch }

// Dropped returns how many entries were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close unregisters s and closes its channel. Idempotent.
func (s *Subscription) Close() {
	s.pub.mu.Lock()
	defer s.pub.mu.Unlock()

	if _, ok := s.pub.subs[s]; !ok {
		return
	}

	delete(s.pub.subs, s)
	close(s.ch)
}

// push queues e, evicting the oldest entry when full. The publisher lock is
// held, so no other sender can refill the slot between evict and send.
func (s *Subscription) push(e Entry) {
	select {
	case s.ch <- e:
		return
	default:
	}

	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}

	s.ch <- e
}
