// SPDX-License-Identifier: MIT

package bigraded

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDegreeRangeExceeded is returned for bidegrees outside the capacity
	// or with a negative coordinate.
	ErrDegreeRangeExceeded = errors.New("bigraded: degree range exceeded")

	// ErrNotCommitted is the panic payload for serial reads of absent cells.
	ErrNotCommitted = errors.New("bigraded: bidegree read before commit")
)

// Bidegree is a position (homological degree S, internal degree T).
type Bidegree struct {
	S, T int
}

// String renders (s, t).
func (b Bidegree) String() string { return fmt.Sprintf("(%d, %d)", b.S, b.T) }

// ConcurrencyViolation is the panic value raised when a bidegree is committed
// twice.
type ConcurrencyViolation struct {
	Bidegree Bidegree
}

func (e *ConcurrencyViolation) Error() string {
	return fmt.Sprintf("bigraded: bidegree %v committed twice", e.Bidegree)
}

// Mode selects the read discipline for absent cells.
type Mode uint8

const (
	// Serial treats a read of an absent cell as a scheduling bug.
	Serial Mode = iota
	// Concurrent lets readers block until the cell is committed.
	Concurrent
)

type cell[V any] struct {
	ready     chan struct{}
	value     V
	committed bool
}

// Store is a bigraded single-assignment table. The zero value is not usable;
// call New.
type Store[V any] struct {
	mode       Mode
	maxS, maxT int // inclusive bounds, -1 for unbounded

	mu    sync.RWMutex
	rows  [][]*cell[V] // rows[s][t], grown on demand
	count int
}

// Option configures a Store.
type Option func(*options)

type options struct {
	mode       Mode
	maxS, maxT int
}

// WithMode sets the read discipline. The default is Serial.
func WithMode(m Mode) Option { return func(o *options) { o.mode = m } }

// WithCapacity bounds the store to s ≤ maxS and t ≤ maxT.
func WithCapacity(maxS, maxT int) Option {
	return func(o *options) { o.maxS, o.maxT = maxS, maxT }
}

// New returns an empty store.
func New[V any](opts ...Option) *Store[V] {
	o := options{mode: Serial, maxS: -1, maxT: -1}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[V]{mode: o.mode, maxS: o.maxS, maxT: o.maxT}
}

// Mode returns the configured read discipline.
func (st *Store[V]) Mode() Mode { return st.mode }

// Check reports whether b is addressable.
func (st *Store[V]) Check(b Bidegree) error {
	if b.S < 0 || b.T < 0 || (st.maxS >= 0 && b.S > st.maxS) || (st.maxT >= 0 && b.T > st.maxT) {
		return fmt.Errorf("%v outside capacity (%d, %d): %w", b, st.maxS, st.maxT, ErrDegreeRangeExceeded)
	}

	return nil
}

// lookup returns the cell at b without allocating; callers hold mu.
func (st *Store[V]) lookup(b Bidegree) *cell[V] {
	if b.S < 0 || b.S >= len(st.rows) || b.T < 0 || b.T >= len(st.rows[b.S]) {
		return nil
	}

	return st.rows[b.S][b.T]
}

// slot returns the cell at b, growing the arena; callers hold mu for writing.
func (st *Store[V]) slot(b Bidegree) *cell[V] {
	for len(st.rows) <= b.S {
		st.rows = append(st.rows, nil)
	}
	row := st.rows[b.S]
	for len(row) <= b.T {
		row = append(row, nil)
	}
	st.rows[b.S] = row
	if row[b.T] == nil {
		row[b.T] = &cell[V]{ready: make(chan struct{})}
	}

	return row[b.T]
}

// Get returns the committed value at b, or ok == false.
func (st *Store[V]) Get(b Bidegree) (v V, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if c := st.lookup(b); c != nil && c.committed {
		return c.value, true
	}

	return v, false
}

// Has reports whether b is committed.
func (st *Store[V]) Has(b Bidegree) bool {
	_, ok := st.Get(b)

	return ok
}

// Set commits v at b and wakes all waiters. A second commit panics with
// *ConcurrencyViolation.
func (st *Store[V]) Set(b Bidegree, v V) error {
	if err := st.Check(b); err != nil {
		return err
	}
	st.mu.Lock()
	c := st.slot(b)
	if c.committed {
		st.mu.Unlock()
		panic(&ConcurrencyViolation{Bidegree: b})
	}
	c.value = v
	c.committed = true
	st.count++
	close(c.ready)
	st.mu.Unlock()

	return nil
}

// MustGet returns the committed value at b and panics if it is absent.
func (st *Store[V]) MustGet(b Bidegree) V {
	v, ok := st.Get(b)
	if !ok {
		panic(fmt.Errorf("%w: %v", ErrNotCommitted, b))
	}

	return v
}

// Wait returns the value at b, blocking until it is committed or ctx is done.
// In Serial mode it behaves like MustGet.
func (st *Store[V]) Wait(ctx context.Context, b Bidegree) (V, error) {
	var zero V
	if st.mode == Serial {
		return st.MustGet(b), nil
	}
	if err := st.Check(b); err != nil {
		return zero, err
	}
	st.mu.Lock()
	c := st.slot(b)
	st.mu.Unlock()
	select {
	case <-c.ready:
		return c.value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Len returns the number of committed cells.
func (st *Store[V]) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.count
}

// Range calls fn for every committed cell in (s, t) order until fn returns
// false. It iterates over a snapshot taken at the call.
func (st *Store[V]) Range(fn func(Bidegree, V) bool) {
	type entry struct {
		b Bidegree
		v V
	}
	st.mu.RLock()
	var entries []entry
	for s, row := range st.rows {
		for t, c := range row {
			if c != nil && c.committed {
				entries = append(entries, entry{Bidegree{s, t}, c.value})
			}
		}
	}
	st.mu.RUnlock()
	for _, e := range entries {
		if !fn(e.b, e.v) {
			return
		}
	}
}
