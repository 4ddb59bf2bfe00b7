// Package compositor implements the bracketed lightmap and decal batches that
// blend onto already rendered geometry.
package compositor

import (
	"fmt"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
)

// State is the bracket state of a batch.
type State uint8

const (
	Idle State = iota
	Collecting
)

// String returns the state name.
func (s State) String() string {
	if s == Collecting {
		return "collecting"
	}
	return "idle"
}

// Exclusive allows at most one bracket open at a time among the batches that
// share it.
type Exclusive struct {
	open string
}

// Open returns the name of the open bracket, or "".
func (e *Exclusive) Open() string {
	return e.open
}

// Batch collects items between Begin and End and hands them to the flush
// function in submission order on End.
type Batch[T any] struct {
	name  string
	state State
	items []T
	guard *Exclusive
	flush func(T)
}

// NewBatch creates an idle batch. guard may be nil.
func NewBatch[T any](name string, guard *Exclusive, flush func(T)) *Batch[T] {
	return &Batch[T]{name: name, guard: guard, flush: flush}
}

// Name returns the batch name used in errors.
func (b *Batch[T]) Name() string { return b.name }

// State returns the bracket state.
func (b *Batch[T]) State() State { return b.state }

// Len returns the number of queued items.
func (b *Batch[T]) Len() int { return len(b.items) }

// Begin opens the bracket. Nested Begin and opening while another bracket on
// the same guard is open are rejected.
func (b *Batch[T]) Begin() error {
	if b.state == Collecting {
		return fmt.Errorf("%w: nested Begin on %s", errs.ErrInvalidState, b.name)
	}
	if b.guard != nil && b.guard.open != "" {
		return fmt.Errorf("%w: Begin on %s while %s is open", errs.ErrInvalidState, b.name, b.guard.open)
	}
	if b.guard != nil {
		b.guard.open = b.name
	}
	b.items = b.items[:0]
	b.state = Collecting
	return nil
}

// Add queues item. It fails outside a bracket.
func (b *Batch[T]) Add(item T) error {
	if b.state != Collecting {
		return fmt.Errorf("%w: draw on %s outside its bracket", errs.ErrInvalidState, b.name)
	}
	b.items = append(b.items, item)
	return nil
}

// End flushes every queued item in submission order, empties the queue and
// closes the bracket. It returns the number of items flushed.
func (b *Batch[T]) End() (int, error) {
	if b.state != Collecting {
		return 0, fmt.Errorf("%w: End on %s without Begin", errs.ErrInvalidState, b.name)
	}
	n := len(b.items)
	if b.flush != nil {
		for _, item := range b.items {
			b.flush(item)
		}
	}
	b.close()
	return n, nil
}

// Abort closes the bracket without flushing and returns the number of items
// discarded. It does nothing on an idle batch.
func (b *Batch[T]) Abort() int {
	if b.state != Collecting {
		return 0
	}
	n := len(b.items)
	b.close()
	return n
}

func (b *Batch[T]) close() {
	clear(b.items)
	b.items = b.items[:0]
	b.state = Idle
	if b.guard != nil && b.guard.open == b.name {
		b.guard.open = ""
	}
}
