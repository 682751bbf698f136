// Package heap owns every heap-resident record of a running program and
// decides when slots are reclaimed. Exactly one strategy is active for the
// whole lifetime of a program.
package heap

import (
	"fmt"

	"slang/internal/object"
)

// Slot is one heap-resident record. Fields may hold RecordRef values
// pointing at other slots, so the heap forms a graph that may contain
// cycles.
type Slot struct {
	Fields map[string]object.Object

	marked bool // tracing strategy only
	refs   int  // reference-counted strategy only
}

// Refs reports the slot's current reference count. Only meaningful under
// the reference-counted strategy.
func (s *Slot) Refs() int { return s.refs }

// Strategy is the allocation/reclamation policy behind the heap. It is a
// closed set: Naive, ReferenceCounted, and Tracing are the only
// implementations, chosen once at startup.
type Strategy interface {
	// Allocate promotes fields into a new heap slot and returns its handle.
	// Inline child records are deep-promoted into slots of their own.
	Allocate(fields map[string]object.Object) object.Pointer

	// OnBind is invoked whenever a persistent slot's previous value is
	// replaced by a new one: variable declaration and assignment, field
	// assignment, argument binding, and the retain/release halves of a
	// function return. Either value may be nil.
	OnBind(old, new object.Object)

	// Collect reclaims unreachable slots given the current roots. A no-op
	// for every strategy except tracing.
	Collect(roots []object.Pointer)

	// Lookup resolves a handle to its slot.
	Lookup(ptr object.Pointer) (*Slot, bool)

	// Len is the number of live slots.
	Len() int

	sealed()
}

// Kind selects a Strategy from configuration.
type Kind string

const (
	KindNaive            Kind = "naive"
	KindReferenceCounted Kind = "rc"
	KindTracing          Kind = "gc"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNaive, KindReferenceCounted, KindTracing:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown heap strategy %q (want naive, rc or gc)", s)
}

func New(kind Kind) Strategy {
	switch kind {
	case KindReferenceCounted:
		return NewReferenceCountedHeap()
	case KindTracing:
		return NewTracingHeap()
	default:
		return NewNaiveHeap()
	}
}

// arena is the slot table shared by all three strategies. Handles are
// generated sequentially and never reused; a freed slot's handle stops
// resolving rather than dangling.
type arena struct {
	slots map[object.Pointer]*Slot
	next  object.Pointer
}

func newArena() arena {
	return arena{slots: make(map[object.Pointer]*Slot)}
}

func (a *arena) insert(fields map[string]object.Object) (object.Pointer, *Slot) {
	a.next++
	slot := &Slot{Fields: fields}
	a.slots[a.next] = slot
	return a.next, slot
}

func (a *arena) lookup(ptr object.Pointer) (*Slot, bool) {
	slot, ok := a.slots[ptr]
	return slot, ok
}

func (a *arena) remove(ptr object.Pointer) {
	delete(a.slots, ptr)
}

func (a *arena) len() int {
	return len(a.slots)
}
