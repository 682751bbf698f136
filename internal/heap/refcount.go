package heap

import (
	"log/slog"

	"slang/internal/object"
)

// ReferenceCountedHeap frees a slot as soon as its last owner releases it.
//
// Increment is shallow: one ownership edge adds exactly one count to its
// target, never to the target's descendants. Only decrement-on-free
// recurses, because freeing a slot releases all of its outgoing edges.
//
// Known limitation: reference cycles keep each other alive and are never
// reclaimed.
type ReferenceCountedHeap struct {
	arena
}

func NewReferenceCountedHeap() *ReferenceCountedHeap {
	return &ReferenceCountedHeap{arena: newArena()}
}

// Allocate deep-promotes inline child records and takes an ownership edge
// over every heap-resident child: the new slot's fields own their targets.
// The allocator itself is the slot's first owner, so the count starts at 1.
func (h *ReferenceCountedHeap) Allocate(fields map[string]object.Object) object.Pointer {
	for name, value := range fields {
		switch value := value.(type) {
		case *object.Record:
			fields[name] = &object.RecordRef{Pointer: h.Allocate(value.Fields)}
		case *object.RecordRef:
			h.Increment(value.Pointer)
		}
	}
	ptr, slot := h.insert(fields)
	slot.refs = 1
	return ptr
}

func (h *ReferenceCountedHeap) OnBind(old, new object.Object) {
	if ref, ok := new.(*object.RecordRef); ok {
		h.Increment(ref.Pointer)
	}
	if ref, ok := old.(*object.RecordRef); ok {
		h.Decrement(ref.Pointer)
	}
}

func (h *ReferenceCountedHeap) Collect(roots []object.Pointer) {}

// Increment adds one count to the target slot only.
func (h *ReferenceCountedHeap) Increment(ptr object.Pointer) {
	if slot, ok := h.lookup(ptr); ok {
		slot.refs++
	}
}

// Decrement releases one ownership edge. A slot whose count reaches zero is
// removed from the heap, releasing its own edges to its children in turn.
func (h *ReferenceCountedHeap) Decrement(ptr object.Pointer) {
	slot, ok := h.lookup(ptr)
	if !ok {
		return
	}

	slot.refs--
	if slot.refs > 0 {
		return
	}

	slog.Debug("freeing heap slot", slog.Uint64("pointer", uint64(ptr)))
	h.remove(ptr)

	for _, value := range slot.Fields {
		if ref, ok := value.(*object.RecordRef); ok {
			h.Decrement(ref.Pointer)
		}
	}
}

// Refs reports the count of a live slot; ok is false once it has been freed.
func (h *ReferenceCountedHeap) Refs(ptr object.Pointer) (int, bool) {
	slot, ok := h.lookup(ptr)
	if !ok {
		return 0, false
	}
	return slot.refs, true
}

func (h *ReferenceCountedHeap) Lookup(ptr object.Pointer) (*Slot, bool) {
	return h.lookup(ptr)
}

func (h *ReferenceCountedHeap) Len() int {
	return h.len()
}

func (h *ReferenceCountedHeap) sealed() {}
