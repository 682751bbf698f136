package heap

import (
	"log/slog"

	"slang/internal/object"
)

// TracingHeap reclaims slots with mark-and-sweep. Allocation and binding do
// no bookkeeping; all reclamation happens when Collect runs over the roots
// supplied by the call stack.
type TracingHeap struct {
	arena
}

func NewTracingHeap() *TracingHeap {
	return &TracingHeap{arena: newArena()}
}

func (h *TracingHeap) Allocate(fields map[string]object.Object) object.Pointer {
	for name, value := range fields {
		if rec, ok := value.(*object.Record); ok {
			fields[name] = &object.RecordRef{Pointer: h.Allocate(rec.Fields)}
		}
	}
	ptr, _ := h.insert(fields)
	return ptr
}

func (h *TracingHeap) OnBind(old, new object.Object) {}

// Collect marks every slot reachable from the roots, sweeps the rest, and
// clears the marks on the survivors.
func (h *TracingHeap) Collect(roots []object.Pointer) {
	for _, root := range roots {
		h.mark(root)
	}

	swept := 0
	for ptr, slot := range h.slots {
		if !slot.marked {
			delete(h.slots, ptr)
			swept++
		}
	}

	for _, slot := range h.slots {
		slot.marked = false
	}

	if swept > 0 {
		slog.Debug("swept unreachable slots",
			slog.Int("swept", swept),
			slog.Int("live", len(h.slots)))
	}
}

// mark traverses depth first. A slot that is already marked is not
// revisited, so cyclic graphs terminate.
func (h *TracingHeap) mark(ptr object.Pointer) {
	slot, ok := h.lookup(ptr)
	if !ok || slot.marked {
		return
	}
	slot.marked = true

	for _, value := range slot.Fields {
		if ref, ok := value.(*object.RecordRef); ok {
			h.mark(ref.Pointer)
		}
	}
}

func (h *TracingHeap) Lookup(ptr object.Pointer) (*Slot, bool) {
	return h.lookup(ptr)
}

func (h *TracingHeap) Len() int {
	return h.len()
}

func (h *TracingHeap) sealed() {}
