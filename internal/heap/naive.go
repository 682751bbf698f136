package heap

import "slang/internal/object"

// NaiveHeap is the reclamation-free baseline: it only ever grows. Nothing
// dangles because nothing is freed.
type NaiveHeap struct {
	arena
}

func NewNaiveHeap() *NaiveHeap {
	return &NaiveHeap{arena: newArena()}
}

func (h *NaiveHeap) Allocate(fields map[string]object.Object) object.Pointer {
	for name, value := range fields {
		if rec, ok := value.(*object.Record); ok {
			fields[name] = &object.RecordRef{Pointer: h.Allocate(rec.Fields)}
		}
	}
	ptr, _ := h.insert(fields)
	return ptr
}

func (h *NaiveHeap) OnBind(old, new object.Object) {}

func (h *NaiveHeap) Collect(roots []object.Pointer) {}

func (h *NaiveHeap) Lookup(ptr object.Pointer) (*Slot, bool) {
	return h.lookup(ptr)
}

func (h *NaiveHeap) Len() int {
	return h.len()
}

func (h *NaiveHeap) sealed() {}
