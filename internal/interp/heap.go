package interp

import "github.com/bloch-lang/bloch/internal/semantic"

// Object is a heap-allocated class instance: its dynamic class, its
// field table, and a liveness flag. Tracked fields are snapshotted into
// the evaluator's outcome tables when the object is destroyed.
type Object struct {
	Class     *semantic.ClassInfo
	Fields    map[string]Value
	Destroyed bool
}

// Heap owns every live object reference by handle. Handles are stable
// for the lifetime of one shot; the heap itself is discarded at shot end
// along with its simulator.
type Heap struct {
	objects []*Object
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc creates a new object of the given class and returns its handle.
func (h *Heap) Alloc(class *semantic.ClassInfo) ObjectValue {
	obj := &Object{Class: class, Fields: make(map[string]Value)}
	h.objects = append(h.objects, obj)
	return ObjectValue{Handle: len(h.objects) - 1}
}

// Get resolves a handle to its backing Object.
func (h *Heap) Get(handle int) *Object {
	if handle < 0 || handle >= len(h.objects) {
		return nil
	}
	return h.objects[handle]
}

// ClassNameOf reports the dynamic class name of an object reference,
// for the echo renderer's "<ClassName instance>" form.
func (h *Heap) ClassNameOf(v ObjectValue) string {
	if obj := h.Get(v.Handle); obj != nil {
		return obj.Class.Name
	}
	return "?"
}
