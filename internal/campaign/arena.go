package campaign

import "fmt"

// Handle is a weak reference into an Arena. The zero Handle refers to nothing.
// A handle whose element was removed stops resolving, even if the slot is reused.
type Handle struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

// IsZero reports whether the handle refers to nothing.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d#%d", h.Index, h.Gen)
}

type arenaSlot[T any] struct {
	gen   uint32
	value *T
}

// Arena is a generational slot map.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v *T) Handle {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].value = v
		return Handle{Index: idx, Gen: a.slots[idx].gen}
	}
	a.slots = append(a.slots, arenaSlot[T]{gen: 1, value: v})
	return Handle{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get resolves a handle. Stale and zero handles return false.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsZero() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.Index]
	if s.gen != h.Gen || s.value == nil {
		return nil, false
	}
	return s.value, true
}

// Remove deletes the element behind h. It returns false if h was already stale.
func (a *Arena[T]) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := &a.slots[h.Index]
	s.value = nil
	s.gen++
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// Len returns the number of live elements.
func (a *Arena[T]) Len() int {
	return a.live
}

// Each calls fn for every live element in index order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, *T) bool) {
	for i, s := range a.slots {
		if s.value == nil {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, s.value) {
			return
		}
	}
}

// Values returns the live elements in index order.
func (a *Arena[T]) Values() []*T {
	out := make([]*T, 0, a.live)
	a.Each(func(_ Handle, v *T) bool {
		out = append(out, v)
		return true
	})
	return out
}
