package ffi

import (
	"errors"
	"fmt"
	"sync"
)

// Handle is an opaque reference to an object owned by a Registry. The low
// 32 bits hold slot index + 1, the high 32 bits the slot generation. Zero
// is the null handle.
type Handle uint64

// Kind tags what a handle points at.
type Kind uint8

const (
	KindBundle Kind = iota + 1
	KindMessage
	KindAttribute
	KindArgs
)

var kinds = []Kind{KindBundle, KindMessage, KindAttribute, KindArgs}

func (k Kind) String() string {
	switch k {
	case KindBundle:
		return "bundle"
	case KindMessage:
		return "message"
	case KindAttribute:
		return "attribute"
	case KindArgs:
		return "args"
	default:
		return "unknown"
	}
}

var (
	ErrNullHandle     = errors.New("ffi: null handle")
	ErrStaleHandle    = errors.New("ffi: stale handle")
	ErrWrongKind      = errors.New("ffi: handle of wrong kind")
	ErrInvalidUnicode = errors.New("ffi: invalid unicode")
)

type registrySlot struct {
	gen   uint32
	kind  Kind
	value any
}

// Registry hands out generation tagged handles. A released slot is reused
// with a bumped generation, so stale and double released handles are
// detected instead of resolving to a newer object.
type Registry struct {
	mu    sync.Mutex
	slots []registrySlot
	free  []uint32
	live  map[Kind]int
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[Kind]int, len(kinds))}
}

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) split() (index, gen uint32) {
	return uint32(h&0xffffffff) - 1, uint32(h >> 32)
}

// Put stores value and returns its handle.
func (r *Registry) Put(kind Kind, value any) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, registrySlot{gen: 1})
		index = uint32(len(r.slots) - 1)
	}

	slot := &r.slots[index]
	slot.kind = kind
	slot.value = value
	r.live[kind]++
	return makeHandle(index, slot.gen)
}

// Get returns the value behind h.
func (r *Registry) Get(h Handle, kind Kind) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, err := r.lookup(h, kind)
	if err != nil {
		return nil, err
	}
	return slot.value, nil
}

// Release frees h and returns the value it held.
func (r *Registry) Release(h Handle, kind Kind) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, err := r.lookup(h, kind)
	if err != nil {
		return nil, err
	}

	value := slot.value
	slot.value = nil
	slot.kind = 0
	slot.gen++
	if slot.gen == 0 {
		slot.gen = 1
	}
	index, _ := h.split()
	r.free = append(r.free, index)
	r.live[kind]--
	return value, nil
}

// Live returns the number of live handles of kind.
func (r *Registry) Live(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live[kind]
}

func (r *Registry) lookup(h Handle, kind Kind) (*registrySlot, error) {
	if h == 0 {
		return nil, ErrNullHandle
	}
	index, gen := h.split()
	if int(index) >= len(r.slots) {
		return nil, fmt.Errorf("%w: %#x", ErrStaleHandle, uint64(h))
	}
	slot := &r.slots[index]
	if slot.gen != gen || slot.kind == 0 {
		return nil, fmt.Errorf("%w: %#x", ErrStaleHandle, uint64(h))
	}
	if slot.kind != kind {
		return nil, fmt.Errorf("%w: %#x is a %s, want %s", ErrWrongKind, uint64(h), slot.kind, kind)
	}
	return slot, nil
}
