// Package registry stores window records in an arena keyed by generational
// ids. A slot freed by Remove is reused with a bumped generation so stale ids
// never resolve to a newer window.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ID is an opaque window handle. The zero value is never issued.
type ID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether id is the zero handle.
func (id ID) IsZero() bool { return id.Gen == 0 }

// String renders the handle as "w<index>.<gen>".
func (id ID) String() string {
	return "w" + strconv.FormatUint(uint64(id.Index), 10) + "." + strconv.FormatUint(uint64(id.Gen), 10)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID parses the String form of an ID.
func ParseID(s string) (ID, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "w")
	if !ok {
		return ID{}, fmt.Errorf("invalid window id %q", s)
	}
	idxStr, genStr, ok := strings.Cut(rest, ".")
	if !ok {
		return ID{}, fmt.Errorf("invalid window id %q", s)
	}
	idx, err := strconv.ParseUint(idxStr, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	gen, err := strconv.ParseUint(genStr, 10, 32)
	if err != nil || gen == 0 {
		return ID{}, fmt.Errorf("invalid window id %q", s)
	}
	return ID{Index: uint32(idx), Gen: uint32(gen)}, nil
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
	seq   uint64
}

// Arena maps ids to values and remembers insertion order.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	seq   uint64
	count int
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its new id.
func (a *Arena[T]) Insert(v T) ID {
	a.seq++
	a.count++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		s.value = v
		s.seq = a.seq
		return ID{Index: idx, Gen: s.gen}
	}

	a.slots = append(a.slots, slot[T]{gen: 1, live: true, value: v, seq: a.seq})
	return ID{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns the value for id.
func (a *Arena[T]) Get(id ID) (T, bool) {
	var zero T
	if int(id.Index) >= len(a.slots) {
		return zero, false
	}
	s := a.slots[id.Index]
	if !s.live || s.gen != id.Gen {
		return zero, false
	}
	return s.value, true
}

// Contains reports whether id is live.
func (a *Arena[T]) Contains(id ID) bool {
	_, ok := a.Get(id)
	return ok
}

// Remove deletes id and returns the value it held.
func (a *Arena[T]) Remove(id ID) (T, bool) {
	v, ok := a.Get(id)
	if !ok {
		return v, false
	}
	s := &a.slots[id.Index]
	var zero T
	s.live = false
	s.value = zero
	a.free = append(a.free, id.Index)
	a.count--
	return v, true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	return a.count
}

// IDs returns live ids in insertion order.
func (a *Arena[T]) IDs() []ID {
	type entry struct {
		id  ID
		seq uint64
	}
	entries := make([]entry, 0, a.count)
	for i, s := range a.slots {
		if s.live {
			entries = append(entries, entry{id: ID{Index: uint32(i), Gen: s.gen}, seq: s.seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]ID, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// Each calls fn for every live entry in insertion order.
func (a *Arena[T]) Each(fn func(ID, T)) {
	for _, id := range a.IDs() {
		v, _ := a.Get(id)
		fn(id, v)
	}
}
