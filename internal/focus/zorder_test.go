package focus

import (
	"testing"

	"github.com/1broseidon/capsulewm/internal/registry"
)

func TestRaise_StrictlyIncreasing(t *testing.T) {
	m := New(100, 1000000000)
	a := registry.ID{Index: 0, Gen: 1}
	b := registry.ID{Index: 1, Gen: 1}

	last := -1
	for i := 0; i < 10; i++ {
		id := a
		if i%2 == 1 {
			id = b
		}
		z := m.Raise(id, false)
		if z <= last {
			t.Fatalf("z went from %d to %d", last, z)
		}
		last = z
	}
	if got, ok := m.Active(); !ok || got != b {
		t.Fatalf("Active() = %v,%v want %v", got, ok, b)
	}
}

func TestRaise_CapsuleRange(t *testing.T) {
	m := New(100, 5000)
	id := registry.ID{Index: 0, Gen: 1}

	normal := m.Raise(id, false)
	capsule := m.Raise(id, true)
	if capsule <= normal {
		t.Fatalf("capsule z %d not above normal z %d", capsule, normal)
	}
	if !m.IsCapsuleZ(capsule) || m.IsCapsuleZ(normal) {
		t.Fatalf("range classification wrong: normal=%d capsule=%d", normal, capsule)
	}
	if next := m.Next(true); next != capsule+1 {
		t.Fatalf("expected capsule values to increase, got %d after %d", next, capsule)
	}
}

func TestForget(t *testing.T) {
	m := New(1, 100)
	a := registry.ID{Index: 0, Gen: 1}
	b := registry.ID{Index: 1, Gen: 1}
	m.Raise(a, false)

	m.Forget(b)
	if !m.IsActive(a) {
		t.Fatalf("forgetting another id must keep focus")
	}
	m.Forget(a)
	if _, ok := m.Active(); ok {
		t.Fatalf("expected no active window")
	}
}
