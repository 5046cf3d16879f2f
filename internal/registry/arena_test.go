package registry

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestArena_InsertGetRemove(t *testing.T) {
	a := NewArena[string]()
	id := a.Insert("editor")

	if got, ok := a.Get(id); !ok || got != "editor" {
		t.Fatalf("Get(%s) = %q,%v", id, got, ok)
	}
	if v, ok := a.Remove(id); !ok || v != "editor" {
		t.Fatalf("Remove(%s) = %q,%v", id, v, ok)
	}
	if a.Contains(id) {
		t.Fatalf("expected %s to be gone", id)
	}
	if _, ok := a.Remove(id); ok {
		t.Fatalf("expected double remove to fail")
	}
	if a.Len() != 0 {
		t.Fatalf("expected empty arena, got %d", a.Len())
	}
}

func TestArena_StaleIDDoesNotResolve(t *testing.T) {
	a := NewArena[int]()
	old := a.Insert(1)
	a.Remove(old)
	fresh := a.Insert(2)

	if fresh.Index != old.Index {
		t.Fatalf("expected slot reuse, got %s after %s", fresh, old)
	}
	if fresh.Gen == old.Gen {
		t.Fatalf("expected generation bump, got %s and %s", fresh, old)
	}
	if _, ok := a.Get(old); ok {
		t.Fatalf("stale id %s resolved", old)
	}
	if v, ok := a.Get(fresh); !ok || v != 2 {
		t.Fatalf("Get(%s) = %d,%v", fresh, v, ok)
	}
}

func TestArena_IDsInInsertionOrder(t *testing.T) {
	a := NewArena[string]()
	first := a.Insert("a")
	second := a.Insert("b")
	a.Remove(first)
	third := a.Insert("c") // reuses slot 0

	got := a.IDs()
	want := []ID{second, third}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
}

func TestParseID(t *testing.T) {
	id := ID{Index: 7, Gen: 3}
	parsed, err := ParseID(id.String())
	if err != nil || parsed != id {
		t.Fatalf("ParseID(%q) = %v, %v", id.String(), parsed, err)
	}

	for _, bad := range []string{"", "7.3", "w7", "wx.1", "w1.0", "w1.-2"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("ParseID(%q) expected error", bad)
		}
	}
}

func TestID_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]ID{"id": {Index: 2, Gen: 5}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"id":"w2.5"}` {
		t.Fatalf("unexpected json %s", data)
	}
	var out struct{ ID ID }
	if err := json.Unmarshal([]byte(`{"ID":"w2.5"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ID != (ID{Index: 2, Gen: 5}) {
		t.Fatalf("unexpected id %v", out.ID)
	}
}
