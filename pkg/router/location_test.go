package router

import "testing"

func TestMemoryLocation(t *testing.T) {
	loc := NewMemoryLocation("#/start")
	if loc.Hash() != "#/start" {
		t.Errorf("Hash() = %q", loc.Hash())
	}

	var a, b []string
	unsubA := loc.Subscribe(func(h string) { a = append(a, h) })
	loc.Subscribe(func(h string) { b = append(b, h) })

	loc.Navigate("#/one")
	unsubA()
	unsubA()
	loc.Navigate("#/two")

	if len(a) != 1 || a[0] != "#/one" {
		t.Errorf("a = %v", a)
	}
	if len(b) != 2 || b[1] != "#/two" {
		t.Errorf("b = %v", b)
	}
	if loc.Hash() != "#/two" {
		t.Errorf("Hash() = %q", loc.Hash())
	}
	if loc.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d", loc.Subscribers())
	}
}

func TestMemoryLocationSameHashStillNotifies(t *testing.T) {
	loc := NewMemoryLocation("x")
	n := 0
	loc.Subscribe(func(string) { n++ })
	loc.Navigate("x")
	if n != 1 {
		t.Errorf("notifications = %d, want 1", n)
	}
}
