package correlate

import "testing"

func TestThreadSetAddHas(t *testing.T) {
	t.Parallel()

	set := newThreadSet()
	if set.Has("1700000000.000100") {
		t.Fatalf("Has() on empty set = true, want false")
	}
	set.Add("1700000000.000100")
	if !set.Has("1700000000.000100") {
		t.Fatalf("Has() after Add = false, want true")
	}

	// Adds are idempotent: reusing a thread never mints a new entry.
	set.Add("1700000000.000100")
	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}

	set.Add("")
	if set.Len() != 1 {
		t.Fatalf("Len() after empty Add = %d, want 1", set.Len())
	}
}
