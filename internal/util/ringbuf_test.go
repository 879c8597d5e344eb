package util

import "testing"

func TestRingBufferOrder(t *testing.T) {
	r := NewRingBuffer[int](3)
	for _, n := range []int{1, 2, 3} {
		r.Push(n)
	}

	got := r.Snapshot()
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("snapshot = %v, expected [1 2 3]", got)
	}
}

func TestRingBufferOverwritesOldest(t *testing.T) {
	r := NewRingBuffer[int](3)
	for n := 1; n <= 5; n++ {
		r.Push(n)
	}

	got := r.Snapshot()
	if len(got) != 3 {
		t.Fatalf("length = %d, expected capped 3", len(got))
	}
	if got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("snapshot = %v, expected [3 4 5]", got)
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, expected 3", r.Len())
	}
}

func TestRingBufferEmpty(t *testing.T) {
	r := NewRingBuffer[string](4)
	if got := r.Snapshot(); len(got) != 0 {
		t.Errorf("empty snapshot = %v, expected none", got)
	}
}
