// Copyright (c) 2025 BVK Chaitanya

package idgen

import "testing"

func TestDeterministicSequence(t *testing.T) {
	a := New("test-seed", 0)
	b := New("test-seed", 0)

	for i := 0; i < 100; i++ {
		x, y := a.NextID(), b.NextID()
		if x != y {
			t.Fatalf("id %d: %q != %q", i, x, y)
		}
	}
}

func TestResumeFromOffset(t *testing.T) {
	a := New("test-seed", 0)
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, a.NextID())
	}

	b := New("test-seed", 5)
	for i := 5; i < 10; i++ {
		if id := b.NextID(); id != ids[i] {
			t.Fatalf("id %d: want %q, got %q", i, ids[i], id)
		}
	}
}

func TestUniqueIDs(t *testing.T) {
	g := New("test-seed", 0)
	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		id := g.NextID()
		if _, ok := seen[id]; ok {
			t.Fatalf("id %q was issued twice", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRevertID(t *testing.T) {
	g := New("test-seed", 0)
	first := g.NextID()
	g.RevertID()
	if again := g.NextID(); again != first {
		t.Fatalf("reverted id: want %q, got %q", first, again)
	}
	if g.Offset() != 1 {
		t.Fatalf("offset: want 1, got %d", g.Offset())
	}
}
