package engine

import "testing"

func TestBindIsIdempotent(t *testing.T) {
	b := newBindings()

	b.bind("c1", "s1")
	b.bind("c1", "s1")

	if got, _ := b.currentSessionOf("c1"); got != "s1" {
		t.Errorf("expected binding to s1, got %q", got)
	}
	if members := b.members("s1"); len(members) != 1 {
		t.Errorf("rebinding to the same session must not duplicate membership, got %v", members)
	}
}

func TestRebindMovesBetweenRooms(t *testing.T) {
	b := newBindings()
	b.bind("c1", "s1")
	b.bind("c2", "s1")

	b.bind("c1", "s2")

	if got, _ := b.currentSessionOf("c1"); got != "s2" {
		t.Errorf("expected binding to s2, got %q", got)
	}
	if members := b.members("s1"); len(members) != 1 || members[0] != "c2" {
		t.Errorf("expected only c2 left in s1, got %v", members)
	}
	if members := b.members("s2"); len(members) != 1 || members[0] != "c1" {
		t.Errorf("expected c1 in s2, got %v", members)
	}
}

func TestUnbindForgetsConnection(t *testing.T) {
	b := newBindings()
	b.bind("c1", "s1")

	b.unbind("c1")

	if _, ok := b.currentSessionOf("c1"); ok {
		t.Error("unbound connection must report absence")
	}
	if members := b.members("s1"); len(members) != 0 {
		t.Errorf("expected empty room after unbind, got %v", members)
	}

	// Unbinding an unknown connection is a no-op.
	b.unbind("ghost")
}
