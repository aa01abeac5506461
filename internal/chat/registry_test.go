package chat

import "testing"

func TestRegistryReusesAndEvicts(t *testing.T) {
	created := 0
	reg := NewRegistry(2, func(id string) *Conversation {
		created++
		return NewConversation(id, Options{})
	})

	a := reg.Get("a")
	if reg.Get("a") != a {
		t.Fatalf("expected the same conversation for a repeated id")
	}
	reg.Get("b")
	reg.Get("a") // a becomes most recent
	reg.Get("c") // evicts b

	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}
	if reg.Get("a") != a {
		t.Fatalf("a should have survived eviction")
	}
	before := created
	reg.Get("b")
	if created != before+1 {
		t.Fatalf("b should have been evicted and recreated")
	}
}

func TestRegistryEmptyIDNotRetained(t *testing.T) {
	reg := NewRegistry(4, func(id string) *Conversation {
		return NewConversation(id, Options{})
	})
	if reg.Get("") == reg.Get("") {
		t.Fatalf("empty ids must yield fresh conversations")
	}
	if reg.Len() != 0 {
		t.Fatalf("Len = %d, want 0", reg.Len())
	}
}

func TestRegistryMinimumLimit(t *testing.T) {
	reg := NewRegistry(0, func(id string) *Conversation {
		return NewConversation(id, Options{})
	})
	reg.Get("a")
	reg.Get("b")
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}
}
