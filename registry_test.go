package herbrand

import "testing"

func TestRegistryFreshMonotone(t *testing.T) {
	reg := NewRegistry()
	prev := ClassID(-1)
	for i := 0; i < 10; i++ {
		id := reg.Fresh()
		if id <= prev {
			t.Fatalf("ids not strictly increasing: %d after %d", id, prev)
		}
		prev = id
	}
	if reg.Allocated() != 10 {
		t.Errorf("allocated %d, want 10", reg.Allocated())
	}
}

func TestRegistryLookupOrCreateStable(t *testing.T) {
	reg := NewRegistry()
	l, r := reg.Fresh(), reg.Fresh()
	id := reg.LookupOrCreate('+', l, r)
	if again := reg.LookupOrCreate('+', l, r); again != id {
		t.Errorf("same key gave %d then %d", id, again)
	}
	if other := reg.LookupOrCreate('+', r, l); other == id {
		t.Errorf("operand order ignored")
	}
	if other := reg.LookupOrCreate('-', l, r); other == id {
		t.Errorf("operator ignored")
	}
}

func TestRegistryBind(t *testing.T) {
	reg := NewRegistry()
	l, r := reg.Fresh(), reg.Fresh()
	merged := reg.Fresh()

	reg.Bind('+', l, r, merged)
	if id, ok := reg.Lookup('+', l, r); !ok || id != merged {
		t.Fatalf("bound id not retrievable")
	}
	// Re-binding the same value is a no-op.
	reg.Bind('+', l, r, merged)

	defer func() {
		if recover() == nil {
			t.Errorf("conflicting Bind did not panic")
		}
	}()
	reg.Bind('+', l, r, merged+1)
}
