package primecache

import "testing"

func TestLookupMissThenRecord(t *testing.T) {
	c := New()
	prime := []byte{0x01, 0x02, 0x03}
	if got := c.Lookup(prime); got != Miss {
		t.Fatalf("expected Miss, got %v", got)
	}
	c.Record(prime, true)
	if got := c.Lookup(prime); got != Good {
		t.Fatalf("expected Good, got %v", got)
	}
}

func TestRecordBad(t *testing.T) {
	c := New()
	prime := []byte{0xAA, 0xBB}
	c.Record(prime, false)
	if got := c.Lookup(prime); got != Bad {
		t.Fatalf("expected Bad, got %v", got)
	}
}

func TestDefaultSingletonIsStable(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() should return the same cache instance every call")
	}
}

func TestNoEviction(t *testing.T) {
	c := New()
	for i := 0; i < 5000; i++ {
		c.Record([]byte{byte(i), byte(i >> 8)}, true)
	}
	if got := c.Lookup([]byte{0, 0}); got != Good {
		t.Fatal("expected the earliest entry to survive: cache must never evict")
	}
}
