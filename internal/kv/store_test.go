package kv

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()

	if _, ok := s.Get("missing"); ok {
		t.Fatal("missing key should not be found")
	}

	s.Set("a", "1")
	v, ok := s.Get("a")
	if !ok || v != "1" {
		t.Fatalf("expected a=1, got %q ok=%v", v, ok)
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("deleted key should not be found")
	}
	// Deleting a missing key is not an error.
	s.Delete("a")
}

func TestMemoryStoreIncrBy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()

	v, err := s.IncrBy("n", 5)
	if err != nil || v != 5 {
		t.Fatalf("expected 5, got %d err=%v", v, err)
	}
	v, err = s.IncrBy("n", -3)
	if err != nil || v != 2 {
		t.Fatalf("expected 2, got %d err=%v", v, err)
	}

	s.Set("text", "not a number")
	if _, err := s.IncrBy("text", 1); err == nil {
		t.Fatal("expected error incrementing non-integer value")
	}
}

func TestMemoryStoreConcurrentIncr(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.IncrBy("counter", 1)
			}
		}()
	}
	wg.Wait()

	v, _ := s.IncrBy("counter", 0)
	if v != 5000 {
		t.Fatalf("expected 5000, got %d", v)
	}
}

func TestMemoryStoreLen(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	for i := 0; i < 4; i++ {
		s.Set(fmt.Sprintf("k%d", i), "v")
	}
	if s.Len() != 4 {
		t.Fatalf("expected 4 keys, got %d", s.Len())
	}
}
