package orm

import (
	"bytes"
	"testing"

	"github.com/covault/covault/store"
)

func TestSequenceIncrement(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("cntr", "id")

	if got := s.NextInt(db); got != 1 {
		t.Fatalf("unexpected first value: %d", got)
	}
	if got := s.NextInt(db); got != 2 {
		t.Fatalf("unexpected second value: %d", got)
	}

	// Latest does not advance
	latest, _ := s.Latest(db)
	if latest != 2 {
		t.Fatalf("unexpected latest: %d", latest)
	}
	latest, _ = s.Latest(db)
	if latest != 2 {
		t.Fatalf("latest advanced the sequence: %d", latest)
	}

	// byte representation is monotonic
	a := s.NextVal(db)
	b := s.NextVal(db)
	if bytes.Compare(a, b) >= 0 {
		t.Fatal("sequence bytes not increasing")
	}
	if err := ValidateSequence(a); err != nil {
		t.Fatalf("invalid sequence value: %+v", err)
	}
}

func TestSequenceIndependence(t *testing.T) {
	db := store.MemStore()
	a := NewSequence("cntr", "id")
	b := NewSequence("cntr", "other")

	a.NextInt(db)
	a.NextInt(db)
	if got := b.NextInt(db); got != 1 {
		t.Fatalf("sequences share state: %d", got)
	}
}

func TestValidateSequence(t *testing.T) {
	if err := ValidateSequence(nil); err == nil {
		t.Fatal("nil accepted")
	}
	if err := ValidateSequence([]byte{1, 2, 3}); err == nil {
		t.Fatal("short value accepted")
	}
	if err := ValidateSequence(EncodeSequence(42)); err != nil {
		t.Fatalf("valid value rejected: %+v", err)
	}
}
