package typesystem

import "testing"

func TestNewSeedsUnknownAtZero(t *testing.T) {
	s := New()
	if s.Primitives[Unknown] != 0 {
		t.Fatalf("Unknown must be id 0, got %d", s.Primitives[Unknown])
	}
	if info := s.Index(0); info.Kind != KindPrimitive || info.Primitive != Unknown {
		t.Fatalf("id 0 must hold Primitive(Unknown), got %#v", info)
	}
}

func TestGetIdOrInsertIsIdempotent(t *testing.T) {
	s := New()
	a := s.GetIdOrInsert(PrimitiveInfo(Bool))
	b := s.GetIdOrInsert(PrimitiveInfo(Bool))
	if a != b {
		t.Fatalf("expected same id for repeated insertion, got %d and %d", a, b)
	}
	if !s.Index(a).Equal(PrimitiveInfo(Bool)) {
		t.Fatalf("store[id] must match the inserted descriptor")
	}
}

func TestInsertDoesNotDedupe(t *testing.T) {
	s := New()
	a := s.Insert(PrimitiveInfo(Bool))
	b := s.Insert(PrimitiveInfo(Bool))
	if a == b {
		t.Fatalf("Insert must not dedupe, got equal ids %d and %d", a, b)
	}
}

func TestUnifyUnknownWithConcrete(t *testing.T) {
	s := New()
	unk := s.Insert(PrimitiveInfo(Unknown))
	i64 := s.Primitives[I64]
	if err := s.Unify(unk, i64); err != nil {
		t.Fatalf("unify(Unknown, I64) failed: %v", err)
	}
	if s.Reconstruct(unk) != s.Reconstruct(i64) {
		t.Fatalf("after unifying Unknown with I64, reconstruct must match: got %q want %q", s.Reconstruct(unk), s.Reconstruct(i64))
	}
	if !s.IsPrimitive(unk, I64) {
		t.Fatalf("unk must resolve to I64 after unification")
	}
}

func TestUnifyEqualPrimitivesLeavesReconstructEqual(t *testing.T) {
	s := New()
	a := s.GetIdOrInsert(PrimitiveInfo(Bool))
	b := s.GetIdOrInsert(PrimitiveInfo(Bool))
	if err := s.Unify(a, b); err != nil {
		t.Fatalf("unify(Bool, Bool) failed: %v", err)
	}
	if s.Reconstruct(a) != s.Reconstruct(b) {
		t.Fatalf("reconstruct mismatch after unifying equal primitives")
	}
}

func TestUnifyMismatchedPrimitivesFails(t *testing.T) {
	s := New()
	boolId := s.Primitives[Bool]
	i64 := s.Primitives[I64]
	if err := s.Unify(boolId, i64); err == nil {
		t.Fatalf("expected unify(Bool, I64) to fail")
	}
}

func TestUnifyListsDescendsStructurally(t *testing.T) {
	s := New()
	unk1 := s.Insert(PrimitiveInfo(Unknown))
	i64 := s.Primitives[I64]
	listUnk := s.GetIdOrInsert(ListInfo(unk1))
	listI64 := s.GetIdOrInsert(ListInfo(i64))
	if err := s.Unify(listUnk, listI64); err != nil {
		t.Fatalf("unify(List[Unknown], List[I64]) failed: %v", err)
	}
	if !s.IsPrimitive(unk1, I64) {
		t.Fatalf("list element unification must propagate to the element ids")
	}
}

func TestUnifyCallablesDescendsBoth(t *testing.T) {
	s := New()
	unkParam := s.Insert(PrimitiveInfo(Unknown))
	unkOut := s.Insert(PrimitiveInfo(Unknown))
	i64 := s.Primitives[I64]
	boolId := s.Primitives[Bool]

	left := s.GetIdOrInsert(CallableInfo(unkParam, unkOut))
	right := s.GetIdOrInsert(CallableInfo(i64, boolId))
	if err := s.Unify(left, right); err != nil {
		t.Fatalf("unify(Callable, Callable) failed: %v", err)
	}
	if !s.IsPrimitive(unkParam, I64) || !s.IsPrimitive(unkOut, Bool) {
		t.Fatalf("callable unification must propagate through both parameters and output")
	}
}

func TestByteSizes(t *testing.T) {
	cases := map[PrimitiveKind]int{
		Bool: 1, I32: 4, I64: 8, Integer: 4, NoneKind: 1, Nothing: 0, Unknown: 0,
	}
	for kind, want := range cases {
		if got := kind.ByteSize(); got != want {
			t.Errorf("%s.ByteSize() = %d, want %d", kind, got, want)
		}
	}
}
