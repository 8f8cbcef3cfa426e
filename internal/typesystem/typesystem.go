// Package typesystem implements the content-addressed type store and
// unification engine (spec.md §3, §4.1, §4.2): an append-only table of
// TypeInfo descriptors addressed by stable integer TypeId handles,
// supporting structural unification through Ref indirection nodes.
//
// Grounded on funvibe-funxy/internal/typesystem/unify.go's unification
// discipline (occurs-check-free, structural descent per type
// constructor) generalised from its substitution-map scheme to the
// Ref-indirection store spec.md mandates, and directly on
// original_source/monty/typechecker/{type_info,inference_engine}.py for
// the exact rule ordering and primitive byte sizes.
package typesystem

import "fmt"

// TypeId is an opaque, non-negative index into a Store. 0 is reserved
// for Unknown.
type TypeId int

// PrimitiveKind enumerates the primitive TypeInfo variants.
type PrimitiveKind int

const (
	Unknown PrimitiveKind = iota
	Bool
	Number
	LValue
	Module
	ReturnKind
	Integer
	Nothing
	NoneKind
	I64
	I32
)

// ByteSize returns the fixed byte size of a primitive kind.
func (k PrimitiveKind) ByteSize() int {
	switch k {
	case Bool:
		return 1
	case I32:
		return 4
	case I64:
		return 8
	case Integer:
		return 4
	case NoneKind:
		return 1
	case Nothing, Unknown:
		return 0
	default:
		return 0
	}
}

func (k PrimitiveKind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Bool:
		return "Bool"
	case Number:
		return "Number"
	case LValue:
		return "LValue"
	case Module:
		return "Module"
	case ReturnKind:
		return "Return"
	case Integer:
		return "Integer"
	case Nothing:
		return "Nothing"
	case NoneKind:
		return "None"
	case I64:
		return "I64"
	case I32:
		return "I32"
	default:
		return "?"
	}
}

// Kind tags which TypeInfo variant a descriptor holds.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindCallable
	KindRef
	KindTypeVar
)

// TypeInfo is the tagged-variant universe of type descriptors (spec.md §3).
// Only the fields relevant to Kind are meaningful; this mirrors the
// source's tagged-enum-over-inheritance design.
type TypeInfo struct {
	Kind Kind

	Primitive PrimitiveKind // KindPrimitive

	Element TypeId // KindList

	Parameters TypeId // KindCallable
	Output     TypeId // KindCallable

	Target TypeId // KindRef

	Constraints []TypeId // KindTypeVar
}

func PrimitiveInfo(kind PrimitiveKind) TypeInfo { return TypeInfo{Kind: KindPrimitive, Primitive: kind} }
func ListInfo(elem TypeId) TypeInfo             { return TypeInfo{Kind: KindList, Element: elem} }
func CallableInfo(params, output TypeId) TypeInfo {
	return TypeInfo{Kind: KindCallable, Parameters: params, Output: output}
}
func RefInfo(target TypeId) TypeInfo { return TypeInfo{Kind: KindRef, Target: target} }
func TypeVarInfo(constraints ...TypeId) TypeInfo {
	return TypeInfo{Kind: KindTypeVar, Constraints: constraints}
}

// Equal reports structural equality of two descriptors, the notion of
// equality get_id_or_insert dedupes on.
func (t TypeInfo) Equal(o TypeInfo) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive == o.Primitive
	case KindList:
		return t.Element == o.Element
	case KindCallable:
		return t.Parameters == o.Parameters && t.Output == o.Output
	case KindRef:
		return t.Target == o.Target
	case KindTypeVar:
		if len(t.Constraints) != len(o.Constraints) {
			return false
		}
		for i := range t.Constraints {
			if t.Constraints[i] != o.Constraints[i] {
				return false
			}
		}
		return true
	}
	return false
}

// TypeCheckError reports a failed unification or other type-phase
// failure (spec.md §7.3). Defined here (rather than imported from
// internal/diagnostics) to keep the store free of a dependency on the
// diagnostics package it is itself consumed by.
type TypeCheckError struct {
	Message string
}

func (e *TypeCheckError) Error() string { return e.Message }

// Store is the append-only, indexable table of TypeInfo descriptors
// (spec.md §4.1). The zero value is not usable; construct with New.
type Store struct {
	entries []TypeInfo

	// Primitives names the deterministic suite seeded at construction,
	// exposed by name for the annotation resolver (spec.md §4.1).
	Primitives map[PrimitiveKind]TypeId
}

// New constructs a Store whose first insertion is Unknown at id 0,
// followed by the deterministic primitive suite (spec.md §4.1's
// initialisation contract).
func New() *Store {
	s := &Store{Primitives: make(map[PrimitiveKind]TypeId)}
	unknownId := s.insert(PrimitiveInfo(Unknown))
	if unknownId != 0 {
		panic("typesystem: Unknown must be id 0")
	}
	s.Primitives[Unknown] = unknownId
	for _, kind := range []PrimitiveKind{I64, I32, Bool, Nothing, NoneKind} {
		s.Primitives[kind] = s.GetIdOrInsert(PrimitiveInfo(kind))
	}
	return s
}

// insert appends info unconditionally and returns its new id.
func (s *Store) insert(info TypeInfo) TypeId {
	id := TypeId(len(s.entries))
	s.entries = append(s.entries, info)
	return id
}

// Insert is the exported form of insert: append and return a new id,
// without deduplication (spec.md §4.1).
func (s *Store) Insert(info TypeInfo) TypeId { return s.insert(info) }

// GetByValue performs a linear-equality lookup, returning the first
// matching id, or -1 if none matches.
func (s *Store) GetByValue(info TypeInfo) TypeId {
	for i, e := range s.entries {
		if e.Equal(info) {
			return TypeId(i)
		}
	}
	return -1
}

// GetIdOrInsert is the canonical entry point: lookup-or-append. All
// non-fresh code paths use this (spec.md §4.1).
func (s *Store) GetIdOrInsert(info TypeInfo) TypeId {
	if id := s.GetByValue(info); id >= 0 {
		return id
	}
	return s.insert(info)
}

// Index is random access into the store; an out-of-range id is a
// programmer error, not a recoverable condition (spec.md §4.1).
func (s *Store) Index(id TypeId) TypeInfo {
	if int(id) < 0 || int(id) >= len(s.entries) {
		panic(fmt.Sprintf("typesystem: TypeId %d out of range", id))
	}
	return s.entries[id]
}

// set overwrites the descriptor at id in place; only unify uses this,
// to install a Ref indirection over a previously-Unknown entry.
func (s *Store) set(id TypeId, info TypeInfo) {
	s.entries[id] = info
}

// Unify mutates the store to express that the types at left and right
// must be equal, following the rule order in spec.md §4.2.
func (s *Store) Unify(left, right TypeId) error {
	if s.Resolve(left) == s.Resolve(right) {
		return nil
	}

	l, r := s.Index(left), s.Index(right)

	switch {
	case l.Kind == KindPrimitive && l.Primitive == Unknown:
		s.set(left, RefInfo(right))
		return nil
	case r.Kind == KindPrimitive && r.Primitive == Unknown:
		s.set(right, RefInfo(left))
		return nil
	case l.Kind == KindPrimitive && r.Kind == KindPrimitive && l.Primitive == r.Primitive:
		return nil
	case l.Kind == KindRef:
		return s.Unify(l.Target, right)
	case r.Kind == KindRef:
		return s.Unify(left, r.Target)
	case l.Kind == KindList && r.Kind == KindList:
		return s.Unify(l.Element, r.Element)
	case l.Kind == KindCallable && r.Kind == KindCallable:
		if err := s.Unify(l.Parameters, r.Parameters); err != nil {
			return err
		}
		return s.Unify(l.Output, r.Output)
	default:
		return &TypeCheckError{Message: fmt.Sprintf("Failed to unify (%s U %s)", s.Reconstruct(left), s.Reconstruct(right))}
	}
}

// Reconstruct recursively renders id's type through Ref chains for
// diagnostics (spec.md §4.1).
func (s *Store) Reconstruct(id TypeId) string {
	info := s.Index(id)
	switch info.Kind {
	case KindPrimitive:
		return info.Primitive.String()
	case KindList:
		return fmt.Sprintf("List[%s]", s.Reconstruct(info.Element))
	case KindCallable:
		return fmt.Sprintf("Callable(%s) -> %s", s.Reconstruct(info.Parameters), s.Reconstruct(info.Output))
	case KindRef:
		return s.Reconstruct(info.Target)
	case KindTypeVar:
		return "TypeVar"
	default:
		return "?"
	}
}

// Resolve follows Ref chains from id to the first non-Ref descriptor,
// returning its id. Used by callers that need the concrete TypeId
// rather than its textual form (e.g. to compare Primitive kinds).
func (s *Store) Resolve(id TypeId) TypeId {
	for {
		info := s.Index(id)
		if info.Kind != KindRef {
			return id
		}
		id = info.Target
	}
}

// IsPrimitive reports whether id resolves to a Primitive of kind k.
func (s *Store) IsPrimitive(id TypeId, k PrimitiveKind) bool {
	info := s.Index(s.Resolve(id))
	return info.Kind == KindPrimitive && info.Primitive == k
}
