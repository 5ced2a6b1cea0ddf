package xpath

import (
	"errors"
	"testing"
)

func TestSubtype(t *testing.T) {
	tests := []struct {
		Candidate Type
		Ancestor  Type
		Want      bool
	}{
		{Candidate: TypeInteger, Ancestor: TypeDecimal, Want: true},
		{Candidate: TypeByte, Ancestor: TypeNumeric, Want: true},
		{Candidate: TypeUnsignedByte, Ancestor: TypeNonNegativeInteger, Want: true},
		{Candidate: TypeNCName, Ancestor: TypeString, Want: true},
		{Candidate: TypeDateTimeStamp, Ancestor: TypeDateTime, Want: true},
		{Candidate: TypeDayTimeDuration, Ancestor: TypeDuration, Want: true},
		{Candidate: TypeElement, Ancestor: TypeNode, Want: true},
		{Candidate: TypeString, Ancestor: TypeItem, Want: true},
		{Candidate: TypeDecimal, Ancestor: TypeInteger, Want: false},
		{Candidate: TypeFloat, Ancestor: TypeDouble, Want: false},
		{Candidate: TypeUntypedAtomic, Ancestor: TypeString, Want: false},
		{Candidate: TypeAnyURI, Ancestor: TypeString, Want: false},
		{Candidate: TypeDate, Ancestor: TypeDateTime, Want: false},
		{Candidate: TypeNode, Ancestor: TypeAnyAtomic, Want: false},
		{Candidate: Type(250), Ancestor: TypeItem, Want: false},
	}
	for _, c := range tests {
		got := IsSubtypeOf(c.Candidate, c.Ancestor)
		if got != c.Want {
			t.Errorf("%s <: %s: want %t, got %t", c.Candidate, c.Ancestor, c.Want, got)
		}
	}
}

func TestSubtypeReflexive(t *testing.T) {
	for _, t1 := range Types() {
		if !IsSubtypeOf(t1, t1) {
			t.Errorf("%s: not a subtype of itself", t1)
		}
		if !IsSubtypeOf(t1, TypeItem) {
			t.Errorf("%s: not a subtype of item()", t1)
		}
	}
}

func TestSubtypeTransitive(t *testing.T) {
	all := Types()
	for _, a := range all {
		for _, b := range all {
			if !IsSubtypeOf(a, b) {
				continue
			}
			for _, c := range all {
				if IsSubtypeOf(b, c) && !IsSubtypeOf(a, c) {
					t.Errorf("%s <: %s <: %s but not %s <: %s", a, b, c, a, c)
				}
			}
		}
	}
}

func TestSubtypeAntisymmetric(t *testing.T) {
	all := Types()
	for _, a := range all {
		for _, b := range all {
			if a != b && IsSubtypeOf(a, b) && IsSubtypeOf(b, a) {
				t.Errorf("%s and %s are subtypes of each other", a, b)
			}
		}
	}
}

func TestLookupType(t *testing.T) {
	tests := []struct {
		Name string
		Want Type
		Ok   bool
	}{
		{Name: "xs:integer", Want: TypeInteger, Ok: true},
		{Name: "integer", Want: TypeInteger, Ok: true},
		{Name: "Q{http://www.w3.org/2001/XMLSchema}date", Want: TypeDate, Ok: true},
		{Name: "element()", Want: TypeElement, Ok: true},
		{Name: "xs:unknown", Ok: false},
	}
	for _, c := range tests {
		got, ok := LookupType(c.Name)
		if ok != c.Ok {
			t.Errorf("%s: lookup mismatched, want %t, got %t", c.Name, c.Ok, ok)
			continue
		}
		if ok && got != c.Want {
			t.Errorf("%s: want %s, got %s", c.Name, c.Want, got)
		}
	}
}

func TestTypeParent(t *testing.T) {
	if _, ok := TypeItem.Parent(); ok {
		t.Errorf("item(): root should have no parent")
	}
	p, ok := TypeInteger.Parent()
	if !ok || p != TypeDecimal {
		t.Errorf("xs:integer: parent should be xs:decimal, got %s", p)
	}
	if TypeUnsignedByte.Depth() <= TypeInteger.Depth() {
		t.Errorf("xs:unsignedByte should be deeper than xs:integer")
	}
}

func TestBuildLattice(t *testing.T) {
	tests := []struct {
		Name string
		Defs []typeDef
	}{
		{
			Name: "no root",
			Defs: []typeDef{
				{kind: 0, name: "a", parent: "b"},
				{kind: 1, name: "b", parent: "a"},
			},
		},
		{
			Name: "two roots",
			Defs: []typeDef{
				{kind: 0, name: "a"},
				{kind: 1, name: "b"},
			},
		},
		{
			Name: "duplicate name",
			Defs: []typeDef{
				{kind: 0, name: "a"},
				{kind: 1, name: "a", parent: "a"},
			},
		},
		{
			Name: "duplicate tag",
			Defs: []typeDef{
				{kind: 0, name: "a"},
				{kind: 0, name: "b", parent: "a"},
			},
		},
		{
			Name: "unknown parent",
			Defs: []typeDef{
				{kind: 0, name: "a"},
				{kind: 1, name: "b", parent: "c"},
			},
		},
		{
			Name: "cycle",
			Defs: []typeDef{
				{kind: 0, name: "a"},
				{kind: 1, name: "b", parent: "c"},
				{kind: 2, name: "c", parent: "b"},
			},
		},
	}
	for _, c := range tests {
		_, err := buildLattice(c.Defs)
		if !errors.Is(err, ErrLattice) {
			t.Errorf("%s: expected lattice error, got %v", c.Name, err)
		}
	}
	if _, err := buildLattice(builtinTypes); err != nil {
		t.Errorf("builtin types: unexpected error: %s", err)
	}
}

func TestPromote(t *testing.T) {
	tests := []struct {
		Left  Type
		Right Type
		Want  Type
	}{
		{Left: TypeInteger, Right: TypeByte, Want: TypeInteger},
		{Left: TypeInteger, Right: TypeDecimal, Want: TypeDecimal},
		{Left: TypeInteger, Right: TypeFloat, Want: TypeDouble},
		{Left: TypeFloat, Right: TypeFloat, Want: TypeFloat},
		{Left: TypeDecimal, Right: TypeDouble, Want: TypeDouble},
	}
	for _, c := range tests {
		if got := promote(c.Left, c.Right); got != c.Want {
			t.Errorf("promote(%s, %s): want %s, got %s", c.Left, c.Right, c.Want, got)
		}
	}
}
