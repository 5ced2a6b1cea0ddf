// Package environ provides nested scopes of named values. The evaluator
// uses them for in-scope variables, namespace prefixes and the function
// registry.
package environ

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrUndefined = errors.New("undefined identifier")

// Environ maps names to values. A name not bound locally is looked up in
// the enclosing scope.
type Environ[T any] interface {
	Resolve(string) (T, error)
	Lookup(string) (T, bool)
	Define(string, T)
	Names() []string
	Len() int
}

type scope[T any] struct {
	values map[string]T
	parent Environ[T]
}

// Empty creates a scope without parent.
func Empty[T any]() Environ[T] {
	return Enclosed[T](nil)
}

// Enclosed creates a scope whose unbound names are resolved by parent. A
// for or let clause binds its variable this way without touching the
// bindings of the outer expression.
func Enclosed[T any](parent Environ[T]) Environ[T] {
	return &scope[T]{
		values: make(map[string]T),
		parent: parent,
	}
}

// From creates a scope holding a copy of values, as the predefined
// namespace prefixes or the variables of an engine.
func From[T any](values map[string]T) Environ[T] {
	s := scope[T]{
		values: maps.Clone(values),
	}
	if s.values == nil {
		s.values = make(map[string]T)
	}
	return &s
}

// Len counts the local bindings only.
func (s *scope[T]) Len() int {
	return len(s.values)
}

// Names returns the names visible from this scope, local and inherited,
// sorted and without duplicates.
func (s *scope[T]) Names() []string {
	names := slices.Collect(maps.Keys(s.values))
	if s.parent != nil {
		names = append(names, s.parent.Names()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Define binds ident in this scope. A binding of the same name in an
// enclosing scope is shadowed, not replaced.
func (s *scope[T]) Define(ident string, value T) {
	s.values[ident] = value
}

func (s *scope[T]) Lookup(ident string) (T, bool) {
	for env := Environ[T](s); env != nil; {
		x, ok := env.(*scope[T])
		if !ok {
			value, err := env.Resolve(ident)
			return value, err == nil
		}
		if value, ok := x.values[ident]; ok {
			return value, true
		}
		env = x.parent
	}
	var zero T
	return zero, false
}

func (s *scope[T]) Resolve(ident string) (T, error) {
	value, ok := s.Lookup(ident)
	if !ok {
		return value, fmt.Errorf("%s: %w", ident, ErrUndefined)
	}
	return value, nil
}
