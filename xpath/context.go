package xpath

import (
	"errors"
	"iter"
	"time"

	"github.com/midbel/xquery/environ"
	"github.com/midbel/xquery/xml"
)

// Context is the dynamic context of one evaluation step. It is a value:
// deriving a new context never modifies the one it comes from. Derived
// contexts share the variable bindings and the facade.
type Context struct {
	Item      Item
	Position  int
	Size      int
	Variables environ.Environ[Sequence]
	Facade    xml.Facade
	Now       time.Time
}

func NewContext(item Item) Context {
	ctx := Context{
		Item:      item,
		Variables: environ.Empty[Sequence](),
		Facade:    xml.DefaultFacade(),
		Now:       time.Now(),
	}
	if item != nil {
		ctx.Position, ctx.Size = 1, 1
	}
	return ctx
}

func (c Context) Derive(item Item, pos, size int) Context {
	c.Item = item
	c.Position = pos
	c.Size = size
	return c
}

// Bind returns a context where name refers to seq. The binding lives in a
// new scope enclosing the current variables.
func (c Context) Bind(name string, seq Sequence) Context {
	env := environ.Enclosed(c.Variables)
	env.Define(name, seq)
	c.Variables = env
	return c
}

func (c Context) Resolve(name string) (Sequence, error) {
	if c.Variables == nil {
		return Sequence{}, newError(CodeUndefinedVar, "$%s is not defined", name)
	}
	seq, err := c.Variables.Resolve(name)
	if errors.Is(err, environ.ErrUndefined) {
		return seq, newError(CodeUndefinedVar, "$%s is not defined", name)
	}
	return seq, err
}

// Node returns the context item when it is a node.
func (c Context) Node() (xml.Node, bool) {
	if c.Item == nil {
		return nil, false
	}
	return toNode(c.Item)
}

func (c Context) facade() xml.Facade {
	if c.Facade == nil {
		return xml.DefaultFacade()
	}
	return c.Facade
}

// Each yields one derived context per item of seq. Knowing the size of the
// context requires the whole sequence: it is materialized once, unless its
// length is already known.
func (c Context) Each(seq Sequence) iter.Seq2[Context, error] {
	return func(yield func(Context, error) bool) {
		if size, ok := seq.Known(); ok {
			var pos int
			for item, err := range seq.All() {
				if err != nil {
					yield(c, err)
					return
				}
				pos++
				if !yield(c.Derive(item, pos, size), nil) {
					return
				}
			}
			return
		}
		items, err := seq.Items()
		if err != nil {
			yield(c, err)
			return
		}
		for i, item := range items {
			if !yield(c.Derive(item, i+1, len(items)), nil) {
				return
			}
		}
	}
}

// StaticContext holds what is known before evaluation starts: the in-scope
// namespaces and the functions that can be called.
type StaticContext struct {
	Namespaces environ.Environ[string]
	Functions  environ.Environ[Function]
}

func DefaultStaticContext() *StaticContext {
	namespaces := map[string]string{
		"xs":    schemaNS,
		"fn":    funcNS,
		"xml":   xmlNS,
		"array": arrayNS,
		"math":  mathNS,
	}
	return &StaticContext{
		Namespaces: environ.From(namespaces),
		Functions:  DefaultBuiltin(),
	}
}

func (s *StaticContext) DefineNamespace(prefix, uri string) {
	s.Namespaces.Define(prefix, uri)
}

func (s *StaticContext) ResolveNamespace(prefix string) (string, bool) {
	if s == nil || s.Namespaces == nil {
		return "", false
	}
	return s.Namespaces.Lookup(prefix)
}

func (s *StaticContext) Define(fn Function) {
	s.Functions.Define(fn.key(), fn)
}

func (s *StaticContext) Function(name xml.QName, arity int) (Function, error) {
	if s != nil && s.Functions != nil {
		if fn, ok := s.Functions.Lookup(functionKey(name, arity)); ok {
			return fn, nil
		}
		if fn, ok := s.Functions.Lookup(functionKey(name, -1)); ok {
			return fn, nil
		}
	}
	return Function{}, newError(CodeUndefinedFunc, "%s#%d is not defined", name.QualifiedName(), arity)
}

// Parameters are shared by every step of an evaluation.
type Parameters struct {
	Static *StaticContext
	Cache  *OperatorCache
	Tracer Tracer
}

func DefaultParameters() *Parameters {
	return &Parameters{
		Static: DefaultStaticContext(),
		Cache:  NewOperatorCache(),
		Tracer: NoTrace(),
	}
}

// Resolve gives the function computing op for the pair of types, going
// through the cache when one is set.
func (p *Parameters) Resolve(op Operator, left, right Type) (BinaryFunc, error) {
	if p == nil || p.Cache == nil {
		return ResolveOperator(op, left, right)
	}
	fn, ok := p.Cache.Get(op, left, right)
	p.tracer().Resolve(op, left, right, ok)
	if ok {
		return fn, nil
	}
	return p.Cache.Resolve(op, left, right)
}

func (p *Parameters) static() *StaticContext {
	if p == nil || p.Static == nil {
		return DefaultStaticContext()
	}
	return p.Static
}

func (p *Parameters) tracer() Tracer {
	if p == nil || p.Tracer == nil {
		return NoTrace()
	}
	return p.Tracer
}
