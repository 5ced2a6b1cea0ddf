package xpath

import (
	"time"

	"github.com/midbel/xquery/environ"
	"github.com/midbel/xquery/xml"
)

// Engine evaluates expressions. Its operator cache is shared by every
// evaluation it runs and is safe for concurrent use.
type Engine struct {
	static *StaticContext
	cache  *OperatorCache
	tracer Tracer
	facade xml.Facade
	now    func() time.Time
}

type Option func(*Engine)

// WithNamespace binds prefix to uri in the static context.
func WithNamespace(prefix, uri string) Option {
	return func(e *Engine) {
		e.static.DefineNamespace(prefix, uri)
	}
}

func WithTracer(tracer Tracer) Option {
	return func(e *Engine) {
		if tracer == nil {
			tracer = NoTrace()
		}
		e.tracer = tracer
	}
}

func WithFacade(facade xml.Facade) Option {
	return func(e *Engine) {
		e.facade = facade
	}
}

// WithNow fixes the value returned by fn:current-dateTime.
func WithNow(when time.Time) Option {
	return func(e *Engine) {
		e.now = func() time.Time {
			return when
		}
	}
}

func WithFunction(fn Function) Option {
	return func(e *Engine) {
		e.static.Define(fn)
	}
}

func WithCache(cache *OperatorCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

func NewEngine(opts ...Option) *Engine {
	e := Engine{
		static: DefaultStaticContext(),
		cache:  NewOperatorCache(),
		tracer: NoTrace(),
		facade: xml.DefaultFacade(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(&e)
	}
	return &e
}

func (e *Engine) Cache() *OperatorCache {
	return e.cache
}

func (e *Engine) Static() *StaticContext {
	return e.static
}

func (e *Engine) Parameters() *Parameters {
	return &Parameters{
		Static: e.static,
		Cache:  e.cache,
		Tracer: e.tracer,
	}
}

// Context gives a dynamic context with item as context item. The current
// date and time is read once and stays the same for the whole evaluation.
func (e *Engine) Context(item Item) Context {
	ctx := NewContext(item)
	ctx.Facade = e.facade
	ctx.Now = e.now()
	return ctx
}

// Evaluate runs expr with item as context item, which may be nil, and the
// variables given.
func (e *Engine) Evaluate(expr Expr, item Item, vars map[string]Sequence) (Sequence, error) {
	ctx := e.Context(item)
	if len(vars) > 0 {
		ctx.Variables = environ.From(vars)
	}
	return expr.Evaluate(ctx, e.Parameters())
}

// EvaluateNode is Evaluate with node as the context item.
func (e *Engine) EvaluateNode(expr Expr, node xml.Node) (Sequence, error) {
	var item Item
	if node != nil {
		item = NewNode(node)
	}
	return e.Evaluate(expr, item, nil)
}
