package xpath

import (
	"fmt"
	"math"
	"strings"

	"github.com/midbel/xquery/environ"
	"github.com/midbel/xquery/xml"
)

type CallFunc func(Context, *Parameters, []Sequence) (Sequence, error)

// Function is an entry of the function registry. Params, when set, gives
// the expected type of each argument: arguments are converted before Call
// is invoked. A Variadic function accepts any number of arguments.
type Function struct {
	Name     xml.QName
	Params   []SequenceType
	Variadic bool
	Call     CallFunc
}

func (f Function) Arity() int {
	if f.Variadic {
		return -1
	}
	return len(f.Params)
}

func (f Function) key() string {
	return functionKey(f.Name, f.Arity())
}

func functionKey(name xml.QName, arity int) string {
	return fmt.Sprintf("%s#%d", name.ExpandedName(), arity)
}

func (f Function) convert(ctx Context, args []Sequence) ([]Sequence, error) {
	if f.Variadic || len(f.Params) == 0 {
		return args, nil
	}
	for i := range args {
		seq, err := f.Params[i].Convert(args[i], ctx)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = seq
	}
	return args, nil
}

var builtinEnv = environ.Empty[Function]()

func registerFunc(space, local string, call CallFunc, params ...SequenceType) {
	fn := Function{
		Name:   xml.ExpandedName(local, "", space),
		Params: params,
		Call:   call,
	}
	builtinEnv.Define(fn.key(), fn)
}

func init() {
	registerFunc(funcNS, "true", callTrue)
	registerFunc(funcNS, "false", callFalse)
	registerFunc(funcNS, "not", callNot, Many(TypeItem))
	registerFunc(funcNS, "boolean", callBoolean, Many(TypeItem))
	registerFunc(funcNS, "count", callCount, Many(TypeItem))
	registerFunc(funcNS, "empty", callEmpty, Many(TypeItem))
	registerFunc(funcNS, "exists", callExists, Many(TypeItem))
	registerFunc(funcNS, "string", callString)
	registerFunc(funcNS, "string", callString, Optional(TypeItem))
	registerFunc(funcNS, "data", callData)
	registerFunc(funcNS, "data", callData, Many(TypeItem))
	registerFunc(funcNS, "number", callNumber)
	registerFunc(funcNS, "number", callNumber, Optional(TypeAnyAtomic))
	registerFunc(funcNS, "position", callPosition)
	registerFunc(funcNS, "last", callLast)
	registerFunc(funcNS, "current-dateTime", callCurrentDateTime)
	registerFunc(funcNS, "QName", callQName, Optional(TypeString), One(TypeString))
	registerFunc(funcNS, "local-name-from-QName", callLocalName, Optional(TypeQName))
	registerFunc(funcNS, "namespace-uri-from-QName", callNamespaceURI, Optional(TypeQName))

	registerFunc(arrayNS, "size", callArraySize, One(TypeArray))
	registerFunc(arrayNS, "get", callArrayGet, One(TypeArray), One(TypeInteger))
	registerFunc(arrayNS, "put", callArrayPut, One(TypeArray), One(TypeInteger), Many(TypeItem))
	registerFunc(arrayNS, "append", callArrayAppend, One(TypeArray), Many(TypeItem))
	registerFunc(arrayNS, "subarray", callArraySubarray, One(TypeArray), One(TypeInteger))
	registerFunc(arrayNS, "subarray", callArraySubarray, One(TypeArray), One(TypeInteger), One(TypeInteger))
	registerFunc(arrayNS, "remove", callArrayRemove, One(TypeArray), Many(TypeInteger))
	registerFunc(arrayNS, "insert-before", callArrayInsertBefore, One(TypeArray), One(TypeInteger), Many(TypeItem))
	registerFunc(arrayNS, "head", callArrayHead, One(TypeArray))
	registerFunc(arrayNS, "tail", callArrayTail, One(TypeArray))
	registerFunc(arrayNS, "reverse", callArrayReverse, One(TypeArray))
	registerFunc(arrayNS, "join", callArrayJoin, Many(TypeArray))
	registerFunc(arrayNS, "flatten", callArrayFlatten, Many(TypeItem))
}

// DefaultBuiltin returns a scope over the built-in functions. Functions
// defined in it do not leak into the shared registry.
func DefaultBuiltin() environ.Environ[Function] {
	return environ.Enclosed(builtinEnv)
}

type call struct {
	info
	name xml.QName
	args []Expr
}

// NewCall builds a call to the function with the expanded name given.
func NewCall(name xml.QName, args ...Expr) Expr {
	in := combine(Specificity{External: 1}, Unsorted, args...)
	in.static = false
	return call{
		info: in,
		name: name,
		args: args,
	}
}

func (c call) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	fn, err := params.static().Function(c.name, len(c.args))
	if err != nil {
		return Sequence{}, err
	}
	var args []Sequence
	for _, a := range c.args {
		seq, err := a.Evaluate(ctx, params)
		if err != nil {
			return Sequence{}, err
		}
		args = append(args, seq)
	}
	var (
		tracer = params.tracer()
		name   = c.name.QualifiedName()
	)
	tracer.Enter(name)
	defer tracer.Leave(name)

	args, err = fn.convert(ctx, args)
	if err == nil {
		var seq Sequence
		if seq, err = fn.Call(ctx, params, args); err == nil {
			return seq, nil
		}
	}
	tracer.Error(name, err)
	return Sequence{}, fmt.Errorf("%s: %w", name, err)
}

func callTrue(_ Context, _ *Parameters, _ []Sequence) (Sequence, error) {
	return Singleton(NewBoolean(true)), nil
}

func callFalse(_ Context, _ *Parameters, _ []Sequence) (Sequence, error) {
	return Singleton(NewBoolean(false)), nil
}

func callNot(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	ok, err := args[0].EffectiveBooleanValue()
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewBoolean(!ok)), nil
}

func callBoolean(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	ok, err := args[0].EffectiveBooleanValue()
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewBoolean(ok)), nil
}

func callCount(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	n, err := args[0].Len()
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewInteger(int64(n))), nil
}

func callEmpty(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	ok, err := args[0].IsEmpty()
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewBoolean(ok)), nil
}

func callExists(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	ok, err := args[0].IsEmpty()
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewBoolean(!ok)), nil
}

func contextArgs(ctx Context, args []Sequence) ([]Sequence, error) {
	if len(args) > 0 {
		return args, nil
	}
	if ctx.Item == nil {
		return nil, newError(CodeContextAbsent, "context item is absent")
	}
	return []Sequence{Singleton(ctx.Item)}, nil
}

func callString(ctx Context, _ *Parameters, args []Sequence) (Sequence, error) {
	args, err := contextArgs(ctx, args)
	if err != nil {
		return Sequence{}, err
	}
	item, err := args[0].First()
	if err != nil {
		return Sequence{}, err
	}
	switch item := item.(type) {
	case nil:
		return Singleton(NewString("")), nil
	case NodeItem:
		return Singleton(NewString(ctx.facade().StringValue(item.node))), nil
	case Atomic:
		return Singleton(NewString(lexical(item))), nil
	default:
		return Sequence{}, newError(CodeNoString, "%s has no string value", item.Type())
	}
}

func callData(ctx Context, _ *Parameters, args []Sequence) (Sequence, error) {
	args, err := contextArgs(ctx, args)
	if err != nil {
		return Sequence{}, err
	}
	return args[0].Atomize(ctx.facade()), nil
}

// callNumber never fails on a bad value: a failed cast gives NaN.
func callNumber(ctx Context, _ *Parameters, args []Sequence) (Sequence, error) {
	if len(args) == 0 {
		if ctx.Item == nil {
			return Sequence{}, newError(CodeContextAbsent, "context item is absent")
		}
		args = []Sequence{Singleton(ctx.Item).Atomize(ctx.facade())}
	}
	item, err := args[0].First()
	if err != nil {
		return Sequence{}, err
	}
	value, ok := item.(Atomic)
	if !ok {
		return Singleton(NewDouble(math.NaN())), nil
	}
	res := Cast(value, TypeDouble)
	if !res.Successful() {
		return Singleton(NewDouble(math.NaN())), nil
	}
	return Singleton(res.Value), nil
}

func callPosition(ctx Context, _ *Parameters, _ []Sequence) (Sequence, error) {
	if ctx.Item == nil {
		return Sequence{}, newError(CodeContextAbsent, "context item is absent")
	}
	return Singleton(NewInteger(int64(ctx.Position))), nil
}

func callLast(ctx Context, _ *Parameters, _ []Sequence) (Sequence, error) {
	if ctx.Item == nil {
		return Sequence{}, newError(CodeContextAbsent, "context item is absent")
	}
	return Singleton(NewInteger(int64(ctx.Size))), nil
}

func callCurrentDateTime(ctx Context, _ *Parameters, _ []Sequence) (Sequence, error) {
	return Singleton(NewDateTime(ctx.Now)), nil
}

func callQName(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	var uri string
	if item, err := args[0].First(); err != nil {
		return Sequence{}, err
	} else if item != nil {
		uri = item.(Atomic).str()
	}
	item, err := args[1].First()
	if err != nil {
		return Sequence{}, err
	}
	name := item.(Atomic).str()
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		prefix, local = "", name
	}
	if !isNCName(local) || (ok && !isNCName(prefix)) {
		return Sequence{}, newError(CodeInvalidNumber, "%q is not a valid lexical QName", name)
	}
	if ok && uri == "" {
		return Sequence{}, newError(CodeInvalidNumber, "%q has a prefix but no namespace uri", name)
	}
	return Singleton(NewQName(xml.ExpandedName(local, prefix, uri))), nil
}

func callLocalName(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	item, err := args[0].First()
	if err != nil || item == nil {
		return Empty(), err
	}
	return Singleton(newAtomic(TypeNCName, item.(Atomic).qname().Name)), nil
}

func callNamespaceURI(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	item, err := args[0].First()
	if err != nil || item == nil {
		return Empty(), err
	}
	return Singleton(NewAnyURI(item.(Atomic).qname().Uri)), nil
}

func integerArg(seq Sequence) (int, error) {
	item, err := seq.First()
	if err != nil {
		return 0, err
	}
	value, ok := item.(Atomic)
	if !ok || !IsSubtypeOf(value.Type(), TypeInteger) {
		return 0, typeError("xs:integer expected")
	}
	n := value.integer()
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, newError(CodeArrayIndex, "array position out of bounds.")
	}
	return int(n), nil
}
