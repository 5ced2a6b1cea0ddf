package xpath

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/midbel/xquery/xml"
)

func fnCall(local string, args ...Expr) Expr {
	return NewCall(qname(funcNS, local), args...)
}

func TestBuiltinFunctions(t *testing.T) {
	var (
		doc   = sampleTree()
		empty = NewLiteral()
		pair  = NewSequence(literalInt(1), literalInt(2))
	)
	tests := []struct {
		Name string
		Expr Expr
		Item Item
		Want string
	}{
		{Name: "true", Expr: fnCall("true"), Want: "true"},
		{Name: "false", Expr: fnCall("false"), Want: "false"},
		{Name: "not", Expr: fnCall("not", empty), Want: "true"},
		{Name: "boolean", Expr: fnCall("boolean", NewLiteral(NewString("a"))), Want: "true"},
		{Name: "count", Expr: fnCall("count", NewRange(literalInt(1), literalInt(10))), Want: "10"},
		{Name: "count empty", Expr: fnCall("count", empty), Want: "0"},
		{Name: "empty", Expr: fnCall("empty", pair), Want: "false"},
		{Name: "exists", Expr: fnCall("exists", pair), Want: "true"},
		{Name: "string", Expr: fnCall("string", NewLiteral(mustDecimal("1.50"))), Want: "1.5"},
		{Name: "string empty", Expr: fnCall("string", empty), Want: ""},
		{Name: "string node", Expr: fnCall("string", NewLiteral(NewNode(doc.group))), Want: "sub-element-1sub-element-2"},
		{Name: "string context", Expr: fnCall("string"), Item: NewNode(doc.id), Want: "first"},
		{Name: "data", Expr: fnCall("data", NewLiteral(NewNode(doc.item1), NewInteger(3))), Want: "element-1 3"},
		{Name: "data context", Expr: fnCall("data"), Item: NewNode(doc.sub1), Want: "sub-element-1"},
		{Name: "number", Expr: fnCall("number", NewLiteral(NewString("12"))), Want: "12"},
		{Name: "number invalid", Expr: fnCall("number", NewLiteral(NewString("abc"))), Want: "NaN"},
		{Name: "number empty", Expr: fnCall("number", empty), Want: "NaN"},
		{Name: "number context", Expr: fnCall("number"), Item: NewUntyped("4.5"), Want: "4.5"},
		{Name: "position", Expr: fnCall("position"), Item: NewInteger(1), Want: "1"},
		{Name: "last", Expr: fnCall("last"), Item: NewInteger(1), Want: "1"},
		{
			Name: "QName",
			Expr: fnCall("namespace-uri-from-QName", fnCall("QName", NewLiteral(NewString(exampleNS)), NewLiteral(NewString("ns:item")))),
			Want: exampleNS,
		},
		{
			Name: "local name",
			Expr: fnCall("local-name-from-QName", fnCall("QName", empty, NewLiteral(NewString("item")))),
			Want: "item",
		},
		{
			Name: "local name empty",
			Expr: fnCall("local-name-from-QName", empty),
			Want: "",
		},
	}
	for _, c := range tests {
		items, err := evaluate(c.Expr, NewContext(c.Item))
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Name, err)
			continue
		}
		if got := render(items); got != c.Want {
			t.Errorf("%s: want %q, got %q", c.Name, c.Want, got)
		}
	}
}

func TestBuiltinFunctionsErrors(t *testing.T) {
	tests := []struct {
		Name string
		Expr Expr
		Err  error
	}{
		{Name: "unknown function", Expr: fnCall("unknown"), Err: ErrUndefinedFunc},
		{Name: "wrong arity", Expr: fnCall("true", literalInt(1)), Err: ErrUndefinedFunc},
		{Name: "string without context", Expr: fnCall("string"), Err: ErrContextAbsent},
		{Name: "position without context", Expr: fnCall("position"), Err: ErrContextAbsent},
		{Name: "string of many", Expr: fnCall("string", NewSequence(literalInt(1), literalInt(2))), Err: ErrType},
		{Name: "QName of integer", Expr: fnCall("QName", NewLiteral(), literalInt(1)), Err: ErrType},
		{Name: "QName without uri", Expr: fnCall("QName", NewLiteral(), NewLiteral(NewString("p:a"))), Err: ErrInvalidNumber},
		{Name: "QName invalid", Expr: fnCall("QName", NewLiteral(), NewLiteral(NewString("1a"))), Err: ErrInvalidNumber},
		{Name: "boolean of many", Expr: fnCall("boolean", NewSequence(literalInt(1), literalInt(2))), Err: ErrBooleanValue},
	}
	for _, c := range tests {
		_, err := evaluate(c.Expr, NewContext(nil))
		if !errors.Is(err, c.Err) {
			t.Errorf("%s: want %v, got %v", c.Name, c.Err, err)
		}
	}
	_, err := evaluate(fnCall("local-name-from-QName", literalInt(1)), NewContext(nil))
	if err == nil || !strings.HasPrefix(err.Error(), "local-name-from-QName: argument 1:") {
		t.Errorf("conversion error should name the function and the argument: %v", err)
	}
	_, err = evaluate(fnCall("string", NewArrayConstructor(true)), NewContext(nil))
	if !errors.Is(err, Error{Code: CodeNoString}) {
		t.Errorf("string of an array: want FOTY0014, got %v", err)
	}
}

func TestNumberNaN(t *testing.T) {
	items, err := evaluate(fnCall("number", NewLiteral(NewBoolean(true))), NewContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := items[0].(Atomic).double(); got != 1 {
		t.Errorf("number(true()): want 1, got %f", got)
	}
	items, err = evaluate(fnCall("number", NewLiteral(NewString("x"))), NewContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if value := items[0].(Atomic); value.Type() != TypeDouble || !math.IsNaN(value.double()) {
		t.Errorf("number(x): want NaN, got %s", value)
	}
}

func TestCurrentDateTime(t *testing.T) {
	when := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)
	ctx := NewContext(nil)
	ctx.Now = when
	items, err := evaluate(fnCall("current-dateTime"), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := render(items); got != "2024-03-10T08:30:00Z" {
		t.Errorf("unexpected date time %s", got)
	}
}

func TestUserFunction(t *testing.T) {
	double := Function{
		Name:   xml.ExpandedName("double", "my", exampleNS),
		Params: []SequenceType{One(TypeDouble)},
		Call: func(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
			item, err := args[0].First()
			if err != nil {
				return Sequence{}, err
			}
			return Singleton(NewDouble(item.(Atomic).double() * 2)), nil
		},
	}
	params := DefaultParameters()
	params.Static.Define(double)

	expr := NewCall(xml.ExpandedName("double", "other", exampleNS), NewLiteral(NewUntyped("1.5")))
	seq, err := expr.Evaluate(NewContext(nil), params)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items, err := seq.Items()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := render(items); got != "3" {
		t.Errorf("want 3, got %s", got)
	}
	if _, err := DefaultParameters().Static.Function(double.Name, 1); !errors.Is(err, ErrUndefinedFunc) {
		t.Errorf("user function should not leak into other static contexts")
	}
	if _, err := params.Static.Function(qname(funcNS, "count"), 1); err != nil {
		t.Errorf("builtin functions should stay visible: %s", err)
	}
}

func TestVariadicFunction(t *testing.T) {
	concat := Function{
		Name:     qname(exampleNS, "concat"),
		Variadic: true,
		Call: func(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
			var parts []string
			for _, a := range args {
				items, err := a.Items()
				if err != nil {
					return Sequence{}, err
				}
				parts = append(parts, render(items))
			}
			return Singleton(NewString(strings.Join(parts, ""))), nil
		},
	}
	params := DefaultParameters()
	params.Static.Define(concat)
	expr := NewCall(concat.Name, NewLiteral(NewString("a")), literalInt(1), NewLiteral(NewString("b")))
	seq, err := expr.Evaluate(NewContext(nil), params)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items, err := seq.Items()
	if err != nil || render(items) != "a1b" {
		t.Errorf("want a1b, got %s (%v)", render(items), err)
	}
}

func TestCallTrace(t *testing.T) {
	var (
		tracer = &recordTracer{}
		params = DefaultParameters()
	)
	params.Tracer = tracer
	ok := fnCall("count", NewLiteral(NewInteger(1)))
	if _, err := ok.Evaluate(NewContext(nil), params); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	bad := fnCall("string")
	if _, err := bad.Evaluate(NewContext(nil), params); err == nil {
		t.Fatalf("expected error")
	}
	if len(tracer.enter) != 2 || tracer.enter[0] != "count" || tracer.enter[1] != "string" {
		t.Errorf("unexpected calls traced: %v", tracer.enter)
	}
	if len(tracer.errors) != 1 || tracer.errors[0] != "string" {
		t.Errorf("unexpected errors traced: %v", tracer.errors)
	}
}
