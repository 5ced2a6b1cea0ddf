package main

import (
	"fmt"
	"strings"

	"github.com/midbel/xquery/xpath"
)

// parseOperand turns a command line argument into an expression. Arguments
// are literals unless they are a variable ($name), a call (prefix:name()),
// the empty sequence or a quoted string.
func parseOperand(engine *xpath.Engine, str string) (xpath.Expr, error) {
	switch {
	case str == "()":
		return xpath.NewLiteral(), nil
	case strings.HasPrefix(str, "$"):
		return xpath.NewVarRef(str[1:]), nil
	case strings.HasSuffix(str, "()"):
		name := xpath.NewLiteral(xpath.NewString(strings.TrimSuffix(str, "()")))
		qn, err := xpath.EvaluateName(engine.Static(), engine.Context(nil), engine.Parameters(), name)
		if err != nil {
			return nil, err
		}
		return xpath.NewCall(qn), nil
	case isQuoted(str):
		return xpath.NewLiteral(xpath.NewString(str[1 : len(str)-1])), nil
	default:
		return xpath.NewLiteral(xpath.InferType(str)), nil
	}
}

// parseOperands reads a comma separated list of operands as a sequence.
func parseOperands(engine *xpath.Engine, str string) (xpath.Expr, error) {
	var list []xpath.Expr
	for _, s := range strings.Split(str, ",") {
		e, err := parseOperand(engine, strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if len(list) == 1 {
		return list[0], nil
	}
	return xpath.NewSequence(list...), nil
}

func isQuoted(str string) bool {
	if len(str) < 2 {
		return false
	}
	q := str[0]
	return (q == '\'' || q == '"') && str[len(str)-1] == q
}

func lookupType(str string) (xpath.Type, error) {
	t, ok := xpath.LookupType(str)
	if !ok {
		return t, fmt.Errorf("%s: unknown type", str)
	}
	return t, nil
}

func printSequence(seq xpath.Sequence) error {
	for item, err := range seq.All() {
		if err != nil {
			return err
		}
		if a, ok := item.(xpath.Atomic); ok {
			stdout.Value(a.String(), a.Type().String())
		} else {
			stdout.Line(item.Type().String())
		}
	}
	return nil
}
