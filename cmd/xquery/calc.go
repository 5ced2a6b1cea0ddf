package main

import (
	"flag"
	"fmt"

	"github.com/midbel/cli"
	"github.com/midbel/xquery/xpath"
)

var calcCmd = cli.Command{
	Name:    "calc",
	Alias:   []string{"eval"},
	Summary: "apply an arithmetic operator to two values",
	Help:    "calc [-config file] [-ns prefix=uri] [-now date] [-trace] <left> <op> <right>",
	Handler: &CalcCmd{},
}

var compareCmd = cli.Command{
	Name:    "compare",
	Alias:   []string{"cmp"},
	Summary: "compare two values (eq, ne, lt, le, gt, ge)",
	Handler: &CalcCmd{Compare: true},
}

var generalCmd = cli.Command{
	Name:    "general",
	Summary: "compare two comma separated sequences (=, !=, <, <=, >, >=)",
	Handler: &GeneralCmd{},
}

type CalcCmd struct {
	EngineOptions
	Compare bool
}

func (c CalcCmd) Run(args []string) error {
	set := flag.NewFlagSet("calc", flag.ContinueOnError)
	c.attach(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() != 3 {
		return fmt.Errorf("two operands and an operator are expected")
	}
	op, ok := xpath.ParseOperator(set.Arg(1))
	switch {
	case !ok:
		return fmt.Errorf("%s: unknown operator", set.Arg(1))
	case c.Compare && !op.Comparison():
		return fmt.Errorf("%s: not a comparison operator", set.Arg(1))
	case !c.Compare && !op.Arithmetic():
		return fmt.Errorf("%s: not an arithmetic operator", set.Arg(1))
	}
	engine, err := c.engine()
	if err != nil {
		return err
	}
	left, err := parseOperand(engine, set.Arg(0))
	if err != nil {
		return err
	}
	right, err := parseOperand(engine, set.Arg(2))
	if err != nil {
		return err
	}
	expr := xpath.NewBinary(op, left, right)
	if c.Compare {
		expr = xpath.NewValueCompare(op, left, right)
	}
	seq, err := engine.Evaluate(expr, nil, c.variables())
	if err != nil {
		return err
	}
	return printSequence(seq)
}

var generalOperators = map[string]xpath.Operator{
	"=":  xpath.OpEqual,
	"!=": xpath.OpNotEqual,
	"<":  xpath.OpLess,
	"<=": xpath.OpLessEq,
	">":  xpath.OpGreater,
	">=": xpath.OpGreaterEq,
}

type GeneralCmd struct {
	EngineOptions
}

func (c GeneralCmd) Run(args []string) error {
	set := flag.NewFlagSet("general", flag.ContinueOnError)
	c.attach(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() != 3 {
		return fmt.Errorf("two sequences and an operator are expected")
	}
	op, ok := generalOperators[set.Arg(1)]
	if !ok {
		return fmt.Errorf("%s: unknown operator", set.Arg(1))
	}
	engine, err := c.engine()
	if err != nil {
		return err
	}
	left, err := parseOperands(engine, set.Arg(0))
	if err != nil {
		return err
	}
	right, err := parseOperands(engine, set.Arg(2))
	if err != nil {
		return err
	}
	seq, err := engine.Evaluate(xpath.NewGeneralCompare(op, left, right), nil, c.variables())
	if err != nil {
		return err
	}
	return printSequence(seq)
}
