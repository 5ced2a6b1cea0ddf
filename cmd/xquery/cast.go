package main

import (
	"flag"
	"fmt"

	"github.com/midbel/cli"
	"github.com/midbel/xquery/xpath"
)

var castCmd = cli.Command{
	Name:    "cast",
	Summary: "cast a value to an atomic type",
	Help:    "cast [-from type] <value> <type>",
	Handler: &CastCmd{},
}

var castableCmd = cli.Command{
	Name:    "castable",
	Summary: "check that a value can be cast to an atomic type",
	Handler: &CastCmd{Check: true},
}

var subtypeCmd = cli.Command{
	Name:    "subtype",
	Summary: "check that a type derives from another one",
	Handler: &SubtypeCmd{},
}

var typesCmd = cli.Command{
	Name:    "types",
	Summary: "print the hierarchy of the built-in types",
	Handler: &TypesCmd{},
}

type CastCmd struct {
	From  string
	Check bool
}

func (c CastCmd) Run(args []string) error {
	set := flag.NewFlagSet("cast", flag.ContinueOnError)
	set.StringVar(&c.From, "from", "xs:untypedAtomic", "type of the value given")
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() != 2 {
		return fmt.Errorf("a value and a target type are expected")
	}
	from, err := lookupType(c.From)
	if err != nil {
		return err
	}
	target, err := lookupType(set.Arg(1))
	if err != nil {
		return err
	}
	value := xpath.NewUntyped(set.Arg(0))
	if from != xpath.TypeUntypedAtomic {
		res := xpath.Cast(value, from)
		if !res.Successful() {
			return res.Err
		}
		value = res.Value
	}
	res := xpath.Cast(value, target)
	if c.Check {
		stdout.Value(fmt.Sprint(res.Successful()), xpath.TypeBoolean.String())
		if !res.Successful() {
			return errFail
		}
		return nil
	}
	if !res.Successful() {
		return res.Err
	}
	stdout.Value(res.Value.String(), res.Value.Type().String())
	return nil
}

type SubtypeCmd struct{}

func (c SubtypeCmd) Run(args []string) error {
	set := flag.NewFlagSet("subtype", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() != 2 {
		return fmt.Errorf("two types are expected")
	}
	candidate, err := lookupType(set.Arg(0))
	if err != nil {
		return err
	}
	ancestor, err := lookupType(set.Arg(1))
	if err != nil {
		return err
	}
	ok := xpath.IsSubtypeOf(candidate, ancestor)
	stdout.Value(fmt.Sprint(ok), xpath.TypeBoolean.String())
	if !ok {
		return errFail
	}
	return nil
}

type TypesCmd struct {
	Atomic bool
}

func (c TypesCmd) Run(args []string) error {
	set := flag.NewFlagSet("types", flag.ContinueOnError)
	set.BoolVar(&c.Atomic, "atomic", false, "only print the atomic types")
	if err := set.Parse(args); err != nil {
		return err
	}
	for _, t := range xpath.Types() {
		if c.Atomic && !t.Atomic() {
			continue
		}
		var parent string
		if p, ok := t.Parent(); ok {
			parent = p.String()
		}
		stdout.Row(t.String(), parent, t.Category().String())
	}
	return nil
}
