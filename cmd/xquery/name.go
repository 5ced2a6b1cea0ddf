package main

import (
	"flag"

	"github.com/midbel/cli"
	"github.com/midbel/xquery/xpath"
)

var nameCmd = cli.Command{
	Name:    "name",
	Summary: "resolve lexical names to expanded names",
	Handler: &NameCmd{},
}

type NameCmd struct {
	EngineOptions
}

func (c NameCmd) Run(args []string) error {
	set := flag.NewFlagSet("name", flag.ContinueOnError)
	c.attach(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	engine, err := c.engine()
	if err != nil {
		return err
	}
	for _, str := range set.Args() {
		expr := xpath.NewLiteral(xpath.NewString(str))
		qn, err := xpath.EvaluateName(engine.Static(), engine.Context(nil), engine.Parameters(), expr)
		if err != nil {
			return err
		}
		stdout.Value(qn.ExpandedName(), xpath.TypeQName.String())
	}
	return nil
}
