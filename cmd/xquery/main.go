package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
)

var errFail = errors.New("fail")

var (
	summary = "xquery evaluates typed values and operators of the XPath data model"
	help    = `xquery gives access to the casting rules, the operators and the type
hierarchy of the evaluation engine.

Operands given on the command line are read with the most specific type
their lexical form allows. $name refers to a variable of the configuration
file and prefix:name() calls a function without argument.`
)

func main() {
	var (
		set  = cli.NewFlagSet("xquery")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			stderr.Error(err)
		}
		os.Exit(1)
	}
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"cast"}, &castCmd)
	root.Register([]string{"castable"}, &castableCmd)
	root.Register([]string{"calc"}, &calcCmd)
	root.Register([]string{"compare"}, &compareCmd)
	root.Register([]string{"compare", "value"}, &compareCmd)
	root.Register([]string{"compare", "general"}, &generalCmd)
	root.Register([]string{"subtype"}, &subtypeCmd)
	root.Register([]string{"types"}, &typesCmd)
	root.Register([]string{"name"}, &nameCmd)
	return root
}
