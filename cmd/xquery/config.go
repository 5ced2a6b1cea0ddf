package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/midbel/xquery/xpath"
	"gopkg.in/yaml.v3"
)

// Config is the content of the file given with -config:
//
//	namespaces:
//	  ex: http://example.org/ns
//	variables:
//	  limit: 10
//	now: 2024-03-10 08:30
//	trace: true
type Config struct {
	Namespaces map[string]string `yaml:"namespaces"`
	Variables  map[string]string `yaml:"variables"`
	Now        string            `yaml:"now"`
	Trace      bool              `yaml:"trace"`
}

func loadConfig(file string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(file)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// EngineOptions are the flags shared by the commands that evaluate
// expressions.
type EngineOptions struct {
	Config
	Namespaces []string
}

func (o *EngineOptions) attach(set *flag.FlagSet) {
	set.Func("config", "read namespaces and variables from file", func(file string) error {
		cfg, err := loadConfig(file)
		if err == nil {
			o.Config = cfg
		}
		return err
	})
	set.Func("ns", "bind a namespace (prefix=uri)", func(str string) error {
		if !strings.Contains(str, "=") {
			return fmt.Errorf("%s: namespace should be given as prefix=uri", str)
		}
		o.Namespaces = append(o.Namespaces, str)
		return nil
	})
	set.Func("now", "date and time returned by fn:current-dateTime", func(str string) error {
		o.Now = str
		return nil
	})
	set.BoolVar(&o.Trace, "trace", false, "trace operator resolutions and calls")
}

func (o *EngineOptions) options() ([]xpath.Option, error) {
	var list []xpath.Option
	for prefix, uri := range o.Config.Namespaces {
		list = append(list, xpath.WithNamespace(prefix, uri))
	}
	for _, str := range o.Namespaces {
		prefix, uri, _ := strings.Cut(str, "=")
		list = append(list, xpath.WithNamespace(prefix, uri))
	}
	if o.Now != "" {
		when, err := parseNow(o.Now)
		if err != nil {
			return nil, err
		}
		list = append(list, xpath.WithNow(when))
	}
	if o.Trace {
		list = append(list, xpath.WithTracer(xpath.TraceStderr()))
	}
	return list, nil
}

func (o *EngineOptions) engine() (*xpath.Engine, error) {
	opts, err := o.options()
	if err != nil {
		return nil, err
	}
	return xpath.NewEngine(opts...), nil
}

// variables gives the values of the configuration as untyped atomic
// values, as if they were read from a document.
func (o *EngineOptions) variables() map[string]xpath.Sequence {
	vars := make(map[string]xpath.Sequence)
	for name, value := range o.Variables {
		vars[name] = xpath.Singleton(xpath.NewUntyped(value))
	}
	return vars
}

// parseNow reads the lexical form of xs:dateTime first and falls back to
// the formats dateparse knows about.
func parseNow(str string) (time.Time, error) {
	if dt, err := xpath.ParseTemporal(str, xpath.TypeDateTime); err == nil {
		return dt.Time, nil
	}
	when, err := dateparse.ParseIn(str, time.UTC)
	if err != nil {
		return when, fmt.Errorf("%s: unrecognized date: %w", str, err)
	}
	return when, nil
}
