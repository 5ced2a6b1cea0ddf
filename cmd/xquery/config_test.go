package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/midbel/xquery/xpath"
)

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xquery.yml")
	content := `
namespaces:
  ex: http://example.org/ns
variables:
  limit: "10"
now: "2024-03-10T08:30:00Z"
trace: false
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg, err := loadConfig(file)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Namespaces["ex"] != "http://example.org/ns" {
		t.Errorf("namespace not loaded: %v", cfg.Namespaces)
	}
	if cfg.Variables["limit"] != "10" {
		t.Errorf("variable not loaded: %v", cfg.Variables)
	}
	opts := EngineOptions{Config: cfg}
	engine, err := opts.engine()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if uri, ok := engine.Static().ResolveNamespace("ex"); !ok || uri != "http://example.org/ns" {
		t.Errorf("namespace not bound in engine")
	}
	expr, err := parseOperand(engine, "$limit")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	seq, err := engine.Evaluate(xpath.NewBinary(xpath.OpMultiply, expr, xpath.NewLiteral(xpath.NewInteger(2))), nil, opts.variables())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	item, err := seq.First()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := item.(xpath.Atomic).String(); got != "20" {
		t.Errorf("$limit * 2: want 20, got %s", got)
	}
}

func TestParseNow(t *testing.T) {
	tests := []struct {
		Input string
		Want  time.Time
	}{
		{Input: "2024-03-10T08:30:00Z", Want: time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)},
		{Input: "2024-03-10 08:30:00", Want: time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)},
		{Input: "March 10, 2024", Want: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range tests {
		got, err := parseNow(c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if !got.Equal(c.Want) {
			t.Errorf("%s: want %s, got %s", c.Input, c.Want, got)
		}
	}
	if _, err := parseNow("not a date"); err == nil {
		t.Errorf("expected error")
	}
}

func TestParseOperand(t *testing.T) {
	engine := xpath.NewEngine(xpath.WithNow(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	tests := []struct {
		Input string
		Want  string
		Type  xpath.Type
	}{
		{Input: "42", Want: "42", Type: xpath.TypeInteger},
		{Input: "4.50", Want: "4.5", Type: xpath.TypeDecimal},
		{Input: "'42'", Want: "42", Type: xpath.TypeString},
		{Input: "PT1H", Want: "PT1H", Type: xpath.TypeDayTimeDuration},
		{Input: "fn:current-dateTime()", Want: "2024-01-01T00:00:00Z", Type: xpath.TypeDateTime},
	}
	for _, c := range tests {
		expr, err := parseOperand(engine, c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		seq, err := engine.Evaluate(expr, nil, nil)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		item, err := seq.First()
		if err != nil || item == nil {
			t.Errorf("%s: no value (%v)", c.Input, err)
			continue
		}
		value := item.(xpath.Atomic)
		if value.Type() != c.Type || value.String() != c.Want {
			t.Errorf("%s: want %s (%s), got %s (%s)", c.Input, c.Want, c.Type, value, value.Type())
		}
	}
	if _, err := parseOperand(engine, "un:known()"); err == nil {
		t.Errorf("unbound prefix should fail")
	}
}
