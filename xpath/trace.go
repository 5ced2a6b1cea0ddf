package xpath

import (
	"io"
	"log/slog"
	"os"
)

type Tracer interface {
	Resolve(Operator, Type, Type, bool)
	Enter(string)
	Leave(string)
	Error(string, error)
}

type discardTracer struct{}

func (_ discardTracer) Resolve(_ Operator, _, _ Type, _ bool) {}
func (_ discardTracer) Enter(_ string)                        {}
func (_ discardTracer) Leave(_ string)                        {}
func (_ discardTracer) Error(_ string, _ error)               {}

func NoTrace() Tracer {
	return discardTracer{}
}

type stdioTracer struct {
	logger   *slog.Logger
	depth    int
	errcount int
}

func TraceStdout() Tracer {
	return TraceWriter(os.Stdout)
}

func TraceStderr() Tracer {
	return TraceWriter(os.Stderr)
}

func TraceWriter(w io.Writer) Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(w),
	}
	return &tracer
}

func stdioLogger(w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

func (t *stdioTracer) Resolve(op Operator, left, right Type, cached bool) {
	args := []any{
		"operator",
		op.String(),
		"left",
		left.String(),
		"right",
		right.String(),
		"cached",
		cached,
	}
	t.logger.Debug("resolve operator", args...)
}

func (t *stdioTracer) Enter(name string) {
	t.depth++
	args := []any{
		"function",
		name,
		"depth",
		t.depth,
	}
	t.logger.Debug("start call", args...)
}

func (t *stdioTracer) Leave(name string) {
	t.depth--
	args := []any{
		"function",
		name,
		"depth",
		t.depth,
	}
	t.logger.Debug("done call", args...)
}

func (t *stdioTracer) Error(name string, err error) {
	t.errcount++
	args := []any{
		"function",
		name,
		"err",
		err.Error(),
		"count",
		t.errcount,
	}
	t.logger.Error("evaluation failed", args...)
}
