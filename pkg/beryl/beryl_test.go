package beryl

import (
	"strings"
	"testing"

	"github.com/karlandr1/beryl-go/internal/value"
)

func TestEvalArithmetic(t *testing.T) {
	e := New()
	res, err := e.Eval(`+ 40 2`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if res.Kind() != value.Number || res.AsNumber() != 42 {
		t.Fatalf("expected 42, got %v", value.Display(res))
	}
}

func TestEvalPrintGoesToIOSink(t *testing.T) {
	e := New()
	var out strings.Builder
	e.SetIO(func(s string) { out.WriteString(s) })

	if _, err := e.Eval(`print "hello"`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("expected sink to receive printed text, got %q", out.String())
	}
}

func TestSetVarVisibleToScript(t *testing.T) {
	e := New()
	e.SetVar("host_value", value.NewNumber(7))

	res, err := e.Eval(`+ host_value 1`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if res.AsNumber() != 8 {
		t.Fatalf("expected 8, got %v", value.Display(res))
	}
}

func TestCallFromHost(t *testing.T) {
	e := New()
	fn, err := e.Eval(`function x do + x 1 end`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	res := e.Call(fn, []value.Value{value.NewNumber(9)})
	if res.AsNumber() != 10 {
		t.Fatalf("expected 10, got %v", value.Display(res))
	}
}

func TestEvalErrorPropagateCarriesReport(t *testing.T) {
	e := New()
	_, err := e.EvalWithDisposition(`error "boom"`, Propagate)
	if err == nil {
		t.Fatalf("expected an error")
	}
	evalErr, ok := err.(*EvalError)
	if !ok {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if !strings.Contains(evalErr.Report, "boom") {
		t.Fatalf("expected report to mention the message, got %q", evalErr.Report)
	}
	if len(e.rt.Trace()) == 0 && !strings.Contains(evalErr.Report, "Error:") {
		t.Fatalf("expected a rendered report")
	}
}

func TestEvalErrorCatchClearsTrace(t *testing.T) {
	e := New()
	if _, err := e.EvalWithDisposition(`error "boom"`, Catch); err == nil {
		t.Fatalf("expected an error")
	}
	if len(e.rt.Trace()) != 0 {
		t.Fatalf("expected trace to be cleared after Catch disposition")
	}
}

func TestEvalErrorPrintWritesReportAndClears(t *testing.T) {
	e := New()
	var out strings.Builder
	e.SetIO(func(s string) { out.WriteString(s) })

	if _, err := e.EvalWithDisposition(`error "boom"`, Print); err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(out.String(), "boom") {
		t.Fatalf("expected sink to receive the rendered report, got %q", out.String())
	}
	if len(e.rt.Trace()) != 0 {
		t.Fatalf("expected trace to be cleared after Print disposition")
	}
}
