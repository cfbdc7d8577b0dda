package errors

import (
	"strings"

	"github.com/karlandr1/beryl-go/internal/value"
)

// TraceFrame is the shape this package needs from interp.Runtime's Frame
// buffer. It is a standalone type (rather than an import of package interp)
// so errors stays a leaf package with no dependency on the evaluator.
type TraceFrame struct {
	Name             string // set for a named (external-function) frame
	Src              string // full source buffer a source-range frame indexes into
	SrcStart, SrcEnd int    // bounds of Src's function/top-level scope
	At, Length       int    // offending token, as a byte range within Src
}

// IsNamed reports whether f is a named frame rather than a source-range one.
func (f TraceFrame) IsNamed() bool { return f.Name != "" }

// RenderTrace mirrors beryl.c's log_err: frames print newest-first (the
// trace buffer is appended oldest-first as errors propagate outward), a
// named frame prints "In:\n<name>", and a source-range frame prints the
// offending source line followed by a caret underline that reproduces the
// line's leading tabs/spaces so the caret lines up under a tab-indented
// line exactly as it did in source.
func RenderTrace(frames []TraceFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		sb.WriteString("----------------\n")
		if f.IsNamed() {
			sb.WriteString("In:\n")
			sb.WriteString(f.Name)
			sb.WriteString("\n")
			continue
		}
		sb.WriteString("At:\n")
		lineStart := f.At
		for lineStart > f.SrcStart && f.Src[lineStart-1] != '\n' {
			lineStart--
		}
		lineEnd := f.At + f.Length
		for lineEnd < f.SrcEnd && f.Src[lineEnd] != '\n' {
			lineEnd++
		}
		sb.WriteString(f.Src[lineStart:lineEnd])
		sb.WriteString("\n")
		for i := lineStart; i < f.At; i++ {
			if f.Src[i] == '\t' {
				sb.WriteByte('\t')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(strings.Repeat("^", max(f.Length, 1)))
		sb.WriteString("\n")
	}
	sb.WriteString("----------------\n")
	return sb.String()
}

// RenderMessage substitutes `%N` markers in an error message with the
// display form of blamed[N] (spec §4.7, mirroring beryl_i_vals_printf). A
// `%` not followed by a digit, or one with no matching blamed value, is
// left untouched.
func RenderMessage(msg string, blamed []value.Value) string {
	var sb strings.Builder
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c == '%' && i+1 < len(msg) && msg[i+1] >= '0' && msg[i+1] <= '9' {
			idx := int(msg[i+1] - '0')
			i++
			if idx < len(blamed) {
				sb.WriteString(value.Display(blamed[idx]))
			} else {
				sb.WriteString(msg[i-1 : i+1])
			}
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// RenderError assembles a full error report in the order log_err prints
// one: reversed trace frames, then the blamed values space-joined, then
// "Error: " followed by the %N-substituted message (spec §7).
func RenderError(frames []TraceFrame, blamed []value.Value, message string) string {
	var sb strings.Builder
	sb.WriteString(RenderTrace(frames))
	if len(blamed) > 0 {
		for i, b := range blamed {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(value.Display(b))
		}
		sb.WriteString("\n----------------\n")
	}
	sb.WriteString("Error: ")
	sb.WriteString(RenderMessage(message, blamed))
	sb.WriteString("\n")
	return sb.String()
}
