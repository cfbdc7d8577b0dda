package interp

import (
	"strconv"
	"strings"

	"github.com/karlandr1/beryl-go/internal/lexer"
	"github.com/karlandr1/beryl-go/internal/value"
)

// parser drives the single-pass parse-and-evaluate loop of spec §4.6 over
// one token stream. base converts the stream's own (0-relative) byte
// offsets into the absolute coordinate space of the SrcID they belong to,
// so that Namespace ranges built from nested function literals stay
// comparable against bindings captured from an enclosing, differently
// re-lexed buffer.
type parser struct {
	rt  *Runtime
	lex *lexer.Lexer
	src string

	base int
	ns   Namespace
}

// Eval parses and evaluates src as a fresh top-level program (spec §4.6),
// under global namespace. It is the entry point an embedding's top-level
// Eval/REPL line and the `eval` builtin both funnel through.
func Eval(rt *Runtime, src string) value.Value {
	id := rt.newSrcID()
	rt.registerSource(id, src)
	p := &parser{rt: rt, lex: lexer.New(src), src: src, base: 0, ns: Namespace{Global: true, SrcID: id}}
	return p.evalBody(lexer.EOF)
}

func (p *parser) skipEndlines() {
	for p.lex.Peek().Kind == lexer.ENDLINE {
		p.lex.Pop()
	}
}

// evalBody runs statements, separated by one-or-more ENDLINE, until EOF or
// stopKind (the enclosing `end` for a function/thunk body). Only the last
// statement's value survives; earlier ones are released. An error or
// early-return marker short-circuits the remaining statements.
func (p *parser) evalBody(stopKind lexer.Kind) value.Value {
	result := value.Null_()
	haveResult := false

	for {
		p.skipEndlines()
		tok := p.lex.Peek()
		if tok.Kind == stopKind || tok.Kind == lexer.EOF {
			break
		}

		val := p.evalExpr()
		if haveResult {
			value.Release(result)
		}
		result = val
		haveResult = true

		if val.IsErr() || IsMarkerReturn(val) {
			return val
		}

		nt := p.lex.Peek()
		switch nt.Kind {
		case lexer.ENDLINE:
			p.lex.Pop()
		case stopKind, lexer.EOF:
			// loop exits on the next iteration
		default:
			value.Release(result)
			return value.NewError("unexpected token following expression")
		}
	}
	return result
}

// canStartTerm reports whether tok can begin a subexpr, used to decide
// whether juxtaposition continues consuming arguments.
func canStartTerm(k lexer.Kind) bool {
	switch k {
	case lexer.NUMBER, lexer.STRING, lexer.SYMBOL, lexer.OP, lexer.OPEN_PAREN, lexer.FN, lexer.DO, lexer.LET:
		return true
	default:
		return false
	}
}

// pushFrameIfErr records a source-range trace frame spanning [start, p's
// current lexer offset) when v is an error — the point at which that error
// is about to propagate out of the call or operator application that
// produced it (spec §4.7).
func (p *parser) pushFrameIfErr(start int, v value.Value) value.Value {
	if v.IsErr() {
		end := p.lex.Offset()
		if end <= start {
			end = start + 1
		}
		p.rt.PushSourceFrame(p.ns.SrcID, p.base, p.base+len(p.src), p.base+start, end-start)
	}
	return v
}

// evalExpr implements `expr := subexpr (arg)*`: juxtaposition of a callee
// subexpr against zero or more further subexprs is a call.
func (p *parser) evalExpr() value.Value {
	if !p.rt.enterExpr() {
		return value.NewError("expression nesting too deep")
	}
	defer p.rt.leaveExpr()

	start := p.lex.Offset()
	first := p.subexpr()
	if first.IsErr() || IsMarkerReturn(first) {
		return first
	}

	var args []value.Value
	for canStartTerm(p.lex.Peek().Kind) {
		a := p.subexpr()
		if a.IsErr() || IsMarkerReturn(a) {
			value.ReleaseValues(args)
			value.Release(first)
			return a
		}
		args = append(args, a)
	}
	if len(args) == 0 {
		return first
	}
	return p.pushFrameIfErr(start, p.rt.Call(first, args, false))
}

// subexpr implements `term (OP term)*`: strictly left-to-right, no
// precedence — every operator is an ordinary binary call resolved by
// looking the operator symbol up as a name.
func (p *parser) subexpr() value.Value {
	start := p.lex.Offset()
	acc := p.term()
	if acc.IsErr() || IsMarkerReturn(acc) {
		return acc
	}
	for p.lex.Peek().Kind == lexer.OP {
		opTok := p.lex.Pop()
		opBinding, ok := p.rt.Env.Lookup(opTok.Text, p.ns)
		if !ok {
			value.Release(acc)
			return value.NewError("undefined operator '" + opTok.Text + "'")
		}
		rhs := p.term()
		if rhs.IsErr() || IsMarkerReturn(rhs) {
			value.Release(acc)
			return rhs
		}
		acc = p.pushFrameIfErr(start, p.rt.Call(value.Retain(opBinding.Value), []value.Value{acc, rhs}, false))
		if acc.IsErr() {
			return acc
		}
	}
	return acc
}

func (p *parser) term() value.Value {
	tok := p.lex.Peek()
	switch tok.Kind {
	case lexer.NUMBER:
		p.lex.Pop()
		return value.NewNumber(tok.NumValue)
	case lexer.STRING:
		p.lex.Pop()
		return value.NewString(tok.Text)
	case lexer.OPEN_PAREN:
		return p.termParen()
	case lexer.LET:
		return p.termLet()
	case lexer.FN:
		return p.termFunction()
	case lexer.DO:
		return p.termDo()
	case lexer.SYMBOL, lexer.OP:
		return p.termNameOrAssign()
	case lexer.ERR:
		p.lex.Pop()
		msg := tok.ErrMsg
		if msg == "" {
			msg = "lexical error"
		}
		return value.NewError(msg)
	default:
		p.lex.Pop()
		return value.NewError("unexpected token '" + tok.Text + "'")
	}
}

// termParen allows ENDLINE to act as pure whitespace inside `( … )`,
// letting a parenthesized expression span multiple lines (spec §4.6).
func (p *parser) termParen() value.Value {
	p.lex.Pop() // '('
	p.skipEndlines()
	v := p.evalExpr()
	if v.IsErr() || IsMarkerReturn(v) {
		return v
	}
	p.skipEndlines()
	if p.lex.Peek().Kind != lexer.CLOSE_PAREN {
		value.Release(v)
		return value.NewError("expected ')'")
	}
	p.lex.Pop()
	return v
}

// termLet handles `let [global] name = expr` (spec §4.3).
func (p *parser) termLet() value.Value {
	p.lex.Pop() // 'let'
	forceGlobal := false
	if p.lex.Peek().Kind == lexer.GLOBAL {
		p.lex.Pop()
		forceGlobal = true
	}
	nameTok := p.lex.Peek()
	if nameTok.Kind != lexer.SYMBOL && nameTok.Kind != lexer.OP {
		return value.NewError("expected a name after 'let'")
	}
	p.lex.Pop()
	if p.lex.Peek().Kind != lexer.ASSIGN {
		return value.NewError("expected '=' in 'let' declaration")
	}
	p.lex.Pop()
	val := p.evalExpr()
	if val.IsErr() || IsMarkerReturn(val) {
		return val
	}
	if !p.rt.Env.Declare(nameTok.Text, value.Retain(val), false, p.ns, forceGlobal) {
		value.Release(val)
		return value.NewError("'" + nameTok.Text + "' is already declared")
	}
	return val
}

// isOpAssignShape reports whether an OP token looks like `name op=` sugar
// (`+=`, `mod=`, …) rather than a comparison operator such as `=<=` or
// `=/=`, which also end in '=' but start with it too.
func isOpAssignShape(text string) bool {
	return len(text) > 1 && text[len(text)-1] == '=' && text[0] != '='
}

// termNameOrAssign handles a bare name lookup, `name = expr`, and
// `name op= expr` (spec §4.3/§4.6).
func (p *parser) termNameOrAssign() value.Value {
	nameTok := p.lex.Pop()
	name := nameTok.Text

	next := p.lex.Peek()
	if next.Kind == lexer.ASSIGN {
		p.lex.Pop()
		val := p.evalExpr()
		if val.IsErr() || IsMarkerReturn(val) {
			return val
		}
		if !p.rt.Env.Assign(name, p.ns, value.Retain(val)) {
			value.Release(val)
			return value.NewError("cannot assign to '" + name + "'")
		}
		return val
	}

	if next.Kind == lexer.OP && isOpAssignShape(next.Text) {
		opTok := p.lex.Pop()
		opName := strings.TrimSuffix(opTok.Text, "=")
		cur, ok := p.rt.Env.Lookup(name, p.ns)
		if !ok {
			return value.NewError("undeclared name '" + name + "'")
		}
		opBinding, ok := p.rt.Env.Lookup(opName, p.ns)
		if !ok {
			return value.NewError("undefined operator '" + opName + "'")
		}
		rhs := p.evalExpr()
		if rhs.IsErr() || IsMarkerReturn(rhs) {
			return rhs
		}
		result := p.rt.Call(value.Retain(opBinding.Value), []value.Value{value.Retain(cur.Value), rhs}, false)
		if result.IsErr() {
			return result
		}
		if !p.rt.Env.Assign(name, p.ns, value.Retain(result)) {
			value.Release(result)
			return value.NewError("cannot assign to '" + name + "'")
		}
		return result
	}

	b, ok := p.rt.Env.Lookup(name, p.ns)
	if !ok {
		return value.NewError("undeclared name '" + name + "'")
	}
	return value.Retain(b.Value)
}

// skipToMatchingEnd scans (without evaluating) past a nested sequence of
// tokens until the END that matches the already-consumed opening
// FN/DO, tracking nested FN/DO...END pairs. Used both to build a function
// literal's byte slice and to skip over it during "parsing-only mode"
// (spec §4.6's note on producing byte slices without executing bodies —
// which this evaluator achieves naturally since term() never evaluates a
// function/do body at the point of construction, only at call time).
func (p *parser) skipToMatchingEnd() (lexer.Token, bool) {
	depth := 1
	for {
		t := p.lex.Peek()
		if t.Kind == lexer.EOF {
			return lexer.Token{}, false
		}
		p.lex.Pop()
		switch t.Kind {
		case lexer.DO: // a nested `function ... do` opens its block at the DO
			depth++
		case lexer.END:
			depth--
			if depth == 0 {
				return t, true
			}
		}
	}
}

// termFunction handles `function`/`with` literals: params up to `do`,
// then the body verbatim up to the matching `end` (spec §4.5).
func (p *parser) termFunction() value.Value {
	fnTok := p.lex.Pop() // 'function' or 'with'
	for {
		t := p.lex.Peek()
		if t.Kind == lexer.DO {
			p.lex.Pop()
			break
		}
		if t.Kind == lexer.EOF {
			return value.NewError("unterminated function literal: missing 'do'")
		}
		p.lex.Pop() // parameter name (SYMBOL/OP) or '...' marker
	}
	endTok, ok := p.skipToMatchingEnd()
	if !ok {
		return value.NewError("unterminated function literal: missing 'end'")
	}
	return value.NewFunction(p.src[fnTok.Start:endTok.End], p.ns.SrcID, p.base+fnTok.Start)
}

// termDo handles a bare `do ... end` thunk: a zero-parameter function
// literal over the enclosing source slice (spec §4.6).
func (p *parser) termDo() value.Value {
	doTok := p.lex.Pop() // 'do'
	endTok, ok := p.skipToMatchingEnd()
	if !ok {
		return value.NewError("unterminated 'do' block: missing 'end'")
	}
	return value.NewFunction(p.src[doTok.Start:endTok.End], p.ns.SrcID, p.base+doTok.Start)
}

// callScripted implements spec §4.5: re-lex the function's byte range,
// bind parameters (bundling a trailing `...name` into an Array), evaluate
// the body, and translate an early-return marker back into its value.
func (rt *Runtime) callScripted(fnVal value.Value, args []value.Value) value.Value {
	if !rt.EnterCall() {
		return value.NewError("recursion limit exceeded")
	}
	defer rt.LeaveCall()

	src := fnVal.AsFunctionSource()
	srcID := fnVal.AsFunctionSrcID()
	offset := fnVal.AsFunctionOffset()

	lex := lexer.New(src)
	head := lex.Pop() // 'function'/'with' or 'do'

	var params []string
	variadicName := ""
	if head.Kind == lexer.FN {
		for {
			t := lex.Peek()
			if t.Kind == lexer.DO {
				lex.Pop()
				break
			}
			if t.Kind == lexer.VARARGS {
				lex.Pop()
				nameTok := lex.Pop()
				variadicName = nameTok.Text
				continue
			}
			nameTok := lex.Pop()
			params = append(params, nameTok.Text)
		}
	}

	fixed := len(params)
	if variadicName != "" {
		if len(args) < fixed {
			value.ReleaseValues(args)
			return value.NewError("too few arguments: expected at least " + strconv.Itoa(fixed))
		}
	} else if len(args) != fixed {
		value.ReleaseValues(args)
		return value.NewError("wrong number of arguments: expected " + strconv.Itoa(fixed))
	}

	ns := Namespace{SrcID: srcID, Start: offset, End: offset + len(src)}
	prevBase := rt.Env.EnterScope()
	for i, name := range params {
		rt.Env.Bind(name, args[i], false, ns)
	}
	if variadicName != "" {
		rt.Env.Bind(variadicName, value.NewArray(args[fixed:]), false, ns)
	}

	body := &parser{rt: rt, lex: lex, src: src, base: offset, ns: ns}
	result := body.evalBody(lexer.END)
	rt.Env.LeaveScope(prevBase)

	if IsMarkerReturn(result) {
		if v, ok := rt.ConsumeReturn(); ok {
			return v
		}
		return value.Null_()
	}
	return result
}
