package lexer

import "testing"

func collectKinds(src string) []Kind {
	l := New(src)
	var kinds []Kind
	for {
		tok := l.Pop()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == EOF {
			break
		}
	}
	return kinds
}

func TestBasicTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{"number", "42", []Kind{NUMBER, EOF}},
		{"negative number", "-5", []Kind{NUMBER, EOF}},
		{"float", "3.14", []Kind{NUMBER, EOF}},
		{"thousands separator", "1'000'000", []Kind{NUMBER, EOF}},
		{"string", `"hi"`, []Kind{STRING, EOF}},
		{"symbol", "foo", []Kind{SYMBOL, EOF}},
		{"operator", "+", []Kind{OP, EOF}},
		{"parens", "(foo)", []Kind{OPEN_PAREN, SYMBOL, CLOSE_PAREN, EOF}},
		{"let", "let x = 1", []Kind{LET, SYMBOL, ASSIGN, NUMBER, EOF}},
		{"function keyword", "function do end", []Kind{FN, DO, END, EOF}},
		{"with as function keyword", "with do end", []Kind{FN, DO, END, EOF}},
		{"varargs", "...rest", []Kind{VARARGS, SYMBOL, EOF}},
		{"comma is whitespace", "a, b", []Kind{SYMBOL, SYMBOL, EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectKinds(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v (full: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestNewlinesCollapse(t *testing.T) {
	got := collectKinds("a\n\n\nb")
	want := []Kind{SYMBOL, ENDLINE, SYMBOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCommentsDoNotProduceTokens(t *testing.T) {
	got := collectKinds("a # this is a comment\nb")
	want := []Kind{SYMBOL, ENDLINE, SYMBOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInlineComment(t *testing.T) {
	got := collectKinds("a #inline# b")
	want := []Kind{SYMBOL, SYMBOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPeekThenPopReturnsSameToken(t *testing.T) {
	l := New("abc")
	peeked := l.Peek()
	popped := l.Pop()
	if peeked.Kind != popped.Kind || peeked.Text != popped.Text {
		t.Fatalf("peek/pop mismatch: %+v vs %+v", peeked, popped)
	}
}

func TestAccept(t *testing.T) {
	l := New("let x")
	if _, ok := l.Accept(FN); ok {
		t.Fatalf("accept should not match FN")
	}
	if _, ok := l.Accept(LET); !ok {
		t.Fatalf("accept should match LET")
	}
	tok, ok := l.Accept(SYMBOL)
	if !ok || tok.Text != "x" {
		t.Fatalf("expected symbol 'x', got %+v", tok)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.Pop()
	if tok.Kind != ERR {
		t.Fatalf("expected ERR, got %v", tok.Kind)
	}
}

func TestIntegerOverflow(t *testing.T) {
	l := New("99999999999999999999999999999")
	tok := l.Pop()
	if tok.Kind != ERR {
		t.Fatalf("expected ERR for integer overflow, got %v", tok.Kind)
	}
}

func TestOperatorReclassification(t *testing.T) {
	for _, sym := range []string{"+", "-=", "=<=", "!", "..", "foo!"} {
		l := New(sym)
		tok := l.Pop()
		if tok.Kind != OP {
			t.Fatalf("%q: expected OP, got %v", sym, tok.Kind)
		}
	}
}
