package lexer

import (
	"testing"

	"github.com/wflang/wfl/internal/token"
)

type expected struct {
	typ     token.Type
	literal string
}

func collect(t *testing.T, input string) ([]token.Token, []string) {
	t.Helper()
	var errs []string
	l := New(input, func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks, errs
}

func assertTokens(t *testing.T, input string, want []expected) {
	t.Helper()
	toks, errs := collect(t, input)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors for %q: %v", input, errs)
	}
	if len(toks) != len(want) {
		t.Fatalf("input %q: got %d tokens, want %d\ngot: %+v", input, len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.literal {
			t.Errorf("token %d: got {%v %q}, want {%v %q}", i, toks[i].Type, toks[i].Literal, w.typ, w.literal)
		}
	}
}

func TestMultiWordIdentifierCoalescing(t *testing.T) {
	assertTokens(t, `first name as 5`, []expected{
		{token.IDENT, "first name"},
		{token.AS, "as"},
		{token.INT, "5"},
		{token.EOF, ""},
	})
}

func TestMultiWordIdentifierStopsAtKeyword(t *testing.T) {
	// "count" is contextual and resolves to a keyword token on its own,
	// so "my count" must NOT merge into one identifier.
	assertTokens(t, `my count`, []expected{
		{token.IDENT, "my"},
		{token.COUNT, "count"},
		{token.EOF, ""},
	})
}

func TestStoreStatementTokens(t *testing.T) {
	assertTokens(t, `store total score as 0`, []expected{
		{token.STORE, "store"},
		{token.IDENT, "total score"},
		{token.AS, "as"},
		{token.INT, "0"},
		{token.EOF, ""},
	})
}

func TestEolEmittedOncePerLine(t *testing.T) {
	toks, errs := collect(t, "store x as 1\nstore y as 2\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var eolCount int
	for _, tok := range toks {
		if tok.Type == token.EOL {
			eolCount++
		}
	}
	if eolCount != 2 {
		t.Errorf("got %d EOL tokens, want 2", eolCount)
	}
}

func TestLineEndingNormalization(t *testing.T) {
	// \n, \r\n, and \r must each count as exactly one line, so that the
	// token on line 3 reports the same line number regardless of which
	// line-ending style produced it.
	inputs := []string{
		"a\nb\nc",
		"a\r\nb\r\nc",
		"a\rb\rc",
	}
	for _, in := range inputs {
		toks, errs := collect(t, in)
		if len(errs) != 0 {
			t.Fatalf("input %q: unexpected errors: %v", in, errs)
		}
		var lastIdentLine int
		for _, tok := range toks {
			if tok.Type == token.IDENT && tok.Literal == "c" {
				lastIdentLine = tok.Pos.Line
			}
		}
		if lastIdentLine != 3 {
			t.Errorf("input %q: identifier %q on line %d, want line 3", in, "c", lastIdentLine)
		}
	}
}

func TestStringLiteralPreservesLineNumbersAfter(t *testing.T) {
	input := "store s as \"line one\nline two\"\nstore after as 1"
	toks, errs := collect(t, input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var sawString bool
	var afterLine int
	for _, tok := range toks {
		if tok.Type == token.STRING {
			sawString = true
			if tok.Literal != "line one\nline two" {
				t.Errorf("string literal = %q, want %q", tok.Literal, "line one\nline two")
			}
		}
		if tok.Type == token.IDENT && tok.Literal == "after" {
			afterLine = tok.Pos.Line
		}
	}
	if !sawString {
		t.Fatalf("did not find string token")
	}
	if afterLine != 3 {
		t.Errorf("identifier after the string is on line %d, want 3", afterLine)
	}
}

func TestStringEscapes(t *testing.T) {
	toks, errs := collect(t, `"a\nb\tc\\d\"e"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := "a\nb\tc\\d\"e"
	if toks[0].Literal != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestUnknownEscapeIsRecoverableError(t *testing.T) {
	toks, errs := collect(t, `"bad \q escape"`)
	if len(errs) == 0 {
		t.Fatalf("expected a lex error for unknown escape sequence")
	}
	if toks[0].Type != token.STRING {
		t.Fatalf("expected scanning to continue and still produce a STRING token, got %v", toks[0].Type)
	}
}

func TestLineCommentsSkipped(t *testing.T) {
	assertTokens(t, "store x as 1 // trailing comment\n", []expected{
		{token.STORE, "store"},
		{token.IDENT, "x"},
		{token.AS, "as"},
		{token.INT, "1"},
		{token.EOL, "\n"},
		{token.EOF, ""},
	})
}

func TestHashCommentsSkipped(t *testing.T) {
	assertTokens(t, "# full line comment\nstore x as 1", []expected{
		{token.EOL, "\n"},
		{token.STORE, "store"},
		{token.IDENT, "x"},
		{token.AS, "as"},
		{token.INT, "1"},
		{token.EOF, ""},
	})
}

func TestFloatLiteral(t *testing.T) {
	assertTokens(t, `store pi as 3.14`, []expected{
		{token.STORE, "store"},
		{token.IDENT, "pi"},
		{token.AS, "as"},
		{token.FLOAT, "3.14"},
		{token.EOF, ""},
	})
}

func TestPunctuationAndPercent(t *testing.T) {
	assertTokens(t, `items[0]: 10 % 3, (done)`, []expected{
		{token.IDENT, "items"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.COLON, ":"},
		{token.INT, "10"},
		{token.PERCENT, "%"},
		{token.INT, "3"},
		{token.COMMA, ","},
		{token.LPAREN, "("},
		{token.IDENT, "done"},
		{token.RPAREN, ")"},
		{token.EOF, ""},
	})
}

func TestPositionOffsetsAreByteAccurate(t *testing.T) {
	input := `store x as 1`
	toks, _ := collect(t, input)
	storeTok := toks[0]
	if storeTok.Pos.Offset != 0 || storeTok.Pos.End != len("store") {
		t.Errorf("store token span = [%d,%d), want [0,%d)", storeTok.Pos.Offset, storeTok.Pos.End, len("store"))
	}
}
