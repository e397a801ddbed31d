package parser

import (
	"strconv"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/token"
)

// parsePatternSequence parses a run of pattern alternatives
// (spec §3 "Pattern AST"): `one or more digit or letter` is a single
// quantified alternative; several such terms in a row (or joined with
// "then") form a PatternSequence.
func (p *Parser) parsePatternSequence() ast.Expression {
	tok := p.cur()
	var items []ast.Expression
	items = append(items, p.parsePatternAlternative())
	for p.patternSequenceContinues() {
		if p.curIs(token.THEN) {
			p.advance()
		}
		items = append(items, p.parsePatternAlternative())
	}
	if len(items) == 1 {
		return items[0]
	}
	return &ast.PatternSequence{Base: ast.NewBase(tok), Items: items}
}

// patternSequenceContinues reports whether another pattern term follows
// immediately (juxtaposition) or after an explicit "then".
func (p *Parser) patternSequenceContinues() bool {
	if p.curIs(token.THEN) {
		return true
	}
	switch p.cur().Type {
	case token.STRING, token.DIGIT, token.LETTER, token.WHITESPACE, token.ONE,
		token.ZERO, token.OPTIONAL, token.EXACTLY, token.BETWEEN, token.NOT,
		token.LPAREN, token.IDENT:
		return true
	default:
		return false
	}
}

// parsePatternAlternative handles `or`-joined quantified terms.
func (p *Parser) parsePatternAlternative() ast.Expression {
	tok := p.cur()
	first := p.parsePatternQuantified()
	if !p.curIs(token.OR) {
		return first
	}
	options := []ast.Expression{first}
	for p.curIs(token.OR) {
		p.advance()
		options = append(options, p.parsePatternQuantified())
	}
	return &ast.PatternAlternative{Base: ast.NewBase(tok), Options: options}
}

// parsePatternQuantified handles the quantifier prefixes from spec
// §3/§4.6: "one or more", "zero or more", "optional", "exactly <n>",
// "between <m> and <n>", and "not followed by" (negative lookahead).
func (p *Parser) parsePatternQuantified() ast.Expression {
	tok := p.cur()
	switch {
	case p.curIs(token.ONE):
		p.advance()
		p.expect(token.OR)
		p.expect(token.MORE)
		inner := p.parsePatternAtom()
		return &ast.PatternQuantified{Base: ast.NewBase(tok), Inner: inner, Kind: ast.QuantOneOrMore}
	case p.curIs(token.ZERO):
		p.advance()
		p.expect(token.OR)
		p.expect(token.MORE)
		inner := p.parsePatternAtom()
		return &ast.PatternQuantified{Base: ast.NewBase(tok), Inner: inner, Kind: ast.QuantZeroOrMore}
	case p.curIs(token.OPTIONAL):
		p.advance()
		inner := p.parsePatternAtom()
		return &ast.PatternQuantified{Base: ast.NewBase(tok), Inner: inner, Kind: ast.QuantOptional}
	case p.curIs(token.EXACTLY):
		p.advance()
		n := p.parsePatternInt()
		inner := p.parsePatternAtom()
		return &ast.PatternQuantified{Base: ast.NewBase(tok), Inner: inner, Kind: ast.QuantExactly, Min: n}
	case p.curIs(token.BETWEEN):
		p.advance()
		m := p.parsePatternInt()
		p.expect(token.AND)
		n := p.parsePatternInt()
		inner := p.parsePatternAtom()
		return &ast.PatternQuantified{Base: ast.NewBase(tok), Inner: inner, Kind: ast.QuantBetween, Min: m, Max: n}
	case p.curIs(token.NOT):
		p.advance()
		p.expect(token.FOLLOWED)
		p.expect(token.BY)
		inner := p.parsePatternAtom()
		return &ast.PatternNegativeLookahead{Base: ast.NewBase(tok), Inner: inner}
	default:
		return p.parsePatternAtom()
	}
}

func (p *Parser) parsePatternInt() int {
	tok := p.cur()
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		p.errorf("PARSE-BAD-NUMBER", "expected an integer in pattern quantifier, got %q", tok.Literal)
	}
	p.advance()
	return n
}

// parsePatternAtom parses one irreducible pattern term: a string
// literal, a built-in character class, a parenthesized sub-sequence, or
// a bare name referring to a previously declared list (PatternListRef).
func (p *Parser) parsePatternAtom() ast.Expression {
	tok := p.cur()
	switch {
	case p.curIs(token.STRING):
		p.advance()
		return &ast.PatternLiteral{Base: ast.NewBase(tok), Text: tok.Literal}
	case p.curIs(token.DIGIT):
		p.advance()
		return &ast.PatternCharClass{Base: ast.NewBase(tok), Class: "digit"}
	case p.curIs(token.LETTER):
		p.advance()
		return &ast.PatternCharClass{Base: ast.NewBase(tok), Class: "letter"}
	case p.curIs(token.WHITESPACE):
		p.advance()
		return &ast.PatternCharClass{Base: ast.NewBase(tok), Class: "whitespace"}
	case p.curIs(token.LPAREN):
		p.advance()
		inner := p.parsePatternSequence()
		p.expect(token.RPAREN)
		return inner
	default:
		name := p.parseName()
		if name == "" {
			p.errorf("PARSE-UNEXPECTED-TOKEN", "unexpected token %s in pattern", p.cur().Type)
			p.advance()
			return nil
		}
		return &ast.PatternListRef{Base: ast.NewBase(tok), Name: name}
	}
}
