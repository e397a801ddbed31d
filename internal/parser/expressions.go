package parser

import (
	"strconv"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/token"
)

func (p *Parser) registerPrefixFns() {
	p.prefixFns[token.IDENT] = p.parseIdentifierOrCall
	p.prefixFns[token.INT] = p.parseIntLiteral
	p.prefixFns[token.FLOAT] = p.parseFloatLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.BOOLLIT] = p.parseBoolLiteral
	p.prefixFns[token.NOTHING] = p.parseNothingLiteral
	p.prefixFns[token.LPAREN] = p.parseGroupedExpression
	p.prefixFns[token.LBRACKET] = p.parseListLiteral
	p.prefixFns[token.NOT] = p.parseUnaryExpression
	p.prefixFns[token.MINUS] = p.parseUnaryExpression
	p.prefixFns[token.CALL] = p.parseCallExpression
	p.prefixFns[token.NEW] = p.parseContainerInstantiation
	p.prefixFns[token.PARENT] = p.parseParentMethodCall
	p.prefixFns[token.FIND] = p.parseFindExpression
	p.prefixFns[token.REPLACE] = p.parseReplaceExpression
	p.prefixFns[token.SPLIT] = p.parseSplitExpression
	p.prefixFns[token.WAIT] = p.parseAwaitExpression
	p.prefixFns[token.SPAWN] = p.parseSpawnExpression
	// Contextual keywords can also head an expression when they are
	// being used as ordinary identifier words (e.g. a variable whose
	// coalesced name happens to start with one). A keyword registered
	// above (PARENT) keeps its own prefix parser.
	for _, kw := range contextualKeywordTypes {
		if _, taken := p.prefixFns[kw]; taken {
			continue
		}
		p.prefixFns[kw] = p.parseIdentifierOrCall
	}
}

var contextualKeywordTypes = []token.Type{
	token.COUNT, token.PATTERN, token.FILES, token.LIST, token.MAP, token.PARENT,
	token.READ, token.PUSH, token.SKIP, token.GIVE, token.BACK, token.CALLED,
	token.NEEDS, token.CHANGE, token.REVERSED, token.AT, token.LEAST, token.MOST,
	token.THAN, token.ZERO, token.ANY, token.MUST, token.DEFAULTS, token.CONTENT,
	token.PROCESS, token.DATE, token.TIME, token.OUTPUT, token.RUNNING, token.STATUS,
	token.ARGUMENTS, token.EXTENSION, token.HEADER, token.DATA,
}

func (p *Parser) registerInfixFns() {
	p.infixFns[token.PLUS] = p.parseBinary(SUM)
	p.infixFns[token.MINUS] = p.parseBinary(SUM)
	p.infixFns[token.TIMES] = p.parseBinary(PRODUCT)
	p.infixFns[token.DIVIDED] = p.parseDividedBy
	p.infixFns[token.PERCENT] = p.parseBinary(PRODUCT)
	p.infixFns[token.AND] = p.parseBinary(LOGICAL)
	p.infixFns[token.OR] = p.parseBinary(LOGICAL)
	p.infixFns[token.IS] = p.parseIsComparison
	p.infixFns[token.CONTAINS] = p.parseBinary(LOGICAL)
	p.infixFns[token.MATCHES] = p.parseMatches
	p.infixFns[token.WITH] = p.parseWith
	p.infixFns[token.LBRACKET] = p.parseBracketIndex
	p.infixFns[token.DOT] = p.parsePropertyOrMethod
	p.infixFns[token.OF] = p.parseOfIndex
	p.infixFns[token.AT] = p.parseAtIndex
	p.infixFns[token.INT] = p.parseBareIndex
}

func (p *Parser) peekPrecedence() int {
	switch p.cur().Type {
	case token.PLUS, token.MINUS:
		return SUM
	case token.TIMES, token.DIVIDED, token.PERCENT:
		return PRODUCT
	case token.AND, token.OR, token.IS, token.CONTAINS, token.MATCHES:
		return LOGICAL
	case token.WITH:
		return CONCAT
	case token.LBRACKET, token.DOT, token.OF, token.AT, token.INT:
		return PRODUCT + 1 // postfix operators bind tighter than everything
	default:
		return LOWEST
	}
}

// parseExpression is the Pratt core: parse one prefix expression, then
// repeatedly fold in infix/postfix operators whose precedence exceeds
// the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur().Type]
	if prefix == nil {
		p.errorf("PARSE-UNEXPECTED-TOKEN", "unexpected token %s in expression", p.cur().Type)
		return nil
	}
	left := prefix()

	for !p.curIs(token.EOL) && !p.curIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.cur().Type]
		if infix == nil {
			return left
		}
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

// ============ literals & primaries ============

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.cur()
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorf("PARSE-BAD-NUMBER", "invalid integer literal %q", tok.Literal)
	}
	p.advance()
	return &ast.Literal{Base: ast.NewBase(tok), Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur()
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf("PARSE-BAD-NUMBER", "invalid float literal %q", tok.Literal)
	}
	p.advance()
	return &ast.Literal{Base: ast.NewBase(tok), Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur()
	p.advance()
	return &ast.Literal{Base: ast.NewBase(tok), Value: tok.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	tok := p.cur()
	p.advance()
	return &ast.Literal{Base: ast.NewBase(tok), Value: tok.Literal == "true"}
}

func (p *Parser) parseNothingLiteral() ast.Expression {
	tok := p.cur()
	p.advance()
	return &ast.Literal{Base: ast.NewBase(tok), Value: nil}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.advance() // consume '('
	exp := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.cur()
	p.advance() // consume '['
	lit := &ast.ListLiteral{Base: ast.NewBase(tok)}
	if p.curIs(token.RBRACKET) {
		p.advance()
		return lit
	}
	lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	for p.curIs(token.COMMA) {
		p.advance()
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return lit
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur()
	op := tok.Literal
	p.advance()
	operand := p.parseExpression(PRODUCT)
	return &ast.UnaryOperation{Base: ast.NewBase(tok), Operator: op, Operand: operand}
}

// parseIdentifierOrCall parses a (possibly multi-word) name and, when
// immediately followed by `(`, treats it as a bare call expression
// `name(args)`; otherwise it is a plain variable reference.
func (p *Parser) parseIdentifierOrCall() ast.Expression {
	tok := p.cur()
	name := p.parseName()
	if name == "" {
		name = tok.Literal
		p.advance()
	}
	if p.curIs(token.LPAREN) {
		p.advance()
		args := p.parseArgList(token.RPAREN)
		return &ast.ActionCall{Base: ast.NewBase(tok), Name: name, Args: args}
	}
	return &ast.Identifier{Base: ast.NewBase(tok), Name: name}
}

// parseArgList parses a comma-separated expression list up to (and
// consuming) the closing token.
func (p *Parser) parseArgList(closing token.Type) []ast.Expression {
	var args []ast.Expression
	if p.curIs(closing) {
		p.advance()
		return args
	}
	args = append(args, p.parseExpression(LOWEST))
	for p.curIs(token.COMMA) {
		p.advance()
		args = append(args, p.parseExpression(LOWEST))
	}
	p.expect(closing)
	return args
}

// parseAndList parses an "and"-joined expression list, e.g. the
// arguments of `call f with a and b and c`.
func (p *Parser) parseAndList() []ast.Expression {
	var args []ast.Expression
	args = append(args, p.parseExpression(CONCAT+1))
	for p.curIs(token.AND) {
		p.advance()
		args = append(args, p.parseExpression(CONCAT+1))
	}
	return args
}

func (p *Parser) parseCallExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'call'
	name := p.parseName()
	call := &ast.ActionCall{Base: ast.NewBase(tok), Name: name}
	if p.curIs(token.WITH) {
		p.advance()
		call.Args = p.parseAndList()
	}
	return call
}

func (p *Parser) parseContainerInstantiation() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'new'
	name := p.parseName()
	inst := &ast.ContainerInstantiation{Base: ast.NewBase(tok), Container: name}
	if p.curIs(token.WITH) {
		p.advance()
		inst.Args = p.parseAndList()
	}
	return inst
}

func (p *Parser) parseParentMethodCall() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'parent'
	if !p.curIs(token.DOT) {
		// Without a following '.', PARENT is a plain identifier named
		// "parent". The possessive spelling "parent's" is not
		// recognised: the lexer reports the apostrophe as an
		// unexpected character.
		return &ast.Identifier{Base: ast.NewBase(tok), Name: "parent"}
	}
	p.advance() // consume '.'
	methodTok := p.cur()
	method := p.parseName()
	if method == "" {
		method = methodTok.Literal
		p.advance()
	}
	call := &ast.ParentMethodCall{Base: ast.NewBase(tok), Method: method}
	if p.curIs(token.WITH) {
		p.advance()
		call.Args = p.parseAndList()
	}
	return call
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'wait'
	p.expect(token.FOR)
	val := p.parseExpression(LOWEST)
	return &ast.AwaitExpression{Base: ast.NewBase(tok), Value: val}
}

func (p *Parser) parseSpawnExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'spawn'
	if p.curIs(token.PROCESS) {
		p.advance()
	}
	cmd := p.parseExpression(CONCAT + 1)
	expr := &ast.SpawnProcessExpr{Base: ast.NewBase(tok), Command: cmd}
	if p.curIs(token.WITH) {
		p.advance()
		if p.curIs(token.ARGUMENTS) {
			p.advance()
		}
		expr.Arguments = p.parseExpression(LOWEST)
	}
	return expr
}

// ============ pattern expressions ============

func (p *Parser) parseFindExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'find'
	all := false
	if p.curIs(token.PATTERN) {
		p.advance()
	}
	pat := p.parseExpression(CONCAT + 1)
	if !p.expect(token.IN) {
		return nil
	}
	text := p.parseExpression(LOWEST)
	return &ast.PatternFindExpr{Base: ast.NewBase(tok), Pattern: pat, Text: text, All: all}
}

func (p *Parser) parseReplaceExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'replace'
	if p.curIs(token.PATTERN) {
		p.advance()
	}
	pat := p.parseExpression(CONCAT + 1)
	if !p.expect(token.WITH) {
		return nil
	}
	repl := p.parseExpression(CONCAT + 1)
	if !p.expect(token.IN) {
		return nil
	}
	text := p.parseExpression(LOWEST)
	return &ast.PatternReplaceExpr{Base: ast.NewBase(tok), Pattern: pat, Replacement: repl, Text: text}
}

func (p *Parser) parseSplitExpression() ast.Expression {
	tok := p.cur()
	p.advance() // consume 'split'
	text := p.parseExpression(CONCAT + 1)
	switch {
	case p.curIs(token.ON):
		p.advance()
		if p.curIs(token.PATTERN) {
			p.advance()
		}
		pat := p.parseExpression(LOWEST)
		return &ast.PatternSplitExpr{Base: ast.NewBase(tok), Text: text, Pattern: pat}
	case p.curIs(token.BY):
		p.advance()
		delim := p.parseExpression(LOWEST)
		return &ast.StringSplitExpr{Base: ast.NewBase(tok), Text: text, Delimiter: delim}
	default:
		p.errorf("PARSE-EXPECTED-TOKEN", "expected 'on' or 'by' after split text, got %s", p.cur().Type)
		return nil
	}
}

// ============ infix / postfix ============

func (p *Parser) parseBinary(precedence int) infixParseFn {
	return func(left ast.Expression) ast.Expression {
		tok := p.cur()
		op := tok.Literal
		p.advance()
		right := p.parseExpression(precedence)
		return &ast.BinaryOperation{Base: ast.NewBase(tok), Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) parseDividedBy(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume 'divided'
	if !p.expect(token.BY) {
		return nil
	}
	right := p.parseExpression(PRODUCT)
	return &ast.BinaryOperation{Base: ast.NewBase(tok), Operator: "divided by", Left: left, Right: right}
}

// parseIsComparison handles the full `is [not] [greater|less than [or
// equal to]] | equal to` phrase family (spec §4.2), promoting a parsed
// greater/less-than comparison to its or-equal variant when "or equal
// to" follows (supplemented feature grounded on original_source).
func (p *Parser) parseIsComparison(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume 'is'
	negate := false
	if p.curIs(token.NOT) {
		negate = true
		p.advance()
	}

	var op string
	switch {
	case p.curIs(token.GREATER):
		p.advance()
		p.expect(token.THAN)
		op = "greater than"
		if p.curIs(token.OR) {
			p.advance()
			p.expect(token.EQUALTO)
			p.expect(token.TO)
			op = "greater than or equal to"
		}
	case p.curIs(token.LESS):
		p.advance()
		p.expect(token.THAN)
		op = "less than"
		if p.curIs(token.OR) {
			p.advance()
			p.expect(token.EQUALTO)
			p.expect(token.TO)
			op = "less than or equal to"
		}
	case p.curIs(token.EQUALTO):
		p.advance()
		p.expect(token.TO)
		op = "equal to"
	default:
		// Bare "is"/"is not" followed directly by a value: treat as
		// equality.
		op = "equal to"
	}

	right := p.parseExpression(LOGICAL)
	if negate {
		op = "not " + op
	}
	return &ast.BinaryOperation{Base: ast.NewBase(tok), Operator: "is " + op, Left: left, Right: right}
}

func (p *Parser) parseMatches(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume 'matches'
	if p.curIs(token.PATTERN) {
		p.advance()
	}
	pat := p.parseExpression(LOGICAL)
	return &ast.PatternMatchExpr{Base: ast.NewBase(tok), Text: left, Pattern: pat}
}

// parseWith handles `with` at binary position: concatenation, folding
// a run of "with"-joined parts into one Concatenation node.
func (p *Parser) parseWith(left ast.Expression) ast.Expression {
	tok := p.cur()
	parts := []ast.Expression{left}
	for p.curIs(token.WITH) {
		p.advance()
		parts = append(parts, p.parseExpression(CONCAT))
	}
	return &ast.Concatenation{Base: ast.NewBase(tok), Parts: parts}
}

func (p *Parser) parseBracketIndex(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume '['
	idx := p.parseExpression(LOWEST)
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.IndexAccess{Base: ast.NewBase(tok), Collection: left, Index: idx, Bracket: true}
}

// parseBareIndex handles the 1-based bare-ordinal indexing form
// (`states 1`): an integer literal immediately following a collection
// expression on the same line.
func (p *Parser) parseBareIndex(left ast.Expression) ast.Expression {
	tok := p.cur()
	idx := p.parseIntLiteral()
	return &ast.IndexAccess{Base: ast.NewBase(tok), Collection: left, Index: idx, Bracket: false}
}

// parseOfIndex handles `item <n> of <collection>` when reached from
// the collection side is not how this is written; `of` here instead
// introduces call arguments for a preceding bare function name, per
// spec §4.2 "Postfix operators ... `of` introduces function-call
// arguments separated by `and`".
func (p *Parser) parseOfIndex(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume 'of'
	args := p.parseAndList()
	if call, ok := left.(*ast.ActionCall); ok {
		call.Args = append(call.Args, args...)
		return call
	}
	if ident, ok := left.(*ast.Identifier); ok {
		return &ast.ActionCall{Base: ast.NewBase(tok), Name: ident.Name, Args: args}
	}
	return left
}

func (p *Parser) parseAtIndex(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume 'at'
	idx := p.parseExpression(PRODUCT)
	return &ast.IndexAccess{Base: ast.NewBase(tok), Collection: left, Index: idx, Bracket: false}
}

func (p *Parser) parsePropertyOrMethod(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.advance() // consume '.'
	nameTok := p.cur()
	name := p.parseName()
	if name == "" {
		name = nameTok.Literal
		p.advance()
	}
	if p.curIs(token.WITH) || p.curIs(token.LPAREN) {
		var args []ast.Expression
		if p.curIs(token.LPAREN) {
			p.advance()
			args = p.parseArgList(token.RPAREN)
		} else {
			p.advance()
			args = p.parseAndList()
		}
		return &ast.MethodCall{Base: ast.NewBase(tok), Receiver: left, Method: name, Args: args}
	}
	return &ast.PropertyAccess{Base: ast.NewBase(tok), Receiver: left, Property: name}
}
