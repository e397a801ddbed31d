package parser

import (
	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/token"
)

// parseStatement dispatches on the leading token of a line to the
// construct-specific parser, mirroring the teacher's parseStatement
// switch (script/parser.go) but generalized to WFL's much larger
// statement surface (spec §3).
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.STORE:
		return p.parseStoreStatement()
	case token.CREATE:
		return p.parseCreateStatement()
	case token.CHANGE:
		return p.parseAssignment()
	case token.DISPLAY:
		return p.parseDisplayStatement()
	case token.CHECK:
		return p.parseIfStatement()
	case token.IF:
		return p.parseSingleLineIf()
	case token.COUNT:
		return p.parseCountLoop()
	case token.FOR:
		return p.parseForEachLoop()
	case token.REPEAT:
		return p.parseRepeatLoop()
	case token.MAIN:
		return p.parseMainLoop()
	case token.DEFINE:
		return p.parseActionDefinition()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.GIVE:
		return p.parseGiveBackStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE, token.SKIP:
		return p.parseContinueStatement()
	case token.EXIT:
		return p.parseExitStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.PUSH, token.ADD:
		return p.parsePushStatement()
	case token.REMOVE:
		return p.parseRemoveStatement()
	case token.CLEAR:
		return p.parseClearStatement()
	case token.OPEN:
		return p.parseOpenFileStatement()
	case token.READ:
		return p.parseReadFileStatement()
	case token.WRITE:
		return p.parseWriteFileStatement()
	case token.CLOSE:
		return p.parseCloseFileStatement()
	case token.DELETE:
		return p.parseDeleteStatement()
	case token.WAIT:
		return p.parseWaitForStatement()
	case token.LISTEN:
		return p.parseListenStatement()
	case token.RESPOND:
		return p.parseRespondStatement()
	case token.WHEN:
		return p.parseRegisterHandlerStatement()
	case token.STOP:
		return p.parseStopAcceptingStatement()
	case token.TRIGGER:
		return p.parseTriggerStatement()
	case token.EVENT:
		return p.parseEventDefinition()
	case token.ON:
		return p.parseHandlerDefinition()
	case token.KILL:
		return p.parseKillProcessStatement()
	case token.LOAD:
		return p.parseLoadModuleStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// ============ declarations ============

func (p *Parser) parseStoreStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'store'
	isConstant := false
	if p.curIs(token.NEW) && p.peekIs(token.CONSTANT) {
		p.advance()
		p.advance()
		isConstant = true
	}
	name := p.parseName()
	p.expect(token.AS)
	value := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.VariableDeclaration{Base: ast.NewBase(tok), Name: name, Value: value, IsConstant: isConstant}
}

func (p *Parser) parseCreateStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'create'
	switch {
	case p.curIs(token.NEW) && p.peekIs(token.CONSTANT):
		return p.parseDeprecatedCreateConstant(tok)
	case p.curIs(token.NEW):
		return p.parseContainerInstantiationStatement(tok)
	case p.curIs(token.LIST):
		return p.parseCreateListStatement(tok)
	case p.curIs(token.MAP):
		return p.parseCreateMapStatement(tok)
	case p.curIs(token.PATTERN):
		return p.parseCreatePatternStatement(tok)
	case p.curIs(token.CONTAINER):
		return p.parseContainerDefinition(tok)
	case p.curIs(token.INTERFACE):
		return p.parseInterfaceDefinition(tok)
	case p.curIs(token.DIRECTORY):
		return p.parseCreateDirectoryStatement(tok)
	case p.curIs(token.FILE):
		return p.parseCreateFileStatement(tok)
	default:
		p.errorf("PARSE-UNEXPECTED-TOKEN", "unexpected token %s after 'create'", p.cur().Type)
		p.synchronize()
		return nil
	}
}

// parseDeprecatedCreateConstant handles the old `create new constant
// <name> as <expr>` spelling, superseded by `store new constant` but
// still accepted with a warning (spec §3, deprecated form).
func (p *Parser) parseDeprecatedCreateConstant(tok token.Token) ast.Statement {
	p.advance() // consume 'new'
	p.advance() // consume 'constant'
	name := p.parseName()
	p.expect(token.AS)
	value := p.parseExpression(LOWEST)
	p.warnf("PARSE-DEPRECATED-CREATE-CONST", tok.Pos,
		"'create new constant' is deprecated; use 'store new constant' instead")
	p.endOfStatement()
	return &ast.VariableDeclaration{Base: ast.NewBase(tok), Name: name, Value: value, IsConstant: true, Deprecated: true}
}

// parseContainerInstantiationStatement handles `create new <Container>
// [with <args>] as <name>`, a declaring form of ContainerInstantiation.
func (p *Parser) parseContainerInstantiationStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'new'
	containerName := p.parseName()
	var args []ast.Expression
	if p.curIs(token.WITH) {
		p.advance()
		args = p.parseAndList()
	}
	p.expect(token.AS)
	varName := p.parseName()
	p.endOfStatement()
	inst := &ast.ContainerInstantiation{Base: ast.NewBase(tok), Container: containerName, Args: args}
	return &ast.VariableDeclaration{Base: ast.NewBase(tok), Name: varName, Value: inst}
}

func (p *Parser) parseCreateListStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'list'
	name := p.parseName()
	stmt := &ast.CreateListStatement{Base: ast.NewBase(tok), Name: name}
	if p.curIs(token.AS) {
		p.advance()
		if lit, ok := p.parseExpression(LOWEST).(*ast.ListLiteral); ok {
			stmt.Elements = lit.Elements
		}
	}
	p.endOfStatement()
	return stmt
}

func (p *Parser) parseCreateMapStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'map'
	name := p.parseName()
	stmt := &ast.CreateMapStatement{Base: ast.NewBase(tok), Name: name}
	if p.curIs(token.COLON) {
		p.advance()
		p.skipEOLs()
		for !p.curIs(token.END) && !p.curIs(token.EOF) {
			stmt.Entries = append(stmt.Entries, p.parseMapEntry())
			p.skipEOLs()
		}
		p.expectEnd(token.MAP)
		return stmt
	}
	p.endOfStatement()
	return stmt
}

func (p *Parser) parseMapEntry() ast.MapEntry {
	keyTok := p.cur()
	key := p.parseName()
	if key == "" {
		key = keyTok.Literal
		p.advance()
	}
	p.expect(token.COLON)
	value := p.parseExpression(LOWEST)
	p.endOfStatement()
	return ast.MapEntry{Key: key, Value: value}
}

// parseCreatePatternStatement accepts both the block form
// (`create pattern <name>: <body> end pattern`) and the inline form
// (`create pattern <name> as <body>`), dispatching the pattern body to
// the dedicated pattern-phrase grammar in patterns.go rather than the
// general expression parser.
func (p *Parser) parseCreatePatternStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'pattern'
	name := p.parseName()
	switch {
	case p.curIs(token.COLON):
		p.advance()
		p.skipEOLs()
		pat := p.parsePatternSequence()
		p.skipEOLs()
		p.expectEnd(token.PATTERN)
		return &ast.PatternDefinition{Base: ast.NewBase(tok), Name: name, Pattern: pat}
	case p.curIs(token.AS):
		p.advance()
		pat := p.parsePatternSequence()
		p.endOfStatement()
		return &ast.PatternDefinition{Base: ast.NewBase(tok), Name: name, Pattern: pat}
	default:
		p.errorf("PARSE-EXPECTED-TOKEN", "expected ':' or 'as' after pattern name, got %s", p.cur().Type)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseContainerDefinition(tok token.Token) ast.Statement {
	p.advance() // consume 'container'
	name := p.parseName()
	def := &ast.ContainerDefinition{Base: ast.NewBase(tok), Name: name}
	if p.curIs(token.EXTENDS) {
		p.advance()
		def.Extends = p.parseName()
	}
	if p.curIs(token.IMPLEMENTS) {
		p.advance()
		def.Implements = append(def.Implements, p.parseName())
		for p.curIs(token.AND) {
			p.advance()
			def.Implements = append(def.Implements, p.parseName())
		}
	}
	p.expect(token.COLON)
	p.skipEOLs()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.PROPERTY):
			def.Properties = append(def.Properties, p.parseProperty())
		case p.curIs(token.STATIC):
			p.advance()
			def.Statics = append(def.Statics, p.parseProperty())
		case p.curIs(token.DEFINE):
			if action, ok := p.parseActionDefinition().(*ast.ActionDefinition); ok {
				def.Actions = append(def.Actions, action)
			}
		case p.curIs(token.EVENT):
			if ev, ok := p.parseEventDefinition().(*ast.EventDefinition); ok {
				def.Events = append(def.Events, ev)
			}
		default:
			p.errorf("PARSE-UNEXPECTED-TOKEN", "unexpected token %s in container body", p.cur().Type)
			p.synchronize()
		}
		p.skipEOLs()
	}
	p.expectEnd(token.CONTAINER)
	return def
}

func (p *Parser) parseProperty() ast.Property {
	p.advance() // consume 'property'
	name := p.parseName()
	prop := ast.Property{Name: name}
	if p.curIs(token.AS) {
		p.advance()
		prop.Default = p.parseExpression(LOWEST)
	}
	p.endOfStatement()
	return prop
}

func (p *Parser) parseInterfaceDefinition(tok token.Token) ast.Statement {
	p.advance() // consume 'interface'
	name := p.parseName()
	def := &ast.InterfaceDefinition{Base: ast.NewBase(tok), Name: name}
	p.expect(token.COLON)
	p.skipEOLs()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.PROPERTY):
			p.advance()
			def.Properties = append(def.Properties, p.parseName())
			p.endOfStatement()
		case p.curIs(token.ACTION):
			p.advance()
			def.Actions = append(def.Actions, p.parseName())
			p.endOfStatement()
		default:
			p.errorf("PARSE-UNEXPECTED-TOKEN", "unexpected token %s in interface body", p.cur().Type)
			p.synchronize()
		}
		p.skipEOLs()
	}
	p.expectEnd(token.INTERFACE)
	return def
}

func (p *Parser) parseCreateDirectoryStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'directory'
	p.expect(token.AT)
	path := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.CreateDirectoryStatement{Base: ast.NewBase(tok), Path: path}
}

// parseCreateFileStatement handles `create file at <path> as <name>`,
// an alias for opening a fresh file handle (spec §3).
func (p *Parser) parseCreateFileStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'file'
	p.expect(token.AT)
	path := p.parseExpression(CONCAT + 1)
	p.expect(token.AS)
	name := p.parseName()
	p.endOfStatement()
	return &ast.OpenFileStatement{Base: ast.NewBase(tok), Path: path, Name: name}
}

func (p *Parser) parseAssignment() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'change'
	name := p.parseName()
	p.expect(token.TO)
	value := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.Assignment{Base: ast.NewBase(tok), Name: name, Value: value}
}

func (p *Parser) parseDisplayStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'display'
	value := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.DisplayStatement{Base: ast.NewBase(tok), Value: value}
}

// ============ conditionals ============

// parseIfStatement handles `check if <cond>: ... [otherwise [check if
// ...]: ...] end check`. An `otherwise check if` chain desugars into a
// nested IfStatement held in OtherwiseIf; only the innermost nested
// call consumes the chain's single trailing `end check`.
func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'check'
	p.expect(token.IF)
	cond := p.parseExpression(LOWEST)
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) || p.curIs(token.OTHERWISE) })
	stmt := &ast.IfStatement{Base: ast.NewBase(tok), Condition: cond, Consequence: body}

	if p.curIs(token.OTHERWISE) {
		p.advance()
		if p.curIs(token.CHECK) {
			if nested, ok := p.parseIfStatement().(*ast.IfStatement); ok {
				stmt.OtherwiseIf = nested
			}
			return stmt
		}
		p.expect(token.COLON)
		stmt.Alternative = p.parseBlock(func() bool { return p.curIs(token.END) })
		p.expectEnd(token.CHECK)
		return stmt
	}
	p.expectEnd(token.CHECK)
	return stmt
}

// parseSingleLineIf handles the inline `if <cond> then <stmt>
// [otherwise <stmt>]` form.
func (p *Parser) parseSingleLineIf() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'if'
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.THEN) {
		return nil
	}
	thenStmt := p.parseInlineStatement()
	stmt := &ast.SingleLineIf{Base: ast.NewBase(tok), Condition: cond, Then: thenStmt}
	if p.curIs(token.OTHERWISE) {
		p.advance()
		stmt.Else = p.parseInlineStatement()
	}
	p.endOfStatement()
	return stmt
}

// parseInlineStatement parses one simple statement body for a
// single-line if without consuming its terminating Eol: the enclosing
// SingleLineIf consumes that once, after any "otherwise" clause.
func (p *Parser) parseInlineStatement() ast.Statement {
	tok := p.cur()
	switch tok.Type {
	case token.DISPLAY:
		p.advance()
		return &ast.DisplayStatement{Base: ast.NewBase(tok), Value: p.parseExpression(LOWEST)}
	case token.CHANGE:
		p.advance()
		name := p.parseName()
		p.expect(token.TO)
		return &ast.Assignment{Base: ast.NewBase(tok), Name: name, Value: p.parseExpression(LOWEST)}
	case token.RETURN:
		p.advance()
		var val ast.Expression
		if p.inlineValueFollows() {
			val = p.parseExpression(LOWEST)
		}
		return &ast.ReturnStatement{Base: ast.NewBase(tok), Value: val}
	case token.BREAK:
		p.advance()
		return &ast.BreakStatement{Base: ast.NewBase(tok)}
	case token.CONTINUE, token.SKIP:
		p.advance()
		return &ast.ContinueStatement{Base: ast.NewBase(tok)}
	case token.EXIT:
		p.advance()
		var code ast.Expression
		if p.inlineValueFollows() {
			code = p.parseExpression(LOWEST)
		}
		return &ast.ExitStatement{Base: ast.NewBase(tok), Code: code}
	default:
		return &ast.ExpressionStatement{Base: ast.NewBase(tok), Expr: p.parseExpression(LOWEST)}
	}
}

// inlineValueFollows reports whether an optional trailing value is
// present before the single-line if's Eol or "otherwise" clause.
func (p *Parser) inlineValueFollows() bool {
	return !p.curIs(token.EOL) && !p.curIs(token.EOF) && !p.curIs(token.OTHERWISE)
}

// ============ loops ============

func (p *Parser) parseCountLoop() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'count'
	p.expect(token.FROM)
	from := p.parseExpression(CONCAT + 1)
	reversed := false
	if p.curIs(token.DOWN) {
		p.advance()
		reversed = true
	}
	p.expect(token.TO)
	to := p.parseExpression(CONCAT + 1)
	var by ast.Expression
	if p.curIs(token.BY) {
		p.advance()
		by = p.parseExpression(CONCAT + 1)
	}
	var variable string
	if p.curIs(token.AS) {
		p.advance()
		variable = p.parseName()
	}
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expectEnd(token.COUNT)
	return &ast.CountLoop{Base: ast.NewBase(tok), Variable: variable, From: from, To: to, By: by, Reversed: reversed, Body: body}
}

func (p *Parser) parseForEachLoop() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'for'
	p.expect(token.EACH)
	name := p.parseName()
	p.expect(token.IN)
	collTok := p.cur()
	reversed := p.curIs(token.REVERSED)
	if reversed {
		p.advance()
	}
	collection := p.parseExpression(LOWEST)
	if reversed {
		collection = &ast.UnaryOperation{Base: ast.NewBase(collTok), Operator: "reversed", Operand: collection}
	}
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expectEnd(token.FOR)
	return &ast.ForEachLoop{Base: ast.NewBase(tok), Variable: name, Collection: collection, Body: body}
}

func (p *Parser) parseRepeatLoop() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'repeat'
	switch {
	case p.curIs(token.WHILE):
		p.advance()
		cond := p.parseExpression(LOWEST)
		p.expect(token.COLON)
		body := p.parseBlock(func() bool { return p.curIs(token.END) })
		p.expectEnd(token.REPEAT)
		return &ast.RepeatWhileLoop{Base: ast.NewBase(tok), Condition: cond, Body: body}
	case p.curIs(token.UNTIL):
		p.advance()
		cond := p.parseExpression(LOWEST)
		p.expect(token.COLON)
		body := p.parseBlock(func() bool { return p.curIs(token.END) })
		p.expectEnd(token.REPEAT)
		return &ast.RepeatUntilLoop{Base: ast.NewBase(tok), Condition: cond, Body: body}
	case p.curIs(token.FOREVER):
		p.advance()
		p.expect(token.COLON)
		body := p.parseBlock(func() bool { return p.curIs(token.END) })
		p.expectEnd(token.REPEAT)
		return &ast.ForeverLoop{Base: ast.NewBase(tok), Body: body}
	default:
		p.errorf("PARSE-UNEXPECTED-TOKEN", "expected 'while', 'until', or 'forever' after 'repeat', got %s", p.cur().Type)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseMainLoop() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'main'
	p.expect(token.LOOP)
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expect(token.END)
	p.expect(token.MAIN)
	p.expect(token.LOOP)
	return &ast.MainLoop{Base: ast.NewBase(tok), Body: body}
}

// ============ actions ============

func (p *Parser) parseActionDefinition() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'define'
	p.expect(token.ACTION)
	p.expect(token.CALLED)
	name := p.parseName()
	var params []ast.Param
	if p.curIs(token.NEEDS) || p.curIs(token.WITH) {
		p.advance()
		params = p.parseParamList()
	}
	var returnType string
	if p.curIs(token.RETURN) {
		p.advance()
		returnType = p.parseName()
	}
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expectEnd(token.ACTION)
	return &ast.ActionDefinition{Base: ast.NewBase(tok), Name: name, Params: params, ReturnType: returnType, Body: body}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	params = append(params, p.parseParam())
	for p.curIs(token.AND) {
		p.advance()
		params = append(params, p.parseParam())
	}
	return params
}

func (p *Parser) parseParam() ast.Param {
	name := p.parseName()
	param := ast.Param{Name: name}
	if p.curIs(token.DEFAULTS) {
		p.advance()
		p.expect(token.TO)
		param.Default = p.parseExpression(CONCAT + 1)
	}
	return param
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'return'
	var val ast.Expression
	if !p.curIs(token.EOL) && !p.curIs(token.EOF) {
		val = p.parseExpression(LOWEST)
	}
	p.endOfStatement()
	return &ast.ReturnStatement{Base: ast.NewBase(tok), Value: val}
}

func (p *Parser) parseGiveBackStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'give'
	p.expect(token.BACK)
	var val ast.Expression
	if !p.curIs(token.EOL) && !p.curIs(token.EOF) {
		val = p.parseExpression(LOWEST)
	}
	p.endOfStatement()
	return &ast.ReturnStatement{Base: ast.NewBase(tok), Value: val}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.cur()
	p.advance()
	p.endOfStatement()
	return &ast.BreakStatement{Base: ast.NewBase(tok)}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	tok := p.cur()
	p.advance()
	p.endOfStatement()
	return &ast.ContinueStatement{Base: ast.NewBase(tok)}
}

func (p *Parser) parseExitStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'exit'
	var code ast.Expression
	if !p.curIs(token.EOL) && !p.curIs(token.EOF) {
		code = p.parseExpression(LOWEST)
	}
	p.endOfStatement()
	return &ast.ExitStatement{Base: ast.NewBase(tok), Code: code}
}

// ============ error handling ============

func (p *Parser) parseTryStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'try'
	p.expect(token.COLON)
	atClauseBoundary := func() bool { return p.curIs(token.WHEN) || p.curIs(token.OTHERWISE) || p.curIs(token.END) }
	body := p.parseBlock(atClauseBoundary)
	stmt := &ast.TryStatement{Base: ast.NewBase(tok), Body: body}

	for p.curIs(token.WHEN) {
		p.advance()
		var cond ast.Expression
		if !p.curIs(token.COLON) {
			cond = p.parseExpression(LOWEST)
		}
		p.expect(token.COLON)
		clauseBody := p.parseBlock(atClauseBoundary)
		stmt.Clauses = append(stmt.Clauses, ast.TryClause{Condition: cond, Body: clauseBody})
	}
	if p.curIs(token.OTHERWISE) {
		p.advance()
		p.expect(token.COLON)
		stmt.Otherwise = p.parseBlock(func() bool { return p.curIs(token.END) })
	}
	p.expectEnd(token.TRY)
	return stmt
}

// ============ collections ============

func (p *Parser) parsePushStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'push'/'add'
	val := p.parseExpression(CONCAT + 1)
	p.expect(token.TO)
	list := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.PushStatement{Base: ast.NewBase(tok), List: list, Value: val}
}

func (p *Parser) parseRemoveStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'remove'
	val := p.parseExpression(CONCAT + 1)
	p.expect(token.FROM)
	list := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.RemoveFromListStatement{Base: ast.NewBase(tok), List: list, Value: val}
}

func (p *Parser) parseClearStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'clear'
	list := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.ClearListStatement{Base: ast.NewBase(tok), List: list}
}

// ============ filesystem ============

func (p *Parser) parseOpenFileStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'open'
	p.expect(token.FILE)
	p.expect(token.AT)
	path := p.parseExpression(CONCAT + 1)
	p.expect(token.AS)
	name := p.parseName()
	p.endOfStatement()
	return &ast.OpenFileStatement{Base: ast.NewBase(tok), Path: path, Name: name}
}

// parseReadFileStatement handles both `read content from <file> as
// <name>` and `read file at <path> as <name>`, the latter opening the
// path implicitly (spec §3).
func (p *Parser) parseReadFileStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'read'
	switch {
	case p.curIs(token.CONTENT):
		p.advance()
		p.expect(token.FROM)
		src := p.parseExpression(CONCAT + 1)
		p.expect(token.AS)
		name := p.parseName()
		p.endOfStatement()
		return &ast.ReadFileStatement{Base: ast.NewBase(tok), Source: src, Name: name}
	case p.curIs(token.FILE):
		p.advance()
		p.expect(token.AT)
		path := p.parseExpression(CONCAT + 1)
		p.expect(token.AS)
		name := p.parseName()
		p.endOfStatement()
		return &ast.ReadFileStatement{Base: ast.NewBase(tok), Source: path, Name: name}
	case p.curIs(token.OUTPUT):
		p.advance()
		p.expect(token.FROM)
		src := p.parseExpression(CONCAT + 1)
		p.expect(token.AS)
		name := p.parseName()
		p.endOfStatement()
		return &ast.ReadFileStatement{Base: ast.NewBase(tok), Source: src, Name: name}
	default:
		p.errorf("PARSE-EXPECTED-TOKEN", "expected 'content', 'file', or 'output' after 'read', got %s", p.cur().Type)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseWriteFileStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'write'
	content := p.parseExpression(CONCAT + 1)
	p.expect(token.TO)
	file := p.parseExpression(LOWEST)
	appendMode := false
	switch {
	case p.curIs(token.APPEND):
		p.advance()
		appendMode = true
	case p.curIs(token.OVERWRITE):
		p.advance()
	}
	p.endOfStatement()
	return &ast.WriteFileStatement{Base: ast.NewBase(tok), File: file, Content: content, Append: appendMode}
}

func (p *Parser) parseCloseFileStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'close'
	p.expect(token.FILE)
	file := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.CloseFileStatement{Base: ast.NewBase(tok), File: file}
}

func (p *Parser) parseDeleteStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'delete'
	switch {
	case p.curIs(token.FILE):
		p.advance()
		p.expect(token.AT)
		path := p.parseExpression(LOWEST)
		p.endOfStatement()
		return &ast.DeleteFileStatement{Base: ast.NewBase(tok), Path: path}
	case p.curIs(token.DIRECTORY):
		p.advance()
		p.expect(token.AT)
		path := p.parseExpression(LOWEST)
		p.endOfStatement()
		return &ast.DeleteDirectoryStatement{Base: ast.NewBase(tok), Path: path}
	default:
		p.errorf("PARSE-EXPECTED-TOKEN", "expected 'file' or 'directory' after 'delete', got %s", p.cur().Type)
		p.synchronize()
		return nil
	}
}

// ============ async / processes ============

func (p *Parser) parseWaitForStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'wait'
	p.expect(token.FOR)
	if p.curIs(token.REQUEST) {
		return p.parseWaitForRequestStatement(tok)
	}
	val := p.parseExpression(LOWEST)
	var name string
	if p.curIs(token.AS) {
		p.advance()
		name = p.parseName()
	}
	p.endOfStatement()
	return &ast.WaitForStatement{Base: ast.NewBase(tok), Value: val, Name: name}
}

// parseWaitForRequestStatement handles `wait for request <name> comes from
// <server>`, the pull-based counterpart to `when request comes in on
// <server>`.
func (p *Parser) parseWaitForRequestStatement(tok token.Token) ast.Statement {
	p.advance() // consume 'request'
	name := p.parseName()
	p.expect(token.COMES)
	p.expect(token.FROM)
	server := p.parseExpression(CONCAT + 1)
	p.endOfStatement()
	return &ast.WaitForRequestStatement{Base: ast.NewBase(tok), Server: server, Name: name}
}

func (p *Parser) parseKillProcessStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'kill'
	if p.curIs(token.PROCESS) {
		p.advance()
	}
	proc := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.KillProcessStatement{Base: ast.NewBase(tok), Process: proc}
}

// ============ networking ============

func (p *Parser) parseListenStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'listen'
	p.expect(token.ON)
	p.expect(token.PORT)
	port := p.parseExpression(CONCAT + 1)
	var name string
	if p.curIs(token.AS) {
		p.advance()
		name = p.parseName()
	}
	p.endOfStatement()
	return &ast.ListenStatement{Base: ast.NewBase(tok), Port: port, Name: name}
}

func (p *Parser) parseRespondStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'respond'
	p.expect(token.TO)
	req := p.parseExpression(CONCAT + 1)
	p.expect(token.WITH)
	body := p.parseExpression(CONCAT + 1)
	var status ast.Expression
	if p.curIs(token.AND) {
		p.advance()
		p.expect(token.STATUS)
		status = p.parseExpression(LOWEST)
	}
	p.endOfStatement()
	return &ast.RespondStatement{Base: ast.NewBase(tok), Request: req, Body: body, Status: status}
}

// parseRegisterHandlerStatement handles `when request comes in on
// <server> [as <name>]: ... end when`.
func (p *Parser) parseRegisterHandlerStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'when'
	p.expect(token.REQUEST)
	p.expect(token.COMES)
	p.expect(token.IN)
	p.expect(token.ON)
	server := p.parseExpression(CONCAT + 1)
	reqName := "request"
	if p.curIs(token.AS) {
		p.advance()
		reqName = p.parseName()
	}
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expectEnd(token.WHEN)
	return &ast.RegisterHandlerStatement{Base: ast.NewBase(tok), Server: server, Request: reqName, Body: body}
}

func (p *Parser) parseStopAcceptingStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'stop'
	p.expect(token.ACCEPTING)
	p.expect(token.CONNECTIONS)
	p.expect(token.ON)
	server := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.StopAcceptingStatement{Base: ast.NewBase(tok), Server: server}
}

// ============ events ============

func (p *Parser) parseTriggerStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'trigger'
	name := p.parseName()
	var args []ast.Expression
	if p.curIs(token.WITH) {
		p.advance()
		args = p.parseAndList()
	}
	p.endOfStatement()
	return &ast.TriggerStatement{Base: ast.NewBase(tok), Event: name, Args: args}
}

func (p *Parser) parseEventDefinition() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'event'
	name := p.parseName()
	var params []ast.Param
	if p.curIs(token.NEEDS) {
		p.advance()
		params = p.parseParamList()
	}
	p.endOfStatement()
	return &ast.EventDefinition{Base: ast.NewBase(tok), Name: name, Params: params}
}

func (p *Parser) parseHandlerDefinition() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'on'
	event := p.parseName()
	p.expect(token.OF)
	container := p.parseName()
	var binding string
	if p.curIs(token.AS) {
		p.advance()
		binding = p.parseName()
	}
	p.expect(token.COLON)
	body := p.parseBlock(func() bool { return p.curIs(token.END) })
	p.expectEnd(token.ON)
	return &ast.HandlerDefinition{Base: ast.NewBase(tok), Event: event, Container: container, Binding: binding, Body: body}
}

// ============ modules ============

func (p *Parser) parseLoadModuleStatement() ast.Statement {
	tok := p.cur()
	p.advance() // consume 'load'
	p.expect(token.MODULE)
	p.expect(token.FROM)
	var path string
	if p.curIs(token.STRING) {
		path = p.cur().Literal
		p.advance()
	} else {
		p.errorf("PARSE-EXPECTED-TOKEN", "expected a string module path, got %s", p.cur().Type)
	}
	p.endOfStatement()
	return &ast.LoadModuleStatement{Base: ast.NewBase(tok), Path: path}
}

// ============ fallback ============

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.cur()
	expr := p.parseExpression(LOWEST)
	p.endOfStatement()
	return &ast.ExpressionStatement{Base: ast.NewBase(tok), Expr: expr}
}
