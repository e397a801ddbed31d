package parser

import "github.com/wflang/wfl/internal/token"

// parseName collects a multi-word variable/action/container name at the
// cursor. The lexer already coalesces runs of plain identifiers (spec
// design note 9); this production adds the higher-level grammar rule
// from spec §4.2: a Contextual keyword token may still extend a name
// when it is not occupying its structural grammatical position. Since
// distinguishing "structural position" in general requires seeing what
// comes after the candidate word, this looks ahead up to 5 tokens (the
// bound named in the source's Open Questions) before deciding whether
// to fold a contextual-keyword token into the name or stop.
func (p *Parser) parseName() string {
	if !p.curIs(token.IDENT) && !token.Contextual(p.cur().Type) {
		return ""
	}
	name := p.cur().Literal
	p.advance()

	for token.Contextual(p.cur().Type) && p.contextualExtendsName() {
		name += " " + p.cur().Literal
		p.advance()
	}
	return name
}

// contextualExtendsName decides, using up to 5 tokens of lookahead,
// whether the contextual keyword under the cursor is acting as an
// ordinary word inside a name (and should be folded in) rather than
// introducing its structural construct (and should stop the name).
//
// Heuristic: a contextual keyword only extends the name when the
// following token is itself a plausible name continuation (another
// identifier/contextual word) rather than the token that begins its
// structural construct (e.g. "as", "to", ":", an Eol, or a keyword
// that only makes sense as the start of that construct's body).
func (p *Parser) contextualExtendsName() bool {
	next := p.peek(1).Type
	switch next {
	case token.AS, token.TO, token.COLON, token.EOL, token.EOF,
		token.LPAREN, token.FROM, token.IN, token.OF:
		return false
	}
	// Look further: if within the next 5 tokens we hit a statement
	// terminator before any further plain identifier, treat the
	// contextual keyword as the last word of the name.
	for i := 1; i <= 5; i++ {
		t := p.peek(i).Type
		if t == token.IDENT {
			return true
		}
		if t == token.EOL || t == token.EOF || t == token.AS || t == token.COLON {
			break
		}
	}
	return token.Contextual(next) || next == token.IDENT
}
