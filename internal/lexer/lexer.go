// Package lexer tokenizes WFL source text.
//
// Grounded on btouchard-gmx/internal/compiler/lexer: the rune-at-a-time
// scanner with a trailing readPosition and explicit line/column
// bookkeeping is kept verbatim in shape. Three things are new, required
// by spec §4.1: (1) line-ending normalization that still reports
// positions consistent with the original `\r\n`/`\r`/`\n` sequence,
// grounded on original_source/src/lexer/string_line_ending_tests.rs;
// (2) an explicit Eol token emitted once per logical newline instead of
// being swallowed as whitespace; (3) multi-word identifier coalescing,
// merging adjacent plain-identifier words separated only by horizontal
// whitespace into a single token.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wflang/wfl/internal/token"
)

// Lexer scans one source file into a token.Token stream.
type Lexer struct {
	input        string
	position     int // current byte offset
	readPosition int // next byte offset to read
	ch           rune
	line         int
	column       int

	// Diagnostics sink; lex errors are recoverable (spec §4.1, §7).
	onError func(pos token.Position, msg string)
}

// New constructs a Lexer over source. onError may be nil, in which case
// lex errors are silently skipped (still producing ILLEGAL tokens).
func New(source string, onError func(pos token.Position, msg string)) *Lexer {
	l := &Lexer{input: source, line: 1, column: 0, onError: onError}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position, End: l.position}
}

// snapshot captures scanner state for backtracking during multi-word
// identifier lookahead.
type snapshot struct {
	position, readPosition, line, column int
	ch                                   rune
}

func (l *Lexer) snap() snapshot {
	return snapshot{l.position, l.readPosition, l.line, l.column, l.ch}
}

func (l *Lexer) restore(s snapshot) {
	l.position, l.readPosition, l.line, l.column, l.ch = s.position, s.readPosition, s.line, s.column, s.ch
}

// advanceNewline consumes one logical line terminator — "\n", "\r\n",
// or a lone "\r" — as a single line increment, regardless of which form
// is actually present in the source (spec §4.1).
func (l *Lexer) advanceNewline() {
	if l.ch == '\r' {
		l.readChar()
		if l.ch == '\n' {
			l.readChar()
		}
	} else { // '\n'
		l.readChar()
	}
	l.line++
	l.column = 1
}

func (l *Lexer) atNewline() bool {
	return l.ch == '\n' || l.ch == '\r'
}

// skipHorizontalWhitespaceAndComments skips spaces, tabs, and line
// comments (// or #), but never a newline — callers decide whether a
// newline becomes an Eol token.
func (l *Lexer) skipHorizontalWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for !l.atNewline() && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '#' {
			for !l.atNewline() && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// NextToken returns the next token in the stream, or an EOF token once
// exhausted.
func (l *Lexer) NextToken() token.Token {
	l.skipHorizontalWhitespaceAndComments()

	pos := l.currentPos()

	if l.atNewline() {
		l.advanceNewline()
		return token.Token{Type: token.EOL, Literal: "\n", Pos: pos}
	}

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case '(':
		return l.simple(token.LPAREN, pos)
	case ')':
		return l.simple(token.RPAREN, pos)
	case '[':
		return l.simple(token.LBRACKET, pos)
	case ']':
		return l.simple(token.RBRACKET, pos)
	case ':':
		return l.simple(token.COLON, pos)
	case ',':
		return l.simple(token.COMMA, pos)
	case '%':
		return l.simple(token.PERCENT, pos)
	case '.':
		// A dot followed by a digit is never seen here (numbers consume
		// their own '.'); a bare dot is property access.
		return l.simple(token.DOT, pos)
	case '"':
		lit := l.readString()
		pos.End = l.position
		return token.Token{Type: token.STRING, Literal: lit, Pos: pos}
	}

	if isIdentStart(l.ch) {
		return l.readIdentifierToken(pos)
	}
	if isDigit(l.ch) {
		lit, isFloat := l.readNumber()
		pos.End = l.position
		typ := token.INT
		if isFloat {
			typ = token.FLOAT
		}
		return token.Token{Type: typ, Literal: lit, Pos: pos}
	}

	l.errorf(pos, "unexpected character %q", l.ch)
	bad := string(l.ch)
	l.readChar()
	pos.End = l.position
	return token.Token{Type: token.ILLEGAL, Literal: bad, Pos: pos}
}

func (l *Lexer) simple(t token.Type, pos token.Position) token.Token {
	lit := string(l.ch)
	l.readChar()
	pos.End = l.position
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...interface{}) {
	if l.onError == nil {
		return
	}
	l.onError(pos, fmt.Sprintf(format, args...))
}

// readIdentifierToken reads one identifier-or-keyword word, then, if it
// resolved to a plain Identifier (not a keyword), greedily coalesces
// any following words that are separated only by spaces/tabs and are
// themselves plain identifiers, per spec §4.1.
func (l *Lexer) readIdentifierToken(pos token.Position) token.Token {
	word := l.readWord()
	kind := token.LookupIdent(word)
	if kind != token.IDENT {
		pos.End = l.position
		return token.Token{Type: kind, Literal: word, Pos: pos}
	}

	literal := word
	for {
		before := l.snap()
		l.skipSpacesTabsOnly()
		if !isIdentStart(l.ch) {
			l.restore(before)
			break
		}
		next := l.readWord()
		if token.LookupIdent(next) != token.IDENT {
			l.restore(before)
			break
		}
		literal = literal + " " + next
	}

	pos.End = l.position
	return token.Token{Type: token.IDENT, Literal: literal, Pos: pos}
}

func (l *Lexer) skipSpacesTabsOnly() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

func (l *Lexer) readWord() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString scans a "..." literal, decoding the recognized escapes
// (\n \t \r \0 \\ \") and reporting any other \x as a lex error that
// does not abort scanning (spec §4.1, §7). Newlines are permitted
// inside the literal and still advance the line counter.
func (l *Lexer) readString() string {
	startPos := l.currentPos()
	l.readChar() // consume opening quote
	var b strings.Builder

	for l.ch != '"' && l.ch != 0 {
		if l.atNewline() {
			b.WriteByte('\n')
			l.advanceNewline()
			continue
		}
		if l.ch == '\\' {
			escPos := l.currentPos()
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 0:
				l.errorf(escPos, "unterminated escape sequence at end of input")
				return b.String()
			default:
				l.errorf(escPos, "unknown escape sequence \\%c", l.ch)
				b.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch == '"' {
		l.readChar()
	} else {
		l.errorf(startPos, "unterminated string literal")
	}
	return b.String()
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}
