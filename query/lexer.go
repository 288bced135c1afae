package query

import (
	"fmt"
	"strings"
)

// Lexer scans rule source text into tokens: parenthesized node
// patterns, [...] alternations, "..." literal tokens, field: prefixes,
// @capture names, #predicate? openers, '.' anchors and '?'/'*'/'+'
// quantifiers. Comments run from ';' to the end of the line.
type Lexer struct {
	input  string
	offset int
	line   int
	column int
	tokens []Token
}

// NewLexer returns a new Lexer over the given rule source.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
	}
}

// Tokenize processes the entire input and returns the token list,
// always terminated by a TokenEOF. Lexical problems become TokenError
// entries carrying a message; the parser turns them into rule
// diagnostics rather than aborting the whole scan.
func (l *Lexer) Tokenize() []Token {
	for l.offset < len(l.input) {
		pos := l.pos()
		switch c := l.input[l.offset]; {
		case c == ';':
			l.skipComment()

		case isSpace(c):
			l.advance()

		case c == '(':
			l.addToken(TokenLParen, "(", pos)
			l.advance()

		case c == ')':
			l.addToken(TokenRParen, ")", pos)
			l.advance()

		case c == '[':
			l.addToken(TokenLBracket, "[", pos)
			l.advance()

		case c == ']':
			l.addToken(TokenRBracket, "]", pos)
			l.advance()

		case c == '"':
			l.lexString(pos)

		case c == '@':
			l.lexCapture(pos)

		case c == '#':
			l.lexPredicateName(pos)

		case c == '.':
			l.addToken(TokenAnchor, ".", pos)
			l.advance()

		case c == '?':
			l.addToken(TokenQuestion, "?", pos)
			l.advance()

		case c == '*':
			l.addToken(TokenStar, "*", pos)
			l.advance()

		case c == '+':
			l.addToken(TokenPlus, "+", pos)
			l.advance()

		case isIdentChar(c):
			l.lexIdent(pos)

		default:
			l.addToken(TokenError, fmt.Sprintf("unexpected character %q", c), pos)
			l.advance()
		}
	}

	l.addToken(TokenEOF, "", l.pos())
	return l.tokens
}

// lexIdent scans a node type name or wildcard. An identifier directly
// followed by ':' is a field name and consumes the colon.
func (l *Lexer) lexIdent(pos Position) {
	start := l.offset
	for l.offset < len(l.input) && isIdentChar(l.input[l.offset]) {
		l.advance()
	}
	name := l.input[start:l.offset]

	if l.offset < len(l.input) && l.input[l.offset] == ':' {
		l.advance()
		l.addToken(TokenField, name, pos)
		return
	}
	l.addToken(TokenIdent, name, pos)
}

// lexCapture scans an @name capture reference. Capture names may be
// dotted, e.g. @markup.heading.1. A '.' belongs to the name only when
// another name character follows, so "@x." is the capture x and an
// anchor.
func (l *Lexer) lexCapture(pos Position) {
	l.advance() // '@'
	start := l.offset
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		if c == '.' {
			if l.offset+1 >= len(l.input) || !isIdentChar(l.input[l.offset+1]) {
				break
			}
		} else if !isCaptureChar(c) {
			break
		}
		l.advance()
	}
	if l.offset == start {
		l.addToken(TokenError, "'@' must be followed by a capture name", pos)
		return
	}
	l.addToken(TokenCapture, l.input[start:l.offset], pos)
}

// lexPredicateName scans a #name? or #name! opener. The trailing '?'
// or '!' is part of the name so the parser can tell predicates from
// directives.
func (l *Lexer) lexPredicateName(pos Position) {
	l.advance() // '#'
	start := l.offset
	for l.offset < len(l.input) && isPredNameChar(l.input[l.offset]) {
		l.advance()
	}
	if l.offset < len(l.input) && (l.input[l.offset] == '?' || l.input[l.offset] == '!') {
		l.advance()
	}
	if l.offset == start {
		l.addToken(TokenError, "'#' must be followed by a predicate name", pos)
		return
	}
	l.addToken(TokenPred, l.input[start:l.offset], pos)
}

// lexString scans a double-quoted literal, unescaping \", \\, \n and
// \t. Unknown escapes are kept verbatim. An unterminated string
// produces a TokenError at its opening quote.
func (l *Lexer) lexString(pos Position) {
	l.advance() // opening '"'
	var sb strings.Builder
	for l.offset < len(l.input) {
		c := l.input[l.offset]
		switch c {
		case '"':
			l.advance()
			l.addToken(TokenString, sb.String(), pos)
			return
		case '\\':
			l.advance()
			if l.offset >= len(l.input) {
				l.addToken(TokenError, "unterminated string", pos)
				return
			}
			switch e := l.input[l.offset]; e {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
			l.advance()
		case '\n':
			l.addToken(TokenError, "unterminated string", pos)
			return
		default:
			sb.WriteByte(c)
			l.advance()
		}
	}
	l.addToken(TokenError, "unterminated string", pos)
}

// skipComment consumes from ';' to the end of the line.
func (l *Lexer) skipComment() {
	for l.offset < len(l.input) && l.input[l.offset] != '\n' {
		l.advance()
	}
}

// advance moves past the current byte, tracking line and column.
func (l *Lexer) advance() {
	if l.offset < len(l.input) && l.input[l.offset] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.offset++
}

func (l *Lexer) pos() Position {
	return Position{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *Lexer) addToken(tokenType TokenType, value string, pos Position) {
	l.tokens = append(l.tokens, Token{
		Type:  tokenType,
		Value: value,
		Pos:   pos,
	})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isIdentChar covers node type and field names: lowercase grammar
// identifiers plus digits and underscores. '_' alone is the wildcard.
func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// isCaptureChar additionally allows '.' and '-' for hierarchical
// capture names.
func isCaptureChar(c byte) bool {
	return isIdentChar(c) || c == '.' || c == '-'
}

func isPredNameChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
