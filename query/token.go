package query

import "fmt"

// TokenType identifies the lexical class of a token in rule source.
type TokenType int

const (
	TokenLParen   TokenType = iota // '('
	TokenRParen                    // ')'
	TokenLBracket                  // '['
	TokenRBracket                  // ']'
	TokenIdent                     // node type name or '_' wildcard
	TokenField                     // identifier followed by ':', value excludes the colon
	TokenString                    // quoted literal, value is the unescaped text
	TokenCapture                   // @name, value excludes the '@'
	TokenPred                      // #name? opener, value excludes the '#'
	TokenAnchor                    // '.'
	TokenQuestion                  // '?'
	TokenStar                      // '*'
	TokenPlus                      // '+'
	TokenError                     // lexical problem, value holds the message
	TokenEOF                       // end of input
)

func (t TokenType) String() string {
	switch t {
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenIdent:
		return "identifier"
	case TokenField:
		return "field name"
	case TokenString:
		return "string"
	case TokenCapture:
		return "capture"
	case TokenPred:
		return "predicate"
	case TokenAnchor:
		return "'.'"
	case TokenQuestion:
		return "'?'"
	case TokenStar:
		return "'*'"
	case TokenPlus:
		return "'+'"
	case TokenError:
		return "error"
	case TokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

// Position locates a token in rule source. Line and Column are
// 1-based; Offset is the byte offset from the start of the source.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token with its source position.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}
