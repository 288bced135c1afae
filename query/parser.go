package query

import (
	"fmt"
	"regexp"

	"github.com/zac-garby/noteboks/tree"
)

// parseError aborts the current rule. The top-level loop turns it into
// a Diagnostic and resumes at the next top-level pattern, so one bad
// rule never takes the rest of the file down with it.
type parseError struct {
	pos Position
	msg string
}

func (e *parseError) Error() string { return e.msg }

func parseErrorf(pos Position, format string, args ...any) *parseError {
	return &parseError{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// Parser consumes tokens produced by the lexer and builds compiled
// rules, validating node types, fields, anchors, quantifiers and
// predicates against the language as it goes.
type Parser struct {
	tokens  []Token
	current int
	depth   int // open parens/brackets, for error recovery
	lang    *tree.Language

	rules        []*Rule
	diags        []Diagnostic
	captureNames []string
	captureIdx   map[string]int

	// per-rule state
	ordinal  int          // 1-based ordinal of the top-level pattern being parsed
	declared map[int]bool // captures declared so far in the current rule
	preds    []*Predicate
}

// NewParser creates a new Parser instance over a token stream.
func NewParser(tokens []Token, lang *tree.Language) *Parser {
	return &Parser{
		tokens:     tokens,
		lang:       lang,
		captureIdx: make(map[string]int),
	}
}

// Parse processes all tokens. Compiled rules and diagnostics are
// collected on the parser; a rule that fails to compile is skipped.
func (p *Parser) Parse() {
	for {
		tok := p.peek()
		if tok.Type == TokenEOF {
			return
		}
		p.ordinal++
		switch tok.Type {
		case TokenLParen, TokenLBracket, TokenString:
			p.parseRule()
		case TokenError:
			p.next()
			p.diag(tok.Pos, "%s", tok.Value)
		default:
			p.next()
			p.diag(tok.Pos, "top-level pattern must start with '(' or '['")
			p.recover()
		}
	}
}

// parseRule parses one top-level pattern with its predicates.
func (p *Parser) parseRule() {
	start := p.peek().Pos
	p.declared = make(map[int]bool)
	p.preds = nil

	pat, err := p.parsePatternItem()
	if err != nil {
		p.report(err)
		p.recover()
		return
	}
	if pat.Quant != QuantNone {
		p.diag(pat.Pos, "quantifier not allowed on a top-level pattern")
		return
	}

	p.rules = append(p.rules, &Rule{
		Index:      p.ordinal - 1,
		Pattern:    pat,
		Predicates: p.preds,
		Pos:        start,
	})
}

// parsePatternItem parses one pattern atom followed by its suffixes
// (a quantifier and any number of captures).
func (p *Parser) parsePatternItem() (*Pattern, error) {
	pat, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parseSuffixes(pat)
}

func (p *Parser) parseSuffixes(pat *Pattern) (*Pattern, error) {
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenQuestion, TokenStar:
			if pat.Quant != QuantNone {
				return nil, parseErrorf(tok.Pos, "multiple quantifiers on one pattern")
			}
			if tok.Type == TokenQuestion {
				pat.Quant = QuantZeroOrOne
			} else {
				pat.Quant = QuantZeroOrMore
			}
			p.next()
		case TokenPlus:
			return nil, parseErrorf(tok.Pos, "unsupported quantifier '+', use '?' or '*'")
		case TokenCapture:
			idx := p.internCapture(tok.Value)
			pat.Captures = append(pat.Captures, idx)
			p.declared[idx] = true
			p.next()
		default:
			return pat, nil
		}
	}
}

func (p *Parser) parseAtom() (*Pattern, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenLParen:
		return p.parseParen()
	case TokenLBracket:
		return p.parseAlternation()
	case TokenString:
		return p.parseAnonymous()
	case TokenIdent:
		if tok.Value == "_" {
			p.next()
			return &Pattern{Kind: KindWildcard, Pos: tok.Pos}, nil
		}
		return nil, parseErrorf(tok.Pos, "node type %q must be parenthesized", tok.Value)
	case TokenError:
		p.next()
		return nil, parseErrorf(tok.Pos, "%s", tok.Value)
	default:
		return nil, parseErrorf(tok.Pos, "expected a pattern, found %s", tok.Type)
	}
}

// parseParen handles both node patterns "(type ...)" and groups
// "((pattern) (#pred? ...))", told apart by the token after '('.
func (p *Parser) parseParen() (*Pattern, error) {
	open := p.next()
	switch tok := p.peek(); tok.Type {
	case TokenIdent:
		return p.parseNamedNode(open.Pos)
	case TokenLParen, TokenLBracket, TokenString:
		return p.parseGroup(open.Pos)
	case TokenPred:
		return nil, parseErrorf(tok.Pos, "predicate %q must follow a pattern inside a rule", tok.Value)
	case TokenRParen:
		return nil, parseErrorf(open.Pos, "empty pattern")
	case TokenError:
		p.next()
		return nil, parseErrorf(tok.Pos, "%s", tok.Value)
	default:
		return nil, parseErrorf(tok.Pos, "expected a node type, found %s", tok.Type)
	}
}

func (p *Parser) parseNamedNode(openPos Position) (*Pattern, error) {
	nameTok := p.next()
	pat := &Pattern{Pos: openPos}
	if nameTok.Value == "_" {
		pat.Kind = KindWildcard
		pat.NamedOnly = true
	} else {
		sym, ok := p.lang.Symbol(nameTok.Value)
		if !ok {
			return nil, parseErrorf(nameTok.Pos, "unknown node type %q", nameTok.Value)
		}
		pat.Kind = KindNode
		pat.Symbol = sym
	}
	if err := p.parseChildren(pat); err != nil {
		return nil, err
	}
	return pat, nil
}

// parseChildren parses the body of a node pattern up to the closing
// paren: child sub-patterns, field constraints, anchors and predicate
// forms.
func (p *Parser) parseChildren(pat *Pattern) error {
	var prev *Pattern
	pendingAnchor := false
	var anchorPos Position

	for {
		tok := p.peek()
		switch tok.Type {
		case TokenRParen:
			if pendingAnchor {
				if prev == nil {
					return parseErrorf(anchorPos, "anchor needs an adjacent sibling pattern")
				}
				if prev.Kind == KindAnon {
					return parseErrorf(anchorPos, "anonymous node cannot be anchored")
				}
				prev.AnchorRight = true
			}
			p.next()
			return nil

		case TokenAnchor:
			if pendingAnchor {
				return parseErrorf(tok.Pos, "duplicate anchor")
			}
			pendingAnchor = true
			anchorPos = tok.Pos
			p.next()

		case TokenField:
			fid, ok := p.lang.Field(tok.Value)
			if !ok {
				return parseErrorf(tok.Pos, "unknown field %q", tok.Value)
			}
			if pat.Kind == KindNode && !p.lang.TypeHasField(pat.Symbol, fid) {
				return parseErrorf(tok.Pos, "node type %q has no field %q",
					p.lang.SymbolName(pat.Symbol), tok.Value)
			}
			p.next()
			child, err := p.parsePatternItem()
			if err != nil {
				return err
			}
			if child.Kind == KindAnon {
				return parseErrorf(tok.Pos, "anonymous node cannot carry a field constraint")
			}
			child.Field = fid
			prev, err = p.addChild(pat, child, prev, pendingAnchor, anchorPos)
			if err != nil {
				return err
			}
			pendingAnchor = false

		case TokenLParen:
			if p.peekAt(1).Type == TokenPred {
				if err := p.parsePredicate(); err != nil {
					return err
				}
				continue
			}
			fallthrough
		case TokenLBracket, TokenString, TokenIdent:
			child, err := p.parsePatternItem()
			if err != nil {
				return err
			}
			prev, err = p.addChild(pat, child, prev, pendingAnchor, anchorPos)
			if err != nil {
				return err
			}
			pendingAnchor = false

		case TokenCapture:
			return parseErrorf(tok.Pos, "capture @%s must follow a pattern", tok.Value)
		case TokenError:
			p.next()
			return parseErrorf(tok.Pos, "%s", tok.Value)
		case TokenEOF:
			return parseErrorf(pat.Pos, "unbalanced parentheses")
		default:
			return parseErrorf(tok.Pos, "unexpected %s in pattern", tok.Type)
		}
	}
}

// addChild applies a pending anchor to the new child and appends it.
// Anchors relate node patterns; anonymous tokens cannot be anchored.
func (p *Parser) addChild(pat, child, prev *Pattern, pendingAnchor bool, anchorPos Position) (*Pattern, error) {
	if pendingAnchor {
		if child.Kind == KindAnon || (prev != nil && prev.Kind == KindAnon) {
			return nil, parseErrorf(anchorPos, "anonymous node cannot be anchored")
		}
		child.AnchorLeft = true
		if prev != nil {
			prev.AnchorRight = true
		}
	}
	pat.Children = append(pat.Children, child)
	return child, nil
}

// parseGroup parses "((pattern) (#pred? ...) ...)" after the opening
// paren. A group wraps exactly one pattern; predicate forms may appear
// before or after it.
func (p *Parser) parseGroup(openPos Position) (*Pattern, error) {
	var inner *Pattern
	for {
		tok := p.peek()
		if tok.Type == TokenRParen {
			p.next()
			if inner == nil {
				return nil, parseErrorf(openPos, "group must contain a pattern")
			}
			return inner, nil
		}
		if tok.Type == TokenEOF {
			return nil, parseErrorf(openPos, "unbalanced parentheses")
		}
		if tok.Type == TokenError {
			p.next()
			return nil, parseErrorf(tok.Pos, "%s", tok.Value)
		}
		if tok.Type == TokenLParen && p.peekAt(1).Type == TokenPred {
			if err := p.parsePredicate(); err != nil {
				return nil, err
			}
			continue
		}
		if tok.Type == TokenField {
			return nil, parseErrorf(tok.Pos, "field name not allowed in a group")
		}
		if tok.Type == TokenAnchor {
			return nil, parseErrorf(tok.Pos, "anchor not allowed in a group; anchors sit between children of a node pattern")
		}
		if inner != nil {
			return nil, parseErrorf(tok.Pos, "group may contain only one pattern")
		}
		child, err := p.parsePatternItem()
		if err != nil {
			return nil, err
		}
		inner = child
	}
}

func (p *Parser) parseAnonymous() (*Pattern, error) {
	tok := p.next()
	sym, ok := p.lang.AnonymousSymbol(tok.Value)
	if !ok {
		return nil, parseErrorf(tok.Pos, "unknown token %q", tok.Value)
	}
	return &Pattern{Kind: KindAnon, Symbol: sym, Literal: tok.Value, Pos: tok.Pos}, nil
}

// parseAlternation parses "[...]": a set of alternative patterns tried
// in order at match time.
func (p *Parser) parseAlternation() (*Pattern, error) {
	open := p.next()
	alt := &Pattern{Kind: KindAlt, Pos: open.Pos}
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenRBracket:
			p.next()
			if len(alt.Alts) == 0 {
				return nil, parseErrorf(open.Pos, "empty alternation")
			}
			return alt, nil
		case TokenAnchor:
			return nil, parseErrorf(tok.Pos, "anchor not allowed inside an alternation")
		case TokenField:
			return nil, parseErrorf(tok.Pos, "field name not allowed inside an alternation")
		case TokenEOF:
			return nil, parseErrorf(open.Pos, "unbalanced brackets")
		case TokenLParen:
			if p.peekAt(1).Type == TokenPred {
				return nil, parseErrorf(tok.Pos, "predicate not allowed inside an alternation")
			}
			fallthrough
		default:
			member, err := p.parsePatternItem()
			if err != nil {
				return nil, err
			}
			if member.Quant != QuantNone {
				return nil, parseErrorf(member.Pos, "quantifier not allowed inside an alternation; apply it to the whole alternation")
			}
			alt.Alts = append(alt.Alts, member)
		}
	}
}

type predOperand struct {
	capture   int
	literal   string
	isCapture bool
	pos       Position
}

// parsePredicate parses "(#name? operands...)" and attaches the
// compiled predicate to the current rule. Operand captures must
// already be declared earlier in the same rule.
func (p *Parser) parsePredicate() error {
	p.next() // '('
	nameTok := p.next()
	var operands []predOperand
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenRParen:
			p.next()
			pred, err := p.buildPredicate(nameTok, operands)
			if err != nil {
				return err
			}
			p.preds = append(p.preds, pred)
			return nil
		case TokenCapture:
			idx, ok := p.captureIdx[tok.Value]
			if !ok || !p.declared[idx] {
				return parseErrorf(tok.Pos, "predicate references undeclared capture @%s", tok.Value)
			}
			operands = append(operands, predOperand{capture: idx, isCapture: true, pos: tok.Pos})
			p.next()
		case TokenString:
			operands = append(operands, predOperand{literal: tok.Value, pos: tok.Pos})
			p.next()
		case TokenEOF:
			return parseErrorf(nameTok.Pos, "unbalanced parentheses")
		case TokenError:
			p.next()
			return parseErrorf(tok.Pos, "%s", tok.Value)
		default:
			return parseErrorf(tok.Pos, "unexpected %s in predicate", tok.Type)
		}
	}
}

func (p *Parser) buildPredicate(name Token, operands []predOperand) (*Predicate, error) {
	pred := &Predicate{Pos: name.Pos, Other: -1}
	switch name.Value {
	case "match?":
		pred.Kind = PredMatch
		if len(operands) != 2 || !operands[0].isCapture || operands[1].isCapture {
			return nil, parseErrorf(name.Pos, "match? takes a capture and a regex string")
		}
		re, err := regexp.Compile(operands[1].literal)
		if err != nil {
			return nil, parseErrorf(operands[1].pos, "invalid regex %q: %v", operands[1].literal, err)
		}
		pred.Capture = operands[0].capture
		pred.Regex = re

	case "eq?", "not-eq?":
		if name.Value == "eq?" {
			pred.Kind = PredEq
		} else {
			pred.Kind = PredNotEq
		}
		if len(operands) != 2 || !operands[0].isCapture {
			return nil, parseErrorf(name.Pos, "%s takes a capture and a capture or string", name.Value)
		}
		pred.Capture = operands[0].capture
		if operands[1].isCapture {
			pred.Other = operands[1].capture
		} else {
			pred.Literal = operands[1].literal
		}

	case "any-of?", "not-any-of?":
		if name.Value == "any-of?" {
			pred.Kind = PredAnyOf
		} else {
			pred.Kind = PredNotAnyOf
		}
		if len(operands) < 2 || !operands[0].isCapture {
			return nil, parseErrorf(name.Pos, "%s takes a capture and one or more strings", name.Value)
		}
		pred.Capture = operands[0].capture
		for _, op := range operands[1:] {
			if op.isCapture {
				return nil, parseErrorf(op.pos, "%s set members must be strings", name.Value)
			}
			pred.Choices = append(pred.Choices, op.literal)
		}

	default:
		return nil, parseErrorf(name.Pos, "unknown predicate %q", name.Value)
	}
	return pred, nil
}

func (p *Parser) internCapture(name string) int {
	if idx, ok := p.captureIdx[name]; ok {
		return idx
	}
	idx := len(p.captureNames)
	p.captureNames = append(p.captureNames, name)
	p.captureIdx[name] = idx
	return idx
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

// peekAt looks k tokens ahead of the current one.
func (p *Parser) peekAt(k int) Token {
	if p.current+k >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current+k]
}

// next consumes and returns the current token, tracking bracket depth
// for error recovery.
func (p *Parser) next() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	switch tok.Type {
	case TokenLParen, TokenLBracket:
		p.depth++
	case TokenRParen, TokenRBracket:
		if p.depth > 0 {
			p.depth--
		}
	}
	return tok
}

// recover skips tokens until the bracket depth returns to zero, the
// point where the next top-level pattern can start.
func (p *Parser) recover() {
	for p.depth > 0 && p.peek().Type != TokenEOF {
		p.next()
	}
}

func (p *Parser) report(err error) {
	if pe, ok := err.(*parseError); ok {
		p.diag(pe.pos, "%s", pe.msg)
		return
	}
	p.diag(Position{Line: 1, Column: 1}, "%v", err)
}

func (p *Parser) diag(pos Position, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Rule:    p.ordinal,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}
