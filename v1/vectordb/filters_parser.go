package vectordb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseWhere parses a SQL-like boolean filter expression.
//
// Supported syntax:
//
//	field = 'text'          field != 3        field <> 3
//	field < 1.5             field <= 2        field > 0     field >= 10
//	field IN ('a', 'b')     field NOT IN (1, 2)
//	field IS NULL           field IS NOT NULL
//	field LIKE 'abc%'       field NOT LIKE '%x'
//	flag                    (shorthand for flag = TRUE)
//	a = 1 AND (b = 2 OR NOT c = 3)
//
// Fields are bare identifiers, "double quoted" or `backticked`, and may be dotted paths
// into json columns (meta.author). Literals are 'single quoted' strings ('' escapes a
// quote), numbers, TRUE and FALSE. Keywords are case-insensitive. A literal on the
// left-hand side of a comparison is moved to the right.
//
// An empty or blank expression returns (nil, nil). Errors wrap ErrInvalidFilter.
func ParseWhere(input string) (FilterExpr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	tokens, err := lexWhere(input)
	if err != nil {
		return nil, err
	}
	p := &whereParser{input: input, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s", tok.describe())
	}
	return expr, nil
}

// ── Lexer ───────────────────────────────────────────────────────────────────

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokString:
		return fmt.Sprintf("string '%s'", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// keyword reports whether an unquoted identifier token is the given keyword.
func (t token) keyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

var reservedWords = map[string]struct{}{
	"AND": {}, "OR": {}, "NOT": {}, "IN": {}, "IS": {}, "NULL": {}, "LIKE": {}, "TRUE": {}, "FALSE": {},
}

func lexWhere(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	errAt := func(pos int, msg string) error {
		return fmt.Errorf("%w: %s at position %d in %q", ErrInvalidFilter, msg, pos, input)
	}

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		case r == '\'':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						sb.WriteRune('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, errAt(start, "unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokString, text: sb.String(), pos: start})

		case r == '"' || r == '`':
			start := i
			quote := r
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == quote {
					if i+1 < len(runes) && runes[i+1] == quote {
						sb.WriteRune(quote)
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, errAt(start, "unterminated quoted identifier")
			}
			if sb.Len() == 0 {
				return nil, errAt(start, "empty quoted identifier")
			}
			tokens = append(tokens, token{kind: tokQuotedIdent, text: sb.String(), pos: start})

		case unicode.IsDigit(r) || (r == '-' || r == '.') && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			start := i
			i++
			for i < len(runes) {
				c := runes[i]
				if unicode.IsDigit(c) || c == '.' {
					i++
					continue
				}
				if (c == 'e' || c == 'E') && i+1 < len(runes) {
					i++
					if runes[i] == '+' || runes[i] == '-' {
						i++
					}
					continue
				}
				break
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i]), pos: start})

		case r == '.':
			tokens = append(tokens, token{kind: tokDot, text: ".", pos: i})
			i++

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '$') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})

		case strings.ContainsRune("=!<>", r):
			start := i
			op := string(r)
			if i+1 < len(runes) {
				two := string(runes[i : i+2])
				switch two {
				case "==", "!=", "<>", "<=", ">=":
					op = two
				}
			}
			if op == "!" {
				return nil, errAt(start, "unexpected '!'")
			}
			i += len([]rune(op))
			tokens = append(tokens, token{kind: tokOp, text: op, pos: start})

		default:
			return nil, errAt(i, fmt.Sprintf("unexpected character %q", r))
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}

// ── Parser ──────────────────────────────────────────────────────────────────

type whereParser struct {
	input  string
	tokens []token
	pos    int
}

func (p *whereParser) peek() token {
	return p.tokens[p.pos]
}

func (p *whereParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *whereParser) errorf(tok token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at position %d in %q", ErrInvalidFilter, fmt.Sprintf(format, args...), tok.pos, p.input)
}

func (p *whereParser) parseOr() (FilterExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *whereParser) parseAnd() (FilterExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().keyword("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *whereParser) parseNot() (FilterExpr, error) {
	if p.peek().keyword("NOT") {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{Expr: inner}, nil
	}
	return p.parsePredicate()
}

// operand is either a field path or a literal value.
type operand struct {
	field   FieldPath
	value   any
	isNull  bool
	isField bool
	tok     token
}

func (p *whereParser) parsePredicate() (FilterExpr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tokRParen {
			return nil, p.errorf(tok, "expected ')' but found %s", tok.describe())
		}
		return expr, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	switch {
	case tok.kind == tokOp:
		p.next()
		op := normalizeOp(tok.text)
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return p.buildComparison(left, op, right, tok)

	case tok.keyword("IS"):
		if !left.isField {
			return nil, p.errorf(tok, "IS requires a field on the left-hand side")
		}
		p.next()
		negate := false
		if p.peek().keyword("NOT") {
			p.next()
			negate = true
		}
		if nullTok := p.next(); !nullTok.keyword("NULL") {
			return nil, p.errorf(nullTok, "expected NULL but found %s", nullTok.describe())
		}
		return &NullCheck{Field: left.field, Negate: negate}, nil

	case tok.keyword("IN"), tok.keyword("NOT"), tok.keyword("LIKE"):
		if !left.isField {
			return nil, p.errorf(tok, "%s requires a field on the left-hand side", strings.ToUpper(tok.text))
		}
		negate := false
		if tok.keyword("NOT") {
			p.next()
			negate = true
			tok = p.peek()
		}
		switch {
		case tok.keyword("IN"):
			p.next()
			values, err := p.parseList()
			if err != nil {
				return nil, err
			}
			return &InList{Field: left.field, Values: values, Negate: negate}, nil
		case tok.keyword("LIKE"):
			p.next()
			pattern, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			s, ok := pattern.value.(string)
			if pattern.isField || !ok {
				return nil, p.errorf(pattern.tok, "LIKE requires a string pattern")
			}
			var expr FilterExpr = &Comparison{Field: left.field, Op: OpLike, Value: s}
			if negate {
				expr = &Not{Expr: expr}
			}
			return expr, nil
		default:
			return nil, p.errorf(tok, "expected IN or LIKE after NOT but found %s", tok.describe())
		}

	default:
		if left.isField {
			// A bare field is a boolean test.
			return &Comparison{Field: left.field, Op: OpEq, Value: true}, nil
		}
		if b, ok := left.value.(bool); ok && !left.isNull {
			return nil, p.errorf(left.tok, "constant %v is not a valid filter", b)
		}
		return nil, p.errorf(tok, "expected an operator after %s but found %s", left.tok.describe(), tok.describe())
	}
}

func (p *whereParser) buildComparison(left operand, op CompareOp, right operand, opTok token) (FilterExpr, error) {
	if left.isNull || right.isNull {
		return nil, p.errorf(opTok, "NULL can only be compared with IS NULL or IS NOT NULL")
	}
	switch {
	case left.isField && !right.isField:
		return &Comparison{Field: left.field, Op: op, Value: right.value}, nil
	case !left.isField && right.isField:
		return &Comparison{Field: right.field, Op: op.flip(), Value: left.value}, nil
	case left.isField && right.isField:
		return nil, p.errorf(opTok, "comparing two fields is not supported")
	default:
		return nil, p.errorf(opTok, "comparison requires a field")
	}
}

func normalizeOp(text string) CompareOp {
	switch text {
	case "=", "==":
		return OpEq
	case "!=", "<>":
		return OpNe
	default:
		return CompareOp(text)
	}
}

func (p *whereParser) parseOperand() (operand, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return operand{value: tok.text, tok: tok}, nil

	case tokNumber:
		v, err := parseNumber(tok.text)
		if err != nil {
			return operand{}, p.errorf(tok, "invalid number %q", tok.text)
		}
		return operand{value: v, tok: tok}, nil

	case tokIdent:
		switch {
		case tok.keyword("TRUE"):
			return operand{value: true, tok: tok}, nil
		case tok.keyword("FALSE"):
			return operand{value: false, tok: tok}, nil
		case tok.keyword("NULL"):
			return operand{isNull: true, tok: tok}, nil
		}
		if _, reserved := reservedWords[strings.ToUpper(tok.text)]; reserved {
			return operand{}, p.errorf(tok, "unexpected keyword %s", strings.ToUpper(tok.text))
		}
		return p.parsePath(tok)

	case tokQuotedIdent:
		return p.parsePath(tok)

	default:
		return operand{}, p.errorf(tok, "unexpected %s", tok.describe())
	}
}

func (p *whereParser) parsePath(first token) (operand, error) {
	path := FieldPath{first.text}
	for p.peek().kind == tokDot {
		p.next()
		seg := p.next()
		if seg.kind != tokIdent && seg.kind != tokQuotedIdent {
			return operand{}, p.errorf(seg, "expected a field name after '.' but found %s", seg.describe())
		}
		path = append(path, seg.text)
	}
	return operand{field: path, isField: true, tok: first}, nil
}

func (p *whereParser) parseList() ([]any, error) {
	if tok := p.next(); tok.kind != tokLParen {
		return nil, p.errorf(tok, "expected '(' but found %s", tok.describe())
	}
	var values []any
	for {
		item, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if item.isField || item.isNull {
			return nil, p.errorf(item.tok, "IN lists may only contain literals")
		}
		values = append(values, item.value)

		tok := p.next()
		if tok.kind == tokRParen {
			return values, nil
		}
		if tok.kind != tokComma {
			return nil, p.errorf(tok, "expected ',' or ')' but found %s", tok.describe())
		}
	}
}

func parseNumber(text string) (any, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}
