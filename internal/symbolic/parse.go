package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

// Parse reads an expression such as "dx_0 - x_1" or "e_0 - r*exp(f_0)".
// A single top-level "=" is accepted and yields lhs - rhs.
func Parse(s string) (Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{input: s, tokens: toks}
	e, err := p.equation()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return e, nil
}

// MustParse is Parse that panics on error. Intended for literals.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseList reads comma separated expressions.
func ParseList(s string) ([]Expr, error) {
	var out []Expr
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				e, err := Parse(s[start:i])
				if err != nil {
					return nil, err
				}
				out = append(out, e)
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) == "" && len(out) == 0 {
		return nil, nil
	}
	e, err := Parse(s[start:])
	if err != nil {
		return nil, err
	}
	return append(out, e), nil
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		r, _ := utf8.DecodeRuneInString(s[i:])
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			j := i
			for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
				j++
			}
			if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
				k := j + 1
				if k < len(s) && (s[k] == '+' || s[k] == '-') {
					k++
				}
				if k < len(s) && isDigit(s[k]) {
					for k < len(s) && isDigit(s[k]) {
						k++
					}
					j = k
				}
			}
			toks = append(toks, token{kind: tokNum, text: s[i:j], pos: i})
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := i
			for j < len(s) {
				q, n := utf8.DecodeRuneInString(s[j:])
				if q != '_' && !unicode.IsLetter(q) && !unicode.IsDigit(q) {
					break
				}
				j += n
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j], pos: i})
			i = j
		case c == '*' && i+1 < len(s) && s[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case strings.IndexByte("+-*/^()=", c) >= 0:
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return nil, &SyntaxError{Input: s, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(op string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(t token, msg string, args ...any) error {
	msg = fmt.Sprintf(msg, args...)
	if t.kind == tokEOF {
		msg = "unexpected end of input"
	}
	return &SyntaxError{Input: p.input, Pos: t.pos, Msg: msg}
}

func (p *parser) equation() (Expr, error) {
	lhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.accept("=") {
		return lhs, nil
	}
	rhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	return Sub(lhs, rhs), nil
}

func (p *parser) expr() (Expr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for {
		switch {
		case p.accept("+"):
			t, err := p.term()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		case p.accept("-"):
			t, err := p.term()
			if err != nil {
				return nil, err
			}
			terms = append(terms, Neg(t))
		default:
			return Add(terms...), nil
		}
	}
}

func (p *parser) term() (Expr, error) {
	acc, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("*"):
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			acc = Mul(acc, f)
		case p.accept("/"):
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			if isZeroNum(f) {
				return nil, p.errorf(p.tokens[p.pos-1], "division by zero")
			}
			acc = Div(acc, f)
		default:
			return acc, nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.accept("-") {
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	if p.accept("+") {
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.accept("**") || p.accept("^") {
		op := p.tokens[p.pos-1]
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		if n, ok := IsNumber(e); ok && n.Sign() < 0 && isZeroNum(base) {
			return nil, p.errorf(op, "division by zero")
		}
		return Pow(base, e), nil
	}
	return base, nil
}

func isZeroNum(e Expr) bool {
	n, ok := IsNumber(e)
	return ok && n.Sign() == 0
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, p.errorf(t, "bad number %q", t.text)
		}
		return NewNum(r), nil
	case tokIdent:
		if !p.accept("(") {
			return Sym(t.text), nil
		}
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, p.errorf(p.peek(), "expected )")
		}
		switch t.text {
		case "exp":
			return Exp(arg), nil
		case "log", "ln":
			return Log(arg), nil
		case "sqrt":
			return Pow(arg, Rat(1, 2)), nil
		}
		return nil, p.errorf(t, "unknown function %q", t.text)
	case tokOp:
		if t.text == "(" {
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			if !p.accept(")") {
				return nil, p.errorf(p.peek(), "expected )")
			}
			return e, nil
		}
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}
