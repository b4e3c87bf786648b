// Package verdict evaluates administrator-authored pass/fail rules over a
// restricted expression grammar: the identifiers score, constraint_violations
// and submissions_count, numeric literals, comparison operators and boolean
// connectives. Expressions are parsed to a small AST; no string execution.
package verdict

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Inputs are the only identifiers a rule may reference.
type Inputs struct {
	Score                int
	ConstraintViolations int
	SubmissionsCount     int
}

type Rule struct {
	Expression string
	Verdict    string
	Message    string
}

// Evaluate applies rules in declaration order, first match wins. A rule that
// fails to compile aborts evaluation with an error rather than being skipped,
// so a bad admin rule is visible instead of silently dead.
func Evaluate(rules []Rule, in Inputs) (string, string, bool, error) {
	for _, rule := range rules {
		matched, err := Eval(rule.Expression, in)
		if err != nil {
			return "", "", false, fmt.Errorf("rule %q: %w", rule.Expression, err)
		}
		if matched {
			return rule.Verdict, rule.Message, true, nil
		}
	}
	return "", "", false, nil
}

// Eval compiles and evaluates a single expression.
func Eval(expression string, in Inputs) (bool, error) {
	node, err := Parse(expression)
	if err != nil {
		return false, err
	}
	return node.evalBool(in)
}

// --- allow-list check ---

func checkCharset(expr string) error {
	for _, r := range expr {
		switch {
		case unicode.IsLower(r), unicode.IsDigit(r):
		case r == '_' || r == ' ' || r == '\t':
		case r == '<' || r == '>' || r == '=' || r == '!':
		case r == '&' || r == '|' || r == '(' || r == ')':
		default:
			return fmt.Errorf("character %q is not allowed in verdict expressions", r)
		}
	}
	return nil
}

// --- lexer ---

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokOp     // < <= > >= == !=
	tokAnd    // &&
	tokOr     // ||
	tokNot    // !
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

func lex(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= 'a' && c <= 'z', c == '_':
			j := i
			for j < len(expr) && (expr[j] == '_' || (expr[j] >= 'a' && expr[j] <= 'z') || (expr[j] >= '0' && expr[j] <= '9')) {
				j++
			}
			tokens = append(tokens, token{tokIdent, expr[i:j]})
			i = j
		case c >= '0' && c <= '9':
			j := i
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			tokens = append(tokens, token{tokNumber, expr[i:j]})
			i = j
		case c == '&':
			if i+1 >= len(expr) || expr[i+1] != '&' {
				return nil, fmt.Errorf("single '&' at position %d", i)
			}
			tokens = append(tokens, token{tokAnd, "&&"})
			i += 2
		case c == '|':
			if i+1 >= len(expr) || expr[i+1] != '|' {
				return nil, fmt.Errorf("single '|' at position %d", i)
			}
			tokens = append(tokens, token{tokOr, "||"})
			i += 2
		case c == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case c == '<' || c == '>':
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, expr[i : i+2]})
				i += 2
			} else {
				tokens = append(tokens, token{tokOp, string(c)})
				i++
			}
		case c == '=':
			if i+1 >= len(expr) || expr[i+1] != '=' {
				return nil, fmt.Errorf("single '=' at position %d", i)
			}
			tokens = append(tokens, token{tokOp, "=="})
			i += 2
		case c == '!':
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, "!="})
				i += 2
			} else {
				tokens = append(tokens, token{tokNot, "!"})
				i++
			}
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	tokens = append(tokens, token{tokEOF, ""})
	return tokens, nil
}

// --- AST ---

type Node interface {
	evalBool(in Inputs) (bool, error)
}

type numNode struct {
	value int
}

type identNode struct {
	name string
}

type cmpNode struct {
	op          string
	left, right valueNode
}

type boolNode struct {
	op          string // "&&" | "||"
	left, right Node
}

type notNode struct {
	inner Node
}

// valueNode is the numeric side of the grammar.
type valueNode interface {
	evalInt(in Inputs) (int, error)
}

func (n numNode) evalInt(Inputs) (int, error) { return n.value, nil }

func (n identNode) evalInt(in Inputs) (int, error) {
	switch n.name {
	case "score":
		return in.Score, nil
	case "constraint_violations":
		return in.ConstraintViolations, nil
	case "submissions_count":
		return in.SubmissionsCount, nil
	default:
		return 0, fmt.Errorf("unknown identifier %q", n.name)
	}
}

func (n numNode) evalBool(Inputs) (bool, error) {
	return false, fmt.Errorf("bare number is not a condition")
}

func (n identNode) evalBool(Inputs) (bool, error) {
	return false, fmt.Errorf("bare identifier %q is not a condition", n.name)
}

func (n cmpNode) evalBool(in Inputs) (bool, error) {
	l, err := n.left.evalInt(in)
	if err != nil {
		return false, err
	}
	r, err := n.right.evalInt(in)
	if err != nil {
		return false, err
	}
	switch n.op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	default:
		return false, fmt.Errorf("unknown operator %q", n.op)
	}
}

func (n boolNode) evalBool(in Inputs) (bool, error) {
	l, err := n.left.evalBool(in)
	if err != nil {
		return false, err
	}
	if n.op == "&&" && !l {
		return false, nil
	}
	if n.op == "||" && l {
		return true, nil
	}
	return n.right.evalBool(in)
}

func (n notNode) evalBool(in Inputs) (bool, error) {
	v, err := n.inner.evalBool(in)
	if err != nil {
		return false, err
	}
	return !v, nil
}

// --- parser (precedence: || < && < ! < comparison) ---

type parser struct {
	tokens []token
	pos    int
}

// Parse validates the expression against the allow-list and builds its AST.
func Parse(expression string) (Node, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	if err := checkCharset(expr); err != nil {
		return nil, err
	}
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q", p.peek().text)
	}
	return node, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = boolNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = boolNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.next()
		return inner, nil
	}

	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator after value")
	}
	op := p.next().text
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return cmpNode{op: op, left: left, right: right}, nil
}

func (p *parser) parseValue() (valueNode, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		switch t.text {
		case "score", "constraint_violations", "submissions_count":
			return identNode{name: t.text}, nil
		default:
			return nil, fmt.Errorf("unknown identifier %q", t.text)
		}
	case tokNumber:
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", t.text)
		}
		return numNode{value: n}, nil
	default:
		return nil, fmt.Errorf("expected identifier or number, got %q", t.text)
	}
}
