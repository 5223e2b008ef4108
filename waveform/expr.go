package waveform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	apperr "github.com/iwtcode/spiroBench/pkg/errors"
)

const (
	MaxExprLength = 256
	MaxExprDepth  = 32
)

// Env - значения переменных выражения.
type Env struct {
	T float64 // прошедшее время, с
	A float64 // амплитуда, мм
	V float64 // доля скорости
}

// Expr - скомпилированное пользовательское выражение.
// Доступны только t, A, V, pi, e и фиксированный набор функций.
type Expr struct {
	src  string
	root node
}

type function struct {
	minArgs, maxArgs int
	fn               func(args []float64) float64
}

var functions = map[string]function{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"abs":   unary(math.Abs),
	"sqrt":  unary(math.Sqrt),
	"exp":   unary(math.Exp),
	"log10": unary(math.Log10),
	"log": {1, 2, func(a []float64) float64 {
		if len(a) == 2 {
			return math.Log(a[0]) / math.Log(a[1])
		}
		return math.Log(a[0])
	}},
	"pow": {2, 2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
}

func unary(f func(float64) float64) function {
	return function{1, 1, func(a []float64) float64 { return f(a[0]) }}
}

// Compile разбирает выражение. Ошибки разбора имеют вид ErrEvaluation.
func Compile(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, evalErr("empty expression")
	}
	if len(src) > MaxExprLength {
		return nil, evalErr(fmt.Sprintf("expression longer than %d characters", MaxExprLength))
	}

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, evalErr(fmt.Sprintf("unexpected %q at %d", p.peek().text, p.peek().pos))
	}
	return &Expr{src: src, root: root}, nil
}

// String возвращает исходный текст выражения.
func (e *Expr) String() string {
	return e.src
}

// Eval вычисляет выражение. Деление на ноль, NaN и бесконечность считаются ошибкой.
func (e *Expr) Eval(env Env) (float64, error) {
	v, err := e.root.eval(env)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, evalErr("result is not a finite number")
	}
	return v, nil
}

func evalErr(msg string) error {
	return apperr.New(apperr.ErrEvaluation, "equation", msg, nil)
}

// --- Лексер ---

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
				j := i + 1
				if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
					j++
				}
				if j < len(rs) && unicode.IsDigit(rs[j]) {
					i = j
					for i < len(rs) && unicode.IsDigit(rs[i]) {
						i++
					}
				}
			}
			text := string(rs[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, evalErr(fmt.Sprintf("bad number %q", text))
			}
			toks = append(toks, token{kind: tokNum, text: text, num: v, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case strings.ContainsRune("+-*/%", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, evalErr(fmt.Sprintf("unexpected character %q at %d", r, i))
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

// --- Парсер (рекурсивный спуск) ---
//
//	expr  := term (("+" | "-") term)*
//	term  := unary (("*" | "/" | "%") unary)*
//	unary := ("+" | "-") unary | power
//	power := primary ("**" unary)?

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func checkDepth(depth int) error {
	if depth > MaxExprDepth {
		return evalErr("expression nested too deeply")
	}
	return nil
}

func (p *parser) parseExpr(depth int) (node, error) {
	if err := checkDepth(depth); err != nil {
		return nil, err
	}
	left, err := p.parseTerm(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.parseTerm(depth)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseTerm(depth int) (node, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.parseUnary(depth)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary(depth int) (node, error) {
	if err := checkDepth(depth); err != nil {
		return nil, err
	}
	if p.isOp("+", "-") {
		op := p.next().text
		operand, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return &negNode{x: operand}, nil
		}
		return operand, nil
	}
	return p.parsePower(depth)
}

func (p *parser) parsePower(depth int) (node, error) {
	base, err := p.parsePrimary(depth)
	if err != nil {
		return nil, err
	}
	if p.isOp("**") {
		p.next()
		exp, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary(depth int) (node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return numNode(t.num), nil
	case tokLParen:
		inner, err := p.parseExpr(depth + 1)
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, evalErr(fmt.Sprintf("missing ')' for '(' at %d", t.pos))
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(t, depth)
		}
		switch t.text {
		case "t", "A", "V":
			return varNode(t.text), nil
		case "pi":
			return numNode(math.Pi), nil
		case "e":
			return numNode(math.E), nil
		}
		return nil, evalErr(fmt.Sprintf("unknown name %q", t.text))
	case tokEOF:
		return nil, evalErr("unexpected end of expression")
	}
	return nil, evalErr(fmt.Sprintf("unexpected %q at %d", t.text, t.pos))
}

func (p *parser) parseCall(name token, depth int) (node, error) {
	fn, ok := functions[name.text]
	if !ok {
		return nil, evalErr(fmt.Sprintf("function %q is not allowed", name.text))
	}
	p.next() // (

	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr(depth + 1)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.next().kind != tokRParen {
		return nil, evalErr(fmt.Sprintf("missing ')' in call to %s", name.text))
	}
	if len(args) < fn.minArgs || len(args) > fn.maxArgs {
		return nil, evalErr(fmt.Sprintf("%s expects %d argument(s), got %d", name.text, fn.minArgs, len(args)))
	}
	return &callNode{name: name.text, fn: fn.fn, args: args}, nil
}

// --- AST ---

type node interface {
	eval(env Env) (float64, error)
}

type numNode float64

func (n numNode) eval(Env) (float64, error) { return float64(n), nil }

type varNode string

func (n varNode) eval(env Env) (float64, error) {
	switch n {
	case "t":
		return env.T, nil
	case "A":
		return env.A, nil
	default:
		return env.V, nil
	}
}

type negNode struct{ x node }

func (n *negNode) eval(env Env) (float64, error) {
	v, err := n.x.eval(env)
	return -v, err
}

type binaryNode struct {
	op   string
	l, r node
}

func (n *binaryNode) eval(env Env) (float64, error) {
	a, err := n.l.eval(env)
	if err != nil {
		return 0, err
	}
	b, err := n.r.eval(env)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, evalErr("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, evalErr("modulo by zero")
		}
		// Знак результата совпадает со знаком делителя.
		return a - b*math.Floor(a/b), nil
	case "**":
		if a == 0 && b < 0 {
			return 0, evalErr("zero raised to a negative power")
		}
		return finite("**", math.Pow(a, b))
	}
	return 0, evalErr("unknown operator " + n.op)
}

type callNode struct {
	name string
	fn   func([]float64) float64
	args []node
}

func (n *callNode) eval(env Env) (float64, error) {
	vals := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return finite(n.name, n.fn(vals))
}

func finite(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, evalErr(name + ": math domain error")
	}
	return v, nil
}
