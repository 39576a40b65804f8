package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the payload of a Node.
type Kind int

const (
	// KindNumber is a numeric literal; Value holds it.
	KindNumber Kind = iota
	// KindSymbol is a reference to a named quantity; Name holds it.
	KindSymbol
	// KindConstant is a named mathematical constant; Name holds it.
	KindConstant
	// KindApply is an operator application; Op and Args hold it.
	KindApply
	// KindPiecewise is a conditional selection; Pieces and Else hold it.
	KindPiecewise
)

// Op is one operator of the closed vocabulary.
type Op string

// Arithmetic operators.
const (
	OpAdd  Op = "plus"
	OpSub  Op = "minus"
	OpNeg  Op = "negate"
	OpMul  Op = "times"
	OpDiv  Op = "divide"
	OpPow  Op = "power"
	OpRoot Op = "root"
)

// Elementary functions.
const (
	OpAbs     Op = "abs"
	OpFloor   Op = "floor"
	OpCeiling Op = "ceiling"
	OpMin     Op = "min"
	OpMax     Op = "max"
	OpExp     Op = "exp"
	OpLn      Op = "ln"
	OpLog     Op = "log"
)

// Trigonometric family.
const (
	OpSin     Op = "sin"
	OpCos     Op = "cos"
	OpTan     Op = "tan"
	OpSec     Op = "sec"
	OpCsc     Op = "csc"
	OpCot     Op = "cot"
	OpArcsin  Op = "arcsin"
	OpArccos  Op = "arccos"
	OpArctan  Op = "arctan"
	OpSinh    Op = "sinh"
	OpCosh    Op = "cosh"
	OpTanh    Op = "tanh"
	OpArcsinh Op = "arcsinh"
	OpArccosh Op = "arccosh"
	OpArctanh Op = "arctanh"
)

// Comparison and boolean operators, used inside piecewise conditions.
const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpLt  Op = "lt"
	OpLeq Op = "leq"
	OpGt  Op = "gt"
	OpGeq Op = "geq"
	OpAnd Op = "and"
	OpOr  Op = "or"
	OpXor Op = "xor"
	OpNot Op = "not"
)

// Named constants representable as KindConstant nodes.
const (
	ConstPi       = "pi"
	ConstE        = "exponentiale"
	ConstTrue     = "true"
	ConstFalse    = "false"
	ConstInfinity = "infinity"
)

// Piece is one (value, condition) arm of a piecewise node.
type Piece struct {
	Value *Node
	Cond  *Node
}

// Node is one node of an expression tree. Exactly the fields selected by
// Kind are meaningful; the rest stay zero.
type Node struct {
	Kind   Kind
	Value  float64 // KindNumber
	Name   string  // KindSymbol, KindConstant
	Op     Op      // KindApply
	Args   []*Node // KindApply
	Pieces []Piece // KindPiecewise
	Else   *Node   // KindPiecewise, nil when no otherwise arm
}

// Number returns a numeric literal node.
func Number(v float64) *Node { return &Node{Kind: KindNumber, Value: v} }

// Symbol returns a symbol reference node.
func Symbol(name string) *Node { return &Node{Kind: KindSymbol, Name: name} }

// Constant returns a named-constant node.
func Constant(name string) *Node { return &Node{Kind: KindConstant, Name: name} }

// Apply returns an operator application node.
func Apply(op Op, args ...*Node) *Node { return &Node{Kind: KindApply, Op: op, Args: args} }

// Piecewise returns a conditional-selection node. otherwise may be nil.
func Piecewise(pieces []Piece, otherwise *Node) *Node {
	return &Node{Kind: KindPiecewise, Pieces: pieces, Else: otherwise}
}

// Symbols appends every distinct symbol name referenced under n into the
// given set. The set may be shared across several trees.
func (n *Node) Symbols(set map[string]struct{}) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindSymbol:
		set[n.Name] = struct{}{}
	case KindApply:
		for _, a := range n.Args {
			a.Symbols(set)
		}
	case KindPiecewise:
		for _, p := range n.Pieces {
			p.Value.Symbols(set)
			p.Cond.Symbols(set)
		}
		n.Else.Symbols(set)
	}
}

// SymbolList returns the distinct symbols under n in sorted order.
func (n *Node) SymbolList() []string {
	set := make(map[string]struct{})
	n.Symbols(set)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Rename returns a copy of n with every symbol name present in subst
// replaced by its mapped name. Nodes outside the substitution are still
// copied, so the result shares no structure with the receiver.
func (n *Node) Rename(subst map[string]string) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindNumber, KindConstant:
		c := *n
		return &c
	case KindSymbol:
		c := *n
		if to, ok := subst[n.Name]; ok {
			c.Name = to
		}
		return &c
	case KindApply:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.Rename(subst)
		}
		return &Node{Kind: KindApply, Op: n.Op, Args: args}
	case KindPiecewise:
		pieces := make([]Piece, len(n.Pieces))
		for i, p := range n.Pieces {
			pieces[i] = Piece{Value: p.Value.Rename(subst), Cond: p.Cond.Rename(subst)}
		}
		return &Node{Kind: KindPiecewise, Pieces: pieces, Else: n.Else.Rename(subst)}
	}
	panic(fmt.Sprintf("expr: unknown node kind %d", n.Kind))
}

// Rendering precedence, higher binds tighter.
const (
	precOr = iota + 1
	precAnd
	precCmp
	precAdd
	precMul
	precUnary
	precPow
	precAtom
)

func opPrec(op Op) int {
	switch op {
	case OpOr, OpXor:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNeq, OpLt, OpLeq, OpGt, OpGeq:
		return precCmp
	case OpAdd, OpSub:
		return precAdd
	case OpMul, OpDiv:
		return precMul
	case OpNeg, OpNot:
		return precUnary
	case OpPow:
		return precPow
	}
	return precAtom
}

var infixToken = map[Op]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpPow: "^",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpLeq: "<=", OpGt: ">", OpGeq: ">=",
	OpAnd: "&&", OpOr: "||", OpXor: "xor",
}

// String renders the tree as a conventional infix expression with minimal
// parenthesization. The rendering is for diagnostics and model listings;
// the tree itself remains the canonical form.
func (n *Node) String() string {
	return n.render(0)
}

func (n *Node) render(parent int) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindNumber:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case KindSymbol, KindConstant:
		return n.Name
	case KindPiecewise:
		var b strings.Builder
		b.WriteString("piecewise(")
		for i, p := range n.Pieces {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Cond.render(0))
			b.WriteString(" -> ")
			b.WriteString(p.Value.render(0))
		}
		if n.Else != nil {
			if len(n.Pieces) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("otherwise -> ")
			b.WriteString(n.Else.render(0))
		}
		b.WriteString(")")
		return b.String()
	case KindApply:
		return n.renderApply(parent)
	}
	return "?"
}

func (n *Node) renderApply(parent int) string {
	prec := opPrec(n.Op)
	switch n.Op {
	case OpNeg:
		s := "-" + n.Args[0].render(precUnary)
		if parent > precUnary {
			return "(" + s + ")"
		}
		return s
	case OpNot:
		s := "!" + n.Args[0].render(precUnary)
		if parent > precUnary {
			return "(" + s + ")"
		}
		return s
	}
	if tok, ok := infixToken[n.Op]; ok && len(n.Args) >= 2 {
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			// Right operands of -, / and ^ need parens at equal precedence.
			child := prec
			if i > 0 {
				child = prec + 1
			}
			parts[i] = a.render(child)
		}
		s := strings.Join(parts, tok)
		if parent > prec {
			return "(" + s + ")"
		}
		return s
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.render(0)
	}
	return string(n.Op) + "(" + strings.Join(parts, ", ") + ")"
}
