package mathml

import (
	"strconv"
	"strings"

	"github.com/vk/cellode/internal/document"
	"github.com/vk/cellode/internal/expr"
)

// Equation is one equation extracted from a math block, still scoped to the
// owning component's local variable names.
type Equation struct {
	Component  string
	LHS        string // local variable name
	Derivative bool   // true when the lhs is d(LHS)/d(Bvar)
	Bvar       string // bound (independent) variable name when Derivative
	RHS        *expr.Node
}

// Symbols returns the distinct local names the equation references,
// including the lhs and the bound variable.
func (eq *Equation) Symbols() []string {
	set := make(map[string]struct{})
	eq.RHS.Symbols(set)
	set[eq.LHS] = struct{}{}
	if eq.Bvar != "" {
		set[eq.Bvar] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// Translate converts one math block into its equations. Each top-level
// equality application yields one equation; a block with several equalities
// encodes a simultaneous system.
func Translate(component string, math *document.Element) ([]*Equation, error) {
	var out []*Equation
	for _, el := range math.Children {
		eq, err := translateEquation(component, el)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, nil
}

func translateEquation(component string, el *document.Element) (*Equation, error) {
	if el.Name != "apply" || len(el.Children) == 0 || el.Children[0].Name != "eq" {
		return nil, &UnsupportedOperatorError{
			Operator:  el.Name,
			Component: component,
			Detail:    "top-level math content must be an equality application",
		}
	}
	if len(el.Children) != 3 {
		return nil, &UnsupportedOperatorError{
			Operator:  "eq",
			Component: component,
			Detail:    "equality must have exactly one left and one right operand",
		}
	}
	lhs, rhs := el.Children[1], el.Children[2]

	eq := &Equation{Component: component}
	switch {
	case lhs.Name == "ci":
		eq.LHS = strings.TrimSpace(lhs.Text)
	case lhs.Name == "apply" && len(lhs.Children) > 0 && lhs.Children[0].Name == "diff":
		target, bvar, err := translateDerivative(component, lhs)
		if err != nil {
			return nil, err
		}
		eq.LHS = target
		eq.Bvar = bvar
		eq.Derivative = true
	default:
		op := lhs.Name
		if lhs.Name == "apply" && len(lhs.Children) > 0 {
			op = lhs.Children[0].Name
		}
		return nil, &UnsupportedOperatorError{
			Operator:  op,
			Component: component,
			Detail:    "equation left side must be a variable or a first derivative",
		}
	}
	if eq.LHS == "" {
		return nil, &UnsupportedOperatorError{
			Operator:  "eq",
			Component: component,
			Detail:    "equation left side names no variable",
		}
	}

	node, err := translateExpr(component, rhs)
	if err != nil {
		return nil, err
	}
	eq.RHS = node
	return eq, nil
}

// translateDerivative unpacks an apply(diff, bvar(ci), ci) element.
func translateDerivative(component string, el *document.Element) (target, bvar string, err error) {
	bvarEl := el.FirstChild("bvar")
	if bvarEl == nil || bvarEl.FirstChild("ci") == nil {
		return "", "", &UnsupportedOperatorError{
			Operator:  "diff",
			Component: component,
			Detail:    "derivative missing bound variable",
		}
	}
	if deg := bvarEl.FirstChild("degree"); deg != nil {
		txt := strings.TrimSpace(deg.Text)
		if cn := deg.FirstChild("cn"); cn != nil {
			txt = strings.TrimSpace(cn.Text)
		}
		if txt != "1" {
			return "", "", &UnsupportedOperatorError{
				Operator:  "diff",
				Component: component,
				Detail:    "only first derivatives are supported",
			}
		}
	}
	bvar = strings.TrimSpace(bvarEl.FirstChild("ci").Text)
	var targetEl *document.Element
	for _, c := range el.Children[1:] {
		if c.Name != "bvar" {
			targetEl = c
			break
		}
	}
	if targetEl == nil || targetEl.Name != "ci" {
		return "", "", &UnsupportedOperatorError{
			Operator:  "diff",
			Component: component,
			Detail:    "derivative target must be a variable",
		}
	}
	return strings.TrimSpace(targetEl.Text), bvar, nil
}

// unaryOps and naryOps map operator element names onto the expr vocabulary.
var unaryOps = map[string]expr.Op{
	"abs": expr.OpAbs, "floor": expr.OpFloor, "ceiling": expr.OpCeiling,
	"exp": expr.OpExp, "ln": expr.OpLn,
	"sin": expr.OpSin, "cos": expr.OpCos, "tan": expr.OpTan,
	"sec": expr.OpSec, "csc": expr.OpCsc, "cot": expr.OpCot,
	"arcsin": expr.OpArcsin, "arccos": expr.OpArccos, "arctan": expr.OpArctan,
	"sinh": expr.OpSinh, "cosh": expr.OpCosh, "tanh": expr.OpTanh,
	"arcsinh": expr.OpArcsinh, "arccosh": expr.OpArccosh, "arctanh": expr.OpArctanh,
	"not": expr.OpNot,
}

var naryOps = map[string]expr.Op{
	"plus": expr.OpAdd, "times": expr.OpMul,
	"min": expr.OpMin, "max": expr.OpMax,
	"and": expr.OpAnd, "or": expr.OpOr, "xor": expr.OpXor,
}

var binaryOps = map[string]expr.Op{
	"divide": expr.OpDiv, "power": expr.OpPow,
	"eq": expr.OpEq, "neq": expr.OpNeq,
	"lt": expr.OpLt, "leq": expr.OpLeq, "gt": expr.OpGt, "geq": expr.OpGeq,
}

var constants = map[string]string{
	"pi":           expr.ConstPi,
	"exponentiale": expr.ConstE,
	"true":         expr.ConstTrue,
	"false":        expr.ConstFalse,
	"infinity":     expr.ConstInfinity,
}

func translateExpr(component string, el *document.Element) (*expr.Node, error) {
	switch el.Name {
	case "ci":
		name := strings.TrimSpace(el.Text)
		if name == "" {
			return nil, &UnsupportedOperatorError{Operator: "ci", Component: component, Detail: "empty variable reference"}
		}
		return expr.Symbol(name), nil
	case "cn":
		return translateNumber(component, el)
	case "piecewise":
		return translatePiecewise(component, el)
	case "apply":
		return translateApply(component, el)
	}
	if c, ok := constants[el.Name]; ok {
		return expr.Constant(c), nil
	}
	return nil, &UnsupportedOperatorError{Operator: el.Name, Component: component}
}

func translateNumber(component string, el *document.Element) (*expr.Node, error) {
	if el.Attr("type") == "e-notation" {
		if len(el.Texts) != 2 || el.FirstChild("sep") == nil {
			return nil, &UnsupportedOperatorError{Operator: "cn", Component: component, Detail: "malformed e-notation number"}
		}
		v, err := strconv.ParseFloat(el.Texts[0]+"e"+el.Texts[1], 64)
		if err != nil {
			return nil, &UnsupportedOperatorError{Operator: "cn", Component: component, Detail: "invalid e-notation number " + el.Text}
		}
		return expr.Number(v), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(el.Text), 64)
	if err != nil {
		return nil, &UnsupportedOperatorError{Operator: "cn", Component: component, Detail: "invalid number " + strconv.Quote(el.Text)}
	}
	return expr.Number(v), nil
}

func translatePiecewise(component string, el *document.Element) (*expr.Node, error) {
	var pieces []expr.Piece
	var otherwise *expr.Node
	for _, c := range el.Children {
		switch c.Name {
		case "piece":
			if len(c.Children) != 2 {
				return nil, &UnsupportedOperatorError{Operator: "piece", Component: component, Detail: "piece needs a value and a condition"}
			}
			val, err := translateExpr(component, c.Children[0])
			if err != nil {
				return nil, err
			}
			cond, err := translateExpr(component, c.Children[1])
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, expr.Piece{Value: val, Cond: cond})
		case "otherwise":
			if len(c.Children) != 1 {
				return nil, &UnsupportedOperatorError{Operator: "otherwise", Component: component, Detail: "otherwise needs exactly one value"}
			}
			val, err := translateExpr(component, c.Children[0])
			if err != nil {
				return nil, err
			}
			otherwise = val
		default:
			return nil, &UnsupportedOperatorError{Operator: c.Name, Component: component, Detail: "unexpected element inside piecewise"}
		}
	}
	if len(pieces) == 0 {
		return nil, &UnsupportedOperatorError{Operator: "piecewise", Component: component, Detail: "piecewise has no piece children"}
	}
	return expr.Piecewise(pieces, otherwise), nil
}

func translateApply(component string, el *document.Element) (*expr.Node, error) {
	if len(el.Children) == 0 {
		return nil, &UnsupportedOperatorError{Operator: "apply", Component: component, Detail: "empty application"}
	}
	opEl := el.Children[0]
	operands := el.Children[1:]

	translateOperands := func() ([]*expr.Node, error) {
		args := make([]*expr.Node, len(operands))
		for i, o := range operands {
			n, err := translateExpr(component, o)
			if err != nil {
				return nil, err
			}
			args[i] = n
		}
		return args, nil
	}

	switch opEl.Name {
	case "diff":
		return nil, &UnsupportedOperatorError{
			Operator:  "diff",
			Component: component,
			Detail:    "derivatives may only appear as an equation left side",
		}
	case "minus":
		args, err := translateOperands()
		if err != nil {
			return nil, err
		}
		switch len(args) {
		case 1:
			return expr.Apply(expr.OpNeg, args[0]), nil
		case 2:
			return expr.Apply(expr.OpSub, args[0], args[1]), nil
		}
		return nil, &UnsupportedOperatorError{Operator: "minus", Component: component, Detail: "minus takes one or two operands"}
	case "root":
		return translateRoot(component, el)
	case "log":
		return translateLog(component, el)
	}

	if op, ok := unaryOps[opEl.Name]; ok {
		args, err := translateOperands()
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, &UnsupportedOperatorError{Operator: opEl.Name, Component: component, Detail: "operator takes exactly one operand"}
		}
		return expr.Apply(op, args[0]), nil
	}
	if op, ok := binaryOps[opEl.Name]; ok {
		args, err := translateOperands()
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, &UnsupportedOperatorError{Operator: opEl.Name, Component: component, Detail: "operator takes exactly two operands"}
		}
		return expr.Apply(op, args[0], args[1]), nil
	}
	if op, ok := naryOps[opEl.Name]; ok {
		args, err := translateOperands()
		if err != nil {
			return nil, err
		}
		switch len(args) {
		case 0:
			return nil, &UnsupportedOperatorError{Operator: opEl.Name, Component: component, Detail: "operator needs at least one operand"}
		case 1:
			return args[0], nil
		}
		return expr.Apply(op, args...), nil
	}
	return nil, &UnsupportedOperatorError{Operator: opEl.Name, Component: component}
}

// translateRoot handles apply(root, [degree], x): no degree means square
// root; an explicit degree is carried as a second argument.
func translateRoot(component string, el *document.Element) (*expr.Node, error) {
	var degree *expr.Node
	var operand *document.Element
	for _, c := range el.Children[1:] {
		if c.Name == "degree" {
			if len(c.Children) != 1 {
				return nil, &UnsupportedOperatorError{Operator: "root", Component: component, Detail: "degree needs exactly one child"}
			}
			d, err := translateExpr(component, c.Children[0])
			if err != nil {
				return nil, err
			}
			degree = d
			continue
		}
		operand = c
	}
	if operand == nil {
		return nil, &UnsupportedOperatorError{Operator: "root", Component: component, Detail: "root missing operand"}
	}
	x, err := translateExpr(component, operand)
	if err != nil {
		return nil, err
	}
	if degree == nil {
		return expr.Apply(expr.OpRoot, x), nil
	}
	return expr.Apply(expr.OpRoot, x, degree), nil
}

// translateLog handles apply(log, [logbase], x): the default base is 10.
func translateLog(component string, el *document.Element) (*expr.Node, error) {
	var base *expr.Node
	var operand *document.Element
	for _, c := range el.Children[1:] {
		if c.Name == "logbase" {
			if len(c.Children) != 1 {
				return nil, &UnsupportedOperatorError{Operator: "log", Component: component, Detail: "logbase needs exactly one child"}
			}
			b, err := translateExpr(component, c.Children[0])
			if err != nil {
				return nil, err
			}
			base = b
			continue
		}
		operand = c
	}
	if operand == nil {
		return nil, &UnsupportedOperatorError{Operator: "log", Component: component, Detail: "log missing operand"}
	}
	x, err := translateExpr(component, operand)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return expr.Apply(expr.OpLog, x), nil
	}
	return expr.Apply(expr.OpLog, x, base), nil
}
