// Package flatten rewrites component-scoped equations into one global
// namespace of canonical symbols and merges declared initial values.
//
// Canonical name tie-break: the class member with the public interface role
// when exactly one exists, otherwise the first member in document traversal
// order. When the chosen local name is already taken by an earlier class the
// name is qualified as "<component>_<name>"; the choice is deterministic so
// repeated runs of the same document produce identical symbols.
package flatten

import (
	"context"
	"fmt"

	"github.com/vk/cellode/internal/connect"
	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/document"
	"github.com/vk/cellode/internal/expr"
	"github.com/vk/cellode/internal/mathml"
)

// ConflictingInitialValueError reports two connected variables declaring
// different initial values for the same quantity.
type ConflictingInitialValueError struct {
	Symbol    string
	Variable1 string // document identity of the first declaring member
	Value1    float64
	Variable2 string
	Value2    float64
}

func (e *ConflictingInitialValueError) Error() string {
	return fmt.Sprintf("flatten: conflicting initial values for %q: %s declares %v, %s declares %v",
		e.Symbol, e.Variable1, e.Value1, e.Variable2, e.Value2)
}

// Equation is a flattened equation over canonical symbols.
type Equation struct {
	LHS        string
	Derivative bool
	Bvar       string // canonical independent variable when Derivative
	RHS        *expr.Node
}

// Symbol carries the metadata retained for one canonical symbol after the
// equivalence classes are discarded.
type Symbol struct {
	Name       string // canonical global name
	LocalName  string // plain local name of the chosen member
	Component  string // owning component of the chosen member
	Units      string
	HasInitial bool
	Initial    float64
}

// Result is the output of flattening: equations and initial values over
// canonical symbols only.
type Result struct {
	// Symbols lists every canonical symbol in class (document) order.
	Symbols []*Symbol
	// Equations holds all equations rewritten to canonical symbols, in
	// document order.
	Equations []*Equation
}

// Symbol returns the named canonical symbol, or nil.
func (r *Result) Symbol(name string) *Symbol {
	for _, s := range r.Symbols {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Flatten assigns canonical symbols to equivalence classes, rewrites every
// equation onto them, and merges initial values.
func Flatten(ctx context.Context, classes []*connect.Class, eqs []*mathml.Equation) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	res := &Result{}
	taken := make(map[string]struct{}, len(classes))
	// rename maps component name to local-name-to-canonical mapping.
	rename := make(map[string]map[string]string)

	for _, class := range classes {
		chosen := chooseMember(class)
		name := uniqueName(chosen, taken)
		taken[name] = struct{}{}

		sym := &Symbol{
			Name:      name,
			LocalName: chosen.Name,
			Component: chosen.Component,
			Units:     chosen.Units,
		}
		for _, m := range class.Members {
			if !m.HasInitial {
				continue
			}
			if sym.HasInitial && sym.Initial != m.Initial {
				first := declaringMember(class, sym.Initial)
				return nil, &ConflictingInitialValueError{
					Symbol:    name,
					Variable1: first.ID(),
					Value1:    sym.Initial,
					Variable2: m.ID(),
					Value2:    m.Initial,
				}
			}
			sym.HasInitial = true
			sym.Initial = m.Initial
		}
		res.Symbols = append(res.Symbols, sym)

		for _, m := range class.Members {
			comp := rename[m.Component]
			if comp == nil {
				comp = make(map[string]string)
				rename[m.Component] = comp
			}
			comp[m.Name] = name
		}
	}

	for _, eq := range eqs {
		flat, err := rewrite(eq, rename)
		if err != nil {
			return nil, err
		}
		res.Equations = append(res.Equations, flat)
	}

	logger.Debug("Namespace flattened.",
		"symbols", len(res.Symbols),
		"equations", len(res.Equations))
	return res, nil
}

// chooseMember applies the tie-break policy: the unique public member when
// one exists, else the first member in document order.
func chooseMember(class *connect.Class) *document.Variable {
	var public *document.Variable
	count := 0
	for _, m := range class.Members {
		if m.Role == document.RolePublic {
			public = m
			count++
		}
	}
	if count == 1 {
		return public
	}
	return class.Members[0]
}

// uniqueName returns the chosen member's local name, qualified by its
// component (and, in the last resort, an index) when already taken.
func uniqueName(v *document.Variable, taken map[string]struct{}) string {
	if _, ok := taken[v.Name]; !ok {
		return v.Name
	}
	name := v.Component + "_" + v.Name
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 2; ; i++ {
		n := fmt.Sprintf("%s_%d", name, i)
		if _, ok := taken[n]; !ok {
			return n
		}
	}
}

func declaringMember(class *connect.Class, value float64) *document.Variable {
	for _, m := range class.Members {
		if m.HasInitial && m.Initial == value {
			return m
		}
	}
	return class.Members[0]
}

// rewrite maps one component-scoped equation onto canonical symbols. Every
// referenced local name must belong to a declared variable of the owning
// component.
func rewrite(eq *mathml.Equation, rename map[string]map[string]string) (*Equation, error) {
	comp := rename[eq.Component]
	lookup := func(local string) (string, error) {
		if canonical, ok := comp[local]; ok {
			return canonical, nil
		}
		return "", &connect.UndeclaredVariableError{Component: eq.Component, Variable: local}
	}

	lhs, err := lookup(eq.LHS)
	if err != nil {
		return nil, err
	}
	flat := &Equation{LHS: lhs, Derivative: eq.Derivative}
	if eq.Derivative {
		if flat.Bvar, err = lookup(eq.Bvar); err != nil {
			return nil, err
		}
	}

	// Verify every rhs reference before renaming so the error names the
	// offending local symbol, not a half-rewritten one.
	subst := make(map[string]string)
	for _, local := range eq.RHS.SymbolList() {
		canonical, err := lookup(local)
		if err != nil {
			return nil, err
		}
		subst[local] = canonical
	}
	flat.RHS = eq.RHS.Rename(subst)
	return flat, nil
}
