package sysmodel

import (
	"github.com/vk/cellode/internal/expr"
)

// Equation is one equation of the assembled system: LHS is a canonical
// symbol, optionally under the time-derivative operator, defined by the RHS
// expression tree.
type Equation struct {
	LHS        string
	Derivative bool
	RHS        *expr.Node
}

// Model is the assembled equation system. State, parameter, and equation
// order is fixed at construction and stable across all accessor calls.
type Model struct {
	name        string
	independent string
	states      *Values
	parameters  *Values
	equations   []*Equation
	units       map[string]string // canonical symbol -> units name
}

// New constructs a model. The given slices establish the permanent order.
func New(name, independent string, states, parameters []Entry, equations []*Equation, units map[string]string) *Model {
	u := make(map[string]string, len(units))
	for k, v := range units {
		u[k] = v
	}
	return &Model{
		name:        name,
		independent: independent,
		states:      NewValues(states),
		parameters:  NewValues(parameters),
		equations:   append([]*Equation(nil), equations...),
		units:       u,
	}
}

// Name returns the model name from the source document.
func (m *Model) Name() string { return m.name }

// Independent returns the independent variable's canonical symbol, or ""
// for a system without derivatives.
func (m *Model) Independent() string { return m.independent }

// States returns an ordered snapshot of state symbols and their initial
// values. The snapshot is owned by the caller; mutating it does not touch
// the model.
func (m *Model) States() *Values { return m.states.Clone() }

// Parameters returns an ordered snapshot of parameter symbols and their
// default values, caller-owned like States.
func (m *Model) Parameters() *Values { return m.parameters.Clone() }

// Equations returns the equation list: states first in state order, then
// algebraic equations in evaluation order. Expression trees are immutable
// and shared.
func (m *Model) Equations() []*Equation {
	return append([]*Equation(nil), m.equations...)
}

// Units returns the declared units name for a canonical symbol.
func (m *Model) Units(symbol string) (string, bool) {
	u, ok := m.units[symbol]
	return u, ok
}

// UpdateParameter sets a parameter's default value in the model, addressed
// by canonical symbol or unambiguous plain name. Later Parameters snapshots
// reflect the new value; order is unaffected.
func (m *Model) UpdateParameter(symbolOrName string, value float64) error {
	return m.parameters.Update(symbolOrName, value)
}

// UpdateInitial sets a state's initial value in the model, with the same
// addressing rules as UpdateParameter.
func (m *Model) UpdateInitial(symbolOrName string, value float64) error {
	return m.states.Update(symbolOrName, value)
}
