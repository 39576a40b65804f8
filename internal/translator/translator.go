// Package translator runs the full translation pipeline: document parse,
// math translation, connection resolution, namespace flattening, variable
// classification, and model assembly.
//
// Every stage consumes only the previous stage's output. Stage errors
// surface unchanged so a caller can switch on the concrete error type to
// locate the failing stage. Translation either yields a complete Model or
// fails atomically; no partial result is ever returned.
package translator

import (
	"context"

	"github.com/vk/cellode/internal/classify"
	"github.com/vk/cellode/internal/connect"
	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/depgraph"
	"github.com/vk/cellode/internal/document"
	"github.com/vk/cellode/internal/flatten"
	"github.com/vk/cellode/internal/mathml"
	"github.com/vk/cellode/internal/sysmodel"
)

// Build translates one interchange document into an assembled Model.
func Build(ctx context.Context, src []byte) (*sysmodel.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting translation pipeline.")

	doc, err := document.Parse(ctx, src)
	if err != nil {
		return nil, err
	}

	var equations []*mathml.Equation
	for _, comp := range doc.Components {
		for _, block := range comp.Maths {
			eqs, err := mathml.Translate(comp.Name, block)
			if err != nil {
				return nil, err
			}
			equations = append(equations, eqs...)
		}
	}
	logger.Debug("Build: math translation complete.", "equations", len(equations))

	classes, err := connect.Resolve(ctx, doc)
	if err != nil {
		return nil, err
	}

	flat, err := flatten.Flatten(ctx, classes, equations)
	if err != nil {
		return nil, err
	}

	classes = nil // equivalence classes are not retained past flattening

	classification, err := classify.Classify(ctx, flat)
	if err != nil {
		return nil, err
	}

	model, err := assemble(ctx, doc.Name, flat, classification)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build: translation pipeline complete.", "model", doc.Name)
	return model, nil
}

// assemble produces the final ordered system: states in classification
// order with their derivative equations first, then algebraic equations in
// dependency evaluation order.
//
// Right-hand-side reference validity (no dangling symbols, no duplicate
// definitions) is already guaranteed upstream: the flattener rejects
// references to undeclared variables and the classifier rejects duplicate
// definitions, so by this point every rhs symbol is a state, a parameter,
// an algebraic symbol, or the independent variable.
func assemble(ctx context.Context, name string, flat *flatten.Result, c *classify.Classification) (*sysmodel.Model, error) {
	logger := ctxlog.FromContext(ctx)

	derivEq := make(map[string]*flatten.Equation)
	plainEq := make(map[string]*flatten.Equation)
	for _, eq := range flat.Equations {
		if eq.Derivative {
			derivEq[eq.LHS] = eq
		} else {
			plainEq[eq.LHS] = eq
		}
	}

	algebraicOrder, err := orderAlgebraic(c, plainEq)
	if err != nil {
		return nil, err
	}

	var states, parameters []sysmodel.Entry
	units := make(map[string]string, len(flat.Symbols))
	for _, sym := range flat.Symbols {
		units[sym.Name] = sym.Units
	}
	for _, s := range c.States {
		sym := flat.Symbol(s)
		states = append(states, sysmodel.Entry{Symbol: sym.Name, Name: sym.LocalName, Value: sym.Initial})
	}
	for _, p := range c.Parameters {
		sym := flat.Symbol(p)
		parameters = append(parameters, sysmodel.Entry{Symbol: sym.Name, Name: sym.LocalName, Value: sym.Initial})
	}

	equations := make([]*sysmodel.Equation, 0, len(flat.Equations))
	for _, s := range c.States {
		eq := derivEq[s]
		equations = append(equations, &sysmodel.Equation{LHS: eq.LHS, Derivative: true, RHS: eq.RHS})
	}
	for _, a := range algebraicOrder {
		eq := plainEq[a]
		equations = append(equations, &sysmodel.Equation{LHS: eq.LHS, Derivative: false, RHS: eq.RHS})
	}

	logger.Debug("Model assembled.",
		"states", len(states),
		"parameters", len(parameters),
		"equations", len(equations))
	return sysmodel.New(name, c.Independent, states, parameters, equations, units), nil
}

// orderAlgebraic topologically sorts the algebraic symbols so each one's
// defining equation appears after the equations it reads from.
func orderAlgebraic(c *classify.Classification, plainEq map[string]*flatten.Equation) ([]string, error) {
	g := depgraph.New()
	for _, a := range c.Algebraic {
		g.AddNode(a)
	}
	for _, a := range c.Algebraic {
		for _, ref := range plainEq[a].RHS.SymbolList() {
			// A self-reference is a cycle; AddEdge rejects it.
			if c.Kinds[ref] == classify.KindAlgebraic {
				if err := g.AddEdge(a, ref); err != nil {
					return nil, err
				}
			}
		}
	}
	return g.TopoSort()
}
