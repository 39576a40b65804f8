// Package classify partitions canonical symbols into differential states,
// algebraic variables, and constant parameters by inspecting the flattened
// equation set.
package classify

import (
	"context"
	"fmt"

	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/flatten"
)

// Kind is a symbol's classification.
type Kind int

const (
	// KindState is a differential state: the target of a derivative in
	// exactly one equation.
	KindState Kind = iota
	// KindAlgebraic is defined by exactly one plain equation.
	KindAlgebraic
	// KindParameter has no defining equation and a fixed numeric value.
	KindParameter
	// KindIndependent is the derivative bound variable (typically time). It
	// stands outside the three-way partition and is legal on any rhs.
	KindIndependent
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindAlgebraic:
		return "algebraic"
	case KindParameter:
		return "parameter"
	case KindIndependent:
		return "independent"
	}
	return "unknown"
}

// UnderdeterminedSystemError reports a non-parameter symbol with no
// defining equation, or a state without an initial value.
type UnderdeterminedSystemError struct {
	Symbol string
	Reason string
}

func (e *UnderdeterminedSystemError) Error() string {
	return fmt.Sprintf("classify: system is underdetermined: symbol %q %s", e.Symbol, e.Reason)
}

// OverdeterminedSystemError reports a symbol with more than one defining
// equation.
type OverdeterminedSystemError struct {
	Symbol string
	Reason string
}

func (e *OverdeterminedSystemError) Error() string {
	return fmt.Sprintf("classify: system is overdetermined: symbol %q %s", e.Symbol, e.Reason)
}

// InconsistentIndependentVariableError reports derivatives taken with
// respect to two different bound variables in one document.
type InconsistentIndependentVariableError struct {
	Variable1 string
	Variable2 string
}

func (e *InconsistentIndependentVariableError) Error() string {
	return fmt.Sprintf("classify: derivatives use two independent variables: %q and %q", e.Variable1, e.Variable2)
}

// Classification is the partition of canonical symbols. Slice order follows
// the flattened symbol order and stays stable across runs.
type Classification struct {
	Independent string // empty when the system has no derivatives
	States      []string
	Algebraic   []string
	Parameters  []string
	Kinds       map[string]Kind
}

// Classify inspects the flattened equation set and assigns every canonical
// symbol exactly one kind.
func Classify(ctx context.Context, res *flatten.Result) (*Classification, error) {
	logger := ctxlog.FromContext(ctx)

	derivDefs := make(map[string]int)
	plainDefs := make(map[string]int)
	independent := ""
	for _, eq := range res.Equations {
		if eq.Derivative {
			derivDefs[eq.LHS]++
			if independent == "" {
				independent = eq.Bvar
			} else if independent != eq.Bvar {
				return nil, &InconsistentIndependentVariableError{Variable1: independent, Variable2: eq.Bvar}
			}
			continue
		}
		plainDefs[eq.LHS]++
	}

	c := &Classification{
		Independent: independent,
		Kinds:       make(map[string]Kind, len(res.Symbols)),
	}
	for _, sym := range res.Symbols {
		name := sym.Name
		nd, np := derivDefs[name], plainDefs[name]
		switch {
		case name == independent:
			if nd+np > 0 {
				return nil, &OverdeterminedSystemError{
					Symbol: name,
					Reason: "is the independent variable but has a defining equation",
				}
			}
			c.Kinds[name] = KindIndependent
		case nd > 1:
			return nil, &OverdeterminedSystemError{
				Symbol: name,
				Reason: fmt.Sprintf("is the derivative target of %d equations", nd),
			}
		case np > 1:
			return nil, &OverdeterminedSystemError{
				Symbol: name,
				Reason: fmt.Sprintf("is defined by %d equations", np),
			}
		case nd == 1 && np == 1:
			return nil, &OverdeterminedSystemError{
				Symbol: name,
				Reason: "is defined both differentially and algebraically",
			}
		case nd == 1:
			if !sym.HasInitial {
				return nil, &UnderdeterminedSystemError{
					Symbol: name,
					Reason: "is a differential state with no initial value",
				}
			}
			c.Kinds[name] = KindState
			c.States = append(c.States, name)
		case np == 1:
			c.Kinds[name] = KindAlgebraic
			c.Algebraic = append(c.Algebraic, name)
		case sym.HasInitial:
			c.Kinds[name] = KindParameter
			c.Parameters = append(c.Parameters, name)
		default:
			return nil, &UnderdeterminedSystemError{
				Symbol: name,
				Reason: "has no defining equation and no declared value",
			}
		}
	}

	logger.Debug("Symbols classified.",
		"states", len(c.States),
		"algebraic", len(c.Algebraic),
		"parameters", len(c.Parameters),
		"independent", independent)
	return c, nil
}
