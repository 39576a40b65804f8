package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vk/cellode/internal/sysmodel"
)

// printText writes a human-readable listing of the assembled system.
func printText(w io.Writer, m *sysmodel.Model) error {
	name := m.Name()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "model %s\n", name)
	if iv := m.Independent(); iv != "" {
		fmt.Fprintf(w, "independent variable: %s\n", iv)
	}

	states := m.States()
	fmt.Fprintf(w, "\nstates (%d):\n", states.Len())
	for i := 0; i < states.Len(); i++ {
		e := states.At(i)
		fmt.Fprintf(w, "  %s = %v%s\n", e.Symbol, e.Value, unitsSuffix(m, e.Symbol))
	}

	params := m.Parameters()
	fmt.Fprintf(w, "\nparameters (%d):\n", params.Len())
	for i := 0; i < params.Len(); i++ {
		e := params.At(i)
		fmt.Fprintf(w, "  %s = %v%s\n", e.Symbol, e.Value, unitsSuffix(m, e.Symbol))
	}

	eqs := m.Equations()
	fmt.Fprintf(w, "\nequations (%d):\n", len(eqs))
	for _, eq := range eqs {
		if eq.Derivative {
			fmt.Fprintf(w, "  d(%s)/d(%s) = %s\n", eq.LHS, m.Independent(), eq.RHS)
		} else {
			fmt.Fprintf(w, "  %s = %s\n", eq.LHS, eq.RHS)
		}
	}
	return nil
}

func unitsSuffix(m *sysmodel.Model, symbol string) string {
	if u, ok := m.Units(symbol); ok && u != "" && u != "dimensionless" {
		return " [" + u + "]"
	}
	return ""
}

// jsonModel is the serialized form of an assembled system.
type jsonModel struct {
	Name        string         `json:"name"`
	Independent string         `json:"independent,omitempty"`
	States      []jsonEntry    `json:"states"`
	Parameters  []jsonEntry    `json:"parameters"`
	Equations   []jsonEquation `json:"equations"`
}

type jsonEntry struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
	Units  string  `json:"units,omitempty"`
}

type jsonEquation struct {
	LHS        string `json:"lhs"`
	Derivative bool   `json:"derivative"`
	RHS        string `json:"rhs"`
}

// printJSON writes the system as one JSON document.
func printJSON(w io.Writer, m *sysmodel.Model) error {
	out := jsonModel{Name: m.Name(), Independent: m.Independent()}
	for _, e := range m.States().Entries() {
		u, _ := m.Units(e.Symbol)
		out.States = append(out.States, jsonEntry{Symbol: e.Symbol, Value: e.Value, Units: u})
	}
	for _, e := range m.Parameters().Entries() {
		u, _ := m.Units(e.Symbol)
		out.Parameters = append(out.Parameters, jsonEntry{Symbol: e.Symbol, Value: e.Value, Units: u})
	}
	for _, eq := range m.Equations() {
		out.Equations = append(out.Equations, jsonEquation{
			LHS:        eq.LHS,
			Derivative: eq.Derivative,
			RHS:        eq.RHS.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
