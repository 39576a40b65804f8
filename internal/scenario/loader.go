// Package scenario loads HCL override files that adjust parameter defaults
// and state initial values of an assembled model without re-parsing the
// source document.
//
// An override file holds parameter and state blocks:
//
//	parameter "k" {
//	  value = 0.25
//	}
//
//	state "x" {
//	  initial = 2.0
//	}
//
// Names may be canonical symbols or unambiguous plain local names; unknown
// or ambiguous names fail with the model's UnknownSymbolError.
package scenario

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/sysmodel"
)

// parameterBlock is one parameter override in the file.
type parameterBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

// stateBlock is one initial-value override in the file.
type stateBlock struct {
	Name    string    `hcl:"name,label"`
	Initial cty.Value `hcl:"initial"`
}

// fileRoot decodes the top-level blocks of an override file.
type fileRoot struct {
	Parameters []*parameterBlock `hcl:"parameter,block"`
	States     []*stateBlock     `hcl:"state,block"`
}

// Override is one resolved symbol adjustment.
type Override struct {
	Name  string
	Value float64
	State bool // true for a state initial value, false for a parameter
}

// Scenario is a parsed set of overrides, in file order.
type Scenario struct {
	Overrides []Override
}

// Load reads and parses an override file from disk.
func Load(ctx context.Context, path string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	return Parse(ctx, src, path)
}

// Parse parses override file content. filename appears in diagnostics only.
func Parse(ctx context.Context, src []byte, filename string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scenario: failed to parse %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("scenario: failed to decode %s: %w", filename, diags)
	}

	s := &Scenario{}
	for _, p := range root.Parameters {
		v, err := numberValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("scenario: parameter %q in %s: %w", p.Name, filename, err)
		}
		s.Overrides = append(s.Overrides, Override{Name: p.Name, Value: v})
	}
	for _, st := range root.States {
		v, err := numberValue(st.Initial)
		if err != nil {
			return nil, fmt.Errorf("scenario: state %q in %s: %w", st.Name, filename, err)
		}
		s.Overrides = append(s.Overrides, Override{Name: st.Name, Value: v, State: true})
	}

	logger.Debug("Scenario loaded.", "file", filename, "overrides", len(s.Overrides))
	return s, nil
}

// numberValue coerces an HCL attribute value to float64.
func numberValue(v cty.Value) (float64, error) {
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("value must be a number: %w", err)
	}
	f, _ := n.AsBigFloat().Float64()
	return f, nil
}

// Apply writes every override into the model. The model's
// UnknownSymbolError surfaces unchanged for unknown or ambiguous names.
func (s *Scenario) Apply(ctx context.Context, m *sysmodel.Model) error {
	logger := ctxlog.FromContext(ctx)
	for _, o := range s.Overrides {
		var err error
		if o.State {
			err = m.UpdateInitial(o.Name, o.Value)
		} else {
			err = m.UpdateParameter(o.Name, o.Value)
		}
		if err != nil {
			return err
		}
		logger.Debug("Override applied.", "name", o.Name, "value", o.Value, "state", o.State)
	}
	return nil
}
