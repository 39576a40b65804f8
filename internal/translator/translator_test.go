package translator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/cellode/internal/classify"
	"github.com/vk/cellode/internal/document"
	"github.com/vk/cellode/internal/flatten"
	"github.com/vk/cellode/internal/sysmodel"
)

// decayDoc is the two-component scenario: component X holds a state x
// governed by d(x)/dt = -k*x with parameter k; component Y has no
// connections.
const decayDoc = `
<model name="decay" xmlns="http://www.cellml.org/cellml/1.0#">
  <component name="X">
    <variable name="time" units="second"/>
    <variable name="x" units="dimensionless" initial_value="1.0"/>
    <variable name="k" units="dimensionless" initial_value="0.5"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/>
        <apply><diff/><bvar><ci>time</ci></bvar><ci>x</ci></apply>
        <apply><times/><apply><minus/><ci>k</ci></apply><ci>x</ci></apply>
      </apply>
    </math>
  </component>
  <component name="Y"/>
</model>`

func TestBuild_EndToEndDecay(t *testing.T) {
	t.Parallel()
	model, err := Build(context.Background(), []byte(decayDoc))
	require.NoError(t, err)

	require.Equal(t, "decay", model.Name())
	require.Equal(t, "time", model.Independent())

	require.Equal(t, []sysmodel.Entry{{Symbol: "x", Name: "x", Value: 1.0}}, model.States().Entries())
	require.Equal(t, []sysmodel.Entry{{Symbol: "k", Name: "k", Value: 0.5}}, model.Parameters().Entries())

	eqs := model.Equations()
	require.Len(t, eqs, 1)
	require.Equal(t, "x", eqs[0].LHS)
	require.True(t, eqs[0].Derivative)
	require.Equal(t, "-k*x", eqs[0].RHS.String())
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()
	m1, err := Build(context.Background(), []byte(decayDoc))
	require.NoError(t, err)
	m2, err := Build(context.Background(), []byte(decayDoc))
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(m1.States().Entries(), m2.States().Entries()))
	require.Empty(t, cmp.Diff(m1.Parameters().Entries(), m2.Parameters().Entries()))
	require.Empty(t, cmp.Diff(m1.Equations(), m2.Equations()))
}

func TestBuild_UpdateRoundTrip(t *testing.T) {
	t.Parallel()
	model, err := Build(context.Background(), []byte(decayDoc))
	require.NoError(t, err)

	require.NoError(t, model.UpdateParameter("k", 0.125))

	k, _ := model.Parameters().Get("k")
	require.Equal(t, 0.125, k)
	// Everything else unchanged.
	require.Equal(t, []sysmodel.Entry{{Symbol: "x", Name: "x", Value: 1.0}}, model.States().Entries())
}

// sharedDoc connects a quantity across two components, with an algebraic
// chain to exercise evaluation ordering.
const sharedDoc = `
<model name="shared">
  <component name="membrane">
    <variable name="t" units="second" public_interface="yes"/>
    <variable name="V" units="volt" initial_value="-80"/>
    <variable name="I" units="ampere" public_interface="yes"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/>
        <apply><diff/><bvar><ci>t</ci></bvar><ci>V</ci></apply>
        <apply><minus/><ci>I</ci></apply>
      </apply>
    </math>
  </component>
  <component name="channel">
    <variable name="t" units="second" public_interface="yes"/>
    <variable name="i_out" units="ampere" public_interface="yes"/>
    <variable name="g" units="siemens" initial_value="0.2"/>
    <variable name="scaled" units="ampere"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/>
        <ci>i_out</ci>
        <apply><times/><cn>2</cn><ci>scaled</ci></apply>
      </apply>
      <apply><eq/>
        <ci>scaled</ci>
        <apply><times/><ci>g</ci><cn>10</cn></apply>
      </apply>
    </math>
  </component>
  <connection>
    <map_components component_1="membrane" component_2="channel"/>
    <map_variables variable_1="t" variable_2="t"/>
    <map_variables variable_1="I" variable_2="i_out"/>
  </connection>
</model>`

func TestBuild_SharedQuantityAndAlgebraicOrdering(t *testing.T) {
	t.Parallel()
	model, err := Build(context.Background(), []byte(sharedDoc))
	require.NoError(t, err)

	// The connected pair (I, i_out) collapses onto one canonical symbol;
	// both members are public, so the first in document order wins.
	eqs := model.Equations()
	require.Len(t, eqs, 3)

	// States first, then algebraic equations dependencies-first: scaled is
	// read by I's definition, so it must come before it.
	require.True(t, eqs[0].Derivative)
	require.Equal(t, "V", eqs[0].LHS)
	require.Equal(t, "scaled", eqs[1].LHS)
	require.Equal(t, "I", eqs[2].LHS)

	// Partition totality: every canonical symbol is exactly one of state,
	// parameter, algebraic, or the independent variable.
	// Canonical symbols: t, V, I, g, scaled.
	states := model.States().Entries()
	params := model.Parameters().Entries()
	algebraic := len(eqs) - len(states)
	require.Equal(t, 5, len(states)+len(params)+algebraic+1)
}

func TestBuild_ConflictingInitialValues(t *testing.T) {
	t.Parallel()
	src := `
	<model name="m">
	  <component name="A">
	    <variable name="v" units="volt" public_interface="yes" initial_value="1.0"/>
	  </component>
	  <component name="B">
	    <variable name="vin" units="volt" public_interface="yes" initial_value="2.0"/>
	  </component>
	  <connection>
	    <map_components component_1="A" component_2="B"/>
	    <map_variables variable_1="v" variable_2="vin"/>
	  </connection>
	</model>`

	_, err := Build(context.Background(), []byte(src))

	var conflict *flatten.ConflictingInitialValueError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, 1.0, conflict.Value1)
	require.Equal(t, 2.0, conflict.Value2)
}

func TestBuild_UnderdeterminedSystem(t *testing.T) {
	t.Parallel()
	// u has no defining equation and no declared value.
	src := `
	<model name="m">
	  <component name="A">
	    <variable name="t" units="second"/>
	    <variable name="x" units="dimensionless" initial_value="1"/>
	    <variable name="u" units="dimensionless"/>
	    <math xmlns="http://www.w3.org/1998/Math/MathML">
	      <apply><eq/>
	        <apply><diff/><bvar><ci>t</ci></bvar><ci>x</ci></apply>
	        <ci>u</ci>
	      </apply>
	    </math>
	  </component>
	</model>`

	_, err := Build(context.Background(), []byte(src))

	var under *classify.UnderdeterminedSystemError
	require.ErrorAs(t, err, &under)
	require.Equal(t, "u", under.Symbol)
}

func TestBuild_CircularAlgebraicDefinitions(t *testing.T) {
	t.Parallel()
	src := `
	<model name="m">
	  <component name="A">
	    <variable name="a" units="dimensionless"/>
	    <variable name="b" units="dimensionless"/>
	    <math xmlns="http://www.w3.org/1998/Math/MathML">
	      <apply><eq/><ci>a</ci><ci>b</ci></apply>
	      <apply><eq/><ci>b</ci><ci>a</ci></apply>
	    </math>
	  </component>
	</model>`

	_, err := Build(context.Background(), []byte(src))
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular")
}

func TestBuild_StageErrorsSurfaceUnchanged(t *testing.T) {
	t.Parallel()
	_, err := Build(context.Background(), []byte(`not xml at all`))

	// The concrete stage error type is preserved, not wrapped in a generic
	// translation error.
	var malformed *document.MalformedDocumentError
	require.ErrorAs(t, err, &malformed)
}
