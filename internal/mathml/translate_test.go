package mathml

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/cellode/internal/document"
	"github.com/vk/cellode/internal/expr"
)

// mathBlock parses a document wrapping the given math content and returns
// the raw math element the way the pipeline hands it to Translate.
func mathBlock(t *testing.T, inner string) *document.Element {
	t.Helper()
	src := fmt.Sprintf(`<model name="m">
	  <component name="c">
	    <math xmlns="http://www.w3.org/1998/Math/MathML">%s</math>
	  </component>
	</model>`, inner)
	doc, err := document.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return doc.Component("c").Maths[0]
}

func TestTranslate_SimpleAlgebraicEquation(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>y</ci>
	    <apply><plus/><ci>a</ci><cn>2.5</cn></apply>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Len(t, eqs, 1)

	eq := eqs[0]
	require.Equal(t, "y", eq.LHS)
	require.False(t, eq.Derivative)
	require.Equal(t, expr.Apply(expr.OpAdd, expr.Symbol("a"), expr.Number(2.5)), eq.RHS)
	require.ElementsMatch(t, []string{"y", "a"}, eq.Symbols())
}

func TestTranslate_DerivativeEquation(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <apply><diff/><bvar><ci>time</ci></bvar><ci>x</ci></apply>
	    <apply><times/><apply><minus/><ci>k</ci></apply><ci>x</ci></apply>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Len(t, eqs, 1)

	eq := eqs[0]
	require.Equal(t, "x", eq.LHS)
	require.True(t, eq.Derivative)
	require.Equal(t, "time", eq.Bvar)
	require.Equal(t, "-k*x", eq.RHS.String())
}

func TestTranslate_MultipleEquationsPerBlock(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/><ci>a</ci><cn>1</cn></apply>
	  <apply><eq/><ci>b</ci><ci>a</ci></apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Len(t, eqs, 2)
	require.Equal(t, "a", eqs[0].LHS)
	require.Equal(t, "b", eqs[1].LHS)
}

func TestTranslate_Piecewise(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>gate</ci>
	    <piecewise>
	      <piece><cn>1</cn><apply><lt/><ci>v</ci><cn>0.5</cn></apply></piece>
	      <otherwise><cn>0</cn></otherwise>
	    </piecewise>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)

	rhs := eqs[0].RHS
	require.Equal(t, expr.KindPiecewise, rhs.Kind)
	require.Len(t, rhs.Pieces, 1)
	require.Equal(t, expr.Apply(expr.OpLt, expr.Symbol("v"), expr.Number(0.5)), rhs.Pieces[0].Cond)
	require.NotNil(t, rhs.Else)
	require.Equal(t, "piecewise(v<0.5 -> 1, otherwise -> 0)", rhs.String())
}

func TestTranslate_ENotationNumber(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>c0</ci>
	    <cn type="e-notation">1.2<sep/>5</cn>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Equal(t, expr.Number(1.2e5), eqs[0].RHS)
}

func TestTranslate_NamedFunctionsAndConstants(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>w</ci>
	    <apply><plus/>
	      <apply><exp/><ci>v</ci></apply>
	      <apply><max/><ci>v</ci><cn>0</cn></apply>
	      <pi/>
	    </apply>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Equal(t, "exp(v)+max(v, 0)+pi", eqs[0].RHS.String())
}

func TestTranslate_LogWithBase(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>w</ci>
	    <apply><log/><logbase><cn>2</cn></logbase><ci>v</ci></apply>
	  </apply>`)

	eqs, err := Translate("c", block)
	require.NoError(t, err)
	require.Equal(t, expr.Apply(expr.OpLog, expr.Symbol("v"), expr.Number(2)), eqs[0].RHS)
}

func TestTranslate_UnsupportedOperator(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>w</ci>
	    <apply><int/><ci>v</ci></apply>
	  </apply>`)

	_, err := Translate("c", block)

	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "int", unsupported.Operator)
	require.Equal(t, "c", unsupported.Component)
}

func TestTranslate_DerivativeOnRightSideRejected(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <ci>w</ci>
	    <apply><diff/><bvar><ci>t</ci></bvar><ci>v</ci></apply>
	  </apply>`)

	_, err := Translate("c", block)

	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "diff", unsupported.Operator)
}

func TestTranslate_SecondDerivativeRejected(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `
	  <apply><eq/>
	    <apply><diff/><bvar><ci>t</ci><degree><cn>2</cn></degree></bvar><ci>x</ci></apply>
	    <cn>0</cn>
	  </apply>`)

	_, err := Translate("c", block)

	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	require.Contains(t, unsupported.Detail, "first derivatives")
}

func TestTranslate_TopLevelMustBeEquality(t *testing.T) {
	t.Parallel()
	block := mathBlock(t, `<apply><plus/><ci>a</ci><ci>b</ci></apply>`)

	_, err := Translate("c", block)

	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
}
