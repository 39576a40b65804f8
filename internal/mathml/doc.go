// Package mathml translates embedded content-markup math blocks into
// symbolic equations over the expr tree.
//
// Content markup is structurally unambiguous, so translation is a direct
// structural recursion over the element tree with no precedence inference.
// The operator vocabulary is closed; any element outside it fails with an
// UnsupportedOperatorError naming the operator and the owning component.
package mathml
