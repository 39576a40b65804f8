package mathml

import "fmt"

// UnsupportedOperatorError reports a math element outside the supported
// operator vocabulary, or a supported operator in a position the translator
// cannot accept (e.g. a derivative on a right-hand side).
type UnsupportedOperatorError struct {
	Operator  string
	Component string
	Detail    string
}

func (e *UnsupportedOperatorError) Error() string {
	msg := fmt.Sprintf("mathml: unsupported operator %q in component %q", e.Operator, e.Component)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
