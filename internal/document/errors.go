package document

import "fmt"

// MalformedDocumentError reports a document that is not well-formed XML or
// does not carry the expected model structure. Path locates the offending
// element ("model/component[heart]/variable" style).
type MalformedDocumentError struct {
	Path   string
	Detail string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document: malformed model document: %s", e.Detail)
	}
	return fmt.Sprintf("document: malformed model document at %s: %s", e.Path, e.Detail)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// UnknownUnitError reports a units reference the system cannot resolve,
// either on a variable declaration or inside a user-defined units element.
type UnknownUnitError struct {
	Component string // empty for a units-definition reference
	Variable  string // empty for a units-definition reference
	In        string // name of the user-defined units element, if any
	Units     string
}

func (e *UnknownUnitError) Error() string {
	if e.In != "" {
		return fmt.Sprintf("document: unknown units %q referenced by units definition %q", e.Units, e.In)
	}
	return fmt.Sprintf("document: unknown units %q on variable %s.%s", e.Units, e.Component, e.Variable)
}
