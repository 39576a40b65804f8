package document

// Element is one node of a generic XML element tree. Names are namespace
// local parts; the interchange vocabulary does not reuse local names across
// namespaces, so the prefix carries no information here.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
	// Texts holds the text content split at child-element boundaries, for
	// mixed content such as e-notation numbers (mantissa, separator,
	// exponent). Text is the concatenation of all segments.
	Texts []string
}

// Attr returns the named attribute or "" when absent.
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// ChildrenNamed returns the direct children with the given local name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child with the given local name, or nil.
func (e *Element) FirstChild(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Role is a variable's declared interface visibility.
type Role int

const (
	// RoleNone means the variable may not be the target of a connection.
	RoleNone Role = iota
	// RolePublic exposes the variable to sibling components.
	RolePublic
	// RolePrivate exposes the variable to encapsulated child components.
	RolePrivate
)

func (r Role) String() string {
	switch r {
	case RolePublic:
		return "public"
	case RolePrivate:
		return "private"
	}
	return "none"
}

// Variable is one declared quantity owned by a component.
type Variable struct {
	Component  string
	Name       string
	Units      string
	Unit       Unit
	Role       Role
	HasInitial bool
	Initial    float64
}

// ID returns the document-unique identity "component.name".
func (v *Variable) ID() string {
	return v.Component + "." + v.Name
}

// Component is one named component with its variables and raw math blocks,
// in document order.
type Component struct {
	Name      string
	Variables []*Variable
	Maths     []*Element
}

// Variable returns the named local variable, or nil.
func (c *Component) Variable(name string) *Variable {
	for _, v := range c.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// MapPair asserts that a variable in the first component and a variable in
// the second component denote the same quantity.
type MapPair struct {
	Variable1 string
	Variable2 string
}

// Connection pairs two components and lists their shared variables.
type Connection struct {
	Component1 string
	Component2 string
	Pairs      []MapPair
}

// Document is the fully parsed interchange document.
type Document struct {
	Name        string
	Components  []*Component
	Connections []*Connection
	Units       UnitTable
}

// Component returns the named component, or nil.
func (d *Document) Component(name string) *Component {
	for _, c := range d.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Variables returns every variable in document traversal order.
func (d *Document) Variables() []*Variable {
	var out []*Variable
	for _, c := range d.Components {
		out = append(out, c.Variables...)
	}
	return out
}
