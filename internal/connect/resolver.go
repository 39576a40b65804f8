package connect

import (
	"context"
	"fmt"

	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/document"
)

// UndeclaredVariableError reports a reference to a variable (or a whole
// component) absent from the document, from either a connection mapping or
// an equation.
type UndeclaredVariableError struct {
	Component string
	Variable  string
}

func (e *UndeclaredVariableError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("connect: reference to undeclared component %q", e.Component)
	}
	return fmt.Sprintf("connect: reference to undeclared variable %q in component %q", e.Variable, e.Component)
}

// InterfaceMismatchError reports a mapped variable pair whose interface
// roles cannot legally be connected.
type InterfaceMismatchError struct {
	Component1 string
	Variable1  string
	Role1      document.Role
	Component2 string
	Variable2  string
	Role2      document.Role
}

func (e *InterfaceMismatchError) Error() string {
	return fmt.Sprintf("connect: cannot connect %s.%s (%s interface) to %s.%s (%s interface)",
		e.Component1, e.Variable1, e.Role1, e.Component2, e.Variable2, e.Role2)
}

// Class is one equivalence class of variables denoting a single quantity.
// Members are in document traversal order.
type Class struct {
	Members []*document.Variable
}

// Resolve partitions every variable in the document into equivalence
// classes according to the declared connections. Classes are returned in
// document traversal order of their first member; unconnected variables
// form singleton classes.
func Resolve(ctx context.Context, doc *document.Document) ([]*Class, error) {
	logger := ctxlog.FromContext(ctx)

	vars := doc.Variables()
	order := make(map[string]int, len(vars))
	byID := make(map[string]*document.Variable, len(vars))
	uf := newUnionFind()
	for i, v := range vars {
		order[v.ID()] = i
		byID[v.ID()] = v
		uf.add(v.ID())
	}

	for _, conn := range doc.Connections {
		c1 := doc.Component(conn.Component1)
		if c1 == nil {
			return nil, &UndeclaredVariableError{Component: conn.Component1}
		}
		c2 := doc.Component(conn.Component2)
		if c2 == nil {
			return nil, &UndeclaredVariableError{Component: conn.Component2}
		}
		for _, p := range conn.Pairs {
			v1 := c1.Variable(p.Variable1)
			if v1 == nil {
				return nil, &UndeclaredVariableError{Component: c1.Name, Variable: p.Variable1}
			}
			v2 := c2.Variable(p.Variable2)
			if v2 == nil {
				return nil, &UndeclaredVariableError{Component: c2.Name, Variable: p.Variable2}
			}
			if !rolesCompatible(v1.Role, v2.Role) {
				return nil, &InterfaceMismatchError{
					Component1: v1.Component, Variable1: v1.Name, Role1: v1.Role,
					Component2: v2.Component, Variable2: v2.Name, Role2: v2.Role,
				}
			}
			uf.union(v1.ID(), v2.ID())
		}
	}

	// Group members by set root, then order classes and members by document
	// traversal order so downstream naming is reproducible.
	grouped := make(map[string][]*document.Variable)
	var roots []string
	for _, v := range vars {
		root := uf.find(v.ID())
		if _, ok := grouped[root]; !ok {
			roots = append(roots, root)
		}
		grouped[root] = append(grouped[root], v)
	}
	classes := make([]*Class, 0, len(roots))
	for _, root := range roots {
		classes = append(classes, &Class{Members: grouped[root]})
	}

	logger.Debug("Connections resolved.",
		"variables", len(vars),
		"classes", len(classes))
	return classes, nil
}

// rolesCompatible reports whether two interface roles may be joined by a
// connection: a public side may pair with a public or private side, but a
// variable exposing no interface can never be mapped, and two private
// interfaces have no path to one another.
func rolesCompatible(a, b document.Role) bool {
	if a == document.RoleNone || b == document.RoleNone {
		return false
	}
	if a == document.RolePrivate && b == document.RolePrivate {
		return false
	}
	return true
}
