package connect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/cellode/internal/document"
)

func variable(comp, name string, role document.Role) *document.Variable {
	return &document.Variable{Component: comp, Name: name, Units: "dimensionless", Role: role}
}

// chainDoc builds three components with a shared quantity connected
// A-B and B-C, so the full class spans all three.
func chainDoc(connections []*document.Connection) *document.Document {
	return &document.Document{
		Name: "chain",
		Components: []*document.Component{
			{Name: "A", Variables: []*document.Variable{variable("A", "v", document.RolePublic)}},
			{Name: "B", Variables: []*document.Variable{variable("B", "vb", document.RolePrivate)}},
			{Name: "C", Variables: []*document.Variable{variable("C", "vc", document.RolePublic), variable("C", "w", document.RolePublic)}},
		},
		Connections: connections,
	}
}

func chainConnections() []*document.Connection {
	return []*document.Connection{
		{Component1: "A", Component2: "B", Pairs: []document.MapPair{{Variable1: "v", Variable2: "vb"}}},
		{Component1: "B", Component2: "C", Pairs: []document.MapPair{{Variable1: "vb", Variable2: "vc"}}},
	}
}

func classIDs(classes []*Class) [][]string {
	out := make([][]string, len(classes))
	for i, c := range classes {
		for _, m := range c.Members {
			out[i] = append(out[i], m.ID())
		}
	}
	return out
}

func TestResolve_TransitiveUnion(t *testing.T) {
	t.Parallel()
	doc := chainDoc(chainConnections())

	classes, err := Resolve(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, [][]string{
		{"A.v", "B.vb", "C.vc"},
		{"C.w"},
	}, classIDs(classes))
}

func TestResolve_OrderIndependent(t *testing.T) {
	t.Parallel()
	forward := chainDoc(chainConnections())

	reversed := chainConnections()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	backward := chainDoc(reversed)

	c1, err := Resolve(context.Background(), forward)
	require.NoError(t, err)
	c2, err := Resolve(context.Background(), backward)
	require.NoError(t, err)

	// Shuffling the connection list must not change the partition or its
	// ordering.
	require.Equal(t, classIDs(c1), classIDs(c2))
}

func TestResolve_SingletonsWithoutConnections(t *testing.T) {
	t.Parallel()
	doc := chainDoc(nil)

	classes, err := Resolve(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, classes, 4)
	for _, c := range classes {
		require.Len(t, c.Members, 1)
	}
}

func TestResolve_UndeclaredVariable(t *testing.T) {
	t.Parallel()
	doc := chainDoc([]*document.Connection{
		{Component1: "A", Component2: "B", Pairs: []document.MapPair{{Variable1: "missing", Variable2: "vb"}}},
	})

	_, err := Resolve(context.Background(), doc)

	var undeclared *UndeclaredVariableError
	require.ErrorAs(t, err, &undeclared)
	require.Equal(t, "A", undeclared.Component)
	require.Equal(t, "missing", undeclared.Variable)
}

func TestResolve_UndeclaredComponent(t *testing.T) {
	t.Parallel()
	doc := chainDoc([]*document.Connection{
		{Component1: "Z", Component2: "B", Pairs: []document.MapPair{{Variable1: "v", Variable2: "vb"}}},
	})

	_, err := Resolve(context.Background(), doc)

	var undeclared *UndeclaredVariableError
	require.ErrorAs(t, err, &undeclared)
	require.Equal(t, "Z", undeclared.Component)
	require.Empty(t, undeclared.Variable)
}

func TestResolve_InterfaceMismatch(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		role1  document.Role
		role2  document.Role
		wantOK bool
	}{
		{"public to public", document.RolePublic, document.RolePublic, true},
		{"public to private", document.RolePublic, document.RolePrivate, true},
		{"private to public", document.RolePrivate, document.RolePublic, true},
		{"private to private", document.RolePrivate, document.RolePrivate, false},
		{"none to public", document.RoleNone, document.RolePublic, false},
		{"public to none", document.RolePublic, document.RoleNone, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := &document.Document{
				Components: []*document.Component{
					{Name: "A", Variables: []*document.Variable{variable("A", "x", tc.role1)}},
					{Name: "B", Variables: []*document.Variable{variable("B", "y", tc.role2)}},
				},
				Connections: []*document.Connection{
					{Component1: "A", Component2: "B", Pairs: []document.MapPair{{Variable1: "x", Variable2: "y"}}},
				},
			}

			_, err := Resolve(context.Background(), doc)
			if tc.wantOK {
				require.NoError(t, err)
				return
			}
			var mismatch *InterfaceMismatchError
			require.ErrorAs(t, err, &mismatch)
			require.Equal(t, "A", mismatch.Component1)
			require.Equal(t, "B", mismatch.Component2)
		})
	}
}
