// Package depgraph orders the algebraic half of a flattened equation system.
//
// Each algebraic symbol depends on the symbols its defining right-hand side
// references. A valid system must be acyclic there: a cycle would require a
// simultaneous nonlinear solve, which the assembled model does not promise
// its consumer. The package detects such cycles and emits a deterministic
// topological evaluation order.
package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// CyclicDependencyError reports a cycle among algebraic definitions. Cycle
// lists the symbols involved in walk order.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("depgraph: circular algebraic definition: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is a dependency graph over symbol names.
type Graph struct {
	nodes map[string]*node
	order []string // insertion order, for deterministic traversal
}

type node struct {
	id   string
	deps map[string]*node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode registers a symbol. Adding an existing symbol does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id, deps: make(map[string]*node)}
	g.order = append(g.order, id)
}

// AddEdge records that from depends on to. Both symbols must be registered;
// edges to unregistered symbols are the caller's validation problem and are
// rejected.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return &CyclicDependencyError{Cycle: []string{from, to}}
	}
	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("depgraph: unknown node %q", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("depgraph: unknown node %q", to)
	}
	fromNode.deps[to] = toNode
	return nil
}

// TopoSort returns the symbols in dependency order (every symbol after all
// of its dependencies), or a CyclicDependencyError. The order is
// deterministic: ties resolve by insertion order.
func (g *Graph) TopoSort() ([]string, error) {
	// Depth-first search with three node colors: done nodes are fully
	// explored, active nodes are on the current recursion stack.
	done := make(map[string]bool, len(g.nodes))
	active := make(map[string]bool)
	var out []string
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if done[n.id] {
			return nil
		}
		if active[n.id] {
			return &CyclicDependencyError{Cycle: cycleFrom(stack, n.id)}
		}
		active[n.id] = true
		stack = append(stack, n.id)
		for _, dep := range sortedDeps(n) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		active[n.id] = false
		done[n.id] = true
		out = append(out, n.id)
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sortedDeps(n *node) []*node {
	deps := make([]*node, 0, len(n.deps))
	for _, d := range n.deps {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].id < deps[j].id })
	return deps
}

// cycleFrom trims the recursion stack to the portion forming the cycle and
// closes it with the repeated symbol.
func cycleFrom(stack []string, repeat string) []string {
	for i, id := range stack {
		if id == repeat {
			cycle := append([]string{}, stack[i:]...)
			return append(cycle, repeat)
		}
	}
	return []string{repeat, repeat}
}
