// Package expr defines the symbolic expression tree shared by the math
// translator, the namespace flattener, and the assembled model.
//
// The tree is a closed tagged variant: every node is a Node struct whose
// Kind field selects which of its payload fields are meaningful, and the
// operator vocabulary is the fixed Op enumeration. Translation and rewriting
// are structural recursion over that closed set, so an unhandled operator is
// a translation-time error rather than a silent passthrough.
//
// Nodes are immutable after construction. Rewriting operations (Rename)
// return fresh trees and never mutate their receiver, which keeps flattened
// equations independent of the pre-flattening trees they were derived from.
package expr
