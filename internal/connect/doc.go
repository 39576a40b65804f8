// Package connect resolves cross-component variable mappings into
// equivalence classes.
//
// Each connection asserts that pairs of variables in two components denote
// the same quantity. Resolution is union-find over variable identities with
// union by rank and path compression, so the resulting partition does not
// depend on the order connections appear in the document. Class and member
// ordering in the output follows document traversal order, which keeps the
// downstream canonical-name tie-break reproducible.
package connect
