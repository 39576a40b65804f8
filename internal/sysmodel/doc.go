// Package sysmodel defines the terminal artifact of translation: the
// ordered equation system handed to the external symbolic/numeric consumer.
//
// A Model fixes its state, parameter, and equation order at construction;
// the order never changes afterwards, because solvers rely on positional
// correspondence between symbols and vector slots. Parameter defaults and
// state initial values stay mutable through explicit update operations so a
// caller can explore scenarios without re-parsing the source document.
//
// Values mappings returned by a Model are snapshots owned by the caller,
// never live views into the model.
package sysmodel
