// Package document parses the XML interchange document into an in-memory
// model tree: components, their variables with resolved units, raw embedded
// math blocks, and the declared cross-component connections.
//
// Parsing is the only stage that touches XML. Math blocks are carried
// through as raw element trees for the math translator; no later stage
// re-reads the source text.
//
// Unit definitions are resolved here against a read-only predefined table
// plus any user-defined units in the document. Resolved units travel with
// variables as metadata only; no dimensional consistency checking happens.
package document
