package sysmodel

import (
	"fmt"
	"strings"
)

// UnknownSymbolError reports an update naming no symbol, or a plain name
// shared by several canonical symbols.
type UnknownSymbolError struct {
	Name       string
	Candidates []string // non-empty when the plain name is ambiguous
}

func (e *UnknownSymbolError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("sysmodel: ambiguous symbol name %q: candidates %s",
			e.Name, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("sysmodel: unknown symbol %q", e.Name)
}

// Entry is one symbol with its numeric value. Name is the plain local name
// the symbol had in its owning component, which may differ from the
// canonical Symbol after namespace qualification.
type Entry struct {
	Symbol string
	Name   string
	Value  float64
}

// Values is an ordered symbol-to-value mapping. Order is fixed when the
// mapping is built and identical across snapshots of the same model.
type Values struct {
	entries []Entry
	index   map[string]int // canonical symbol -> position
}

// NewValues builds a mapping from entries, preserving their order.
func NewValues(entries []Entry) *Values {
	v := &Values{
		entries: append([]Entry(nil), entries...),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range v.entries {
		v.index[e.Symbol] = i
	}
	return v
}

// Len returns the number of entries.
func (v *Values) Len() int { return len(v.entries) }

// At returns the entry at position i.
func (v *Values) At(i int) Entry { return v.entries[i] }

// Entries returns a copy of all entries in order.
func (v *Values) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Get returns the value for a canonical symbol.
func (v *Values) Get(symbol string) (float64, bool) {
	i, ok := v.index[symbol]
	if !ok {
		return 0, false
	}
	return v.entries[i].Value, true
}

// Update sets the value for a symbol, addressed by canonical symbol or by
// unambiguous plain name, mutating the mapping in place. It fails with
// UnknownSymbolError when the name matches no entry or several.
func (v *Values) Update(symbolOrName string, value float64) error {
	if i, ok := v.index[symbolOrName]; ok {
		v.entries[i].Value = value
		return nil
	}
	match := -1
	var candidates []string
	for i, e := range v.entries {
		if e.Name == symbolOrName {
			candidates = append(candidates, e.Symbol)
			match = i
		}
	}
	switch len(candidates) {
	case 0:
		return &UnknownSymbolError{Name: symbolOrName}
	case 1:
		v.entries[match].Value = value
		return nil
	}
	return &UnknownSymbolError{Name: symbolOrName, Candidates: candidates}
}

// Clone returns an independent copy with identical order and values.
func (v *Values) Clone() *Values {
	return NewValues(v.entries)
}
