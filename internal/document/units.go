package document

import (
	"math"
	"strconv"
)

// Unit is a resolved physical unit expressed over SI base dimensions.
// Multiplier and Offset relate a value in this unit to the base-dimension
// value; Dims maps base unit name to its exponent. Units are metadata only
// in this pipeline, carried through for the downstream consumer.
type Unit struct {
	Name       string
	Multiplier float64
	Offset     float64
	Dims       map[string]float64
}

func baseUnit(name string) Unit {
	return Unit{Name: name, Multiplier: 1, Dims: map[string]float64{name: 1}}
}

func derivedUnit(name string, mult float64, dims map[string]float64) Unit {
	return Unit{Name: name, Multiplier: mult, Dims: dims}
}

// predefinedUnits is the read-only table of units every document may
// reference without defining. Initialized once; the only process-global
// state in the pipeline.
var predefinedUnits = buildPredefined()

func buildPredefined() map[string]Unit {
	t := map[string]Unit{
		"dimensionless": {Name: "dimensionless", Multiplier: 1, Dims: map[string]float64{}},
	}
	for _, b := range []string{"ampere", "candela", "kelvin", "kilogram", "metre", "mole", "second"} {
		t[b] = baseUnit(b)
	}
	t["meter"] = derivedUnit("meter", 1, map[string]float64{"metre": 1})
	t["gram"] = derivedUnit("gram", 1e-3, map[string]float64{"kilogram": 1})
	t["litre"] = derivedUnit("litre", 1e-3, map[string]float64{"metre": 3})
	t["liter"] = t["litre"]
	t["radian"] = derivedUnit("radian", 1, map[string]float64{})
	t["steradian"] = derivedUnit("steradian", 1, map[string]float64{})
	t["hertz"] = derivedUnit("hertz", 1, map[string]float64{"second": -1})
	t["becquerel"] = t["hertz"]
	t["newton"] = derivedUnit("newton", 1, map[string]float64{"kilogram": 1, "metre": 1, "second": -2})
	t["pascal"] = derivedUnit("pascal", 1, map[string]float64{"kilogram": 1, "metre": -1, "second": -2})
	t["joule"] = derivedUnit("joule", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -2})
	t["watt"] = derivedUnit("watt", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -3})
	t["coulomb"] = derivedUnit("coulomb", 1, map[string]float64{"ampere": 1, "second": 1})
	t["volt"] = derivedUnit("volt", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -3, "ampere": -1})
	t["farad"] = derivedUnit("farad", 1, map[string]float64{"kilogram": -1, "metre": -2, "second": 4, "ampere": 2})
	t["ohm"] = derivedUnit("ohm", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -3, "ampere": -2})
	t["siemens"] = derivedUnit("siemens", 1, map[string]float64{"kilogram": -1, "metre": -2, "second": 3, "ampere": 2})
	t["weber"] = derivedUnit("weber", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -2, "ampere": -1})
	t["tesla"] = derivedUnit("tesla", 1, map[string]float64{"kilogram": 1, "second": -2, "ampere": -1})
	t["henry"] = derivedUnit("henry", 1, map[string]float64{"kilogram": 1, "metre": 2, "second": -2, "ampere": -2})
	t["lumen"] = derivedUnit("lumen", 1, map[string]float64{"candela": 1})
	t["lux"] = derivedUnit("lux", 1, map[string]float64{"candela": 1, "metre": -2})
	t["gray"] = derivedUnit("gray", 1, map[string]float64{"metre": 2, "second": -2})
	t["sievert"] = t["gray"]
	t["katal"] = derivedUnit("katal", 1, map[string]float64{"mole": 1, "second": -1})
	t["celsius"] = Unit{Name: "celsius", Multiplier: 1, Offset: 273.15, Dims: map[string]float64{"kelvin": 1}}
	return t
}

var siPrefixes = map[string]float64{
	"yotta": 1e24, "zetta": 1e21, "exa": 1e18, "peta": 1e15, "tera": 1e12,
	"giga": 1e9, "mega": 1e6, "kilo": 1e3, "hecto": 1e2, "deka": 1e1, "deca": 1e1,
	"deci": 1e-1, "centi": 1e-2, "milli": 1e-3, "micro": 1e-6, "nano": 1e-9,
	"pico": 1e-12, "femto": 1e-15, "atto": 1e-18, "zepto": 1e-21, "yocto": 1e-24,
}

// prefixFactor resolves a prefix attribute, which may be a named SI prefix
// or a bare integer power of ten.
func prefixFactor(s string) (float64, bool) {
	if s == "" {
		return 1, true
	}
	if f, ok := siPrefixes[s]; ok {
		return f, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return math.Pow(10, float64(n)), true
	}
	return 0, false
}

// unitRef is one <unit> child of a user-defined units element, before
// resolution.
type unitRef struct {
	units      string
	prefix     string
	exponent   float64
	multiplier float64
	offset     float64
}

// unitsDef is one user-defined <units> element, before resolution.
type unitsDef struct {
	name string
	refs []unitRef
}

// UnitTable maps each resolvable units name to its resolved Unit. A table
// is built once per document and read-only afterwards.
type UnitTable map[string]Unit

// Lookup resolves a units name against the table; predefined names are
// always present.
func (t UnitTable) Lookup(name string) (Unit, bool) {
	u, ok := t[name]
	return u, ok
}

// resolveUnits composes user-defined units over the predefined table.
// Definitions may reference each other in any order; resolution iterates to
// a fixpoint and reports the first definition left unresolved.
func resolveUnits(defs []unitsDef) (UnitTable, error) {
	table := make(UnitTable, len(predefinedUnits)+len(defs))
	for k, v := range predefinedUnits {
		table[k] = v
	}

	pending := make([]unitsDef, len(defs))
	copy(pending, defs)
	defined := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		defined[d.name] = struct{}{}
	}
	for len(pending) > 0 {
		progressed := false
		var next []unitsDef
		for _, d := range pending {
			u, err := composeUnit(d, table)
			if err != nil {
				return nil, err
			}
			if u == nil {
				next = append(next, d)
				continue
			}
			table[d.name] = *u
			progressed = true
		}
		if !progressed {
			d := next[0]
			for _, r := range d.refs {
				if _, ok := table[r.units]; ok {
					continue
				}
				if _, ok := defined[r.units]; !ok {
					return nil, &UnknownUnitError{In: d.name, Units: r.units}
				}
			}
			// Every reference names a definition yet nothing progressed:
			// the definitions are mutually recursive.
			return nil, &MalformedDocumentError{
				Path:   "model/units[" + d.name + "]",
				Detail: "circular units definition",
			}
		}
		pending = next
	}
	return table, nil
}

// composeUnit resolves one definition against the table. A nil Unit with a
// nil error means a reference is not resolvable yet.
func composeUnit(d unitsDef, table UnitTable) (*Unit, error) {
	out := Unit{Name: d.name, Multiplier: 1, Dims: map[string]float64{}}
	for _, r := range d.refs {
		ref, ok := table[r.units]
		if !ok {
			return nil, nil
		}
		pf, ok := prefixFactor(r.prefix)
		if !ok {
			return nil, &MalformedDocumentError{
				Path:   "model/units[" + d.name + "]/unit",
				Detail: "unrecognized prefix " + strconv.Quote(r.prefix),
			}
		}
		out.Multiplier *= r.multiplier * math.Pow(pf*ref.Multiplier, r.exponent)
		for dim, exp := range ref.Dims {
			out.Dims[dim] += exp * r.exponent
			if out.Dims[dim] == 0 {
				delete(out.Dims, dim)
			}
		}
		// An offset only survives a lone, unscaled reference (e.g. celsius).
		if len(d.refs) == 1 && r.exponent == 1 {
			out.Offset = r.offset + ref.Offset
		}
	}
	return &out, nil
}
