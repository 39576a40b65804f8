package document

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/cellode/internal/ctxlog"
)

// Parse reads one interchange document and returns the structured model
// tree with all units resolved.
func Parse(ctx context.Context, src []byte) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	root, err := decodeTree(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	if root == nil || root.Name != "model" {
		name := "(empty)"
		if root != nil {
			name = root.Name
		}
		return nil, &MalformedDocumentError{
			Detail: fmt.Sprintf("expected model root element, found %s", name),
		}
	}

	doc := &Document{Name: root.Attr("name")}

	var defs []unitsDef
	for _, el := range root.ChildrenNamed("units") {
		d, err := parseUnitsDef(el)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	doc.Units, err = resolveUnits(defs)
	if err != nil {
		return nil, err
	}

	for _, el := range root.ChildrenNamed("component") {
		comp, err := parseComponent(el, doc)
		if err != nil {
			return nil, err
		}
		if doc.Component(comp.Name) != nil {
			return nil, &MalformedDocumentError{
				Path:   "model/component[" + comp.Name + "]",
				Detail: "duplicate component name",
			}
		}
		doc.Components = append(doc.Components, comp)
	}

	for _, el := range root.ChildrenNamed("connection") {
		conn, err := parseConnection(el)
		if err != nil {
			return nil, err
		}
		doc.Connections = append(doc.Connections, conn)
	}

	logger.Debug("Document parsed.",
		"model", doc.Name,
		"components", len(doc.Components),
		"connections", len(doc.Connections))
	return doc, nil
}

// decodeTree builds a generic element tree from the XML token stream.
func decodeTree(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &MalformedDocumentError{Detail: "not well-formed XML", Err: err}
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: tok.Name.Local, Attrs: make(map[string]string, len(tok.Attr))}
			for _, a := range tok.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &MalformedDocumentError{Detail: "multiple root elements"}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if s := strings.TrimSpace(string(tok)); s != "" {
					el := stack[len(stack)-1]
					el.Text += s
					// Start a new segment after each child element.
					if len(el.Texts) == len(el.Children)+1 {
						el.Texts[len(el.Texts)-1] += s
					} else {
						el.Texts = append(el.Texts, s)
					}
				}
			}
		}
	}
	if root == nil {
		return nil, &MalformedDocumentError{Detail: "document has no root element"}
	}
	return root, nil
}

func parseUnitsDef(el *Element) (unitsDef, error) {
	name := el.Attr("name")
	if name == "" {
		return unitsDef{}, &MalformedDocumentError{
			Path:   "model/units",
			Detail: "units definition missing name attribute",
		}
	}
	d := unitsDef{name: name}
	for _, u := range el.ChildrenNamed("unit") {
		ref := unitRef{
			units:      u.Attr("units"),
			prefix:     u.Attr("prefix"),
			exponent:   1,
			multiplier: 1,
		}
		if ref.units == "" {
			return unitsDef{}, &MalformedDocumentError{
				Path:   "model/units[" + name + "]/unit",
				Detail: "unit reference missing units attribute",
			}
		}
		var err error
		if ref.exponent, err = optionalFloat(u, "exponent", 1); err != nil {
			return unitsDef{}, unitAttrError(name, "exponent", err)
		}
		if ref.multiplier, err = optionalFloat(u, "multiplier", 1); err != nil {
			return unitsDef{}, unitAttrError(name, "multiplier", err)
		}
		if ref.offset, err = optionalFloat(u, "offset", 0); err != nil {
			return unitsDef{}, unitAttrError(name, "offset", err)
		}
		d.refs = append(d.refs, ref)
	}
	if len(d.refs) == 0 {
		return unitsDef{}, &MalformedDocumentError{
			Path:   "model/units[" + name + "]",
			Detail: "units definition has no unit children",
		}
	}
	return d, nil
}

func unitAttrError(units, attr string, err error) error {
	return &MalformedDocumentError{
		Path:   "model/units[" + units + "]/unit",
		Detail: "invalid " + attr + " attribute",
		Err:    err,
	}
}

func optionalFloat(el *Element, attr string, def float64) (float64, error) {
	s := el.Attr(attr)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseComponent(el *Element, doc *Document) (*Component, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, &MalformedDocumentError{
			Path:   "model/component",
			Detail: "component missing name attribute",
		}
	}
	comp := &Component{Name: name}
	for _, v := range el.ChildrenNamed("variable") {
		variable, err := parseVariable(v, name, doc.Units)
		if err != nil {
			return nil, err
		}
		if comp.Variable(variable.Name) != nil {
			return nil, &MalformedDocumentError{
				Path:   "model/component[" + name + "]/variable[" + variable.Name + "]",
				Detail: "duplicate variable name",
			}
		}
		comp.Variables = append(comp.Variables, variable)
	}
	comp.Maths = el.ChildrenNamed("math")
	return comp, nil
}

func parseVariable(el *Element, component string, units UnitTable) (*Variable, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, &MalformedDocumentError{
			Path:   "model/component[" + component + "]/variable",
			Detail: "variable missing name attribute",
		}
	}
	unitsName := el.Attr("units")
	if unitsName == "" {
		return nil, &MalformedDocumentError{
			Path:   "model/component[" + component + "]/variable[" + name + "]",
			Detail: "variable missing units attribute",
		}
	}
	unit, ok := units.Lookup(unitsName)
	if !ok {
		return nil, &UnknownUnitError{Component: component, Variable: name, Units: unitsName}
	}

	v := &Variable{Component: component, Name: name, Units: unitsName, Unit: unit}
	switch {
	case el.Attr("public_interface") == "yes":
		v.Role = RolePublic
	case el.Attr("private_interface") == "yes":
		v.Role = RolePrivate
	}
	if s := el.Attr("initial_value"); s != "" {
		iv, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &MalformedDocumentError{
				Path:   "model/component[" + component + "]/variable[" + name + "]",
				Detail: "invalid initial_value attribute",
				Err:    err,
			}
		}
		v.HasInitial = true
		v.Initial = iv
	}
	return v, nil
}

func parseConnection(el *Element) (*Connection, error) {
	mc := el.FirstChild("map_components")
	if mc == nil {
		return nil, &MalformedDocumentError{
			Path:   "model/connection",
			Detail: "connection missing map_components child",
		}
	}
	c1, c2 := mc.Attr("component_1"), mc.Attr("component_2")
	if c1 == "" || c2 == "" {
		return nil, &MalformedDocumentError{
			Path:   "model/connection/map_components",
			Detail: "map_components missing component_1 or component_2",
		}
	}
	conn := &Connection{Component1: c1, Component2: c2}
	for _, mv := range el.ChildrenNamed("map_variables") {
		v1, v2 := mv.Attr("variable_1"), mv.Attr("variable_2")
		if v1 == "" || v2 == "" {
			return nil, &MalformedDocumentError{
				Path:   fmt.Sprintf("model/connection[%s,%s]/map_variables", c1, c2),
				Detail: "map_variables missing variable_1 or variable_2",
			}
		}
		conn.Pairs = append(conn.Pairs, MapPair{Variable1: v1, Variable2: v2})
	}
	if len(conn.Pairs) == 0 {
		return nil, &MalformedDocumentError{
			Path:   fmt.Sprintf("model/connection[%s,%s]", c1, c2),
			Detail: "connection maps no variables",
		}
	}
	return conn, nil
}
