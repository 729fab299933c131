package spice

import (
	"fmt"
	"strings"
)

// LineError is the fatal error class for netlist parsing: one line that
// cannot be decomposed invalidates the whole circuit description.
type LineError struct {
	Number int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("netlist: line %d: %s: %q", e.Number, e.Reason, e.Text)
}

// Reference-designator prefix → component type.
var componentTypes = map[byte]ComponentType{
	'R': TypeResistor,
	'C': TypeCapacitor,
	'L': TypeInductor,
	'D': TypeDiode,
	'Q': TypeBJT,
	'M': TypeMOSFET,
	'J': TypeJFET,
	'V': TypeVoltageSource,
	'I': TypeCurrentSource,
	'E': TypeVCVS,
	'G': TypeVCCS,
	'H': TypeCCVS,
	'F': TypeCCCS,
	'K': TypeMutualInductance,
	'X': TypeSubcircuit,
	'S': TypeVoltageSwitch,
	'W': TypeCurrentSwitch,
}

// Expected leading node count per component type. Subcircuit instances are
// variable (every token up to the trailing definition name is a node) and
// are handled separately.
var leadingNodes = map[ComponentType]int{
	TypeResistor:         2,
	TypeCapacitor:        2,
	TypeInductor:         2,
	TypeDiode:            2,
	TypeBJT:              3,
	TypeMOSFET:           4,
	TypeJFET:             3,
	TypeVoltageSource:    2,
	TypeCurrentSource:    2,
	TypeVCVS:             4,
	TypeVCCS:             4,
	TypeCCVS:             2,
	TypeCCCS:             2,
	TypeMutualInductance: 0,
	TypeVoltageSwitch:    4,
	TypeCurrentSwitch:    2,
}

// ParseNetlist parses a full circuit description. Unlike library parsing,
// any line that cannot be decomposed aborts with a *LineError naming the
// offending text. A leading comment line becomes the title; .MODEL lines
// reuse the model parser (malformed ones are fatal here); other dot
// directives are kept verbatim so a parsed netlist can be re-exported.
func ParseNetlist(data []byte) (*Netlist, error) {
	nl := &Netlist{}
	lines := Tokenize(string(data))

	for i, ln := range lines {
		if i == 0 && len(ln.Comments) > 0 {
			nl.Title = ln.Comments[0]
		}

		switch {
		case hasDirective(ln.Text, ".model"):
			def, ok := ParseModel(ln.Text)
			if !ok {
				return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: "malformed .MODEL"}
			}
			nl.Models = append(nl.Models, *def)

		case hasDirective(ln.Text, ".end"):
			return nl, nil

		case strings.HasPrefix(ln.Text, "."):
			nl.Directives = append(nl.Directives, ln.Text)

		default:
			comp, err := parseComponent(ln)
			if err != nil {
				return nil, err
			}
			nl.Components = append(nl.Components, *comp)
		}
	}
	return nl, nil
}

// parseComponent decomposes one instance line.
func parseComponent(ln Line) (*ComponentDefinition, error) {
	fields := strings.Fields(ln.Text)
	if len(fields) < 2 {
		return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: "too few tokens"}
	}

	name := fields[0]
	typ, ok := componentTypes[upperByte(name[0])]
	if !ok {
		return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: fmt.Sprintf("unknown reference designator %q", string(name[0]))}
	}

	comp := &ComponentDefinition{Name: name, Type: typ}

	switch typ {
	case TypeSubcircuit:
		// X<name> <node>+ <subckt-name>
		if len(fields) < 3 {
			return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: "subcircuit instance needs nodes and a definition name"}
		}
		comp.Nodes = fields[1 : len(fields)-1]
		comp.Ref = fields[len(fields)-1]
		return comp, nil

	case TypeMutualInductance:
		// K<name> <inductor> <inductor>+ <coefficient>
		if len(fields) < 4 {
			return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: "mutual inductance needs two inductors and a coefficient"}
		}
		coeff, err := ParseValue(fields[len(fields)-1])
		if err != nil {
			return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: "invalid coupling coefficient"}
		}
		comp.Value, comp.HasValue = coeff, true
		comp.Params = make(map[string]string)
		for i, ind := range fields[1 : len(fields)-1] {
			comp.Params[fmt.Sprintf("ind%d", i+1)] = ind
		}
		return comp, nil
	}

	want := leadingNodes[typ]
	if len(fields) < 1+want {
		return nil, &LineError{
			Number: ln.Number, Text: ln.Text,
			Reason: fmt.Sprintf("%s needs %d nodes, has %d tokens", typ, want, len(fields)-1),
		}
	}
	comp.Nodes = fields[1 : 1+want]

	rest := fields[1+want:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case strings.EqualFold(tok, "DC") || strings.EqualFold(tok, "AC"):
			// DC/AC keywords introduce an auxiliary source parameter.
			if i+1 >= len(rest) {
				return nil, &LineError{Number: ln.Number, Text: ln.Text, Reason: fmt.Sprintf("missing %s value", strings.ToUpper(tok))}
			}
			i++
			if comp.Params == nil {
				comp.Params = make(map[string]string)
			}
			comp.Params[strings.ToLower(tok)] = rest[i]

		case strings.Contains(tok, "="):
			k, v, _ := strings.Cut(tok, "=")
			if comp.Params == nil {
				comp.Params = make(map[string]string)
			}
			comp.Params[strings.ToLower(k)] = v

		case IsValue(tok):
			val, _ := ParseValue(tok)
			comp.Value, comp.HasValue = val, true

		default:
			comp.Ref = tok
		}
	}

	return comp, nil
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
