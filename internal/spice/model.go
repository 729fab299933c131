package spice

import (
	"regexp"
	"strings"
)

// Fixed .MODEL TYPE table. Unknown types map to ModelOther and are never a
// parse failure: large vendor libraries carry types we do not simulate.
var modelTypes = map[string]ModelType{
	"D":    ModelDiode,
	"NPN":  ModelBJTNPN,
	"PNP":  ModelBJTPNP,
	"NMOS": ModelMOSFETN,
	"PMOS": ModelMOSFETP,
	"NJF":  ModelJFETN,
	"PJF":  ModelJFETP,
	"SW":   ModelVoltageSwitch,
	"CSW":  ModelCurrentSwitch,
}

var eqSpaceRe = regexp.MustCompile(`\s*=\s*`)

// ParseModel parses a joined `.MODEL <name> <TYPE> (<k=v> ...)` logical line.
// Parentheses are optional. It returns false when the line is not a
// well-formed model header; callers in library context skip such lines.
// Parameter pairs whose value fails to parse are dropped individually.
func ParseModel(text string) (*ModelDefinition, bool) {
	if !hasDirective(text, ".model") {
		return nil, false
	}

	// Normalise so "( k = v )" and "(k=v)" tokenize identically.
	norm := strings.NewReplacer("(", " ", ")", " ").Replace(text)
	norm = eqSpaceRe.ReplaceAllString(norm, "=")

	fields := strings.Fields(norm)
	if len(fields) < 3 {
		return nil, false
	}

	raw := strings.ToUpper(fields[2])
	typ, ok := modelTypes[raw]
	if !ok {
		typ = ModelOther
	}

	def := &ModelDefinition{
		Name:    fields[1],
		Type:    typ,
		RawType: raw,
		Params:  make(map[string]float64),
	}
	for _, tok := range fields[3:] {
		k, v, found := strings.Cut(tok, "=")
		if !found || k == "" {
			continue
		}
		num, err := ParseValue(v)
		if err != nil {
			continue
		}
		def.Params[strings.ToUpper(k)] = num
	}
	return def, true
}

// hasDirective reports whether the line starts with the given dot directive,
// case-insensitively.
func hasDirective(text, directive string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], directive)
}
