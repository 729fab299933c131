package spice

import (
	"strconv"
	"strings"
)

// DefaultUnitSuffixes is the corpus-driven list of unit words stripped from
// the end of metadata values. It is a convention, not a unit grammar, so it
// stays a configurable literal list.
var DefaultUnitSuffixes = []string{
	"in", "mm", "cm", "m",
	"ohm", "ohms",
	"db", "hz", "khz",
	"w", "watts",
	"g", "kg", "grams",
	"l", "liters", "litres",
	"mh", "uh", "mm2", "cm2",
}

// LibraryParser extracts .MODEL and .SUBCKT definitions from library file
// text. It is deliberately tolerant: a malformed entry is skipped and the
// rest of the file is still parsed, so one bad vendor model cannot poison
// an entire library directory.
type LibraryParser struct {
	units map[string]struct{}
}

// NewLibraryParser creates a parser with the given metadata unit-suffix
// allow-list. An empty list falls back to DefaultUnitSuffixes.
func NewLibraryParser(unitSuffixes []string) *LibraryParser {
	if len(unitSuffixes) == 0 {
		unitSuffixes = DefaultUnitSuffixes
	}
	units := make(map[string]struct{}, len(unitSuffixes))
	for _, u := range unitSuffixes {
		units[strings.ToLower(u)] = struct{}{}
	}
	return &LibraryParser{units: units}
}

// Parse scans library text and returns every definition it could extract.
// It never fails.
func (p *LibraryParser) Parse(data []byte) *Library {
	lib := &Library{}
	lines := Tokenize(string(data))

	var (
		sub       *SubcircuitDefinition
		bodyLines []string
	)

	closeSub := func() {
		if sub == nil {
			return
		}
		sub.Body = strings.Join(bodyLines, "\n")
		lib.Subcircuits = append(lib.Subcircuits, *sub)
		sub = nil
		bodyLines = nil
	}

	for _, ln := range lines {
		switch {
		case hasDirective(ln.Text, ".subckt"):
			// A new header implicitly closes an unterminated block.
			closeSub()
			if def, ok := p.parseSubcktHeader(ln); ok {
				sub = def
				bodyLines = nil
			}

		case hasDirective(ln.Text, ".ends"):
			closeSub()

		case hasDirective(ln.Text, ".model"):
			if sub != nil {
				// Model headers are not valid inside a block either;
				// treat as an implicit close, then parse the model.
				closeSub()
			}
			if def, ok := ParseModel(ln.Text); ok {
				lib.Models = append(lib.Models, *def)
			}

		case sub != nil:
			bodyLines = append(bodyLines, ln.Text)
		}
	}
	closeSub()

	return lib
}

// parseSubcktHeader parses a joined `.SUBCKT <name> <node>+` line and
// collects metadata from the comment run preceding it. A header with no
// nodes is malformed and skipped.
func (p *LibraryParser) parseSubcktHeader(ln Line) (*SubcircuitDefinition, bool) {
	fields := strings.Fields(ln.Text)
	if len(fields) < 3 {
		return nil, false
	}
	def := &SubcircuitDefinition{
		Name:  fields[1],
		Nodes: fields[2:],
	}
	def.Metadata, def.TSParams = p.extractMetadata(ln.Comments)
	return def, true
}

// extractMetadata turns a `* KEY: VALUE` comment run into string metadata,
// additionally parsing recognised Thiele/Small keys as numbers. Comment
// lines without a colon are ignored.
func (p *LibraryParser) extractMetadata(comments []string) (map[string]string, map[string]float64) {
	var (
		meta map[string]string
		ts   map[string]float64
	)
	for _, c := range comments {
		k, v, found := strings.Cut(c, ":")
		if !found {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		val := p.stripUnitSuffix(collapseSpaces(strings.TrimSpace(v)))
		if val == "" {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[key] = val

		if _, known := TSParameterNames[key]; known {
			if num, err := strconv.ParseFloat(val, 64); err == nil {
				if ts == nil {
					ts = make(map[string]float64)
				}
				ts[key] = num
			}
		}
	}
	return meta, ts
}

// stripUnitSuffix drops a trailing recognised unit word ("6.5 in" → "6.5").
func (p *LibraryParser) stripUnitSuffix(val string) string {
	idx := strings.LastIndexByte(val, ' ')
	if idx < 0 {
		return val
	}
	if _, ok := p.units[strings.ToLower(val[idx+1:])]; ok {
		return strings.TrimSpace(val[:idx])
	}
	return val
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
