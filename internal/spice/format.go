package spice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Format renders the netlist back to SPICE text. Re-parsing the output
// reproduces the same component names, types, and node lists.
func (nl *Netlist) Format() string {
	var b strings.Builder

	if nl.Title != "" {
		fmt.Fprintf(&b, "* %s\n", nl.Title)
	}

	for _, c := range nl.Components {
		b.WriteString(c.Name)
		for _, n := range c.Nodes {
			b.WriteByte(' ')
			b.WriteString(n)
		}
		if c.Type == TypeMutualInductance {
			for i := 1; ; i++ {
				ind, ok := c.Params[fmt.Sprintf("ind%d", i)]
				if !ok {
					break
				}
				b.WriteByte(' ')
				b.WriteString(ind)
			}
		} else {
			for _, k := range sortedKeys(c.Params) {
				switch k {
				case "dc", "ac":
					fmt.Fprintf(&b, " %s %s", strings.ToUpper(k), c.Params[k])
				default:
					fmt.Fprintf(&b, " %s=%s", k, c.Params[k])
				}
			}
		}
		if c.HasValue {
			fmt.Fprintf(&b, " %s", formatValue(c.Value))
		}
		if c.Ref != "" {
			b.WriteByte(' ')
			b.WriteString(c.Ref)
		}
		b.WriteByte('\n')
	}

	for _, m := range nl.Models {
		fmt.Fprintf(&b, ".MODEL %s %s (", m.Name, typeKeyword(m))
		for i, k := range sortedKeys(m.Params) {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%s", k, formatValue(m.Params[k]))
		}
		b.WriteString(")\n")
	}

	for _, d := range nl.Directives {
		b.WriteString(d)
		b.WriteByte('\n')
	}

	b.WriteString(".END\n")
	return b.String()
}

// typeKeyword returns the on-disk TYPE keyword for a model. The raw keyword
// captured at parse time takes priority so unrecognized types round-trip;
// the reverse lookup covers definitions constructed in code.
func typeKeyword(m ModelDefinition) string {
	if m.RawType != "" {
		return m.RawType
	}
	for kw, typ := range modelTypes {
		if typ == m.Type {
			return kw
		}
	}
	return "D"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
