package circuit

import (
	"golang.org/x/sync/singleflight"

	"github.com/starford/spicerack/internal/spice"
)

// Lookup is the library-index view the resolver needs. *library.Index
// satisfies it.
type Lookup interface {
	Subcircuit(name string) (spice.SubcircuitDefinition, bool)
}

// Resolver binds subcircuit instances to shared definitions: the definition
// is looked up and its internal graph built on first use, then reused for
// every later instance. The build step is deduplicated per circuit and name
// so concurrent instances of a new subcircuit produce a single registration.
type Resolver struct {
	lib   Lookup
	group singleflight.Group
}

// NewResolver creates a resolver over the given library index.
func NewResolver(lib Lookup) *Resolver {
	return &Resolver{lib: lib}
}

// AddInstance resolves one subcircuit instance into c. Validation happens
// before registration, so a failed resolution leaves the circuit's
// registries untouched.
func (r *Resolver) AddInstance(c *Circuit, comp spice.ComponentDefinition) error {
	name := comp.Ref

	if sub, ok := c.Subcircuit(name); ok {
		// Registered already: reuse without reparsing.
		if len(comp.Nodes) != len(sub.Def.Nodes) {
			return &NodeCountError{
				Instance: comp.Name, Subcircuit: name,
				Want: len(sub.Def.Nodes), Got: len(comp.Nodes),
			}
		}
		c.bind(Instance{Name: comp.Name, Subcircuit: name, Nodes: comp.Nodes})
		return nil
	}

	sub, err := r.build(c, name)
	if err != nil {
		return err
	}
	if len(comp.Nodes) != len(sub.Def.Nodes) {
		return &NodeCountError{
			Instance: comp.Name, Subcircuit: name,
			Want: len(sub.Def.Nodes), Got: len(comp.Nodes),
		}
	}

	// Register before instantiating. A concurrent caller may have won the
	// race; first-wins either way, the instance binds to the survivor.
	c.register(sub)
	c.bind(Instance{Name: comp.Name, Subcircuit: name, Nodes: comp.Nodes})
	return nil
}

// Resolve walks a parsed netlist, placing plain components directly and
// resolving every subcircuit instance. The first error aborts.
func (r *Resolver) Resolve(c *Circuit, nl *spice.Netlist) error {
	for _, comp := range nl.Components {
		if comp.Type == spice.TypeSubcircuit {
			if err := r.AddInstance(c, comp); err != nil {
				return err
			}
			continue
		}
		c.AddComponent(comp)
	}
	return nil
}

// build looks the definition up in the library and parses its body into an
// internal component graph. singleflight keys on circuit and name so the
// body parses at most once per circuit however many instances arrive.
func (r *Resolver) build(c *Circuit, name string) (*Subcircuit, error) {
	v, err, _ := r.group.Do(c.Name+"\x00"+name, func() (any, error) {
		def, ok := r.lib.Subcircuit(name)
		if !ok {
			return nil, &UnknownSubcircuitError{Name: name}
		}
		nl, err := spice.ParseNetlist([]byte(def.Body))
		if err != nil {
			return nil, &BodyError{Subcircuit: name, Err: err}
		}
		models := make(map[string]spice.ModelDefinition, len(nl.Models))
		for _, m := range nl.Models {
			models[m.Name] = m
		}
		return &Subcircuit{Def: def, Components: nl.Components, Models: models}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Subcircuit), nil
}
