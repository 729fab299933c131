// Package circuit assembles component graphs from parsed netlists, binding
// subcircuit instances to shared definitions held in the library index.
package circuit

import (
	"fmt"
	"sync"

	"github.com/starford/spicerack/internal/spice"
)

// Subcircuit is a definition registered in a circuit: the library definition
// plus its internal component graph, parsed once at registration time.
type Subcircuit struct {
	Def        spice.SubcircuitDefinition
	Components []spice.ComponentDefinition
	Models     map[string]spice.ModelDefinition
}

// Instance is one placement of a subcircuit definition, binding the
// definition's pins to circuit node names positionally.
type Instance struct {
	Name       string   `json:"name"`
	Subcircuit string   `json:"subcircuit"`
	Nodes      []string `json:"nodes"`
}

// Circuit is a component graph under construction. Subcircuit definitions
// are registered once by name; instances reference them rather than owning
// copies.
type Circuit struct {
	Name string

	mu         sync.Mutex
	subckts    map[string]*Subcircuit
	instances  []Instance
	components []spice.ComponentDefinition
}

// New creates an empty circuit.
func New(name string) *Circuit {
	return &Circuit{
		Name:    name,
		subckts: make(map[string]*Subcircuit),
	}
}

// Subcircuit returns the registered definition for name.
func (c *Circuit) Subcircuit(name string) (*Subcircuit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subckts[name]
	return s, ok
}

// SubcircuitCount returns the number of registered definitions.
func (c *Circuit) SubcircuitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subckts)
}

// Instances returns all bound subcircuit instances.
func (c *Circuit) Instances() []Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// Components returns all directly placed (non-subcircuit) components.
func (c *Circuit) Components() []spice.ComponentDefinition {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]spice.ComponentDefinition, len(c.components))
	copy(out, c.components)
	return out
}

// AddComponent places a plain component into the circuit.
func (c *Circuit) AddComponent(comp spice.ComponentDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components = append(c.components, comp)
}

// register stores a definition unless the name is already present and
// reports whether it was kept.
func (c *Circuit) register(sub *Subcircuit) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subckts[sub.Def.Name]; ok {
		return false
	}
	c.subckts[sub.Def.Name] = sub
	return true
}

// bind appends a validated instance.
func (c *Circuit) bind(inst Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = append(c.instances, inst)
}

// UnknownSubcircuitError reports an instance referencing a name absent from
// both the circuit and the library index.
type UnknownSubcircuitError struct {
	Name string
}

func (e *UnknownSubcircuitError) Error() string {
	return fmt.Sprintf("circuit: unknown subcircuit %q", e.Name)
}

// NodeCountError reports a pin-count mismatch between an instance and its
// definition.
type NodeCountError struct {
	Instance   string
	Subcircuit string
	Want       int
	Got        int
}

func (e *NodeCountError) Error() string {
	return fmt.Sprintf("circuit: instance %q of %q has %d nodes, definition expects %d",
		e.Instance, e.Subcircuit, e.Got, e.Want)
}

// BodyError reports a subcircuit whose stored body failed to parse when its
// internal graph was built.
type BodyError struct {
	Subcircuit string
	Err        error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("circuit: subcircuit %q body: %v", e.Subcircuit, e.Err)
}

func (e *BodyError) Unwrap() error { return e.Err }
