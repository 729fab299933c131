// Package spice parses SPICE-style circuit description text: library files
// of reusable .MODEL and .SUBCKT definitions, and netlists of component
// instances. Library parsing is tolerant (malformed entries are skipped),
// netlist parsing is strict (one bad line invalidates the circuit).
package spice

// ModelType classifies a .MODEL definition.
type ModelType string

const (
	ModelDiode         ModelType = "diode"
	ModelBJTNPN        ModelType = "bjt_npn"
	ModelBJTPNP        ModelType = "bjt_pnp"
	ModelMOSFETN       ModelType = "mosfet_n"
	ModelMOSFETP       ModelType = "mosfet_p"
	ModelJFETN         ModelType = "jfet_n"
	ModelJFETP         ModelType = "jfet_p"
	ModelVoltageSwitch ModelType = "voltage_switch"
	ModelCurrentSwitch ModelType = "current_switch"
	ModelOther         ModelType = "other"
)

// ModelDefinition is a parsed .MODEL statement. Immutable once parsed.
// RawType keeps the on-disk TYPE keyword so unrecognized types survive a
// Format/ParseNetlist round trip instead of collapsing to a known keyword.
type ModelDefinition struct {
	Name    string             `json:"name"`
	Type    ModelType          `json:"type"`
	RawType string             `json:"raw_type,omitempty"`
	Params  map[string]float64 `json:"params"`
	Source  string             `json:"source,omitempty"` // file it was indexed from
}

// SubcircuitDefinition is a parsed .SUBCKT ... .ENDS block. Node order is
// semantically significant: instances bind their nodes positionally.
type SubcircuitDefinition struct {
	Name     string             `json:"name"`
	Nodes    []string           `json:"nodes"`
	Body     string             `json:"body"`
	Metadata map[string]string  `json:"metadata,omitempty"`
	TSParams map[string]float64 `json:"ts_params,omitempty"`
	Source   string             `json:"source,omitempty"`
}

// ComponentType classifies a netlist component instance by its
// reference-designator prefix letter.
type ComponentType string

const (
	TypeResistor         ComponentType = "resistor"
	TypeCapacitor        ComponentType = "capacitor"
	TypeInductor         ComponentType = "inductor"
	TypeDiode            ComponentType = "diode"
	TypeBJT              ComponentType = "bjt"
	TypeMOSFET           ComponentType = "mosfet"
	TypeJFET             ComponentType = "jfet"
	TypeVoltageSource    ComponentType = "voltage_source"
	TypeCurrentSource    ComponentType = "current_source"
	TypeVCVS             ComponentType = "vcvs"
	TypeVCCS             ComponentType = "vccs"
	TypeCCVS             ComponentType = "ccvs"
	TypeCCCS             ComponentType = "cccs"
	TypeMutualInductance ComponentType = "mutual_inductance"
	TypeSubcircuit       ComponentType = "subcircuit"
	TypeVoltageSwitch    ComponentType = "voltage_switch"
	TypeCurrentSwitch    ComponentType = "current_switch"
)

// ComponentDefinition is one component instance line from a netlist.
type ComponentDefinition struct {
	Name     string            `json:"name"`
	Type     ComponentType     `json:"type"`
	Nodes    []string          `json:"nodes"`
	Value    float64           `json:"value,omitempty"`
	HasValue bool              `json:"has_value"`
	Ref      string            `json:"ref,omitempty"` // model or subcircuit name
	Params   map[string]string `json:"params,omitempty"`
}

// Library holds everything extracted from one library file.
type Library struct {
	Models      []ModelDefinition
	Subcircuits []SubcircuitDefinition
}

// Netlist holds a parsed circuit description.
type Netlist struct {
	Title      string
	Components []ComponentDefinition
	Models     []ModelDefinition
	Directives []string // analysis and control lines, kept verbatim
}

// TSParameterNames is the fixed set of Thiele/Small driver parameter keys
// recognised in subcircuit metadata comments.
var TSParameterNames = map[string]struct{}{
	"FS":   {},
	"QTS":  {},
	"QES":  {},
	"QMS":  {},
	"VAS":  {},
	"RE":   {},
	"LE":   {},
	"BL":   {},
	"XMAX": {},
	"MMS":  {},
	"CMS":  {},
	"SD":   {},
}
