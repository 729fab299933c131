package api

import (
	"github.com/starford/spicerack/internal/library"
	"github.com/starford/spicerack/internal/mirror"
	"github.com/starford/spicerack/internal/spice"
)

// ModelSearchResponse wraps model search results.
type ModelSearchResponse struct {
	Results []spice.ModelDefinition `json:"results"`
}

// SubcircuitSearchResponse wraps subcircuit search results.
type SubcircuitSearchResponse struct {
	Results []spice.SubcircuitDefinition `json:"results"`
}

// FullTextSearchResponse wraps mirror search results.
type FullTextSearchResponse struct {
	Results []mirror.SearchResult `json:"results"`
}

// ParseNetlistRequest is the request body for POST /netlist/parse and
// POST /netlist/resolve.
type ParseNetlistRequest struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// ParseNetlistResponse is the decomposed circuit description.
type ParseNetlistResponse struct {
	Title      string                      `json:"title,omitempty"`
	Components []spice.ComponentDefinition `json:"components"`
	Models     []spice.ModelDefinition     `json:"models,omitempty"`
	Directives []string                    `json:"directives,omitempty"`
}

// ResolveNetlistResponse summarises a resolved circuit.
type ResolveNetlistResponse struct {
	Name        string             `json:"name"`
	Components  int                `json:"components"`
	Instances   []ResolvedInstance `json:"instances"`
	Subcircuits []string           `json:"subcircuits"`
}

// ResolvedInstance is one bound subcircuit instance.
type ResolvedInstance struct {
	Name       string   `json:"name"`
	Subcircuit string   `json:"subcircuit"`
	Nodes      []string `json:"nodes"`
}

// AddLibraryRequest is the request body for POST /libraries.
type AddLibraryRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// AddLibraryResponse reports the reindex that followed an upload.
type AddLibraryResponse struct {
	Filename string        `json:"filename"`
	Stats    library.Stats `json:"stats"`
}
