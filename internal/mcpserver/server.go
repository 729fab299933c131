// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes spicerack tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/spicerack/internal/apperr"
	"github.com/starford/spicerack/internal/catalog"
)

// Server wraps the MCP server with spicerack tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates a new MCP server with all spicerack tools registered.
func New(svc *catalog.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Spicerack",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_models",
		mcp.WithDescription("Search indexed .MODEL definitions by name substring, optionally filtered by device type."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name substring to match")),
		mcp.WithString("type", mcp.Description("Optional device type filter (diode, bjt_npn, mosfet_n, ...)")),
	), s.searchModels)

	s.mcp.AddTool(mcp.NewTool("search_subcircuits",
		mcp.WithDescription("Search indexed .SUBCKT definitions by name or product metadata, optionally filtered by TYPE metadata."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name or product metadata substring to match")),
		mcp.WithString("type", mcp.Description("Optional TYPE metadata filter (e.g. woofer, tweeter)")),
	), s.searchSubcircuits)

	s.mcp.AddTool(mcp.NewTool("read_subcircuit",
		mcp.WithDescription("Read one indexed subcircuit definition: pins, body, metadata, and Thiele/Small parameters."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Subcircuit name as indexed")),
	), s.readSubcircuit)

	s.mcp.AddTool(mcp.NewTool("parse_netlist",
		mcp.WithDescription("Parse a SPICE circuit description into components, models, and directives. "+
			"Returns an error naming the offending line if the description cannot be decomposed."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Circuit description text")),
	), s.parseNetlist)

	s.mcp.AddTool(mcp.NewTool("resolve_netlist",
		mcp.WithDescription("Parse a circuit description and bind every X instance against the library index, "+
			"validating pin counts."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Circuit description text")),
	), s.resolveNetlist)

	s.mcp.AddTool(mcp.NewTool("add_library",
		mcp.WithDescription("Store a new library file and reindex. "+
			"Content MUST follow the canonical library format (metadata comments of the form "+
			"'* KEY: VALUE' directly above each .SUBCKT or .MODEL). Read the contract first via "+
			"the get_library_contract tool or the spice://library-format resource."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name for the new library (e.g. drivers.lib)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Library file content following the spicerack format contract")),
	), s.addLibrary)

	s.mcp.AddTool(mcp.NewTool("get_library_contract",
		mcp.WithDescription("Returns the canonical spicerack library format contract. "+
			"Call this before adding library files to ensure correct structure."),
	), s.getLibraryContract)

	// Resource: library format contract.
	s.mcp.AddResource(
		mcp.NewResource("spice://library-format", "Library Format Contract",
			mcp.WithResourceDescription("Canonical SPICE library file format that all uploads must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLibraryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchModels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typeFilter, _ := req.RequireString("type")
	results := s.svc.SearchModels(ctx, query, typeFilter, 20)
	if len(results) == 0 {
		return mcp.NewToolResultText("no models found"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchSubcircuits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typeFilter, _ := req.RequireString("type")
	results := s.svc.SearchSubcircuits(ctx, query, typeFilter, 20)
	if len(results) == 0 {
		return mcp.NewToolResultText("no subcircuits found"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readSubcircuit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.svc.GetSubcircuit(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(def, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) parseNetlist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nl, err := s.svc.ParseNetlist(ctx, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(nl, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) resolveNetlist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.ResolveNetlist(ctx, "netlist", []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "components: %d\n", len(c.Components()))
	for _, inst := range c.Instances() {
		fmt.Fprintf(&b, "%s -> %s (%s)\n", inst.Name, inst.Subcircuit, strings.Join(inst.Nodes, " "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) addLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := s.svc.AddLibrary(ctx, filename, []byte(content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("library already exists: %s", filename)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s (%d models, %d subcircuits indexed)",
		filename, stats.Models, stats.Subcircuits)), nil
}

func (s *Server) getLibraryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LibraryFormatContract), nil
}

func (s *Server) readLibraryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "spice://library-format",
			MIMEType: "text/markdown",
			Text:     LibraryFormatContract,
		},
	}, nil
}
