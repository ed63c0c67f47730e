// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Deckforge package generation via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/askeladd/deckforge/internal/models"
	"github.com/askeladd/deckforge/internal/pkgservice"
)

// Server wraps the MCP server with Deckforge tools.
type Server struct {
	mcp *server.MCPServer
	svc *pkgservice.Service
}

// New creates a new MCP server with all Deckforge tools registered.
func New(svc *pkgservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Deckforge",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_flashcards",
		mcp.WithDescription("Build an Anki package (.apkg) from a JSON package description "+
			"(one model plus one or more decks of notes). Read the description format first "+
			"via the get_request_contract tool or the deckforge://request-format resource."),
		mcp.WithString("package_json", mcp.Required(),
			mcp.Description("The package description as a JSON string")),
	), s.generateFlashcards)

	s.mcp.AddTool(mcp.NewTool("list_artifacts",
		mcp.WithDescription("List the generated package files available for download."),
	), s.listArtifacts)

	s.mcp.AddTool(mcp.NewTool("get_request_contract",
		mcp.WithDescription("Returns the package description JSON format accepted by "+
			"generate_flashcards."),
	), s.getRequestContract)

	// Resource: package description format.
	s.mcp.AddResource(
		mcp.NewResource("deckforge://request-format", "Package Description Format",
			mcp.WithResourceDescription("JSON format for generate_flashcards requests."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRequestFormatResource,
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

func (s *Server) generateFlashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("package_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var pkg models.Package
	if err := json.Unmarshal([]byte(raw), &pkg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid package JSON: %v", err)), nil
	}
	if pkg.Model.Name == "" || len(pkg.Decks) == 0 {
		return mcp.NewToolResultError("package must contain a named model and at least one deck"), nil
	}

	filename, err := s.svc.Generate(ctx, pkg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	out, _ := json.Marshal(map[string]string{
		"filename":      filename,
		"download_path": "/download/" + filename,
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.svc.ListArtifacts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no artifacts found"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) getRequestContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RequestFormatContract), nil
}

func (s *Server) readRequestFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "deckforge://request-format",
			MIMEType: "text/markdown",
			Text:     RequestFormatContract,
		},
	}, nil
}
