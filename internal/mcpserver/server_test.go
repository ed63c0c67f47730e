package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/askeladd/deckforge/internal/pkgservice"
	"github.com/askeladd/deckforge/internal/testutil"
)

func testServer(t *testing.T) (*Server, *pkgservice.Service) {
	t.Helper()
	store, _ := testutil.TestStore(t)
	svc := pkgservice.NewService(store)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "generate_flashcards":
		result, err = srv.generateFlashcards(ctx, req)
	case "list_artifacts":
		result, err = srv.listArtifacts(ctx, req)
	case "get_request_contract":
		result, err = srv.getRequestContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const validPackageJSON = `{
  "model": {
    "name": "Basic",
    "fields": ["Front", "Back"],
    "templates": [{"name": "Card 1", "qfmt": "{{Front}}", "afmt": "{{Back}}"}]
  },
  "decks": [
    {"name": "Capitals", "notes": [{"fields": ["France", "Paris"]}]}
  ]
}`

func TestGenerateFlashcards(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "generate_flashcards", map[string]interface{}{
		"package_json": validPackageJSON,
	})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if !strings.HasSuffix(out["filename"], ".apkg") {
		t.Errorf("filename = %q", out["filename"])
	}
	if out["download_path"] != "/download/"+out["filename"] {
		t.Errorf("download_path = %q", out["download_path"])
	}
}

func TestGenerateFlashcards_BadInput(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "generate_flashcards", map[string]interface{}{
		"package_json": "{not json",
	})
	if !r.IsError {
		t.Error("malformed JSON accepted")
	}

	r = callTool(t, srv, "generate_flashcards", map[string]interface{}{
		"package_json": `{"model": {"name": "Basic"}, "decks": []}`,
	})
	if !r.IsError {
		t.Error("package without decks accepted")
	}

	r = callTool(t, srv, "generate_flashcards", map[string]interface{}{})
	if !r.IsError {
		t.Error("missing package_json accepted")
	}
}

func TestListArtifacts(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_artifacts", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("list errored: %s", resultText(r))
	}
	if resultText(r) != "no artifacts found" {
		t.Errorf("empty store list = %q", resultText(r))
	}

	gen := callTool(t, srv, "generate_flashcards", map[string]interface{}{
		"package_json": validPackageJSON,
	})
	if gen.IsError {
		t.Fatalf("generate errored: %s", resultText(gen))
	}

	r = callTool(t, srv, "list_artifacts", map[string]interface{}{})
	if !strings.Contains(resultText(r), ".apkg") {
		t.Errorf("list after generate = %q", resultText(r))
	}
}

func TestGetRequestContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_request_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "model") || !strings.Contains(text, "decks") {
		t.Errorf("contract text = %q", text)
	}
}

func TestReadRequestFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readRequestFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource read: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d entries", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] has type %T", contents[0])
	}
	if tc.URI != "deckforge://request-format" || tc.Text == "" {
		t.Errorf("resource = %+v", tc)
	}
}
