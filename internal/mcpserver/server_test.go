package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/olesko/rodovid/internal/family"
	"github.com/olesko/rodovid/internal/testutil"
)

func testServer(t *testing.T) (*Server, *family.Service) {
	t.Helper()

	db := testutil.TestDB(t)
	svc := family.NewService(db)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we dispatch to the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_persons":
		result, err = srv.listPersons(ctx, req)
	case "get_person":
		result, err = srv.getPerson(ctx, req)
	case "family_tree":
		result, err = srv.familyTree(ctx, req)
	case "create_person":
		result, err = srv.createPerson(ctx, req)
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

func createdID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	rest := strings.TrimPrefix(text, "created: ")
	if i := strings.Index(rest, " "); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func TestCreateAndGetPerson(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_person", map[string]interface{}{
		"gender":    "female",
		"firstName": "Olena",
		"lastName":  "Pchilka",
		"birthDate": "1849-07-17",
	})
	id := createdID(t, r)

	r = callTool(t, srv, "get_person", map[string]interface{}{"id": id})
	text := resultText(r)
	if !strings.Contains(text, "Olena") || !strings.Contains(text, "Pchilka") {
		t.Errorf("get_person result = %q", text)
	}
}

func TestCreatePerson_MissingGender(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_person", map[string]interface{}{
		"firstName": "Nameless",
	})
	if !r.IsError {
		t.Error("expected error result for missing gender")
	}
}

func TestCreatePerson_BadDate(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_person", map[string]interface{}{
		"gender":    "male",
		"birthDate": "17 July",
	})
	if !r.IsError {
		t.Error("expected error result for malformed date")
	}
	if !strings.Contains(resultText(r), "YYYY-MM-DD") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestGetPerson_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_person", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error result for unknown id")
	}
}

func TestListPersons(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_person", map[string]interface{}{
		"gender": "male", "firstName": "Taras", "lastName": "Hrim",
	})
	callTool(t, srv, "create_person", map[string]interface{}{
		"gender": "female", "firstName": "Oksana", "lastName": "Hrim",
	})

	r := callTool(t, srv, "list_persons", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Taras") || !strings.Contains(text, "Oksana") {
		t.Errorf("list_persons result = %q", text)
	}
}

func TestFamilyTreeTool(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_person", map[string]interface{}{
		"gender": "male", "firstName": "Petro",
	})
	parent := createdID(t, r)

	r = callTool(t, srv, "create_person", map[string]interface{}{
		"gender": "male", "firstName": "Stepan", "parent1": parent,
	})
	child := createdID(t, r)

	r = callTool(t, srv, "family_tree", map[string]interface{}{"id": child})
	text := resultText(r)
	if !strings.Contains(text, "Petro") || !strings.Contains(text, "Stepan") {
		t.Errorf("family_tree result = %q", text)
	}
}
