// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes rodovid genealogy tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/olesko/rodovid/internal/family"
)

// Server wraps the MCP server with rodovid tools.
type Server struct {
	mcp *server.MCPServer
	svc *family.Service
}

// New creates a new MCP server with all rodovid tools registered.
func New(svc *family.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Rodovid",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_persons",
		mcp.WithDescription("List every person in the family tree, sorted by family name."),
	), s.listPersons)

	s.mcp.AddTool(mcp.NewTool("get_person",
		mcp.WithDescription("Fetch one person with parents, spouses and children expanded."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Person id")),
	), s.getPerson)

	s.mcp.AddTool(mcp.NewTool("family_tree",
		mcp.WithDescription("Return a person together with all their ancestors and descendants."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Person id")),
	), s.familyTree)

	s.mcp.AddTool(mcp.NewTool("create_person",
		mcp.WithDescription("Add a person to the family tree. Gender is required; "+
			"parent1/parent2/spouse take ids of existing persons and establish "+
			"the symmetric relationship links."),
		mcp.WithString("gender", mcp.Required(), mcp.Description(`"male" or "female"`)),
		mcp.WithString("firstName", mcp.Description("Given name")),
		mcp.WithString("lastName", mcp.Description("Family name")),
		mcp.WithString("middleName", mcp.Description("Middle name")),
		mcp.WithString("birthDate", mcp.Description("Birth date, YYYY-MM-DD")),
		mcp.WithString("deathDate", mcp.Description("Death date, YYYY-MM-DD")),
		mcp.WithString("parent1", mcp.Description("Id of the first parent")),
		mcp.WithString("parent2", mcp.Description("Id of the second parent")),
		mcp.WithString("spouse", mcp.Description("Id of the spouse")),
		mcp.WithString("comments", mcp.Description("Free-text comment, up to 1000 characters")),
	), s.createPerson)

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

func (s *Server) listPersons(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	people, err := s.svc.ListPersons(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(people, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	person, err := s.svc.GetPerson(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(person, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) familyTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree, err := s.svc.FamilyTree(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(tree, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gender, err := req.RequireString("gender")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := family.PersonInput{
		Gender:     gender,
		FirstName:  req.GetString("firstName", ""),
		LastName:   req.GetString("lastName", ""),
		MiddleName: req.GetString("middleName", ""),
		Comments:   req.GetString("comments", ""),
		Spouse:     req.GetString("spouse", ""),
	}
	for _, key := range []string{"parent1", "parent2"} {
		if id := req.GetString(key, ""); id != "" {
			in.Parents = append(in.Parents, id)
		}
	}
	if d := req.GetString("birthDate", ""); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return mcp.NewToolResultError("birthDate must be YYYY-MM-DD"), nil
		}
		in.BirthDate = &t
	}
	if d := req.GetString("deathDate", ""); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return mcp.NewToolResultError("deathDate must be YYYY-MM-DD"), nil
		}
		in.DeathDate = &t
	}

	person, err := s.svc.CreatePerson(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", person.ID, personName(person))), nil
}

func personName(p *family.PersonDetail) string {
	name := ""
	for _, part := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	if name == "" {
		return "unnamed"
	}
	return name
}
