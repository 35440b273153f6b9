// Package mcp exposes the chantier pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stgm/chantier/internal/history"
	"github.com/stgm/chantier/internal/issue"
	"github.com/stgm/chantier/internal/revizto"
	"github.com/stgm/chantier/internal/status"
	"github.com/stgm/chantier/internal/store"
)

// Server wraps the API client and local store and exposes them as MCP
// tools.
type Server struct {
	api   revizto.API
	store store.Store
}

// NewServer creates the MCP server wrapper.
func NewServer(api revizto.API, st store.Store) *Server {
	return &Server{api: api, store: st}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("chantier", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.searchProjectsTool())
	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.issueHistoryTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// chantier_search_projects
func (s *Server) searchProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("chantier_search_projects",
		mcp.WithDescription("Search construction projects by name. Returns a JSON array with id, text, and whether a locally saved report exists."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	)
	return tool, s.handleSearchProjects
}

func (s *Server) handleSearchProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	results, err := s.api.SearchProjects(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search projects: %v", err)), nil
	}

	type projectOut struct {
		ID    string `json:"id"`
		Text  string `json:"text"`
		Saved bool   `json:"saved"`
	}

	out := make([]projectOut, len(results))
	for i, r := range results {
		id := r.ID.String()
		saved, _ := s.store.HasReport(ctx, id)
		out[i] = projectOut{ID: id, Text: r.Text, Saved: saved}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// chantier_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("chantier_list_issues",
		mcp.WithDescription("List open issues of a project by category (observations, instructions, or deficiencies). Closed issues are excluded. Returns a JSON array with id, title, status label and colors, assignee, sheet, and creation date."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("category", mcp.Description("One of observations, instructions, deficiencies (default observations)")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	category := request.GetString("category", "observations")

	var raw []revizto.Issue
	switch category {
	case "observations":
		raw, err = s.api.Observations(ctx, projectID)
	case "instructions":
		raw, err = s.api.Instructions(ctx, projectID)
	case "deficiencies":
		raw, err = s.api.Deficiencies(ctx, projectID)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", category, err)), nil
	}

	reg := s.registryFor(ctx, projectID)

	issues := make([]issue.Issue, 0, len(raw))
	for _, r := range raw {
		issues = append(issues, issue.Normalize(r))
	}
	issues = issue.ExcludeClosed(issues, reg)

	type issueOut struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Status      string `json:"status"`
		StatusColor string `json:"status_color"`
		Assignee    string `json:"assignee"`
		Sheet       string `json:"sheet"`
		Created     string `json:"created"`
		WebLink     string `json:"web_link,omitempty"`
	}

	out := make([]issueOut, len(issues))
	for i, it := range issues {
		d := status.Resolve(it.StatusRef, reg)
		out[i] = issueOut{
			ID:          it.ID,
			Title:       it.Title,
			Status:      d.DisplayName,
			StatusColor: d.BackgroundColor,
			Assignee:    it.Assignee,
			Sheet:       it.SheetNumber,
			Created:     it.Created,
			WebLink:     it.Links.Web,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal issues: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// chantier_issue_history
func (s *Server) issueHistoryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("chantier_issue_history",
		mcp.WithDescription("Get the comment history of an issue, newest first, plus the best representative image URL. Returns a JSON object with image_url and events."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue ID")),
	)
	return tool, s.handleIssueHistory
}

func (s *Server) handleIssueHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	issueID, err := request.RequireString("issue")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue"), nil
	}

	comments, err := s.api.Comments(ctx, projectID, issueID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	events := history.Aggregate(comments)
	image := history.BestImage(issue.Issue{ID: issueID}, events)

	type eventOut struct {
		Author   string `json:"author"`
		Created  string `json:"created"`
		Kind     string `json:"kind"`
		Text     string `json:"text,omitempty"`
		Filename string `json:"filename,omitempty"`
	}

	outEvents := make([]eventOut, 0, len(events))
	for _, e := range events {
		if e.Kind == history.KindDiff {
			continue
		}
		outEvents = append(outEvents, eventOut{
			Author:   e.Author,
			Created:  e.Created,
			Kind:     string(e.Kind),
			Text:     e.Text,
			Filename: e.Filename,
		})
	}

	out := struct {
		ImageURL string     `json:"image_url,omitempty"`
		Events   []eventOut `json:"events"`
	}{ImageURL: image, Events: outEvents}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal history: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// registryFor builds a status registry for a project, degrading to the
// built-in statuses when workflow settings are unavailable.
func (s *Server) registryFor(ctx context.Context, projectID string) *status.Registry {
	statuses, err := s.api.WorkflowSettings(ctx, projectID)
	if err != nil {
		return status.NewRegistry(status.Fallback(), nil)
	}
	return status.NewRegistry(status.Fallback(), status.FromWorkflow(statuses))
}
