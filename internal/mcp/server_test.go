package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stgm/chantier/internal/revizto"
	"github.com/stgm/chantier/internal/store"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockAPI implements revizto.API for testing.
type mockAPI struct {
	statuses    []revizto.WorkflowStatus
	statusesErr error

	observations []revizto.Issue
	deficiencies []revizto.Issue
	issuesErr    error

	comments    []revizto.Comment
	commentsErr error

	searchResults []revizto.SearchResult
	searchErr     error
}

func (m *mockAPI) WorkflowSettings(_ context.Context, projectID string) ([]revizto.WorkflowStatus, error) {
	return m.statuses, m.statusesErr
}
func (m *mockAPI) Observations(_ context.Context, projectID string) ([]revizto.Issue, error) {
	return m.observations, m.issuesErr
}
func (m *mockAPI) Instructions(_ context.Context, projectID string) ([]revizto.Issue, error) {
	return nil, m.issuesErr
}
func (m *mockAPI) Deficiencies(_ context.Context, projectID string) ([]revizto.Issue, error) {
	return m.deficiencies, m.issuesErr
}
func (m *mockAPI) Comments(_ context.Context, projectID, issueID string) ([]revizto.Comment, error) {
	return m.comments, m.commentsErr
}
func (m *mockAPI) SearchProjects(_ context.Context, query string) ([]revizto.SearchResult, error) {
	return m.searchResults, m.searchErr
}
func (m *mockAPI) LoadReportData(_ context.Context, projectID string) (map[string]any, error) {
	return nil, nil
}
func (m *mockAPI) SaveReportData(_ context.Context, projectID string, data map[string]any) error {
	return nil
}
func (m *mockAPI) PDFURL(projectID string) string { return "http://x/" + projectID }

// mockStore implements store.Store for testing.
type mockStore struct {
	reports map[string]*store.Report
	active  string
}

func newMockStore() *mockStore {
	return &mockStore{reports: make(map[string]*store.Report)}
}

func (m *mockStore) SaveReport(_ context.Context, projectID string, payload map[string]any) (*store.Report, error) {
	r := &store.Report{ID: projectID, ProjectID: projectID, Payload: payload, UpdatedAt: time.Now()}
	m.reports[projectID] = r
	return r, nil
}
func (m *mockStore) GetReport(_ context.Context, projectID string) (*store.Report, error) {
	if r, ok := m.reports[projectID]; ok {
		return r, nil
	}
	return nil, errors.New("report not found: " + projectID)
}
func (m *mockStore) HasReport(_ context.Context, projectID string) (bool, error) {
	_, ok := m.reports[projectID]
	return ok, nil
}
func (m *mockStore) DeleteReport(_ context.Context, projectID string) error {
	delete(m.reports, projectID)
	return nil
}
func (m *mockStore) ListReportProjects(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.reports {
		ids = append(ids, id)
	}
	return ids, nil
}
func (m *mockStore) SetActiveProject(_ context.Context, projectID string) error {
	m.active = projectID
	return nil
}
func (m *mockStore) ActiveProject(_ context.Context) (string, error) { return m.active, nil }
func (m *mockStore) Migrate(_ context.Context) error                 { return nil }
func (m *mockStore) Close() error                                    { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func rawIssue(t *testing.T, jsonStr string) revizto.Issue {
	t.Helper()
	var raw revizto.Issue
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &raw))
	return raw
}

// ---------------------------------------------------------------------------
// chantier_search_projects
// ---------------------------------------------------------------------------

func TestSearchProjects_MarksSaved(t *testing.T) {
	api := &mockAPI{searchResults: []revizto.SearchResult{
		{Text: "Tour Nord"},
		{Text: "Pavillon Sud"},
	}}
	require.NoError(t, json.Unmarshal([]byte(`5`), &api.searchResults[0].ID))
	require.NoError(t, json.Unmarshal([]byte(`6`), &api.searchResults[1].ID))

	st := newMockStore()
	_, err := st.SaveReport(context.Background(), "5", map[string]any{})
	require.NoError(t, err)

	s := NewServer(api, st)
	result, err := s.handleSearchProjects(context.Background(), callToolReq("chantier_search_projects", map[string]any{"query": "tour"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out []struct {
		ID    string `json:"id"`
		Text  string `json:"text"`
		Saved bool   `json:"saved"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	require.Len(t, out, 2)
	assert.True(t, out[0].Saved)
	assert.False(t, out[1].Saved)
}

func TestSearchProjects_MissingQuery(t *testing.T) {
	s := NewServer(&mockAPI{}, newMockStore())
	result, err := s.handleSearchProjects(context.Background(), callToolReq("chantier_search_projects", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// ---------------------------------------------------------------------------
// chantier_list_issues
// ---------------------------------------------------------------------------

func TestListIssues_ExcludesClosedAndResolvesLabels(t *testing.T) {
	api := &mockAPI{
		statuses: []revizto.WorkflowStatus{
			{UUID: "u1", Name: "En attente", BackgroundColor: "#888888"},
		},
		observations: []revizto.Issue{
			rawIssue(t, `{"id": 1, "title": "Fissure", "status": "open"}`),
			rawIssue(t, `{"id": 2, "title": "Réglée", "status": "closed"}`),
			rawIssue(t, `{"id": 3, "title": "Attente", "customStatus": {"uuid": "u1"}}`),
		},
	}

	s := NewServer(api, newMockStore())
	result, err := s.handleListIssues(context.Background(), callToolReq("chantier_list_issues", map[string]any{"project": "p1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		StatusColor string `json:"status_color"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	require.Len(t, out, 2)

	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "Ouvert", out[0].Status)
	assert.Equal(t, "#CC2929", out[0].StatusColor)

	assert.Equal(t, "3", out[1].ID)
	assert.Equal(t, "En attente", out[1].Status)
	assert.Equal(t, "#888888", out[1].StatusColor)
}

func TestListIssues_UnknownCategory(t *testing.T) {
	s := NewServer(&mockAPI{}, newMockStore())
	result, err := s.handleListIssues(context.Background(), callToolReq("chantier_list_issues",
		map[string]any{"project": "p1", "category": "autre"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestListIssues_APIError(t *testing.T) {
	s := NewServer(&mockAPI{issuesErr: errors.New("HTTP 500")}, newMockStore())
	result, err := s.handleListIssues(context.Background(), callToolReq("chantier_list_issues",
		map[string]any{"project": "p1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// ---------------------------------------------------------------------------
// chantier_issue_history
// ---------------------------------------------------------------------------

func TestIssueHistory_ExcludesDiffAndPicksImage(t *testing.T) {
	api := &mockAPI{}
	require.NoError(t, json.Unmarshal([]byte(`[
		{"type": "text", "text": "vu sur place"},
		{"type": "diff"},
		{"type": "file", "mimetype": "image/jpeg", "filename": "photo.jpg", "preview": {"original": "photo-full.jpg"}}
	]`), &api.comments))

	s := NewServer(api, newMockStore())
	result, err := s.handleIssueHistory(context.Background(), callToolReq("chantier_issue_history",
		map[string]any{"project": "p1", "issue": "17"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		ImageURL string `json:"image_url"`
		Events   []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))

	assert.Equal(t, "photo-full.jpg", out.ImageURL)
	for _, e := range out.Events {
		assert.NotEqual(t, "diff", e.Kind)
	}
}

func TestIssueHistory_MissingParams(t *testing.T) {
	s := NewServer(&mockAPI{}, newMockStore())

	result, err := s.handleIssueHistory(context.Background(), callToolReq("chantier_issue_history",
		map[string]any{"project": "p1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleIssueHistory(context.Background(), callToolReq("chantier_issue_history",
		map[string]any{"issue": "17"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
