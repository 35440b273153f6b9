package revizto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API defines the backend operations the pipeline consumes. The HTTP
// implementation is Client; tests substitute fakes.
type API interface {
	WorkflowSettings(ctx context.Context, projectID string) ([]WorkflowStatus, error)
	Observations(ctx context.Context, projectID string) ([]Issue, error)
	Instructions(ctx context.Context, projectID string) ([]Issue, error)
	Deficiencies(ctx context.Context, projectID string) ([]Issue, error)
	Comments(ctx context.Context, projectID, issueID string) ([]Comment, error)
	SearchProjects(ctx context.Context, query string) ([]SearchResult, error)
	LoadReportData(ctx context.Context, projectID string) (map[string]any, error)
	SaveReportData(ctx context.Context, projectID string, data map[string]any) error
	PDFURL(projectID string) string
}

// Client talks to the Revizto-backed reporting API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope is the {result, data} wrapper most endpoints use. result 0
// means success.
type envelope struct {
	Result *int            `json:"result"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: u, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	return data, nil
}

// getEnvelope performs a GET and unwraps the {result: 0, data} envelope.
func (c *Client) getEnvelope(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "not valid JSON"}
	}
	if env.Result == nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "missing result field"}
	}
	if *env.Result != 0 {
		return nil, &MalformedPayloadError{URL: path, Reason: fmt.Sprintf("result %d", *env.Result)}
	}
	if env.Data == nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "missing data field"}
	}
	return env.Data, nil
}

// WorkflowSettings fetches the project-defined statuses.
func (c *Client) WorkflowSettings(ctx context.Context, projectID string) ([]WorkflowStatus, error) {
	path := fmt.Sprintf("/api/projects/%s/workflow-settings/", url.PathEscape(projectID))
	data, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}

	var inner struct {
		Statuses []WorkflowStatus `json:"statuses"`
	}
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "data is not a statuses object"}
	}
	return inner.Statuses, nil
}

// issueCollection fetches one of the three issue category endpoints.
// Collections nest one level deeper than the envelope: data.data.
func (c *Client) issueCollection(ctx context.Context, projectID, category string) ([]Issue, error) {
	path := fmt.Sprintf("/api/projects/%s/%s/", url.PathEscape(projectID), category)
	data, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}

	var inner struct {
		Data []Issue `json:"data"`
	}
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "data.data is not an issue list"}
	}
	return inner.Data, nil
}

// Observations fetches the observation issues of a project.
func (c *Client) Observations(ctx context.Context, projectID string) ([]Issue, error) {
	return c.issueCollection(ctx, projectID, "observations")
}

// Instructions fetches the instruction issues of a project.
func (c *Client) Instructions(ctx context.Context, projectID string) ([]Issue, error) {
	return c.issueCollection(ctx, projectID, "instructions")
}

// Deficiencies fetches the deficiency issues of a project.
func (c *Client) Deficiencies(ctx context.Context, projectID string) ([]Issue, error) {
	return c.issueCollection(ctx, projectID, "deficiencies")
}

// Comments fetches an issue's comment history. The backend has shipped
// both data: [...] and data: {data: [...]} for this endpoint, so both
// nestings are accepted.
func (c *Client) Comments(ctx context.Context, projectID, issueID string) ([]Comment, error) {
	path := fmt.Sprintf("/api/projects/%s/issues/%s/comments/", url.PathEscape(projectID), url.PathEscape(issueID))
	data, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}

	var flat []Comment
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil
	}

	var inner struct {
		Data []Comment `json:"data"`
	}
	if err := json.Unmarshal(data, &inner); err == nil && inner.Data != nil {
		return inner.Data, nil
	}
	return nil, &MalformedPayloadError{URL: path, Reason: "data is neither a comment list nor a data wrapper"}
}

// SearchProjects queries the project search endpoint. This endpoint is
// not enveloped; it returns {results: [...]}.
func (c *Client) SearchProjects(ctx context.Context, query string) ([]SearchResult, error) {
	path := "/api/search/?query=" + url.QueryEscape(query)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "not a results object"}
	}
	return out.Results, nil
}

// LoadReportData fetches the saved report form data for a project. The
// payload is opaque to the pipeline.
func (c *Client) LoadReportData(ctx context.Context, projectID string) (map[string]any, error) {
	path := fmt.Sprintf("/api/projects/%s/data/load/", url.PathEscape(projectID))
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &MalformedPayloadError{URL: path, Reason: "not a JSON object"}
	}
	return out, nil
}

// SaveReportData stores report form data in the backend session store.
func (c *Client) SaveReportData(ctx context.Context, projectID string, data map[string]any) error {
	path := fmt.Sprintf("/api/projects/%s/data/save/", url.PathEscape(projectID))
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode report data: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	return err
}

// PDFURL returns the report-generation URL for a project. The endpoint
// triggers a document download, so it is navigated to rather than
// fetched.
func (c *Client) PDFURL(projectID string) string {
	return fmt.Sprintf("%s/api/projects/%s/generate-pdf/", c.baseURL, url.PathEscape(projectID))
}
