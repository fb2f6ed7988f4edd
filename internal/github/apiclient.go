package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAPIURL is the public GitHub REST API base URL.
const DefaultAPIURL = "https://api.github.com"

const requestTimeout = 30 * time.Second

// APIClient talks to the GitHub REST API with a personal access token.
type APIClient struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

var _ Client = (*APIClient)(nil)

// NewAPIClient creates a client for the given base URL and token. An empty
// baseURL selects the public API.
func NewAPIClient(baseURL, token string, log zerolog.Logger) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: requestTimeout},
		log:     log.With().Str("component", "github-client").Logger(),
	}
}

// issuePatch is the request body for issue create and update calls. Absent
// fields are omitted so partial updates leave the rest of the issue alone.
type issuePatch struct {
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
	State       *string `json:"state,omitempty"`
	StateReason *string `json:"state_reason,omitempty"`
}

// CreateIssue opens a new issue in owner/repo.
func (c *APIClient) CreateIssue(ctx context.Context, owner, repo, title, body string) (Issue, error) {
	patch := issuePatch{Title: &title}
	if body != "" {
		patch.Body = &body
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
	return c.do(ctx, http.MethodPost, path, &patch, http.StatusCreated)
}

// GetIssue fetches an issue by number.
func (c *APIClient) GetIssue(ctx context.Context, owner, repo string, number int) (Issue, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	return c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
}

// UpdateIssueState sets the issue state with an optional reason. Reasons
// without a wire value (reopened, none) are omitted from the request.
func (c *APIClient) UpdateIssueState(ctx context.Context, owner, repo string, number int, state string, reason StateReason) (Issue, error) {
	patch := issuePatch{State: &state}
	if v := reason.APIValue(); v != "" {
		patch.StateReason = &v
	}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	return c.do(ctx, http.MethodPatch, path, &patch, http.StatusOK)
}

// UpdateIssueContent replaces the issue title and body.
func (c *APIClient) UpdateIssueContent(ctx context.Context, owner, repo string, number int, title, body string) (Issue, error) {
	patch := issuePatch{Title: &title, Body: &body}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	return c.do(ctx, http.MethodPatch, path, &patch, http.StatusOK)
}

// ValidateToken reports whether the configured token is accepted by the API.
func (c *APIClient) ValidateToken(ctx context.Context) bool {
	if c.token == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// do executes one API call and maps failures onto the package error taxonomy.
func (c *APIClient) do(ctx context.Context, method, path string, patch *issuePatch, wantStatus int) (Issue, error) {
	if c.token == "" {
		return Issue{}, ErrNotAuthenticated
	}

	var reqBody io.Reader
	if patch != nil {
		data, err := json.Marshal(patch)
		if err != nil {
			return Issue{}, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return Issue{}, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	if patch != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Issue{}, fmt.Errorf("github: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Issue{}, ErrInvalidResponse
	}

	if resp.StatusCode != wantStatus {
		c.log.Debug().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Msg("github request failed")
		return Issue{}, mapStatus(resp.StatusCode, data)
	}

	var issue Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return Issue{}, ErrInvalidResponse
	}

	return issue, nil
}

func (c *APIClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// errorResponse is the API's error envelope.
type errorResponse struct {
	Message string `json:"message"`
}

// mapStatus converts a non-success HTTP status into the closed error set.
func mapStatus(status int, data []byte) error {
	var er errorResponse
	_ = json.Unmarshal(data, &er)

	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		msg := er.Message
		if msg == "" {
			msg = "validation failed"
		}
		return &ValidationError{Message: msg}
	}

	return &StatusError{Status: status, Message: er.Message}
}
