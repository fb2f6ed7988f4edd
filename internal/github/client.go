// Package github provides a minimal GitHub issues client for mirroring todo
// items as issues.
package github

import "context"

// Issue is the subset of the GitHub issue resource tether cares about.
type Issue struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
}

// Client is the capability set the reconciliation core consumes. The HTTP
// implementation is APIClient; NoopClient disables remote integration.
type Client interface {
	// CreateIssue opens a new issue. body may be empty.
	CreateIssue(ctx context.Context, owner, repo, title, body string) (Issue, error)

	// GetIssue fetches an issue by number.
	GetIssue(ctx context.Context, owner, repo string, number int) (Issue, error)

	// UpdateIssueState sets the issue state ("open" or "closed") with an
	// optional reason.
	UpdateIssueState(ctx context.Context, owner, repo string, number int, state string, reason StateReason) (Issue, error)

	// UpdateIssueContent replaces the issue title and body.
	UpdateIssueContent(ctx context.Context, owner, repo string, number int, title, body string) (Issue, error)
}

// NoopClient is the "no remote integration" variant of Client. Every
// operation fails with ErrNotSupported; the reconciliation core never
// consults it during fetch passes.
type NoopClient struct{}

var _ Client = (*NoopClient)(nil)

func (NoopClient) CreateIssue(context.Context, string, string, string, string) (Issue, error) {
	return Issue{}, ErrNotSupported
}

func (NoopClient) GetIssue(context.Context, string, string, int) (Issue, error) {
	return Issue{}, ErrNotSupported
}

func (NoopClient) UpdateIssueState(context.Context, string, string, int, string, StateReason) (Issue, error) {
	return Issue{}, ErrNotSupported
}

func (NoopClient) UpdateIssueContent(context.Context, string, string, int, string, string) (Issue, error) {
	return Issue{}, ErrNotSupported
}
