package tether

import (
	"context"
	"fmt"

	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/github"
	"github.com/rs/zerolog"
)

// IssueOpService executes remote issue operations for linked todo items.
// Stateless per call, parameterized by the destination repository.
type IssueOpService struct {
	client github.Client
	owner  string
	repo   string
	log    zerolog.Logger
}

// NewIssueOpService creates a service targeting owner/repo through client.
func NewIssueOpService(client github.Client, owner, repo string, log zerolog.Logger) *IssueOpService {
	return &IssueOpService{
		client: client,
		owner:  owner,
		repo:   repo,
		log:    log.With().Str("component", "issue-ops").Logger(),
	}
}

// checkConfig fails fast before any request when the destination repository
// is not fully identified.
func (s *IssueOpService) checkConfig() error {
	if s.owner == "" || s.repo == "" {
		return github.ErrInvalidConfiguration
	}
	return nil
}

// Create opens a new issue mirroring the item and returns it.
func (s *IssueOpService) Create(ctx context.Context, item todo.Item) (github.Issue, error) {
	if err := s.checkConfig(); err != nil {
		return github.Issue{}, err
	}

	issue, err := s.client.CreateIssue(ctx, s.owner, s.repo, item.Title, item.Detail)
	if err != nil {
		return github.Issue{}, fmt.Errorf("create issue: %w", err)
	}

	s.log.Debug().Int("issue", issue.Number).Str("id", item.ID).Msg("created issue for item")
	return issue, nil
}

// FetchState returns the current remote state of the item's linked issue.
// Items without a linked issue report unknown without a network call.
func (s *IssueOpService) FetchState(ctx context.Context, item todo.Item) (todo.IssueState, error) {
	number, ok := item.IssueNumber()
	if !ok {
		return todo.StateUnknown, nil
	}
	if err := s.checkConfig(); err != nil {
		return todo.StateUnknown, err
	}

	issue, err := s.client.GetIssue(ctx, s.owner, s.repo, number)
	if err != nil {
		return todo.StateUnknown, fmt.Errorf("get issue #%d: %w", number, err)
	}

	switch issue.State {
	case "open":
		return todo.StateOpen, nil
	case "closed":
		return todo.StateClosed, nil
	}
	return todo.StateUnknown, nil
}

// ToggleState flips the linked issue between open and closed.
//
// The target state is computed from the remote state fetched here, not from
// the item's done flag: the local item has already been mutated by the time
// this runs, and a retried or out-of-order call must not double-flip.
func (s *IssueOpService) ToggleState(ctx context.Context, item todo.Item, reason github.StateReason) error {
	number, ok := item.IssueNumber()
	if !ok {
		return nil
	}
	if err := s.checkConfig(); err != nil {
		return err
	}

	current, err := s.client.GetIssue(ctx, s.owner, s.repo, number)
	if err != nil {
		return fmt.Errorf("get issue #%d: %w", number, err)
	}

	newState := "closed"
	if current.State == "closed" {
		newState = "open"
	}

	if _, err := s.client.UpdateIssueState(ctx, s.owner, s.repo, number, newState, reason); err != nil {
		return fmt.Errorf("update issue #%d state: %w", number, err)
	}

	s.log.Debug().
		Int("issue", number).
		Str("from", current.State).
		Str("to", newState).
		Str("reason", string(reason)).
		Msg("toggled issue state")

	return nil
}

// CloseWithReason closes the linked issue directly. Close is always the
// unambiguous target state for deletions, so no read-then-flip is needed.
func (s *IssueOpService) CloseWithReason(ctx context.Context, item todo.Item, reason github.StateReason) error {
	number, ok := item.IssueNumber()
	if !ok {
		return nil
	}
	if err := s.checkConfig(); err != nil {
		return err
	}

	if _, err := s.client.UpdateIssueState(ctx, s.owner, s.repo, number, "closed", reason); err != nil {
		return fmt.Errorf("close issue #%d: %w", number, err)
	}

	s.log.Debug().Int("issue", number).Str("reason", string(reason)).Msg("closed issue")
	return nil
}

// UpdateContent pushes the item's title and detail to the linked issue. The
// reconciliation core never calls this on its own; propagating content edits
// is always an explicit caller decision.
func (s *IssueOpService) UpdateContent(ctx context.Context, item todo.Item) error {
	number, ok := item.IssueNumber()
	if !ok {
		return nil
	}
	if err := s.checkConfig(); err != nil {
		return err
	}

	if _, err := s.client.UpdateIssueContent(ctx, s.owner, s.repo, number, item.Title, item.Detail); err != nil {
		return fmt.Errorf("update issue #%d content: %w", number, err)
	}

	return nil
}
