package tether

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/github"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory github.Client with per-issue state, optional
// per-issue fetch delays, and error injection.
type fakeClient struct {
	mu sync.Mutex

	nextNumber int
	issues     map[int]github.Issue
	delays     map[int]time.Duration

	createErr error
	getErr    error
	updateErr error

	updates []stateUpdate
}

type stateUpdate struct {
	number int
	state  string
	reason github.StateReason
}

var _ github.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		nextNumber: 1,
		issues:     make(map[int]github.Issue),
		delays:     make(map[int]time.Duration),
	}
}

// addIssue seeds an issue and returns its URL.
func (f *fakeClient) addIssue(state string) (int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	number := f.nextNumber
	f.nextNumber++

	issue := github.Issue{
		Number:  number,
		HTMLURL: "https://github.com/octo/hello/issues/" + strconv.Itoa(number),
		State:   state,
	}
	f.issues[number] = issue
	return number, issue.HTMLURL
}

func (f *fakeClient) CreateIssue(_ context.Context, _, _, title, body string) (github.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return github.Issue{}, f.createErr
	}

	number := f.nextNumber
	f.nextNumber++

	issue := github.Issue{
		Number:  number,
		Title:   title,
		Body:    body,
		HTMLURL: "https://github.com/octo/hello/issues/" + strconv.Itoa(number),
		State:   "open",
	}
	f.issues[number] = issue
	return issue, nil
}

func (f *fakeClient) GetIssue(_ context.Context, _, _ string, number int) (github.Issue, error) {
	f.mu.Lock()
	delay := f.delays[number]
	err := f.getErr
	issue, ok := f.issues[number]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return github.Issue{}, err
	}
	if !ok {
		return github.Issue{}, github.ErrNotFound
	}
	return issue, nil
}

func (f *fakeClient) UpdateIssueState(_ context.Context, _, _ string, number int, state string, reason github.StateReason) (github.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return github.Issue{}, f.updateErr
	}

	issue, ok := f.issues[number]
	if !ok {
		return github.Issue{}, github.ErrNotFound
	}

	issue.State = state
	f.issues[number] = issue
	f.updates = append(f.updates, stateUpdate{number: number, state: state, reason: reason})
	return issue, nil
}

func (f *fakeClient) UpdateIssueContent(_ context.Context, _, _ string, number int, title, body string) (github.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[number]
	if !ok {
		return github.Issue{}, github.ErrNotFound
	}

	issue.Title = title
	issue.Body = body
	f.issues[number] = issue
	return issue, nil
}

func (f *fakeClient) stateOf(number int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issues[number].State
}

func newTestOps(t *testing.T, client github.Client) *IssueOpService {
	t.Helper()
	return NewIssueOpService(client, "octo", "hello", zerolog.Nop())
}

func TestIssueOpServiceCreate(t *testing.T) {
	client := newFakeClient()
	ops := newTestOps(t, client)

	issue, err := ops.Create(context.Background(), todo.Item{ID: "a", Title: "Buy milk", Detail: "2%"})
	require.NoError(t, err)

	assert.Equal(t, 1, issue.Number)
	assert.Equal(t, "Buy milk", issue.Title)
	assert.Equal(t, "open", issue.State)
}

func TestIssueOpServiceMissingConfig(t *testing.T) {
	ops := NewIssueOpService(newFakeClient(), "", "", zerolog.Nop())
	item := todo.Item{ID: "a", Title: "x", IssueURL: "https://github.com/octo/hello/issues/1"}

	_, err := ops.Create(context.Background(), item)
	assert.ErrorIs(t, err, github.ErrInvalidConfiguration)

	_, err = ops.FetchState(context.Background(), item)
	assert.ErrorIs(t, err, github.ErrInvalidConfiguration)

	err = ops.ToggleState(context.Background(), item, github.ReasonCompleted)
	assert.ErrorIs(t, err, github.ErrInvalidConfiguration)
}

func TestIssueOpServiceFetchState(t *testing.T) {
	client := newFakeClient()
	_, openURL := client.addIssue("open")
	_, closedURL := client.addIssue("closed")
	ops := newTestOps(t, client)

	t.Run("open", func(t *testing.T) {
		state, err := ops.FetchState(context.Background(), todo.Item{ID: "a", IssueURL: openURL})
		require.NoError(t, err)
		assert.Equal(t, todo.StateOpen, state)
	})

	t.Run("closed", func(t *testing.T) {
		state, err := ops.FetchState(context.Background(), todo.Item{ID: "b", IssueURL: closedURL})
		require.NoError(t, err)
		assert.Equal(t, todo.StateClosed, state)
	})

	t.Run("unlinked item is a local no-op", func(t *testing.T) {
		state, err := ops.FetchState(context.Background(), todo.Item{ID: "c"})
		require.NoError(t, err)
		assert.Equal(t, todo.StateUnknown, state)
	})

	t.Run("missing issue surfaces the error", func(t *testing.T) {
		_, err := ops.FetchState(context.Background(), todo.Item{
			ID:       "d",
			IssueURL: "https://github.com/octo/hello/issues/999",
		})
		assert.ErrorIs(t, err, github.ErrNotFound)
	})
}

func TestIssueOpServiceToggleState(t *testing.T) {
	t.Run("flips from the remote state", func(t *testing.T) {
		client := newFakeClient()
		number, url := client.addIssue("open")
		ops := newTestOps(t, client)

		// The local item is already done here, but the remote says open;
		// the toggle must go by the remote, closing the issue.
		item := todo.Item{ID: "a", Done: true, IssueURL: url}
		require.NoError(t, ops.ToggleState(context.Background(), item, github.ReasonCompleted))
		assert.Equal(t, "closed", client.stateOf(number))

		// Toggling again reopens regardless of the done flag.
		require.NoError(t, ops.ToggleState(context.Background(), item, github.ReasonReopened))
		assert.Equal(t, "open", client.stateOf(number))
	})

	t.Run("carries the reason", func(t *testing.T) {
		client := newFakeClient()
		_, url := client.addIssue("open")
		ops := newTestOps(t, client)

		require.NoError(t, ops.ToggleState(context.Background(), todo.Item{ID: "a", IssueURL: url}, github.ReasonDuplicate))

		require.Len(t, client.updates, 1)
		assert.Equal(t, github.ReasonDuplicate, client.updates[0].reason)
	})

	t.Run("unlinked item is a no-op", func(t *testing.T) {
		client := newFakeClient()
		ops := newTestOps(t, client)

		require.NoError(t, ops.ToggleState(context.Background(), todo.Item{ID: "a"}, github.ReasonCompleted))
		assert.Empty(t, client.updates)
	})
}

func TestIssueOpServiceCloseWithReason(t *testing.T) {
	client := newFakeClient()
	number, url := client.addIssue("open")
	ops := newTestOps(t, client)

	require.NoError(t, ops.CloseWithReason(context.Background(), todo.Item{ID: "a", IssueURL: url}, github.ReasonNotPlanned))

	assert.Equal(t, "closed", client.stateOf(number))
	require.Len(t, client.updates, 1)
	assert.Equal(t, github.ReasonNotPlanned, client.updates[0].reason)
}

func TestIssueOpServiceUpdateContent(t *testing.T) {
	client := newFakeClient()
	number, url := client.addIssue("open")
	ops := newTestOps(t, client)

	require.NoError(t, ops.UpdateContent(context.Background(), todo.Item{
		ID:       "a",
		Title:    "new title",
		Detail:   "new detail",
		IssueURL: url,
	}))

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, "new title", client.issues[number].Title)
	assert.Equal(t, "new detail", client.issues[number].Body)
}

func TestIssueOpServiceUpdateErrorPropagates(t *testing.T) {
	client := newFakeClient()
	_, url := client.addIssue("open")
	client.updateErr = errors.New("boom")
	ops := newTestOps(t, client)

	err := ops.ToggleState(context.Background(), todo.Item{ID: "a", IssueURL: url}, github.ReasonCompleted)
	assert.ErrorContains(t, err, "boom")
}
