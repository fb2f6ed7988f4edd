// Package todo defines the todo item domain model and storage contract.
package todo

import (
	"strconv"
	"strings"
	"time"
)

// IssueState is the observed state of a linked GitHub issue. The zero value
// means unknown: either no issue is linked or the last fetch failed.
type IssueState string

const (
	StateUnknown IssueState = ""
	StateOpen    IssueState = "open"
	StateClosed  IssueState = "closed"
)

// Item is a single todo item.
//
// IssueURL, once set, is only ever replaced by a create or re-link; a failed
// remote operation never clears it.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	Done      bool      `json:"done"`
	IssueURL  string    `json:"issue_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasIssue reports whether the item is linked to a GitHub issue.
func (i Item) HasIssue() bool {
	return i.IssueURL != ""
}

// IssueNumber derives the linked issue's number from the trailing path
// segment of IssueURL. The second return is false when no issue is linked or
// the segment is not an integer.
func (i Item) IssueNumber() (int, bool) {
	if i.IssueURL == "" {
		return 0, false
	}

	trimmed := strings.TrimSuffix(i.IssueURL, "/")
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]

	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ItemWithIssueState pairs an item snapshot with the issue state observed by
// the most recent fetch pass. It is never persisted.
type ItemWithIssueState struct {
	Item       Item       `json:"item"`
	IssueState IssueState `json:"issue_state,omitempty"`
}
