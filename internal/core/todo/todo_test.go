package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueNumber(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   int
		wantOK bool
	}{
		{
			name:   "standard issue url",
			url:    "https://github.com/octo/hello/issues/42",
			want:   42,
			wantOK: true,
		},
		{
			name:   "trailing slash",
			url:    "https://github.com/octo/hello/issues/7/",
			want:   7,
			wantOK: true,
		},
		{
			name:   "no url",
			url:    "",
			wantOK: false,
		},
		{
			name:   "non numeric tail",
			url:    "https://github.com/octo/hello/issues/new",
			wantOK: false,
		},
		{
			name:   "bare host",
			url:    "https://github.com",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{IssueURL: tt.url}

			got, ok := item.IssueNumber()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHasIssue(t *testing.T) {
	assert.False(t, Item{}.HasIssue())
	assert.True(t, Item{IssueURL: "https://github.com/octo/hello/issues/1"}.HasIssue())
}
