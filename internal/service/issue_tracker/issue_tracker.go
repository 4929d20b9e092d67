package issue_tracker

import (
	"context"
	"fmt"

	"basegraph.app/bugrelay/internal/model"
)

type CreateIssueParams struct {
	Owner  string
	Repo   string
	Title  string
	Body   string // Markdown
	Labels []string
}

type IssueTrackerService interface {
	// Name is the tracker's display name, used in the conversation note.
	Name() string
	CreateIssue(ctx context.Context, params CreateIssueParams) (*model.Issue, error)
}

// APIError carries the status and message returned by a tracker API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}
