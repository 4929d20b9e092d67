package issue_tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"

	"basegraph.app/bugrelay/internal/model"
)

type GitHubConfig struct {
	Token      string
	BaseURL    string // GitHub Enterprise API URL; empty for github.com
	HTTPClient *http.Client
}

type gitHubIssueTrackerService struct {
	client *github.Client
}

func NewGitHubIssueTrackerService(cfg GitHubConfig) (IssueTrackerService, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	client := github.NewClient(cfg.HTTPClient).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring github base url: %w", err)
		}
	}

	return &gitHubIssueTrackerService{client: client}, nil
}

func (s *gitHubIssueTrackerService) Name() string {
	return "GitHub"
}

func (s *gitHubIssueTrackerService) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.Issue, error) {
	labels := params.Labels
	created, _, err := s.client.Issues.Create(ctx, params.Owner, params.Repo, &github.IssueRequest{
		Title:  github.String(params.Title),
		Body:   github.String(params.Body),
		Labels: &labels,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &model.Issue{
		Number: int64(created.GetNumber()),
		URL:    created.GetHTMLURL(),
		Title:  params.Title,
	}, nil
}

func (s *gitHubIssueTrackerService) mapError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{Provider: "github", StatusCode: statusOf(rateErr.Response), Message: rateErr.Message}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return &APIError{Provider: "github", StatusCode: statusOf(respErr.Response), Message: respErr.Message}
	}

	return &APIError{Provider: "github", Message: err.Error()}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
