package issue_tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/bugrelay/internal/model"
)

type GitLabConfig struct {
	Token      string
	BaseURL    string // self-hosted instance URL; empty for gitlab.com
	HTTPClient *http.Client
}

type gitLabIssueTrackerService struct {
	client *gitlab.Client
}

func NewGitLabIssueTrackerService(cfg GitLabConfig) (IssueTrackerService, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}

	client, err := newGitLabClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitLabIssueTrackerService{client: client}, nil
}

func newGitLabClient(cfg GitLabConfig) (*gitlab.Client, error) {
	var opts []gitlab.ClientOptionFunc
	if cfg.HTTPClient != nil {
		opts = append(opts, gitlab.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.BaseURL != "" {
		apiURL := strings.TrimSuffix(cfg.BaseURL, "/") + "/api/v4"
		opts = append(opts, gitlab.WithBaseURL(apiURL))
	}
	return gitlab.NewClient(cfg.Token, opts...)
}

func (s *gitLabIssueTrackerService) Name() string {
	return "GitLab"
}

// CreateIssue files into the project at owner/repo.
func (s *gitLabIssueTrackerService) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.Issue, error) {
	labels := gitlab.LabelOptions(params.Labels)
	created, _, err := s.client.Issues.CreateIssue(
		params.Owner+"/"+params.Repo,
		&gitlab.CreateIssueOptions{
			Title:       gitlab.Ptr(params.Title),
			Description: gitlab.Ptr(params.Body),
			Labels:      &labels,
		},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		var respErr *gitlab.ErrorResponse
		if errors.As(err, &respErr) {
			return nil, &APIError{Provider: "gitlab", StatusCode: statusOf(respErr.Response), Message: respErr.Message}
		}
		return nil, &APIError{Provider: "gitlab", Message: err.Error()}
	}

	return &model.Issue{
		Number: int64(created.IID),
		URL:    created.WebURL,
		Title:  params.Title,
	}, nil
}
