package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"basegraph.app/bugrelay/common/llm"
	"basegraph.app/bugrelay/core/config"
	"basegraph.app/bugrelay/internal/crisp"
	"basegraph.app/bugrelay/internal/service/issue_tracker"
)

// CrispAPI is everything the services need from the Crisp client.
type CrispAPI interface {
	ConversationSource
	NoteSender
	SettingsStore
}

type Services struct {
	pipeline *Pipeline
	settings SettingsService
}

func NewServices(cfg config.Config, logger *slog.Logger) (*Services, error) {
	crispClient, err := crisp.NewClient(cfg.Crisp.PluginID, cfg.Crisp.PluginSecret,
		crisp.WithBaseURL(cfg.Crisp.APIURL),
		crisp.WithTimeout(cfg.Crisp.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating crisp client: %w", err)
	}

	completer, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	tracker, err := NewIssueTracker(cfg.Tracker)
	if err != nil {
		return nil, err
	}

	return NewServicesWith(cfg, crispClient, completer, tracker, logger), nil
}

// NewServicesWith wires the services over already constructed clients.
func NewServicesWith(cfg config.Config, crispAPI CrispAPI, completer llm.Completer, tracker issue_tracker.IssueTrackerService, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}

	settings := NewSettingsService(crispAPI, cfg.Crisp.SettingsTTL, cfg.DefaultGitHubRepo, logger)

	pipeline := NewPipeline(PipelineDeps{
		Fetcher: NewConversationFetcher(crispAPI, logger),
		Analyzer: NewBugAnalyzer(completer, BugAnalyzerConfig{
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.LLM.Timeout,
		}, logger),
		Filer:    NewIssueFiler(tracker, cfg.Tracker.Timeout, logger),
		Notifier: NewNotifier(crispAPI, cfg.Notifier.Timeout, logger),
		Settings: settings,
		AppURL:   cfg.Crisp.AppURL,
		Logger:   logger,
	})

	return &Services{
		pipeline: pipeline,
		settings: settings,
	}
}

func NewIssueTracker(cfg config.TrackerConfig) (issue_tracker.IssueTrackerService, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.TrackerGitLab:
		return issue_tracker.NewGitLabIssueTrackerService(issue_tracker.GitLabConfig{
			Token:      cfg.GitLabToken,
			BaseURL:    cfg.GitLabBaseURL,
			HTTPClient: httpClient,
		})
	case config.TrackerGitHub, "":
		return issue_tracker.NewGitHubIssueTrackerService(issue_tracker.GitHubConfig{
			Token:      cfg.GitHubToken,
			BaseURL:    cfg.GitHubBaseURL,
			HTTPClient: httpClient,
		})
	default:
		return nil, fmt.Errorf("unsupported tracker provider: %s", cfg.Provider)
	}
}

func (s *Services) Pipeline() *Pipeline {
	return s.pipeline
}

func (s *Services) Settings() SettingsService {
	return s.settings
}
