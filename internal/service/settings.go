package service

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// SettingKeyGitHubRepo is the workspace setting holding the target repository.
const SettingKeyGitHubRepo = "github_repo"

// SettingsStore persists per-workspace plugin settings (Crisp subscription
// settings in production).
type SettingsStore interface {
	GetSubscriptionSettings(ctx context.Context, websiteID string) (map[string]any, error)
	UpdateSubscriptionSettings(ctx context.Context, websiteID string, settings map[string]any) error
}

type SettingsService interface {
	Get(ctx context.Context, websiteID string) (map[string]any, error)
	Save(ctx context.Context, websiteID, githubRepo string) error
	// ResolveRepository picks the target repository: the explicit value, then
	// the workspace setting, then the deployment default.
	ResolveRepository(ctx context.Context, websiteID, requested string) (string, error)
}

type settingsService struct {
	store       SettingsStore
	cache       *cache.Cache
	defaultRepo string
	logger      *slog.Logger
}

func NewSettingsService(store SettingsStore, ttl time.Duration, defaultRepo string, logger *slog.Logger) SettingsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		store:       store,
		cache:       cache.New(ttl, 2*ttl),
		defaultRepo: strings.TrimSpace(defaultRepo),
		logger:      logger,
	}
}

func (s *settingsService) Get(ctx context.Context, websiteID string) (map[string]any, error) {
	if websiteID == "" {
		return nil, validationError("website_id is required")
	}

	if cached, ok := s.cache.Get(websiteID); ok {
		return maps.Clone(cached.(map[string]any)), nil
	}

	settings, err := s.store.GetSubscriptionSettings(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = map[string]any{}
	}

	s.cache.Set(websiteID, maps.Clone(settings), cache.DefaultExpiration)
	return settings, nil
}

func (s *settingsService) Save(ctx context.Context, websiteID, githubRepo string) error {
	githubRepo = strings.TrimSpace(githubRepo)
	if websiteID == "" || githubRepo == "" {
		return validationError("website_id and github_repo are required")
	}
	if _, _, err := ParseRepository(githubRepo); err != nil {
		return err
	}

	defer s.cache.Delete(websiteID)

	return s.store.UpdateSubscriptionSettings(ctx, websiteID, map[string]any{
		SettingKeyGitHubRepo: githubRepo,
	})
}

func (s *settingsService) ResolveRepository(ctx context.Context, websiteID, requested string) (string, error) {
	if repo := strings.TrimSpace(requested); repo != "" {
		return repo, nil
	}

	settings, err := s.Get(ctx, websiteID)
	if err != nil {
		s.logger.WarnContext(ctx, "workspace settings unavailable, falling back to default repository",
			"error", err)
	} else if repo, ok := settings[SettingKeyGitHubRepo].(string); ok && strings.TrimSpace(repo) != "" {
		return strings.TrimSpace(repo), nil
	}

	if s.defaultRepo != "" {
		return s.defaultRepo, nil
	}

	return "", validationError("github repository not configured for this workspace")
}
