package handler_test

import (
	"context"

	"basegraph.app/bugrelay/internal/service"
)

type mockBugFiler struct {
	fromConversationFn func(ctx context.Context, params service.FileFromConversationParams) (*service.PipelineResult, error)
	fromTranscriptFn   func(ctx context.Context, params service.FileFromTranscriptParams) (*service.PipelineResult, error)

	lastConversation service.FileFromConversationParams
	lastTranscript   service.FileFromTranscriptParams
}

func (m *mockBugFiler) FileFromConversation(ctx context.Context, params service.FileFromConversationParams) (*service.PipelineResult, error) {
	m.lastConversation = params
	if m.fromConversationFn != nil {
		return m.fromConversationFn(ctx, params)
	}
	return nil, nil
}

func (m *mockBugFiler) FileFromTranscript(ctx context.Context, params service.FileFromTranscriptParams) (*service.PipelineResult, error) {
	m.lastTranscript = params
	if m.fromTranscriptFn != nil {
		return m.fromTranscriptFn(ctx, params)
	}
	return nil, nil
}

type mockSettingsService struct {
	getFn     func(ctx context.Context, websiteID string) (map[string]any, error)
	saveFn    func(ctx context.Context, websiteID, githubRepo string) error
	resolveFn func(ctx context.Context, websiteID, requested string) (string, error)

	lastGetWebsite  string
	lastSaveWebsite string
	lastSaveRepo    string
}

func (m *mockSettingsService) Get(ctx context.Context, websiteID string) (map[string]any, error) {
	m.lastGetWebsite = websiteID
	if m.getFn != nil {
		return m.getFn(ctx, websiteID)
	}
	return map[string]any{}, nil
}

func (m *mockSettingsService) Save(ctx context.Context, websiteID, githubRepo string) error {
	m.lastSaveWebsite = websiteID
	m.lastSaveRepo = githubRepo
	if m.saveFn != nil {
		return m.saveFn(ctx, websiteID, githubRepo)
	}
	return nil
}

func (m *mockSettingsService) ResolveRepository(ctx context.Context, websiteID, requested string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, websiteID, requested)
	}
	return requested, nil
}
