package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/bugrelay/common/id"
	"basegraph.app/bugrelay/common/logger"
	"basegraph.app/bugrelay/internal/model"
)

// PipelineRequest is a fully resolved run: the transcript, its metadata and
// the target repository are known before any remote call.
type PipelineRequest struct {
	WebsiteID  string
	SessionID  string
	Repository string
	Messages   []model.Message
	Meta       model.ConversationMeta
}

// FileFromConversationParams fetches the transcript server side.
type FileFromConversationParams struct {
	WebsiteID  string
	SessionID  string
	GitHubRepo string // optional, overrides the workspace setting
}

// FileFromTranscriptParams carries an embedded transcript.
type FileFromTranscriptParams struct {
	WebsiteID  string
	SessionID  string
	GitHubRepo string
	Messages   []model.Message
	Meta       model.ConversationMeta
}

type PipelineResult struct {
	RunID int64
	Issue model.Issue
}

type PipelineDeps struct {
	Fetcher  ConversationFetcher
	Analyzer BugAnalyzer
	Filer    IssueFiler
	Notifier Notifier
	Settings SettingsService
	AppURL   string // Crisp operator app, for conversation links
	Logger   *slog.Logger
}

// Pipeline runs received → fetched → analyzed → filed → responded. The first
// failure is final and returned as a *StageError.
type Pipeline struct {
	fetcher  ConversationFetcher
	analyzer BugAnalyzer
	filer    IssueFiler
	notifier Notifier
	settings SettingsService
	appURL   string
	logger   *slog.Logger
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	appURL := deps.AppURL
	if appURL == "" {
		appURL = "https://app.crisp.chat"
	}
	return &Pipeline{
		fetcher:  deps.Fetcher,
		analyzer: deps.Analyzer,
		filer:    deps.Filer,
		notifier: deps.Notifier,
		settings: deps.Settings,
		appURL:   appURL,
		logger:   log,
	}
}

// FileFromConversation resolves the repository, fetches the conversation
// from Crisp and runs the pipeline.
func (p *Pipeline) FileFromConversation(ctx context.Context, params FileFromConversationParams) (*PipelineResult, error) {
	if err := validateIDs(params.WebsiteID, params.SessionID); err != nil {
		return nil, &StageError{Stage: StageReceived, Err: err}
	}

	ctx, runID, span := p.startRun(ctx, params.WebsiteID, params.SessionID, "conversation")
	defer span.End()

	repo, err := p.resolveRepository(ctx, params.WebsiteID, params.GitHubRepo)
	if err != nil {
		return nil, p.fail(ctx, span, StageReceived, err)
	}

	fetchSpan := logger.StartSpan(ctx, "bugrelay.pipeline.fetch")
	conversation, err := p.fetcher.Fetch(fetchSpan.Context(), params.WebsiteID, params.SessionID)
	if err != nil {
		fetchSpan.Fail(err)
		fetchSpan.End()
		return nil, p.fail(ctx, span, StageReceived, err)
	}
	fetchSpan.SetAttributes(attribute.Int("conversation.messages", len(conversation.Messages)))
	fetchSpan.End()

	return p.process(ctx, runID, span, PipelineRequest{
		WebsiteID:  params.WebsiteID,
		SessionID:  params.SessionID,
		Repository: repo,
		Messages:   conversation.Messages,
		Meta:       conversation.Meta,
	})
}

// FileFromTranscript runs the pipeline over a transcript supplied by the
// caller. The repository is resolved the same way as FileFromConversation.
func (p *Pipeline) FileFromTranscript(ctx context.Context, params FileFromTranscriptParams) (*PipelineResult, error) {
	if err := validateIDs(params.WebsiteID, params.SessionID); err != nil {
		return nil, &StageError{Stage: StageReceived, Err: err}
	}
	if params.Messages == nil {
		return nil, &StageError{Stage: StageReceived, Err: validationError("messages is required")}
	}

	ctx, runID, span := p.startRun(ctx, params.WebsiteID, params.SessionID, "transcript")
	defer span.End()

	repo, err := p.resolveRepository(ctx, params.WebsiteID, params.GitHubRepo)
	if err != nil {
		return nil, p.fail(ctx, span, StageReceived, err)
	}

	return p.process(ctx, runID, span, PipelineRequest{
		WebsiteID:  params.WebsiteID,
		SessionID:  params.SessionID,
		Repository: repo,
		Messages:   params.Messages,
		Meta:       params.Meta,
	})
}

// Run executes an already resolved request.
func (p *Pipeline) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	if err := validateIDs(req.WebsiteID, req.SessionID); err != nil {
		return nil, &StageError{Stage: StageReceived, Err: err}
	}

	ctx, runID, span := p.startRun(ctx, req.WebsiteID, req.SessionID, "resolved")
	defer span.End()

	return p.process(ctx, runID, span, req)
}

// Drain waits for detached conversation notes to finish.
func (p *Pipeline) Drain(ctx context.Context) error {
	return p.notifier.Drain(ctx)
}

func (p *Pipeline) process(ctx context.Context, runID int64, span *logger.SpanContext, req PipelineRequest) (*PipelineResult, error) {
	if len(req.Messages) == 0 {
		return nil, p.fail(ctx, span, StageFetched, ErrEmptyConversation)
	}
	if _, _, err := ParseRepository(req.Repository); err != nil {
		return nil, p.fail(ctx, span, StageFetched, err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Repo:  logger.Ptr(req.Repository),
		Stage: logger.Ptr(string(StageFetched)),
	})
	span.SetAttributes(
		attribute.String("bugrelay.repository", req.Repository),
		attribute.Int("conversation.messages", len(req.Messages)),
	)

	userContext := BuildUserContext(req.Meta)

	analyzeSpan := logger.StartSpan(ctx, "bugrelay.pipeline.analyze")
	analysis, err := p.analyzer.Analyze(analyzeSpan.Context(), req.Messages)
	if err != nil {
		analyzeSpan.Fail(err)
		analyzeSpan.End()
		return nil, p.fail(ctx, span, StageFetched, err)
	}
	analyzeSpan.SetAttributes(attribute.String("bug.severity", string(analysis.Severity)))
	analyzeSpan.End()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr(string(StageAnalyzed))})

	fileSpan := logger.StartSpan(ctx, "bugrelay.pipeline.file")
	issue, err := p.filer.File(fileSpan.Context(), FileIssueParams{
		Analysis:        *analysis,
		UserContext:     userContext,
		ConversationURL: ConversationURL(p.appURL, req.WebsiteID, req.SessionID),
		Repository:      req.Repository,
	})
	if err != nil {
		fileSpan.Fail(err)
		fileSpan.End()
		return nil, p.fail(ctx, span, StageAnalyzed, err)
	}
	fileSpan.SetAttributes(attribute.Int64("issue.number", issue.Number))
	fileSpan.End()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr(string(StageFiled))})

	result := &PipelineResult{RunID: runID, Issue: *issue}

	p.notifier.Notify(ctx, NotifyParams{
		WebsiteID:   req.WebsiteID,
		SessionID:   req.SessionID,
		TrackerName: p.filer.TrackerName(),
		IssueURL:    issue.URL,
		IssueTitle:  issue.Title,
	})

	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr(string(StageResponded))})
	p.logger.InfoContext(ctx, "bug filed",
		"issue_number", issue.Number,
		"issue_url", issue.URL,
		"severity", analysis.Severity)

	return result, nil
}

func (p *Pipeline) startRun(ctx context.Context, websiteID, sessionID, variant string) (context.Context, int64, *logger.SpanContext) {
	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		WebsiteID: logger.Ptr(websiteID),
		SessionID: logger.Ptr(sessionID),
		Stage:     logger.Ptr(string(StageReceived)),
		Component: "bugrelay.service.pipeline",
	})

	span := logger.StartSpan(ctx, "bugrelay.pipeline.run")
	span.SetAttributes(
		attribute.Int64("bugrelay.run_id", runID),
		attribute.String("bugrelay.variant", variant),
		attribute.String("crisp.website_id", websiteID),
		attribute.String("crisp.session_id", sessionID),
	)
	return span.Context(), runID, span
}

// resolveRepository also checks the owner/name form so a bad repository
// fails before any Crisp call.
func (p *Pipeline) resolveRepository(ctx context.Context, websiteID, requested string) (string, error) {
	repo := strings.TrimSpace(requested)
	if p.settings != nil {
		var err error
		if repo, err = p.settings.ResolveRepository(ctx, websiteID, requested); err != nil {
			return "", err
		}
	} else if repo == "" {
		return "", validationError("github repository not configured for this workspace")
	}

	if _, _, err := ParseRepository(repo); err != nil {
		return "", err
	}
	return repo, nil
}

func (p *Pipeline) fail(ctx context.Context, span *logger.SpanContext, stage Stage, err error) error {
	span.Fail(err)

	level := slog.LevelError
	if IsClientError(err) {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "pipeline run failed",
		"failed_after", stage,
		"error", err)

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

func validateIDs(websiteID, sessionID string) error {
	var missing []string
	if strings.TrimSpace(websiteID) == "" {
		missing = append(missing, "website_id")
	}
	if strings.TrimSpace(sessionID) == "" {
		missing = append(missing, "session_id")
	}
	if len(missing) > 0 {
		return validationError("%s", strings.Join(missing, ", "))
	}
	return nil
}
