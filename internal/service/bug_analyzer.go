package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/bugrelay/common/llm"
	"basegraph.app/bugrelay/common/logger"
	"basegraph.app/bugrelay/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

const analysisPrompt = `Analyze this support conversation and extract information about the reported bug.

Conversation:
%s

Respond ONLY with valid JSON in the following format (no markdown, no code blocks):
{
  "title": "Short, descriptive bug title (max 80 characters)",
  "description": "Detailed description of the reported problem",
  "stepsToReproduce": ["Step 1", "Step 2"],
  "severity": "low|medium|high|critical"
}

If you cannot identify steps to reproduce, use an empty array.
Base the severity on the impact described by the user.`

var bugAnalysisSchema = llm.GenerateSchema[model.BugAnalysis]()

type BugAnalyzer interface {
	Analyze(ctx context.Context, messages []model.Message) (*model.BugAnalysis, error)
}

type BugAnalyzerConfig struct {
	MaxTokens int
	Timeout   time.Duration
}

type bugAnalyzer struct {
	llm    llm.Completer
	cfg    BugAnalyzerConfig
	logger *slog.Logger
}

func NewBugAnalyzer(completer llm.Completer, cfg BugAnalyzerConfig, logger *slog.Logger) BugAnalyzer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bugAnalyzer{
		llm:    completer,
		cfg:    cfg,
		logger: logger,
	}
}

func (a *bugAnalyzer) Analyze(ctx context.Context, messages []model.Message) (*model.BugAnalysis, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	transcript := RenderTranscript(messages)

	sc := logger.StartSpan(ctx, "bugrelay.llm.complete")
	defer sc.End()
	sc.SetAttributes(
		attribute.String("llm.model", a.llm.Model()),
		attribute.Int("transcript.length", len(transcript)),
	)

	start := time.Now()
	content, err := a.llm.Complete(sc.Context(), llm.CompletionRequest{
		Prompt:     fmt.Sprintf(analysisPrompt, transcript),
		MaxTokens:  a.cfg.MaxTokens,
		SchemaName: "bug_analysis",
		Schema:     bugAnalysisSchema,
	})
	if err != nil {
		sc.Fail(err)
		return nil, wrapKind(ErrAnalysis, err)
	}

	analysis, err := ParseBugAnalysis(content)
	if err != nil {
		sc.Fail(err)
		a.logger.WarnContext(ctx, "model response rejected",
			"error", err,
			"response", logger.Truncate(content, 500))
		return nil, err
	}

	a.logger.DebugContext(ctx, "conversation analyzed",
		"duration_ms", time.Since(start).Milliseconds(),
		"severity", analysis.Severity,
		"steps", len(analysis.StepsToReproduce))

	return analysis, nil
}

// RenderTranscript renders text messages as "[from]: content" lines in feed
// order. Every other message type is dropped.
func RenderTranscript(messages []model.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		if !m.IsText() {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s]: %s", m.From, m.Content)
	}
	return sb.String()
}

type rawBugAnalysis struct {
	Title            *string         `json:"title"`
	Description      *string         `json:"description"`
	StepsToReproduce []string        `json:"stepsToReproduce"`
	Severity         *model.Severity `json:"severity"`
}

// ParseBugAnalysis decodes the model's answer. The whole text must be one JSON
// object: fences or trailing prose fail, as do blank required fields.
func ParseBugAnalysis(content string) (*model.BugAnalysis, error) {
	var raw rawBugAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, wrapKind(ErrAnalysis, fmt.Errorf("parsing model response as JSON: %w", err))
	}

	var missing []string
	if raw.Title == nil || strings.TrimSpace(*raw.Title) == "" {
		missing = append(missing, "title")
	}
	if raw.Description == nil || strings.TrimSpace(*raw.Description) == "" {
		missing = append(missing, "description")
	}
	if raw.Severity == nil {
		missing = append(missing, "severity")
	}
	if len(missing) > 0 {
		return nil, wrapKind(ErrAnalysis, fmt.Errorf("model response missing %s", strings.Join(missing, ", ")))
	}

	steps := raw.StepsToReproduce
	if steps == nil {
		steps = []string{}
	}

	return &model.BugAnalysis{
		Title:            *raw.Title,
		Description:      *raw.Description,
		StepsToReproduce: steps,
		Severity:         *raw.Severity,
	}, nil
}
