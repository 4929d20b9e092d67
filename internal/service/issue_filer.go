package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/bugrelay/internal/model"
	"basegraph.app/bugrelay/internal/service/issue_tracker"
)

const (
	notProvided        = "_Not provided_"
	noStepsPlaceholder = "_Not identified in the conversation_"
	reportFooter       = "_Bug reported via Crisp Bug Reporter_"
)

// IssueLabels are attached to every filed issue.
var IssueLabels = []string{"bug", "from-crisp"}

type FileIssueParams struct {
	Analysis        model.BugAnalysis
	UserContext     model.UserContext
	ConversationURL string
	Repository      string // owner/name
}

type IssueFiler interface {
	File(ctx context.Context, params FileIssueParams) (*model.Issue, error)
	TrackerName() string
}

type issueFiler struct {
	tracker issue_tracker.IssueTrackerService
	timeout time.Duration
	logger  *slog.Logger
}

func NewIssueFiler(tracker issue_tracker.IssueTrackerService, timeout time.Duration, logger *slog.Logger) IssueFiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &issueFiler{
		tracker: tracker,
		timeout: timeout,
		logger:  logger,
	}
}

func (f *issueFiler) TrackerName() string {
	return f.tracker.Name()
}

func (f *issueFiler) File(ctx context.Context, params FileIssueParams) (*model.Issue, error) {
	owner, repo, err := ParseRepository(params.Repository)
	if err != nil {
		return nil, err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	issue, err := f.tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
		Owner:  owner,
		Repo:   repo,
		Title:  params.Analysis.Title,
		Body:   RenderIssueBody(params.Analysis, params.UserContext, params.ConversationURL),
		Labels: append([]string(nil), IssueLabels...),
	})
	if err != nil {
		return nil, wrapKind(ErrIssueCreation, err)
	}

	f.logger.InfoContext(ctx, "issue created",
		"issue_number", issue.Number,
		"issue_url", issue.URL)

	return issue, nil
}

// ParseRepository splits "owner/name". Anything other than exactly two
// non-empty segments is rejected.
func ParseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, repository)
	}
	return parts[0], parts[1], nil
}

// ConversationURL links to the conversation in the operator inbox.
func ConversationURL(appURL, websiteID, sessionID string) string {
	return fmt.Sprintf("%s/website/%s/inbox/%s", strings.TrimSuffix(appURL, "/"), websiteID, sessionID)
}

func RenderIssueBody(analysis model.BugAnalysis, uc model.UserContext, conversationURL string) string {
	var sb strings.Builder

	description, _ := SanitizeMentions(analysis.Description)

	sb.WriteString("## Description\n")
	sb.WriteString(description)
	sb.WriteString("\n\n## Steps to Reproduce\n")
	if len(analysis.StepsToReproduce) == 0 {
		sb.WriteString(noStepsPlaceholder)
	} else {
		for i, step := range analysis.StepsToReproduce {
			if i > 0 {
				sb.WriteByte('\n')
			}
			step, _ = SanitizeMentions(step)
			marker := fmt.Sprintf("%d. ", i+1)
			sb.WriteString(marker)
			// Continuation lines stay inside the list item.
			sb.WriteString(strings.ReplaceAll(normalizeNewlines(step), "\n", "\n"+strings.Repeat(" ", len(marker))))
		}
	}

	fmt.Fprintf(&sb, "\n\n## Suggested Severity\n`%s`\n\n---\n\n", analysis.Severity)

	sb.WriteString("## User Context\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	writeContextRow(&sb, "Email", uc.Email)
	writeContextRow(&sb, "Device", uc.Device)
	writeContextRow(&sb, "Browser", uc.Browser)
	writeContextRow(&sb, "OS", uc.OS)
	writeContextRow(&sb, "Country", uc.Country)

	fmt.Fprintf(&sb, "\n## Reference\n[Crisp conversation](%s)\n\n---\n%s", conversationURL, reportFooter)

	return sb.String()
}

func writeContextRow(sb *strings.Builder, field string, value *string) {
	v := notProvided
	if value != nil && *value != "" {
		// Pipes would split the cell and newlines end the row.
		v = strings.ReplaceAll(*value, "|", `\|`)
		v = strings.ReplaceAll(normalizeNewlines(v), "\n", " ")
	}
	fmt.Fprintf(sb, "| %s | %s |\n", field, v)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
