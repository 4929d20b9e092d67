package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoteSender posts an operator-only note into a conversation.
type NoteSender interface {
	SendNote(ctx context.Context, websiteID, sessionID, content string) error
}

type NotifyParams struct {
	WebsiteID   string
	SessionID   string
	TrackerName string
	IssueURL    string
	IssueTitle  string
}

// Notifier posts the confirmation note. Notify never blocks on the remote
// call and never reports its outcome to the caller.
type Notifier interface {
	Notify(ctx context.Context, params NotifyParams)
	Drain(ctx context.Context) error
}

type notifier struct {
	sender  NoteSender
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewNotifier(sender NoteSender, timeout time.Duration, logger *slog.Logger) Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notifier{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
}

func NoteText(trackerName, issueURL, issueTitle string) string {
	return fmt.Sprintf("🐛 Bug filed on %s: %s\nTitle: %s", trackerName, issueURL, issueTitle)
}

func (n *notifier) Notify(ctx context.Context, params NotifyParams) {
	// Outlive the request but keep its values (log fields, trace).
	noteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				n.logger.ErrorContext(noteCtx, "panic while posting conversation note", "panic", r)
			}
		}()

		content := NoteText(params.TrackerName, params.IssueURL, params.IssueTitle)
		if err := n.sender.SendNote(noteCtx, params.WebsiteID, params.SessionID, content); err != nil {
			n.logger.ErrorContext(noteCtx, "conversation note not posted",
				"error", wrapKind(ErrNotification, err),
				"issue_url", params.IssueURL)
			return
		}

		n.logger.DebugContext(noteCtx, "conversation note posted", "issue_url", params.IssueURL)
	}()
}

// Drain waits for in-flight notes or until ctx is done.
func (n *notifier) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining notifier: %w", ctx.Err())
	}
}
