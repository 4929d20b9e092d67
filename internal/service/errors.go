package service

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Stage errors wrap one of these together with the
// upstream cause, so errors.Is selects the kind and Error() keeps the
// upstream wording.
var (
	ErrValidation        = errors.New("missing required fields")
	ErrEmptyConversation = errors.New("conversation has no messages")
	ErrUpstreamFetch     = errors.New("failed to fetch conversation")
	ErrAnalysis          = errors.New("failed to analyze conversation")
	ErrInvalidRepository = errors.New("repository must be in format owner/repo")
	ErrIssueCreation     = errors.New("failed to create issue")
	ErrNotification      = errors.New("failed to post conversation note")
)

// Stage is a state of a pipeline run.
type Stage string

const (
	StageReceived  Stage = "received"
	StageFetched   Stage = "fetched"
	StageAnalyzed  Stage = "analyzed"
	StageFiled     Stage = "filed"
	StageResponded Stage = "responded"
)

// StageError is the failed(stage, cause) terminal of a run. Stage is the last
// state the run reached before the failing step.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func wrapKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is caller-fixable (answered with 400).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyConversation) ||
		errors.Is(err, ErrInvalidRepository)
}
