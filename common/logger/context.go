package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The pipeline attaches them once per run so every stage, client and the detached
// notifier log with the same identifiers.
type LogFields struct {
	RunID     *int64  // Snowflake id of the pipeline run
	WebsiteID *string // Crisp workspace
	SessionID *string // Crisp conversation
	Repo      *string // Target repository, owner/name
	Stage     *string // Pipeline stage (fetched, analyzed, filed, ...)
	Component string  // Component name, e.g. "bugrelay.service.pipeline"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.WebsiteID != nil {
		result.WebsiteID = new.WebsiteID
	}
	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.Repo != nil {
		result.Repo = new.Repo
	}
	if new.Stage != nil {
		result.Stage = new.Stage
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for logging model output that failed to parse.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
