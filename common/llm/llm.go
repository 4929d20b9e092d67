package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	// ErrNonTextResponse is returned when the model answers with something other
	// than a plain text block (tool use, refusal, ...).
	ErrNonTextResponse = errors.New("unexpected response type from model")
	// ErrEmptyResponse is returned when the model answers with no content at all.
	ErrEmptyResponse = errors.New("model returned no content")
)

// Config holds LLM client configuration.
type Config struct {
	Provider string // "openai" or "anthropic"
	APIKey   string // Required: API key for the provider
	BaseURL  string // Optional: custom API endpoint
	Model    string // Model name (e.g., "claude-sonnet-4-20250514", "gpt-4o-mini")
}

// Completer sends a single prompt and returns the model's text answer.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Model() string
}

type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature *float64 // nil = model default, explicit 0 = deterministic

	// Optional structured-output hint. Providers that support JSON schema
	// response formats enforce it; others ignore it.
	SchemaName string
	Schema     any
}

// New creates a Completer for cfg.Provider. Defaults to Anthropic.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderAnthropic
	}

	switch provider {
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GenerateSchema reflects a strict JSON schema (no additional properties,
// no $refs) from T.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}
