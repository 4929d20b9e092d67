// Package crisp adapts the Crisp Go SDK (plugin tier) to the endpoints
// bugrelay needs: conversation messages and metadata, operator notes and
// plugin subscription settings.
package crisp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	crispapi "github.com/crisp-im/go-crisp-api/crisp/v3"
)

const (
	defaultBaseURL = "https://api.crisp.chat/v1"

	// maxMessagePages bounds how far back a conversation is read.
	maxMessagePages = 25
)

// HTTPStatusError captures non-2xx responses from Crisp.
type HTTPStatusError struct {
	StatusCode int
	Op         string
	Reason     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("crisp: %s: status %d: %s", e.Op, e.StatusCode, e.Reason)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type Client struct {
	api      *crispapi.Client
	pluginID string
}

type options struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*options)

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every Crisp call. The SDK takes no context, so this is
// the only deadline a request has once it is sent.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient authenticates on the plugin tier with the plugin identifier and
// secret. The plugin identifier also addresses the subscription settings.
func NewClient(pluginID, secret string, opts ...Option) (*Client, error) {
	pluginID = strings.TrimSpace(pluginID)
	if pluginID == "" || secret == "" {
		return nil, errors.New("crisp: plugin id and secret are required")
	}

	o := options{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}

	api := crispapi.NewWithConfig(crispapi.ClientConfig{
		HttpClient:      o.httpClient,
		RestEndpointURL: o.baseURL + "/",
	})
	api.AuthenticateTier("plugin", pluginID, secret)

	return &Client{api: api, pluginID: pluginID}, nil
}

// GetMessages returns the messages of a conversation oldest first. Crisp
// serves the latest batch and pages older ones by timestamp, so batches are
// read backwards until one comes back empty or maxMessagePages is reached.
func (c *Client) GetMessages(ctx context.Context, websiteID, sessionID string) ([]ConversationMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last, resp, err := c.api.Website.GetMessagesInConversationLast(websiteID, sessionID)
	if err != nil {
		return nil, apiError("get messages", resp, err)
	}
	batch, err := convert[[]ConversationMessage](last)
	if err != nil {
		return nil, err
	}

	messages := batch
	for page := 1; page < maxMessagePages && len(batch) > 0; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := oldestTimestamp(batch)
		if before <= 0 {
			break
		}
		older, resp, err := c.api.Website.GetMessagesInConversationBefore(websiteID, sessionID, uint64(before))
		if err != nil {
			return nil, apiError("get older messages", resp, err)
		}
		if batch, err = convert[[]ConversationMessage](older); err != nil {
			return nil, err
		}
		messages = append(batch, messages...)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

func (c *Client) GetMeta(ctx context.Context, websiteID, sessionID string) (*ConversationMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metas, resp, err := c.api.Website.GetConversationMetas(websiteID, sessionID)
	if err != nil {
		return nil, apiError("get meta", resp, err)
	}
	meta, err := convert[ConversationMeta](metas)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// SendNote appends an operator-only note to the conversation.
func (c *Client) SendNote(ctx context.Context, websiteID, sessionID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	note := NewMessage{
		Type:    "note",
		From:    "operator",
		Origin:  "chat",
		Content: content,
	}
	if _, resp, err := c.api.Website.SendMessageInConversation(websiteID, sessionID, note); err != nil {
		return apiError("send note", resp, err)
	}
	return nil
}

// GetSubscriptionSettings returns the plugin settings stored for a website.
// A website without settings yields an empty map.
func (c *Client) GetSubscriptionSettings(ctx context.Context, websiteID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subscription, resp, err := c.api.Plugin.GetSubscriptionSettings(websiteID, c.pluginID)
	if err != nil {
		return nil, apiError("get settings", resp, err)
	}

	raw, err := convert[map[string]any](subscription)
	if err != nil {
		return nil, err
	}
	if nested, ok := raw["settings"].(map[string]any); ok {
		return nested, nil
	}
	if _, ok := raw["settings"]; ok || raw == nil {
		return map[string]any{}, nil
	}
	return raw, nil
}

// UpdateSubscriptionSettings merges settings into the stored plugin settings.
func (c *Client) UpdateSubscriptionSettings(ctx context.Context, websiteID string, settings map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if resp, err := c.api.Plugin.UpdateSubscriptionSettings(websiteID, c.pluginID, settings); err != nil {
		return apiError("update settings", resp, err)
	}
	return nil
}

// convert re-encodes an SDK payload into the package's own types, which keep
// message content raw and drop fields nothing here reads.
func convert[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, fmt.Errorf("crisp: encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("crisp: decode payload: %w", err)
	}
	return out, nil
}

func oldestTimestamp(batch []ConversationMessage) int64 {
	var oldest int64
	for _, m := range batch {
		if m.Timestamp > 0 && (oldest == 0 || m.Timestamp < oldest) {
			oldest = m.Timestamp
		}
	}
	return oldest
}

func apiError(op string, resp *crispapi.Response, err error) error {
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return &HTTPStatusError{StatusCode: resp.StatusCode, Op: op, Reason: err.Error()}
	}
	return fmt.Errorf("crisp: %s: %w", op, err)
}
