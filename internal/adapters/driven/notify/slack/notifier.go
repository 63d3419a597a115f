// Package slack delivers run progress messages to a Slack channel.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
)

// DefaultAPIURL is the chat.postMessage endpoint.
const DefaultAPIURL = "https://slack.com/api/chat.postMessage"

// DefaultTimeout bounds each delivery attempt. Notifications are best
// effort and must not stall a sync run.
const DefaultTimeout = 10 * time.Second

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier posts messages to a Slack channel via chat.postMessage.
type Notifier struct {
	token      string
	channel    string
	apiURL     string
	httpClient *http.Client
}

// Option configures the notifier.
type Option func(*Notifier)

// WithAPIURL overrides the Slack API endpoint. Useful for testing.
func WithAPIURL(url string) Option {
	return func(n *Notifier) {
		if url != "" {
			n.apiURL = url
		}
	}
}

// New creates a Slack notifier for the given bot token and channel.
func New(token, channel string, opts ...Option) *Notifier {
	n := &Notifier{
		token:      token,
		channel:    channel,
		apiURL:     DefaultAPIURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Notify sends one message to the configured channel.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	payload, err := json.Marshal(postMessageRequest{
		Channel: n.channel,
		Text:    message,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post message: unexpected status %d", resp.StatusCode)
	}

	var result postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack api: %s", result.Error)
	}
	return nil
}
