// Package httpapi exposes the Slack-facing HTTP surface: the reimport
// slash command and the events subscription endpoint. It is plumbing
// around the sync runner; all synchronisation logic lives in core.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
	"github.com/custodia-labs/wikidex/internal/core/ports/driving"
	"github.com/custodia-labs/wikidex/internal/logger"
)

const (
	// dedupTTL is how long delivered event ids are remembered.
	dedupTTL = 10 * time.Minute

	// dedupMax bounds the number of remembered event ids.
	dedupMax = 1024
)

// Server handles Slack commands and events.
type Server struct {
	runner        driving.SyncRunner
	notifier      driven.Notifier // optional
	signingSecret string
	skipVerify    bool
	seen          *seenEvents
	now           func() time.Time
}

// Option configures the server.
type Option func(*Server)

// WithNotifier sets a notifier for trigger confirmations.
func WithNotifier(n driven.Notifier) Option {
	return func(s *Server) {
		s.notifier = n
	}
}

// WithSigningSecret sets the Slack signing secret used to verify
// request signatures.
func WithSigningSecret(secret string) Option {
	return func(s *Server) {
		s.signingSecret = secret
	}
}

// WithSignatureSkip disables signature verification. Local development
// only.
func WithSignatureSkip(skip bool) Option {
	return func(s *Server) {
		s.skipVerify = skip
	}
}

// New creates a server around the sync runner.
func New(runner driving.SyncRunner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		seen:   newSeenEvents(dedupTTL, dedupMax),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the route table for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("POST /slack/commands/reimport", s.verifySignature(http.HandlerFunc(s.handleReimport)))
	mux.Handle("POST /slack/events", s.verifySignature(http.HandlerFunc(s.handleEvents)))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReimport starts a sync run in the background and acknowledges
// immediately; Slack slash commands time out after a few seconds,
// while an import can take minutes.
func (s *Server) handleReimport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form payload", http.StatusBadRequest)
		return
	}
	user := r.PostFormValue("user_name")

	if !s.triggerSync() {
		writeJSON(w, http.StatusConflict, map[string]string{
			"response_type": "ephemeral",
			"text":          "A wiki import is already running.",
		})
		return
	}

	if user != "" {
		s.notifyAsync(fmt.Sprintf("Wiki import triggered by @%s", user))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"response_type": "in_channel",
		"text":          "Wiki import started.",
	})
}

type eventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	EventID   string `json:"event_id"`
	Event     struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"event"`
}

// handleEvents answers the Slack events subscription: the one-time URL
// verification challenge and app mentions. Deliveries are deduplicated
// by event id since Slack retries on slow acknowledgements.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad event payload", http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case "url_verification":
		writeJSON(w, http.StatusOK, map[string]string{"challenge": payload.Challenge})
		return

	case "event_callback":
		if payload.EventID != "" && s.seen.Seen(payload.EventID) {
			logger.Debug("Duplicate event delivery: %s", payload.EventID)
			break
		}
		if payload.Event.Type == "app_mention" &&
			strings.Contains(strings.ToLower(payload.Event.Text), "reimport") {
			if s.triggerSync() {
				s.notifyAsync("Wiki import triggered by mention.")
			} else {
				s.notifyAsync("A wiki import is already running.")
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// triggerSync starts a background run unless one is already active.
// The runner's own single-flight guard is authoritative; the status
// check only provides a friendlier synchronous answer.
func (s *Server) triggerSync() bool {
	status, err := s.runner.Status(context.Background())
	if err == nil && status.Running {
		return false
	}

	go func() {
		result, err := s.runner.Run(context.Background())
		if err != nil {
			logger.Warn("Background sync failed: %v", err)
			return
		}
		logger.Info("Background sync finished: %s", result)
	}()
	return true
}

func (s *Server) notifyAsync(message string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.Notify(context.Background(), message); err != nil {
			logger.Warn("notify: %v", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
