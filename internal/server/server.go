// Package server exposes the bot's HTTP surface: the hosting
// service's webhook endpoint and a health check.
package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/archbot/archbot/internal/bot"
	"github.com/archbot/archbot/internal/github"
)

// Server handles inbound webhook deliveries.
type Server struct {
	Workflow *bot.DraftRecordWorkflow
	Secret   string // webhook HMAC secret; empty disables verification
	Log      *slog.Logger
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Post("/api/github/webhook", s.handleWebhook)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// webhookPayload is the slice of the issue_comment event the bot uses.
type webhookPayload struct {
	Action  string       `json:"action"`
	Issue   github.Issue `json:"issue"`
	Comment struct {
		Body string       `json:"body"`
		User *github.User `json:"user"`
	} `json:"comment"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	if s.Secret != "" && !verifySignature(s.Secret, r.Header.Get("X-Hub-Signature-256"), body) {
		s.Log.Warn("webhook signature mismatch")
		http.Error(w, "bad signature", http.StatusUnauthorized)
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	if event != "issue_comment" {
		s.Log.Debug("ignoring event", "event", event)
		w.WriteHeader(http.StatusOK)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if payload.Action != "created" && payload.Action != "edited" {
		s.Log.Debug("ignoring issue_comment action", "action", payload.Action)
		w.WriteHeader(http.StatusOK)
		return
	}

	ev := toEvent(payload)

	// The workflow runs synchronously to completion; each delivery is
	// one sequential unit of work.
	if err := s.Workflow.HandleIssueComment(r.Context(), ev); err != nil {
		// Operational failure: logged here, never reported on the
		// issue.
		s.Log.Error("draft-creation workflow failed", "issue", ev.IssueNumber, "error", err)
		http.Error(w, "workflow failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func toEvent(p webhookPayload) bot.IssueCommentEvent {
	ev := bot.IssueCommentEvent{
		IssueNumber: p.Issue.Number,
		IssueTitle:  p.Issue.Title,
		CommentBody: p.Comment.Body,
	}
	if p.Issue.User != nil {
		ev.IssueAuthor = p.Issue.User.Login
	}
	for _, a := range p.Issue.Assignees {
		ev.Assignees = append(ev.Assignees, a.Login)
	}
	for _, l := range p.Issue.Labels {
		ev.Labels = append(ev.Labels, l.Name)
	}
	if p.Comment.User != nil {
		ev.CommentAuthor = p.Comment.User.Login
	}
	return ev
}

// verifySignature checks the hosting service's HMAC-SHA256 delivery
// signature ("sha256=<hex>").
func verifySignature(secret, header string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
