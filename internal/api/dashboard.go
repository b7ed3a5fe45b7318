package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/validator"
)

var webhookSchemes = []string{"http", "https"}

// recipientInput accepts either a bare user id string or an object.
type recipientInput notifications.Recipient

func (ri *recipientInput) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &ri.UserID)
	}
	return json.Unmarshal(b, (*notifications.Recipient)(ri))
}

func recipients(in []recipientInput) []notifications.Recipient {
	out := make([]notifications.Recipient, len(in))
	for i, ri := range in {
		out[i] = notifications.Recipient(ri)
	}
	return out
}

func (s *Server) ownerScope(r *http.Request) notifications.Scope {
	return notifications.OwnerScope(s.apps, ownerFromContext(r.Context()))
}

func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.apps.ListApplications(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "applications": apps})
}

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		WebhookURL string `json:"webhook_url"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Name, req.WebhookURL = strings.TrimSpace(req.Name), strings.TrimSpace(req.WebhookURL)
	if err := validator.Apply(
		validator.RequiredString("name", req.Name),
		validator.MaxLenString("name", req.Name, 200),
		validator.When(req.WebhookURL != "", validator.ValidURLWithScheme("webhook_url", req.WebhookURL, webhookSchemes)),
	); err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := apikey.Generate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	app, err := s.apps.CreateApplication(r.Context(), notifications.Application{
		Name:       req.Name,
		APIKey:     key,
		OwnerID:    ownerFromContext(r.Context()),
		WebhookURL: req.WebhookURL,
		Active:     true,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "application created", logger.AppID(app.ID), logger.OwnerID(app.OwnerID))
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "application": app})
}

func (s *Server) updateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch notifications.ApplicationPatch
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	var rules []validator.Rule
	if patch.Name != nil {
		rules = append(rules, validator.RequiredString("name", *patch.Name), validator.MaxLenString("name", *patch.Name, 200))
	}
	if patch.WebhookURL != nil && *patch.WebhookURL != "" {
		rules = append(rules, validator.ValidURLWithScheme("webhook_url", *patch.WebhookURL, webhookSchemes))
	}
	if err := validator.Apply(rules...); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.apps.UpdateApplication(r.Context(), ownerFromContext(r.Context()), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Cached copies carry the old name, webhook and active flag.
	s.auth.Invalidate(r.Context(), app.APIKey)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "application": app})
}

func (s *Server) deleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	app, err := s.ownerScope(r).Application(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.apps.DeleteApplication(r.Context(), app.OwnerID, app.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.auth.Invalidate(r.Context(), app.APIKey)
	s.log.InfoContext(r.Context(), "application deleted", logger.AppID(app.ID), logger.OwnerID(app.OwnerID))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Application deleted"})
}

func (s *Server) regenerateKey(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	old, err := s.ownerScope(r).Application(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := apikey.Generate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	app, err := s.apps.RotateAPIKey(r.Context(), old.OwnerID, old.ID, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.auth.Invalidate(r.Context(), old.APIKey)
	s.log.InfoContext(r.Context(), "api key regenerated", logger.AppID(app.ID), logger.OwnerID(app.OwnerID))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "API key regenerated", "application": app})
}

type dashboardSendRequest struct {
	AppID string `json:"app_id"`
	notifications.Content
	Recipients   []recipientInput `json:"recipients"`
	BroadcastAll bool             `json:"broadcast_all"`
	SendEmail    *bool            `json:"send_email"`
}

// dashboardSend sends as the signed-in owner. Email is on unless disabled.
func (s *Server) dashboardSend(w http.ResponseWriter, r *http.Request) {
	var req dashboardSendRequest
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sendEmail := req.SendEmail == nil || *req.SendEmail
	scope := s.ownerScope(r)

	if req.BroadcastAll {
		report, err := s.manager.Broadcast(r.Context(), scope, notifications.BroadcastRequest{
			AppID:     req.AppID,
			Content:   req.Content,
			SendEmail: sendEmail,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.manager.SendTargeted(r.Context(), scope, notifications.TargetedRequest{
		AppID:      req.AppID,
		Content:    req.Content,
		Recipients: recipients(req.Recipients),
		SendEmail:  sendEmail,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// devSession signs in as any owner id. Registered in development only.
func (s *Server) devSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"owner_id"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if err := validator.Apply(validator.RequiredString("owner_id", req.OwnerID)); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, exp, err := s.sessions.issue(req.OwnerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "owner_id": req.OwnerID, "token": token, "expires_at": exp})
}
