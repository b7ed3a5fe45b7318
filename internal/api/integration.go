package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/validator"
)

// authenticated returns the application the request's API key belongs to
// and a scope limited to it.
func authenticated(r *http.Request) (*notifications.Application, notifications.Scope) {
	app, _ := apikey.FromContext(r.Context())
	return app, notifications.ElevatedScope(app)
}

func badRequest(msg string) error {
	return HTTPError{Code: http.StatusBadRequest, Message: msg}
}

type createNotificationRequest struct {
	UserID string `json:"user_id"`
	notifications.Content
}

func (s *Server) createNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validator.Apply(
		validator.RequiredString("user_id", req.UserID),
		validator.RequiredString("title", req.Title),
		validator.RequiredString("message", req.Message),
	); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, scope := authenticated(r)
	report, err := s.manager.SendTargeted(r.Context(), scope, notifications.TargetedRequest{
		AppID:      app.ID,
		Content:    req.Content,
		Recipients: []notifications.Recipient{{UserID: req.UserID}},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(report.Created) == 0 {
		s.writeError(w, r, errors.Join(notifications.ErrWriteFailed, errors.New(report.Results[0].Error)))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "notification": report.Created[0]})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := notifications.ListOptions{
		UserID: strings.TrimSpace(q.Get("user_id")),
		Type:   notifications.Type(q.Get("type")),
	}
	if v := q.Get("is_read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, badRequest("is_read must be true or false"))
			return
		}
		opts.Read = &read
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.writeError(w, r, badRequest("limit must be a positive integer"))
			return
		}
		opts.Limit = limit
	}

	app, _ := authenticated(r)
	list, err := s.manager.List(r.Context(), app.ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notifications": list})
}

func (s *Server) updateNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Read *bool `json:"is_read"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Read == nil {
		s.writeError(w, r, badRequest("is_read is required"))
		return
	}

	app, _ := authenticated(r)
	n, err := s.manager.SetRead(r.Context(), app.ID, id, *req.Read)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notification": n})
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	app, _ := authenticated(r)
	if err := s.manager.Delete(r.Context(), app.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Notification deleted"})
}

type sendRequest struct {
	notifications.Content
	Recipients []recipientInput `json:"recipients"`
	SendEmail  bool             `json:"send_email"`
}

func (s *Server) sendTargeted(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, scope := authenticated(r)
	report, err := s.manager.SendTargeted(r.Context(), scope, notifications.TargetedRequest{
		AppID:      app.ID,
		Content:    req.Content,
		Recipients: recipients(req.Recipients),
		SendEmail:  req.SendEmail,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) sendBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notifications []notifications.BulkItem `json:"notifications"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Notifications) == 0 {
		s.writeError(w, r, badRequest("notifications array is required"))
		return
	}

	app, scope := authenticated(r)
	report, err := s.manager.SendBulk(r.Context(), scope, notifications.BulkRequest{AppID: app.ID, Items: req.Notifications})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// broadcast never sends email; that is reserved for the dashboard.
func (s *Server) broadcast(w http.ResponseWriter, r *http.Request) {
	var req notifications.Content
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, scope := authenticated(r)
	report, err := s.manager.Broadcast(r.Context(), scope, notifications.BroadcastRequest{AppID: app.ID, Content: req})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if report.InsertedCount == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, report)
}

// sendOwnerEvents records events for the application's owner. Events without
// a title or message are skipped.
func (s *Server) sendOwnerEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Events []notifications.Content `json:"events"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Events) == 0 {
		s.writeError(w, r, badRequest("events array is required"))
		return
	}

	app, scope := authenticated(r)
	items := make([]notifications.BulkItem, 0, len(req.Events))
	for _, e := range req.Events {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Message) == "" {
			continue
		}
		items = append(items, notifications.BulkItem{UserID: app.OwnerID, Content: e})
	}
	if len(items) == 0 {
		s.writeError(w, r, badRequest("At least one event with title and message is required"))
		return
	}

	report, err := s.manager.SendBulk(r.Context(), scope, notifications.BulkRequest{AppID: app.ID, Items: items, Silent: true})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "count": report.Count})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	app, _ := authenticated(r)
	st, err := s.manager.Stats(r.Context(), app.ID, strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": st})
}

type appUserInput struct {
	ExternalUserID string `json:"external_user_id"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
}

func (in appUserInput) recipient() notifications.Recipient {
	id := in.ExternalUserID
	if id == "" {
		id = in.UserID
	}
	return notifications.Recipient{UserID: strings.TrimSpace(id), Email: strings.TrimSpace(in.Email)}
}

func (s *Server) upsertAppUser(w http.ResponseWriter, r *http.Request) {
	var req appUserInput
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rcpt := req.recipient()
	if rcpt.UserID == "" || rcpt.Email == "" {
		s.writeError(w, r, badRequest("external_user_id and email are required"))
		return
	}

	app, _ := authenticated(r)
	users, err := s.manager.RegisterUsers(r.Context(), app.ID, []notifications.Recipient{rcpt})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "app_user": users[0]})
}

// upsertAppUsers drops entries without a user id or email.
func (s *Server) upsertAppUsers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Users []appUserInput `json:"users"`
	}
	if err := bindJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	valid := make([]notifications.Recipient, 0, len(req.Users))
	for _, u := range req.Users {
		if rcpt := u.recipient(); rcpt.UserID != "" && rcpt.Email != "" {
			valid = append(valid, rcpt)
		}
	}
	if len(valid) == 0 {
		s.writeError(w, r, badRequest("No valid users provided"))
		return
	}

	app, _ := authenticated(r)
	users, err := s.manager.RegisterUsers(r.Context(), app.ID, valid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(users), "users": users})
}

// ingestAuthError words key failures for the query-string ingest endpoint.
func (s *Server) ingestAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apikey.ErrMissingKey):
		err = HTTPError{Code: http.StatusUnauthorized, Message: "api_key query param is required"}
	case errors.Is(err, apikey.ErrInvalidKey):
		err = HTTPError{Code: http.StatusUnauthorized, Message: "Invalid api_key"}
	}
	s.writeError(w, r, err)
}
