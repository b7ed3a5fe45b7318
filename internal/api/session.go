package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const sessionCookie = "relay_session"

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
)

// session identifies a dashboard user.
type session struct {
	OwnerID   string `json:"owner_id"`
	ExpiresAt int64  `json:"exp"`
}

// sessions issues and verifies HMAC-signed session tokens of the form
// base64(payload).base64(signature).
type sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newSessions(secret string, ttl time.Duration) *sessions {
	return &sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *sessions) issue(ownerID string) (string, time.Time, error) {
	exp := s.now().Add(s.ttl)
	data, err := json.Marshal(session{OwnerID: ownerID, ExpiresAt: exp.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(data) + "." + enc.EncodeToString(s.sign(data)), exp, nil
}

func (s *sessions) parse(token string) (session, error) {
	var sess session
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return sess, ErrInvalidSession
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return sess, ErrInvalidSession
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || subtle.ConstantTimeCompare(mac, s.sign(data)) != 1 {
		return sess, ErrInvalidSession
	}
	if err := json.Unmarshal(data, &sess); err != nil || sess.OwnerID == "" {
		return sess, ErrInvalidSession
	}
	if s.now().Unix() >= sess.ExpiresAt {
		return sess, ErrSessionExpired
	}
	return sess, nil
}

func (s *sessions) sign(data []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(data)
	return h.Sum(nil)
}

// tokenFromRequest reads the session cookie, falling back to a bearer token.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

type ownerKey struct{}

func withOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

func ownerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}
