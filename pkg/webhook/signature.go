package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderID        = "X-Webhook-ID"
)

// SignatureHeaders carries the values a receiver needs to authenticate a delivery.
type SignatureHeaders struct {
	Signature string
	Timestamp int64
	ID        string
}

func (s SignatureHeaders) Headers() map[string]string {
	return map[string]string{
		HeaderSignature: s.Signature,
		HeaderTimestamp: strconv.FormatInt(s.Timestamp, 10),
		HeaderID:        s.ID,
	}
}

// SignPayload computes hex(HMAC-SHA256(secret, "<unix timestamp>.<payload>")).
func SignPayload(secret string, payload []byte) (SignatureHeaders, error) {
	if secret == "" {
		return SignatureHeaders{}, fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	ts := time.Now().Unix()
	return SignatureHeaders{
		Signature: sign(secret, ts, payload),
		Timestamp: ts,
		ID:        uuid.NewString(),
	}, nil
}

// VerifyRequest checks the signature headers of an incoming delivery.
// maxAge of zero disables the freshness check.
func VerifyRequest(secret string, payload []byte, h http.Header, maxAge time.Duration) error {
	sig := h.Get(HeaderSignature)
	ts, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if sig == "" || err != nil {
		return fmt.Errorf("%w: missing or malformed signature headers", ErrInvalidSignature)
	}
	if maxAge > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > maxAge || age < -time.Minute {
			return fmt.Errorf("%w: timestamp outside allowed window", ErrInvalidSignature)
		}
	}
	if !hmac.Equal([]byte(sign(secret, ts, payload)), []byte(sig)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

func sign(secret string, ts int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(h, "%d.%s", ts, payload)
	return hex.EncodeToString(h.Sum(nil))
}
