package notifications

import "time"

// Send paths reported to observers.
const (
	PathTargeted  = "targeted"
	PathBroadcast = "broadcast"
	PathBulk      = "bulk"
)

// Observer receives delivery telemetry. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	NotificationsInserted(appID, path string, n int)
	EmailAttempted(appID string, err error)
	WebhookAttempted(appID, event string, err error)
	SendCompleted(appID, path string, d time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) NotificationsInserted(string, string, int)          {}
func (noopObserver) EmailAttempted(string, error)                       {}
func (noopObserver) WebhookAttempted(string, string, error)             {}
func (noopObserver) SendCompleted(string, string, time.Duration, error) {}
