package domain

import "time"

// AuthorizationStatus mirrors the possible notification permission states
// reported by the host platform.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationProvisional   AuthorizationStatus = "provisional"
	AuthorizationEphemeral     AuthorizationStatus = "ephemeral"
)

// Granted reports whether the status permits delivering notifications.
func (s AuthorizationStatus) Granted() bool {
	switch s {
	case AuthorizationAuthorized, AuthorizationProvisional, AuthorizationEphemeral:
		return true
	default:
		return false
	}
}

// AuthorizationOptions names the notification styles requested from the user.
type AuthorizationOptions struct {
	Alert bool `json:"alert"`
	Sound bool `json:"sound"`
	Badge bool `json:"badge"`
}

// NotificationTrigger fires a notification either after a fixed delay or at an
// absolute wall-clock time (minute precision). Exactly one of Delay and At is
// set; triggers never repeat.
type NotificationTrigger struct {
	Delay time.Duration `json:"delay,omitempty"`
	At    *time.Time    `json:"at,omitempty"`
}

// NotificationRequest describes one local notification. Scheduling a request
// whose ID matches a pending or delivered notification replaces it.
type NotificationRequest struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Body       string              `json:"body"`
	Sound      bool                `json:"sound"`
	BadgeDelta int                 `json:"badge_delta"`
	Payload    map[string]string   `json:"payload,omitempty"`
	Trigger    NotificationTrigger `json:"trigger"`
}

// DeliveredNotification is a notification that has fired, as observed by host
// integrations draining the gateway's delivery channel.
type DeliveredNotification struct {
	NotificationRequest
	DeliveredAt time.Time `json:"delivered_at"`
}
