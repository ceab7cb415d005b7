package notification

import (
	"context"
	"errors"
	"time"

	"github.com/hapiedu/hapi/core/risk"
)

var (
	// errors
	ErrNoPreference         = errors.New("no notification preference recorded")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Frequency is how often alert emails are bundled for a user.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyNever     Frequency = "never"
)

type (
	// Preference is a user's notification settings. Created with defaults on
	// first access; mutated only by the user.
	Preference struct {
		UserID         string    `json:"user_id"`
		InAppEnabled   bool      `json:"in_app_enabled"`
		EmailEnabled   bool      `json:"email_enabled"`
		EmailFrequency Frequency `json:"email_frequency"`
		PushEnabled    bool      `json:"push_enabled"`

		// per-severity opt-outs
		NotifyCritical bool `json:"notify_critical_alerts"`
		NotifyHigh     bool `json:"notify_high_alerts"`
		NotifyMedium   bool `json:"notify_medium_alerts"`

		// per-type opt-outs
		NotifyEmotional bool `json:"notify_emotional_risk"`
		NotifyAcademic  bool `json:"notify_academic_risk"`
		NotifyCrossRisk bool `json:"notify_cross_risk"`

		// Quiet hours suppress notifications inside [Start, End) local time,
		// same-day windows only.
		QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
		QuietHoursStart   string `json:"quiet_hours_start"` // HH:MM
		QuietHoursEnd     string `json:"quiet_hours_end"`   // HH:MM

		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Notification is one persisted in-app notification record.
	Notification struct {
		ID        string        `json:"id"`
		UserID    string        `json:"user_id"`
		Severity  risk.Severity `json:"severity"`
		RiskType  risk.Type     `json:"risk_type"`
		StudentID string        `json:"student_id"`
		ClassID   string        `json:"class_id"`
		Message   string        `json:"message"`
		Read      bool          `json:"read"`
		CreatedAt time.Time     `json:"created_at"` // UTC
	}

	Repository interface {
		// GetPreference returns a user's preference or ErrNoPreference.
		GetPreference(ctx context.Context, userID string) (Preference, error)
		SavePreference(ctx context.Context, pref Preference) (Preference, error)
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// QueryNotifications returns a user's notifications, newest first.
		QueryNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
		// MarkNotificationRead flags a notification as read; the notification
		// must belong to userID or ErrNotificationNotFound is returned.
		MarkNotificationRead(ctx context.Context, notificationID, userID string) error
	}
)

// DefaultPreference is the documented first-access default: in-app on,
// email on and immediate, push off, quiet hours off, all toggles on.
func DefaultPreference(userID string) Preference {
	return Preference{
		UserID:            userID,
		InAppEnabled:      true,
		EmailEnabled:      true,
		EmailFrequency:    FrequencyImmediate,
		PushEnabled:       false,
		NotifyCritical:    true,
		NotifyHigh:        true,
		NotifyMedium:      true,
		NotifyEmotional:   true,
		NotifyAcademic:    true,
		NotifyCrossRisk:   true,
		QuietHoursEnabled: false,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "08:00",
		UpdatedAt:         time.Now().UTC(),
	}
}
