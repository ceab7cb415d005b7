package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/risk"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

type preferenceRow struct {
	UserID            string    `db:"user_id"`
	InAppEnabled      bool      `db:"in_app_enabled"`
	EmailEnabled      bool      `db:"email_enabled"`
	EmailFrequency    string    `db:"email_frequency"`
	PushEnabled       bool      `db:"push_enabled"`
	NotifyCritical    bool      `db:"notify_critical_alerts"`
	NotifyHigh        bool      `db:"notify_high_alerts"`
	NotifyMedium      bool      `db:"notify_medium_alerts"`
	NotifyEmotional   bool      `db:"notify_emotional_risk"`
	NotifyAcademic    bool      `db:"notify_academic_risk"`
	NotifyCrossRisk   bool      `db:"notify_cross_risk"`
	QuietHoursEnabled bool      `db:"quiet_hours_enabled"`
	QuietHoursStart   string    `db:"quiet_hours_start"`
	QuietHoursEnd     string    `db:"quiet_hours_end"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r preferenceRow) toPreference() notification.Preference {
	return notification.Preference{
		UserID:            r.UserID,
		InAppEnabled:      r.InAppEnabled,
		EmailEnabled:      r.EmailEnabled,
		EmailFrequency:    notification.Frequency(r.EmailFrequency),
		PushEnabled:       r.PushEnabled,
		NotifyCritical:    r.NotifyCritical,
		NotifyHigh:        r.NotifyHigh,
		NotifyMedium:      r.NotifyMedium,
		NotifyEmotional:   r.NotifyEmotional,
		NotifyAcademic:    r.NotifyAcademic,
		NotifyCrossRisk:   r.NotifyCrossRisk,
		QuietHoursEnabled: r.QuietHoursEnabled,
		QuietHoursStart:   r.QuietHoursStart,
		QuietHoursEnd:     r.QuietHoursEnd,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (repo *notificationRepository) GetPreference(ctx context.Context, userID string) (notification.Preference, error) {
	var row preferenceRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT user_id, in_app_enabled, email_enabled, email_frequency, push_enabled,
		        notify_critical_alerts, notify_high_alerts, notify_medium_alerts,
		        notify_emotional_risk, notify_academic_risk, notify_cross_risk,
		        quiet_hours_enabled, quiet_hours_start, quiet_hours_end, updated_at
		 FROM notification_preference WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return notification.Preference{}, notification.ErrNoPreference
	}
	if err != nil {
		return notification.Preference{}, errors.Wrap(err, "getting notification preference")
	}
	return row.toPreference(), nil
}

func (repo *notificationRepository) SavePreference(ctx context.Context, pref notification.Preference) (notification.Preference, error) {
	pref.UpdatedAt = time.Now().UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO notification_preference (
		     user_id, in_app_enabled, email_enabled, email_frequency, push_enabled,
		     notify_critical_alerts, notify_high_alerts, notify_medium_alerts,
		     notify_emotional_risk, notify_academic_risk, notify_cross_risk,
		     quiet_hours_enabled, quiet_hours_start, quiet_hours_end, updated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (user_id) DO UPDATE SET
		     in_app_enabled = EXCLUDED.in_app_enabled,
		     email_enabled = EXCLUDED.email_enabled,
		     email_frequency = EXCLUDED.email_frequency,
		     push_enabled = EXCLUDED.push_enabled,
		     notify_critical_alerts = EXCLUDED.notify_critical_alerts,
		     notify_high_alerts = EXCLUDED.notify_high_alerts,
		     notify_medium_alerts = EXCLUDED.notify_medium_alerts,
		     notify_emotional_risk = EXCLUDED.notify_emotional_risk,
		     notify_academic_risk = EXCLUDED.notify_academic_risk,
		     notify_cross_risk = EXCLUDED.notify_cross_risk,
		     quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
		     quiet_hours_start = EXCLUDED.quiet_hours_start,
		     quiet_hours_end = EXCLUDED.quiet_hours_end,
		     updated_at = EXCLUDED.updated_at`,
		pref.UserID, pref.InAppEnabled, pref.EmailEnabled, pref.EmailFrequency, pref.PushEnabled,
		pref.NotifyCritical, pref.NotifyHigh, pref.NotifyMedium,
		pref.NotifyEmotional, pref.NotifyAcademic, pref.NotifyCrossRisk,
		pref.QuietHoursEnabled, pref.QuietHoursStart, pref.QuietHoursEnd, pref.UpdatedAt)
	if err != nil {
		return notification.Preference{}, errors.Wrap(err, "saving notification preference")
	}
	return pref, nil
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO notification (id, user_id, severity, risk_type, student_id, class_id, message, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Severity, n.RiskType, n.StudentID, n.ClassID, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

// QueryNotifications returns a user's most recent notifications, newest first.
func (repo *notificationRepository) QueryNotifications(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	var rows []struct {
		ID        string    `db:"id"`
		UserID    string    `db:"user_id"`
		Severity  string    `db:"severity"`
		RiskType  string    `db:"risk_type"`
		StudentID string    `db:"student_id"`
		ClassID   string    `db:"class_id"`
		Message   string    `db:"message"`
		Read      bool      `db:"read"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, severity, risk_type, student_id, class_id, message, read, created_at
		 FROM notification WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	ns := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		ns = append(ns, notification.Notification{
			ID:        r.ID,
			UserID:    r.UserID,
			Severity:  risk.Severity(r.Severity),
			RiskType:  risk.Type(r.RiskType),
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			Message:   r.Message,
			Read:      r.Read,
			CreatedAt: r.CreatedAt,
		})
	}
	return ns, nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE notification SET read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
