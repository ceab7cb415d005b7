package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/risk"
)

var nowFunc = time.Now // mockable

// Recipient resolves a user's display name and email address for delivery.
// Implemented by the school repository layer; kept narrow so tests can stub it.
type Recipient interface {
	GetRecipient(ctx context.Context, userID string) (name, email string, err error)
}

// Service is the notification gate: it decides whether an alert notification
// should be emitted at all, and on a positive decision records it and hands
// immediate-frequency emails to the dispatcher.
type Service struct {
	conf      *core.Config
	logger    core.Logger
	repo      Repository
	mailSvc   core.EmailService
	recipient Recipient
}

func NewService(conf *core.Config, logger core.Logger, repo Repository, mailSvc core.EmailService, recipient Recipient) *Service {
	return &Service{
		conf:      conf,
		logger:    logger,
		repo:      repo,
		mailSvc:   mailSvc,
		recipient: recipient,
	}
}

// GetPreference returns a user's preference, creating the documented default
// on first access.
func (svc *Service) GetPreference(ctx context.Context, userID string) (Preference, error) {
	pref, err := svc.repo.GetPreference(ctx, userID)
	if err == ErrNoPreference {
		return svc.repo.SavePreference(ctx, DefaultPreference(userID))
	}
	return pref, err
}

// UpdatePreference persists a user's edited settings.
func (svc *Service) UpdatePreference(ctx context.Context, pref Preference) (Preference, error) {
	pref.UpdatedAt = nowFunc().UTC()
	return svc.repo.SavePreference(ctx, pref)
}

// ShouldNotify decides whether an alert of the given severity and type may be
// delivered to the user right now.
//
// Malformed severity or type values are caller bugs and panic. Preference
// store failures are data-unavailable: the documented defaults apply and the
// failure is logged, never returned.
func (svc *Service) ShouldNotify(ctx context.Context, userID string, sev risk.Severity, typ risk.Type) bool {
	if !sev.Valid() {
		panic(fmt.Sprintf("notification.ShouldNotify: invalid severity %q", sev))
	}
	if !typ.Valid() {
		panic(fmt.Sprintf("notification.ShouldNotify: invalid risk type %q", typ))
	}

	pref, err := svc.repo.GetPreference(ctx, userID)
	if err == ErrNoPreference {
		pref = DefaultPreference(userID)
		if _, err := svc.repo.SavePreference(ctx, pref); err != nil {
			svc.logger.Warn(fmt.Sprintf("notification: saving default preference for user %s: %v", userID, err), err)
		}
	} else if err != nil {
		svc.logger.Warn(fmt.Sprintf("notification: loading preference for user %s: %v", userID, err), err)
		pref = DefaultPreference(userID)
	}

	if !pref.InAppEnabled {
		return false
	}

	switch sev {
	case risk.SeverityCritical:
		if !pref.NotifyCritical {
			return false
		}
	case risk.SeverityHigh:
		if !pref.NotifyHigh {
			return false
		}
	case risk.SeverityMedium:
		if !pref.NotifyMedium {
			return false
		}
	}

	switch typ {
	case risk.TypeEmotional:
		if !pref.NotifyEmotional {
			return false
		}
	case risk.TypeAcademic:
		if !pref.NotifyAcademic {
			return false
		}
	case risk.TypeCrossRisk:
		if !pref.NotifyCrossRisk {
			return false
		}
	}

	if pref.inQuietHours(nowFunc()) {
		return false
	}
	return true
}

// inQuietHours reports whether `now` falls inside the enabled quiet window.
// Only same-day windows are honored: start >= end (an overnight window) is
// treated as not-in-quiet-hours. TODO: support windows spanning midnight.
func (pref Preference) inQuietHours(now time.Time) bool {
	if !pref.QuietHoursEnabled {
		return false
	}
	start, ok := parseClock(pref.QuietHoursStart)
	if !ok {
		return false
	}
	end, ok := parseClock(pref.QuietHoursEnd)
	if !ok {
		return false
	}
	if start >= end {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	return cur >= start && cur < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Notify runs the gate and, on a positive decision, records the notification
// and dispatches an immediate email when the user opted into those. Record and
// dispatch failures are logged and never fail the decision.
func (svc *Service) Notify(ctx context.Context, n Notification) bool {
	if !svc.ShouldNotify(ctx, n.UserID, n.Severity, n.RiskType) {
		return false
	}

	n.ID = uuid.New().String()
	n.CreatedAt = nowFunc().UTC()
	if _, err := svc.repo.CreateNotification(ctx, n); err != nil {
		svc.logger.Error(fmt.Sprintf("notification: recording notification for user %s: %v", n.UserID, err), err)
	}

	pref, err := svc.repo.GetPreference(ctx, n.UserID)
	if err != nil {
		pref = DefaultPreference(n.UserID)
	}
	if pref.EmailEnabled && pref.EmailFrequency == FrequencyImmediate {
		svc.sendAlertEmail(ctx, n)
	}
	return true
}

// ListNotifications returns the user's most recent notifications, newest
// first. Limit falls back to 50 when non-positive.
func (svc *Service) ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return svc.repo.QueryNotifications(ctx, userID, limit)
}

// MarkRead flags one of the user's notifications as read.
func (svc *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	return svc.repo.MarkNotificationRead(ctx, notificationID, userID)
}

// Digest is the daily roster summary emailed to a teacher.
type Digest struct {
	TeacherName string
	Date        string
	Counts      risk.Counts
	Students    []risk.AtRiskStudent
}

// SendDigest emails the teacher's daily care digest. Teachers who disabled
// email or opted out of the daily frequency are skipped; it reports whether a
// digest was dispatched.
func (svc *Service) SendDigest(ctx context.Context, userID string, digest Digest) bool {
	pref, err := svc.GetPreference(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notification: loading preference for user %s: %v", userID, err), err)
		pref = DefaultPreference(userID)
	}
	if !pref.EmailEnabled || pref.EmailFrequency != FrequencyDaily {
		return false
	}

	name, email, err := svc.recipient.GetRecipient(ctx, userID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notification: resolving recipient %s: %v", userID, err), err)
		return false
	}
	digest.TeacherName = name

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      fmt.Sprintf("Your daily care digest for %s", digest.Date),
		TemplateName: "care-digest",
		TemplateData: digest,
	}
	svc.mailSvc.SendMessages(msg)
	return true
}

func (svc *Service) sendAlertEmail(ctx context.Context, n Notification) {
	name, email, err := svc.recipient.GetRecipient(ctx, n.UserID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notification: resolving recipient %s: %v", n.UserID, err), err)
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      fmt.Sprintf("Care alert: %s %s risk", n.Severity, n.RiskType),
		TemplateName: "care-alert",
		TemplateData: n,
	}
	svc.mailSvc.SendMessages(msg)
}
