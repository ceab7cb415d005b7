package notification

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/risk"
)

// fakeRepo is an in-memory Repository with error injection.
type fakeRepo struct {
	prefs         map[string]Preference
	notifications []Notification
	getErr        error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{prefs: make(map[string]Preference)}
}

func (r *fakeRepo) GetPreference(ctx context.Context, userID string) (Preference, error) {
	if r.getErr != nil {
		return Preference{}, r.getErr
	}
	pref, ok := r.prefs[userID]
	if !ok {
		return Preference{}, ErrNoPreference
	}
	return pref, nil
}

func (r *fakeRepo) SavePreference(ctx context.Context, pref Preference) (Preference, error) {
	r.prefs[pref.UserID] = pref
	return pref, nil
}

func (r *fakeRepo) CreateNotification(ctx context.Context, n Notification) (Notification, error) {
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *fakeRepo) QueryNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	out := make([]Notification, 0)
	for _, n := range r.notifications {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	for i, n := range r.notifications {
		if n.ID == notificationID && n.UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

type fakeRecipient struct{}

func (fakeRecipient) GetRecipient(ctx context.Context, userID string) (string, string, error) {
	return "Test Teacher", "teacher@school.test", nil
}

// captureMail records messages instead of sending.
type captureMail struct {
	sent []*core.EmailMessage
}

func (m *captureMail) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s", msg) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s", msg) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s", msg) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s", msg) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s", msg) }

func newTestService(t *testing.T) (*Service, *fakeRepo, *captureMail) {
	repo := newFakeRepo()
	mail := &captureMail{}
	conf := &core.Config{TestMode: true, AppName: "Hapi"}
	svc := NewService(conf, testLogger{t}, repo, mail, fakeRecipient{})
	return svc, repo, mail
}

func TestService_GetPreference_createsDefaultOnFirstAccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pref, err := svc.GetPreference(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPreference() failed: %v", err)
	}
	if !pref.InAppEnabled || !pref.EmailEnabled || pref.EmailFrequency != FrequencyImmediate {
		t.Errorf("default preference = %+v, want in-app on, email on/immediate", pref)
	}
	if pref.PushEnabled {
		t.Error("default PushEnabled = true, want false")
	}
	if pref.QuietHoursEnabled {
		t.Error("default QuietHoursEnabled = true, want false")
	}
	if _, ok := repo.prefs["u1"]; !ok {
		t.Error("default preference was not persisted")
	}
}

func TestService_ShouldNotify(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		pref  func(p Preference) Preference
		sev   risk.Severity
		typ   risk.Type
		want  bool
	}{
		{
			name: "defaults allow",
			pref: func(p Preference) Preference { return p },
			sev:  risk.SeverityHigh, typ: risk.TypeEmotional, want: true,
		},
		{
			name: "in-app disabled blocks everything",
			pref: func(p Preference) Preference { p.InAppEnabled = false; return p },
			sev:  risk.SeverityCritical, typ: risk.TypeCrossRisk, want: false,
		},
		{
			name: "high opt-out blocks high",
			pref: func(p Preference) Preference { p.NotifyHigh = false; return p },
			sev:  risk.SeverityHigh, typ: risk.TypeEmotional, want: false,
		},
		{
			name: "high opt-out leaves critical alone",
			pref: func(p Preference) Preference { p.NotifyHigh = false; return p },
			sev:  risk.SeverityCritical, typ: risk.TypeCrossRisk, want: true,
		},
		{
			name: "academic opt-out blocks academic",
			pref: func(p Preference) Preference { p.NotifyAcademic = false; return p },
			sev:  risk.SeverityMedium, typ: risk.TypeAcademic, want: false,
		},
		{
			name: "cross-risk opt-out blocks cross-risk",
			pref: func(p Preference) Preference { p.NotifyCrossRisk = false; return p },
			sev:  risk.SeverityCritical, typ: risk.TypeCrossRisk, want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			repo.prefs["u1"] = tt.pref(DefaultPreference("u1"))

			if got := svc.ShouldNotify(ctx, "u1", tt.sev, tt.typ); got != tt.want {
				t.Errorf("ShouldNotify() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestService_ShouldNotify_quietHours(t *testing.T) {
	ctx := context.Background()
	defer func() { nowFunc = time.Now }()

	at := func(hour, minute int) func() time.Time {
		return func() time.Time {
			return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
		}
	}

	tests := []struct {
		name       string
		start, end string
		now        func() time.Time
		want       bool
	}{
		{name: "inside same-day window", start: "08:00", end: "16:00", now: at(12, 0), want: false},
		{name: "outside same-day window", start: "08:00", end: "16:00", now: at(18, 0), want: true},
		{name: "window start is inclusive", start: "08:00", end: "16:00", now: at(8, 0), want: false},
		{name: "window end is exclusive", start: "08:00", end: "16:00", now: at(16, 0), want: true},
		// Overnight windows are stored but not yet honored: the default
		// 22:00-08:00 window never suppresses. Midnight-spanning support
		// must not land silently.
		{name: "overnight window does not suppress inside", start: "22:00", end: "08:00", now: at(23, 0), want: true},
		{name: "overnight window does not suppress early morning", start: "22:00", end: "08:00", now: at(6, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			pref := DefaultPreference("u1")
			pref.QuietHoursEnabled = true
			pref.QuietHoursStart = tt.start
			pref.QuietHoursEnd = tt.end
			repo.prefs["u1"] = pref

			nowFunc = tt.now
			if got := svc.ShouldNotify(ctx, "u1", risk.SeverityHigh, risk.TypeEmotional); got != tt.want {
				t.Errorf("ShouldNotify() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestService_ShouldNotify_panicsOnInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("invalid severity", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("ShouldNotify() did not panic on invalid severity")
			}
		}()
		svc.ShouldNotify(ctx, "u1", "urgent", risk.TypeEmotional)
	})

	t.Run("invalid type", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("ShouldNotify() did not panic on invalid risk type")
			}
		}()
		svc.ShouldNotify(ctx, "u1", risk.SeverityHigh, "social")
	})
}

func TestService_ShouldNotify_defaultsOnRepoFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.getErr = errors.New("store down")

	if !svc.ShouldNotify(context.Background(), "u1", risk.SeverityHigh, risk.TypeEmotional) {
		t.Error("ShouldNotify() = false on repo failure, want the defaults to allow")
	}
}

func TestService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("records and emails when immediate", func(t *testing.T) {
		svc, repo, mail := newTestService(t)

		ok := svc.Notify(ctx, Notification{
			UserID:   "u1",
			Severity: risk.SeverityCritical,
			RiskType: risk.TypeCrossRisk,
			Message:  "needs attention",
		})
		if !ok {
			t.Fatal("Notify() = false, want true")
		}
		if len(repo.notifications) != 1 {
			t.Fatalf("len(notifications) = %d, want 1", len(repo.notifications))
		}
		if repo.notifications[0].ID == "" {
			t.Error("recorded notification has no ID")
		}
		if len(mail.sent) != 1 {
			t.Fatalf("len(sent emails) = %d, want 1", len(mail.sent))
		}
		if mail.sent[0].TemplateName != "care-alert" {
			t.Errorf("email template = %q, want care-alert", mail.sent[0].TemplateName)
		}
	})

	t.Run("no email when frequency is daily", func(t *testing.T) {
		svc, repo, mail := newTestService(t)
		pref := DefaultPreference("u1")
		pref.EmailFrequency = FrequencyDaily
		repo.prefs["u1"] = pref

		if ok := svc.Notify(ctx, Notification{UserID: "u1", Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional}); !ok {
			t.Fatal("Notify() = false, want true")
		}
		if len(repo.notifications) != 1 {
			t.Errorf("len(notifications) = %d, want 1", len(repo.notifications))
		}
		if len(mail.sent) != 0 {
			t.Errorf("len(sent emails) = %d, want 0", len(mail.sent))
		}
	})

	t.Run("gated notification is dropped entirely", func(t *testing.T) {
		svc, repo, mail := newTestService(t)
		pref := DefaultPreference("u1")
		pref.InAppEnabled = false
		repo.prefs["u1"] = pref

		if ok := svc.Notify(ctx, Notification{UserID: "u1", Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional}); ok {
			t.Fatal("Notify() = true, want false")
		}
		if len(repo.notifications) != 0 {
			t.Errorf("len(notifications) = %d, want 0", len(repo.notifications))
		}
		if len(mail.sent) != 0 {
			t.Errorf("len(sent emails) = %d, want 0", len(mail.sent))
		}
	})
}

func TestService_SendDigest(t *testing.T) {
	ctx := context.Background()
	digest := Digest{Date: "2026-03-10", Counts: risk.Counts{Total: 1}}

	t.Run("sends for daily frequency", func(t *testing.T) {
		svc, repo, mail := newTestService(t)
		pref := DefaultPreference("t1")
		pref.EmailFrequency = FrequencyDaily
		repo.prefs["t1"] = pref

		if !svc.SendDigest(ctx, "t1", digest) {
			t.Fatal("SendDigest() = false, want true")
		}
		if len(mail.sent) != 1 {
			t.Fatalf("len(sent emails) = %d, want 1", len(mail.sent))
		}
		if mail.sent[0].TemplateName != "care-digest" {
			t.Errorf("email template = %q, want care-digest", mail.sent[0].TemplateName)
		}
	})

	t.Run("skipped for immediate frequency", func(t *testing.T) {
		svc, _, mail := newTestService(t)

		if svc.SendDigest(ctx, "t1", digest) {
			t.Fatal("SendDigest() = true, want false")
		}
		if len(mail.sent) != 0 {
			t.Errorf("len(sent emails) = %d, want 0", len(mail.sent))
		}
	})

	t.Run("skipped when email disabled", func(t *testing.T) {
		svc, repo, mail := newTestService(t)
		pref := DefaultPreference("t1")
		pref.EmailEnabled = false
		pref.EmailFrequency = FrequencyDaily
		repo.prefs["t1"] = pref

		if svc.SendDigest(ctx, "t1", digest) {
			t.Fatal("SendDigest() = true, want false")
		}
		if len(mail.sent) != 0 {
			t.Errorf("len(sent emails) = %d, want 0", len(mail.sent))
		}
	})
}

func TestService_MarkRead(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	svc.Notify(ctx, Notification{UserID: "u1", Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional})
	id := repo.notifications[0].ID

	if err := svc.MarkRead(ctx, id, "u2"); err != ErrNotificationNotFound {
		t.Errorf("MarkRead() with wrong user = %v, want ErrNotificationNotFound", err)
	}
	if err := svc.MarkRead(ctx, id, "u1"); err != nil {
		t.Errorf("MarkRead() failed: %v", err)
	}
	if !repo.notifications[0].Read {
		t.Error("notification not marked read")
	}
}
