package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return db
}

func TestSchoolRepository(t *testing.T) {
	db := openDB(t)
	repo := NewSchoolRepository(db)
	ctx := context.Background()

	repo.AddTeacher("t1", "Mrs. Kamau", "kamau@school.test")
	repo.AddClass(school.Class{ID: "c1", TeacherID: "t1", Name: "Math", IsActive: true})
	repo.AddClass(school.Class{ID: "c2", TeacherID: "t1", Name: "Art", IsActive: true})
	repo.AddClass(school.Class{ID: "c3", TeacherID: "t1", Name: "Old", IsActive: false})
	repo.AddClass(school.Class{ID: "c4", TeacherID: "t2", Name: "Science", IsActive: true})
	repo.AddEnrollment("c1", school.Enrollment{UserID: "s1", DisplayName: "Asha"})

	classes, err := repo.QueryClassesByTeacher(ctx, "t1")
	if err != nil {
		t.Fatalf("QueryClassesByTeacher() failed: %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("len(classes) = %d, want 2 active classes", len(classes))
	}
	if classes[0].Name != "Art" { // sorted by name
		t.Errorf("classes[0].Name = %s, want Art", classes[0].Name)
	}

	if _, err := repo.GetClassByID(ctx, "nope"); err != school.ErrClassNotFound {
		t.Errorf("GetClassByID(nope) error = %v, want ErrClassNotFound", err)
	}

	enrs, err := repo.QueryActiveEnrollments(ctx, "c1")
	if err != nil || len(enrs) != 1 {
		t.Errorf("QueryActiveEnrollments() = %v, %v, want one enrollment", enrs, err)
	}

	ids, err := repo.QueryTeacherIDs(ctx)
	if err != nil {
		t.Fatalf("QueryTeacherIDs() failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("QueryTeacherIDs() = %v, want [t1 t2]", ids)
	}

	name, email, err := repo.GetRecipient(ctx, "t1")
	if err != nil || name != "Mrs. Kamau" || email != "kamau@school.test" {
		t.Errorf("GetRecipient(t1) = %s, %s, %v", name, email, err)
	}
	if _, _, err := repo.GetRecipient(ctx, "t-missing"); err != school.ErrTeacherNotFound {
		t.Errorf("GetRecipient(t-missing) error = %v, want ErrTeacherNotFound", err)
	}
}

func TestPulseRepository(t *testing.T) {
	db := openDB(t)
	repo := NewPulseRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	// inserted out of order; reads must come back most-recent-first
	repo.AddCheck(pulse.Check{ID: "old", UserID: "s1", SentimentValue: 2, CheckedAt: now.Add(-48 * time.Hour)})
	repo.AddCheck(pulse.Check{ID: "new", UserID: "s1", SentimentValue: 5, CheckedAt: now})
	repo.AddCheck(pulse.Check{ID: "mid", UserID: "s1", SentimentValue: 3, CheckedAt: now.Add(-24 * time.Hour)})
	repo.AddCheck(pulse.Check{ID: "ancient", UserID: "s1", SentimentValue: 1, CheckedAt: now.Add(-10 * 24 * time.Hour)})

	checks, err := repo.QueryChecksSince(ctx, "s1", now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("QueryChecksSince() failed: %v", err)
	}
	if len(checks) != 3 {
		t.Fatalf("len(checks) = %d, want 3 within the window", len(checks))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if checks[i].ID != want {
			t.Errorf("checks[%d].ID = %s, want %s", i, checks[i].ID, want)
		}
	}

	latest, err := repo.GetLatestCheck(ctx, "s1")
	if err != nil || latest.ID != "new" {
		t.Errorf("GetLatestCheck() = %v, %v, want check 'new'", latest, err)
	}
	if _, err := repo.GetLatestCheck(ctx, "s-none"); err != pulse.ErrNoChecks {
		t.Errorf("GetLatestCheck(s-none) error = %v, want ErrNoChecks", err)
	}
}

func TestAlertRepository(t *testing.T) {
	db := openDB(t)
	repo := NewAlertRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	a1, err := repo.CreateAlert(ctx, risk.Alert{
		UserID: "s1", ClassID: "c1", Severity: risk.SeverityHigh,
		RiskType: risk.TypeEmotional, AlertDate: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateAlert() failed: %v", err)
	}
	if a1.ID == "" {
		t.Fatal("CreateAlert() assigned no ID")
	}
	a2, _ := repo.CreateAlert(ctx, risk.Alert{
		UserID: "s1", ClassID: "c1", Severity: risk.SeverityCritical,
		RiskType: risk.TypeCrossRisk, AlertDate: now,
	})
	// outside the queried window
	repo.CreateAlert(ctx, risk.Alert{
		UserID: "s1", ClassID: "c1", Severity: risk.SeverityMedium,
		RiskType: risk.TypeAcademic, AlertDate: now.Add(-30 * 24 * time.Hour),
	})

	alerts, err := repo.QueryOpenAlerts(ctx, "s1", "c1", now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("QueryOpenAlerts() failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2 within the window", len(alerts))
	}
	if alerts[0].ID != a2.ID { // most-recent-first
		t.Errorf("alerts[0].ID = %s, want %s", alerts[0].ID, a2.ID)
	}

	if err := repo.AcknowledgeAlert(ctx, a1.ID); err != nil {
		t.Fatalf("AcknowledgeAlert() failed: %v", err)
	}
	alerts, _ = repo.QueryOpenAlerts(ctx, "s1", "c1", now.Add(-7*24*time.Hour))
	if len(alerts) != 1 {
		t.Errorf("len(alerts) after ack = %d, want 1", len(alerts))
	}

	if err := repo.AcknowledgeAlert(ctx, "nope"); err != risk.ErrAlertNotFound {
		t.Errorf("AcknowledgeAlert(nope) error = %v, want ErrAlertNotFound", err)
	}
}

func TestInterventionRepository(t *testing.T) {
	db := openDB(t)
	repo := NewInterventionRepository(db)
	ctx := context.Background()

	summary, err := repo.GetInterventionSummary(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("GetInterventionSummary() failed: %v", err)
	}
	if summary.Count != 0 || summary.LastDate != nil {
		t.Errorf("empty summary = %+v, want zero", summary)
	}

	first := time.Now().UTC().Add(-48 * time.Hour)
	last := time.Now().UTC()
	repo.CreateIntervention(ctx, risk.Intervention{UserID: "s1", ClassID: "c1", TeacherID: "t1", Kind: "meeting", CreatedAt: first})
	repo.CreateIntervention(ctx, risk.Intervention{UserID: "s1", ClassID: "c1", TeacherID: "t1", Kind: "outreach", CreatedAt: last})
	repo.CreateIntervention(ctx, risk.Intervention{UserID: "s1", ClassID: "c2", TeacherID: "t1", Kind: "referral", CreatedAt: last})

	summary, err = repo.GetInterventionSummary(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("GetInterventionSummary() failed: %v", err)
	}
	if summary.Count != 2 {
		t.Errorf("summary.Count = %d, want 2 (c2 excluded)", summary.Count)
	}
	if summary.LastDate == nil || !summary.LastDate.Equal(last) {
		t.Errorf("summary.LastDate = %v, want %v", summary.LastDate, last)
	}
}

func TestNotificationRepository(t *testing.T) {
	db := openDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	if _, err := repo.GetPreference(ctx, "u1"); err != notification.ErrNoPreference {
		t.Errorf("GetPreference(u1) error = %v, want ErrNoPreference", err)
	}

	pref := notification.DefaultPreference("u1")
	if _, err := repo.SavePreference(ctx, pref); err != nil {
		t.Fatalf("SavePreference() failed: %v", err)
	}
	got, err := repo.GetPreference(ctx, "u1")
	if err != nil || got.UserID != "u1" {
		t.Errorf("GetPreference() = %+v, %v", got, err)
	}

	now := time.Now().UTC()
	n1, _ := repo.CreateNotification(ctx, notification.Notification{UserID: "u1", Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional, CreatedAt: now.Add(-time.Hour)})
	n2, _ := repo.CreateNotification(ctx, notification.Notification{UserID: "u1", Severity: risk.SeverityMedium, RiskType: risk.TypeAcademic, CreatedAt: now})
	repo.CreateNotification(ctx, notification.Notification{UserID: "u2", Severity: risk.SeverityMedium, RiskType: risk.TypeAcademic, CreatedAt: now})

	ns, err := repo.QueryNotifications(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("QueryNotifications() failed: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("len(notifications) = %d, want 2", len(ns))
	}
	if ns[0].ID != n2.ID { // newest first
		t.Errorf("notifications[0].ID = %s, want %s", ns[0].ID, n2.ID)
	}

	if err := repo.MarkNotificationRead(ctx, n1.ID, "u2"); err != notification.ErrNotificationNotFound {
		t.Errorf("MarkNotificationRead() wrong user error = %v, want ErrNotificationNotFound", err)
	}
	if err := repo.MarkNotificationRead(ctx, n1.ID, "u1"); err != nil {
		t.Fatalf("MarkNotificationRead() failed: %v", err)
	}
	ns, _ = repo.QueryNotifications(ctx, "u1", 10)
	for _, n := range ns {
		if n.ID == n1.ID && !n.Read {
			t.Error("notification not marked read")
		}
	}
}

func TestDemoSource(t *testing.T) {
	roster := NewDemoSource().DemoRoster("t1")
	if len(roster) != 3 {
		t.Fatalf("len(demo roster) = %d, want 3", len(roster))
	}
	for _, entry := range roster {
		if !entry.Severity.Valid() || !entry.RiskType.Valid() {
			t.Errorf("demo entry %s has invalid severity/type", entry.UserID)
		}
	}
}
