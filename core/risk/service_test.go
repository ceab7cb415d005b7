package risk_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/academic"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
	mockacademic "github.com/hapiedu/hapi/services/academic/mock"
	inmemdb "github.com/hapiedu/hapi/storage/database/inmem"
	testutil "github.com/hapiedu/hapi/tests"
)

// inmemSet exposes the in-memory repos' seeding helpers to the tests.
type inmemSet struct {
	school interface {
		school.Repository
		AddClass(cls school.Class) school.Class
		AddEnrollment(classID string, enr school.Enrollment)
		AddTeacher(id, name, email string)
	}
	pulse interface {
		pulse.Repository
		AddCheck(c pulse.Check) pulse.Check
	}
	provider interface {
		academic.Provider
		SetSnapshot(snap academic.Snapshot)
	}
}

func setup(t *testing.T, conf *core.Config) (*risk.Service, *inmemSet) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}

	set := &inmemSet{
		school:   inmemdb.NewSchoolRepository(db),
		pulse:    inmemdb.NewPulseRepository(db),
		provider: mockacademic.NewProvider(),
	}
	svc := risk.NewService(conf, testutil.NewLogger(t), risk.ServiceDeps{
		School:        set.school,
		Pulse:         set.pulse,
		Academic:      set.provider,
		Alerts:        inmemdb.NewAlertRepository(db),
		Interventions: inmemdb.NewInterventionRepository(db),
		Demo:          inmemdb.NewDemoSource(),
	})
	return svc, set
}

func TestService_DetectAtRiskStudents(t *testing.T) {
	conf := testutil.NewConfig()
	svc, set := setup(t, conf)
	ctx := context.Background()

	set.school.AddTeacher("t1", "Mrs. Kamau", "kamau@school.test")
	cls := set.school.AddClass(testutil.Class("c1", "t1", "Math 8A"))
	set.school.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-medium", DisplayName: "Medium Student"})
	set.school.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-critical", DisplayName: "Critical Student"})
	set.school.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-high", DisplayName: "High Student"})
	set.school.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-clean", DisplayName: "Clean Student"})

	// s-medium: academic only, low participation
	set.provider.SetSnapshot(academic.Snapshot{
		UserID: "s-medium", ClassID: cls.ID, CurrentGrade: 85, ParticipationRate: 40,
	})
	// s-critical: flagged on both dimensions
	for _, c := range testutil.Checks("s-critical", 1, 1, 1, 1) {
		set.pulse.AddCheck(c)
	}
	set.provider.SetSnapshot(academic.Snapshot{
		UserID: "s-critical", ClassID: cls.ID, CurrentGrade: 50, MissingAssignments: 6, ParticipationRate: 80,
	})
	// s-high: emotional only, five days at the bottom
	for _, c := range testutil.Checks("s-high", 1, 1, 1, 1, 1) {
		set.pulse.AddCheck(c)
	}
	set.provider.SetSnapshot(academic.Snapshot{
		UserID: "s-high", ClassID: cls.ID, CurrentGrade: 85, ParticipationRate: 80,
	})
	// s-clean: neutral everywhere
	for _, c := range testutil.Checks("s-clean", 4, 4, 4) {
		set.pulse.AddCheck(c)
	}
	set.provider.SetSnapshot(academic.Snapshot{
		UserID: "s-clean", ClassID: cls.ID, CurrentGrade: 85, ParticipationRate: 80,
	})

	roster, err := svc.DetectAtRiskStudents(ctx, "t1", "")
	if err != nil {
		t.Fatalf("DetectAtRiskStudents() failed: %v", err)
	}

	testutil.RosterDiff(t, []risk.AtRiskStudent{
		{UserID: "s-critical", Severity: risk.SeverityCritical, RiskType: risk.TypeCrossRisk, DaysAtRisk: 4},
		{UserID: "s-high", Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional, DaysAtRisk: 5},
		{UserID: "s-medium", Severity: risk.SeverityMedium, RiskType: risk.TypeAcademic},
	}, roster)

	for _, entry := range roster {
		if entry.UserID == "s-critical" {
			if entry.EmotionalRisk == nil || entry.AcademicRisk == nil {
				t.Error("cross-risk entry must carry both verdicts")
			}
		}
		if entry.UserID == "s-medium" && entry.EmotionalRisk != nil {
			t.Error("academic-only entry must not carry an emotional verdict")
		}
	}
}

func TestService_Counts(t *testing.T) {
	roster := []risk.AtRiskStudent{
		{Severity: risk.SeverityCritical, RiskType: risk.TypeCrossRisk},
		{Severity: risk.SeverityHigh, RiskType: risk.TypeEmotional},
		{Severity: risk.SeverityMedium, RiskType: risk.TypeAcademic},
	}
	counts := risk.CountRoster(roster)

	want := risk.Counts{Total: 3, Critical: 1, High: 1, Medium: 1, Emotional: 2, Academic: 2, CrossRisk: 1}
	if counts != want {
		t.Errorf("CountRoster() = %+v, want %+v", counts, want)
	}
}

func TestService_demoFallback(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Care.Availability = core.DataFallbackDemo
	svc, _ := setup(t, conf)

	roster, err := svc.DetectAtRiskStudents(context.Background(), "t-unknown", "")
	if err != nil {
		t.Fatalf("DetectAtRiskStudents() failed: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("len(roster) = %d, want 3 demo entries", len(roster))
	}
	if roster[0].Severity != risk.SeverityCritical {
		t.Errorf("demo roster[0].Severity = %v, want %v", roster[0].Severity, risk.SeverityCritical)
	}
}

func TestService_liveEmpty(t *testing.T) {
	conf := testutil.NewConfig() // DataLive
	svc, _ := setup(t, conf)

	roster, err := svc.DetectAtRiskStudents(context.Background(), "t-unknown", "")
	if err != nil {
		t.Fatalf("DetectAtRiskStudents() failed: %v", err)
	}
	if roster == nil {
		t.Fatal("roster is nil, want empty slice")
	}
	if len(roster) != 0 {
		t.Errorf("len(roster) = %d, want 0", len(roster))
	}
}

func TestService_classOwnershipFilter(t *testing.T) {
	conf := testutil.NewConfig()
	svc, set := setup(t, conf)

	set.school.AddClass(testutil.Class("c-other", "t-other", "Science 8B"))
	set.school.AddEnrollment("c-other", school.Enrollment{UserID: "s1", DisplayName: "Someone"})

	roster, err := svc.DetectAtRiskStudents(context.Background(), "t1", "c-other")
	if err != nil {
		t.Fatalf("DetectAtRiskStudents() failed: %v", err)
	}
	if len(roster) != 0 {
		t.Errorf("len(roster) = %d, want 0 for a class owned by another teacher", len(roster))
	}
}

// failingProvider errors for one student to prove a bad academic fetch never
// flags academically on its own and never aborts the build.
type failingProvider struct {
	inner  academic.Provider
	failID string
}

func (p failingProvider) Snapshot(ctx context.Context, userID, classID string) (*academic.Snapshot, error) {
	if userID == p.failID {
		return nil, errors.New("academic source down")
	}
	return p.inner.Snapshot(ctx, userID, classID)
}

func TestService_providerFailureDoesNotAbort(t *testing.T) {
	conf := testutil.NewConfig()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	schoolRepo := inmemdb.NewSchoolRepository(db)
	pulseRepo := inmemdb.NewPulseRepository(db)
	provider := mockacademic.NewProvider()

	svc := risk.NewService(conf, testutil.NewLogger(t), risk.ServiceDeps{
		School:        schoolRepo,
		Pulse:         pulseRepo,
		Academic:      failingProvider{inner: provider, failID: "s-fails"},
		Alerts:        inmemdb.NewAlertRepository(db),
		Interventions: inmemdb.NewInterventionRepository(db),
		Demo:          inmemdb.NewDemoSource(),
	})

	cls := schoolRepo.AddClass(testutil.Class("c1", "t1", "Math 8A"))
	schoolRepo.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-fails", DisplayName: "Unlucky"})
	schoolRepo.AddEnrollment(cls.ID, school.Enrollment{UserID: "s-flagged", DisplayName: "Flagged"})

	// s-fails would be flagged academically if the provider worked, and is
	// emotionally risky regardless.
	for _, c := range testutil.Checks("s-fails", 1, 1, 1) {
		pulseRepo.AddCheck(c)
	}
	provider.SetSnapshot(academic.Snapshot{
		UserID: "s-flagged", ClassID: cls.ID, CurrentGrade: 55, ParticipationRate: 80,
	})

	roster, err := svc.DetectAtRiskStudents(context.Background(), "t1", "")
	if err != nil {
		t.Fatalf("DetectAtRiskStudents() failed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("len(roster) = %d, want 2", len(roster))
	}
	for _, entry := range roster {
		if entry.UserID == "s-fails" {
			// failed academic fetch must not contribute to the classification
			if entry.RiskType != risk.TypeEmotional {
				t.Errorf("s-fails RiskType = %v, want %v", entry.RiskType, risk.TypeEmotional)
			}
		}
	}
}
