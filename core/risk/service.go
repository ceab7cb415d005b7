package risk

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/academic"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/school"
)

var nowFunc = time.Now // mockable

type (
	// ServiceDeps wires the collaborators the roster builder reads from.
	ServiceDeps struct {
		School        school.Repository
		Pulse         pulse.Repository
		Academic      academic.Provider
		Alerts        AlertRepository
		Interventions InterventionRepository
		Demo          DemoSource
		Recorder      Recorder
	}

	// Service builds the teacher-facing at-risk roster. Stateless between
	// calls; every roster is derived fresh from the repositories.
	Service struct {
		conf          *core.Config
		logger        core.Logger
		school        school.Repository
		pulse         pulse.Repository
		academic      academic.Provider
		alerts        AlertRepository
		interventions InterventionRepository
		demo          DemoSource
		rec           Recorder
	}
)

func NewService(conf *core.Config, logger core.Logger, deps ServiceDeps) *Service {
	rec := deps.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Service{
		conf:          conf,
		logger:        logger,
		school:        deps.School,
		pulse:         deps.Pulse,
		academic:      deps.Academic,
		alerts:        deps.Alerts,
		interventions: deps.Interventions,
		demo:          deps.Demo,
		rec:           rec,
	}
}

// DetectEmotionalRisk assesses a student's trailing pulse checks.
// An unavailable pulse source is logged and yields the neutral verdict,
// never an error: data sparsity is a normal condition here.
func (svc *Service) DetectEmotionalRisk(ctx context.Context, userID, classID string) EmotionalVerdict {
	return svc.assessEmotional(ctx, userID).Verdict
}

// DetectAcademicRisk assesses a student's academic snapshot in a class.
// Provider failures are logged and yield the all-clear default verdict.
func (svc *Service) DetectAcademicRisk(ctx context.Context, userID, classID string) AcademicVerdict {
	return svc.assessAcademic(ctx, userID, classID).Verdict
}

func (svc *Service) assessEmotional(ctx context.Context, userID string) EmotionalAssessment {
	since := nowFunc().UTC().Add(-svc.conf.Care.PulseWindow)
	checks, err := svc.pulse.QueryChecksSince(ctx, userID, since)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("risk: querying pulse checks for student %s: %v", userID, err), err)
		return EmotionalAssessment{Verdict: AnalyzeEmotional(nil)}
	}
	return EmotionalAssessment{Assessed: true, Verdict: AnalyzeEmotional(checks)}
}

func (svc *Service) assessAcademic(ctx context.Context, userID, classID string) AcademicAssessment {
	snap, err := svc.academic.Snapshot(ctx, userID, classID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("risk: fetching academic snapshot for student %s in class %s: %v", userID, classID, err), err)
		return AcademicAssessment{Verdict: AnalyzeAcademic(nil)}
	}
	return AcademicAssessment{Assessed: true, Verdict: AnalyzeAcademic(snap)}
}

// DetectAtRiskStudents assembles the sorted at-risk roster for a teacher,
// optionally restricted to one class. Per-student sub-fetch failures are
// logged and skipped; they never abort the build.
func (svc *Service) DetectAtRiskStudents(ctx context.Context, teacherID, classID string) ([]AtRiskStudent, error) {
	start := nowFunc()

	classes := svc.resolveClasses(ctx, teacherID, classID)
	if len(classes) == 0 {
		return svc.emptyRoster(teacherID), nil
	}

	roster := make([]AtRiskStudent, 0)
	for _, cls := range classes {
		enrollments, err := svc.school.QueryActiveEnrollments(ctx, cls.ID)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("risk: querying enrollments for class %s: %v", cls.ID, err), err)
			continue
		}
		for _, enr := range enrollments {
			if entry, ok := svc.assessStudent(ctx, cls, enr); ok {
				roster = append(roster, entry)
				svc.rec.StudentFlagged(entry.Severity)
			}
		}
	}

	sortRoster(roster)
	svc.rec.RosterBuilt(teacherID, len(roster), nowFunc().Sub(start))
	return roster, nil
}

// Counts re-derives the roster summary for a teacher.
func (svc *Service) Counts(ctx context.Context, teacherID, classID string) (Counts, error) {
	roster, err := svc.DetectAtRiskStudents(ctx, teacherID, classID)
	if err != nil {
		return Counts{}, err
	}
	return CountRoster(roster), nil
}

// CountRoster summarizes a roster. Cross-risk entries count toward both the
// emotional and academic tallies.
func CountRoster(roster []AtRiskStudent) Counts {
	counts := Counts{Total: len(roster)}
	for _, s := range roster {
		switch s.Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityHigh:
			counts.High++
		case SeverityMedium:
			counts.Medium++
		}
		switch s.RiskType {
		case TypeEmotional:
			counts.Emotional++
		case TypeAcademic:
			counts.Academic++
		case TypeCrossRisk:
			counts.Emotional++
			counts.Academic++
			counts.CrossRisk++
		}
	}
	return counts
}

// RecordAlert persists a care alert for a roster entry unless the student
// already has an open alert in that class; it reports whether one was created.
func (svc *Service) RecordAlert(ctx context.Context, entry AtRiskStudent) (Alert, bool, error) {
	if len(entry.AlertIDs) > 0 {
		return Alert{}, false, nil
	}
	alert, err := svc.alerts.CreateAlert(ctx, Alert{
		UserID:    entry.UserID,
		ClassID:   entry.ClassID,
		Severity:  entry.Severity,
		RiskType:  entry.RiskType,
		AlertDate: nowFunc().UTC(),
	})
	if err != nil {
		return Alert{}, false, err
	}
	return alert, true, nil
}

// AcknowledgeAlert marks a care alert as handled by the teacher.
func (svc *Service) AcknowledgeAlert(ctx context.Context, alertID string) error {
	return svc.alerts.AcknowledgeAlert(ctx, alertID)
}

// LogIntervention records a teacher action taken in response to a risk flag.
func (svc *Service) LogIntervention(ctx context.Context, iv Intervention) (Intervention, error) {
	iv.CreatedAt = nowFunc().UTC()
	return svc.interventions.CreateIntervention(ctx, iv)
}

func (svc *Service) resolveClasses(ctx context.Context, teacherID, classID string) []school.Class {
	if classID != "" {
		cls, err := svc.school.GetClassByID(ctx, classID)
		if err != nil {
			if err != school.ErrClassNotFound {
				svc.logger.Error(fmt.Sprintf("risk: getting class %s: %v", classID, err), err)
			}
			return nil
		}
		if cls.TeacherID != teacherID {
			return nil
		}
		return []school.Class{cls}
	}

	classes, err := svc.school.QueryClassesByTeacher(ctx, teacherID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("risk: querying classes for teacher %s: %v", teacherID, err), err)
		return nil
	}
	return classes
}

// emptyRoster applies the configured total-unavailability policy.
func (svc *Service) emptyRoster(teacherID string) []AtRiskStudent {
	if svc.conf.Care.Availability == core.DataFallbackDemo && svc.demo != nil {
		roster := svc.demo.DemoRoster(teacherID)
		sortRoster(roster)
		return roster
	}
	return []AtRiskStudent{}
}

// assessStudent runs both analyzers for one enrollment and assembles the
// roster entry. Returns false for students who are clean on both dimensions.
func (svc *Service) assessStudent(ctx context.Context, cls school.Class, enr school.Enrollment) (AtRiskStudent, bool) {
	em := svc.assessEmotional(ctx, enr.UserID)
	ac := svc.assessAcademic(ctx, enr.UserID, cls.ID)
	if !em.Risky() && !ac.Risky() {
		return AtRiskStudent{}, false
	}

	typ, sev := Classify(em, ac)
	entry := AtRiskStudent{
		UserID:      enr.UserID,
		StudentName: enr.DisplayName,
		ClassID:     cls.ID,
		ClassName:   cls.Name,
		RiskType:    typ,
		Severity:    sev,
		AlertIDs:    []string{},
	}
	if em.Risky() {
		v := em.Verdict
		entry.EmotionalRisk = &v
		entry.DaysAtRisk = v.DaysAtRisk
	}
	if ac.Risky() {
		v := ac.Verdict
		entry.AcademicRisk = &v
	}

	// Optional enrichments: failures leave the fields zeroed.
	since := nowFunc().UTC().Add(-svc.conf.Care.AlertWindow)
	if alerts, err := svc.alerts.QueryOpenAlerts(ctx, enr.UserID, cls.ID, since); err != nil {
		svc.logger.Warn(fmt.Sprintf("risk: querying open alerts for student %s: %v", enr.UserID, err), err)
	} else if len(alerts) > 0 {
		for _, a := range alerts {
			entry.AlertIDs = append(entry.AlertIDs, a.ID)
		}
		entry.LastAlertDate = alerts[0].AlertDate
	}

	if summary, err := svc.interventions.GetInterventionSummary(ctx, enr.UserID, cls.ID); err != nil {
		svc.logger.Warn(fmt.Sprintf("risk: querying interventions for student %s: %v", enr.UserID, err), err)
	} else {
		entry.InterventionCount = summary.Count
		entry.LastIntervention = summary.LastDate
	}

	if check, err := svc.pulse.GetLatestCheck(ctx, enr.UserID); err != nil {
		if err != pulse.ErrNoChecks {
			svc.logger.Warn(fmt.Sprintf("risk: getting latest pulse check for student %s: %v", enr.UserID, err), err)
		}
	} else {
		t := check.CheckedAt
		entry.LastPulseCheck = &t
	}

	return entry, true
}

// sortRoster orders by severity descending, ties broken by days-at-risk descending.
func sortRoster(roster []AtRiskStudent) {
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].Severity.Rank() != roster[j].Severity.Rank() {
			return roster[i].Severity.Rank() > roster[j].Severity.Rank()
		}
		return roster[i].DaysAtRisk > roster[j].DaysAtRisk
	})
}
