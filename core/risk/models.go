// Package risk implements the at-risk detection and alert severity engine.
//
// Each enrolled student is assessed on two independent dimensions: emotional
// (trailing pulse checks) and academic (grade/participation snapshot). The two
// verdicts are combined into a single severity and risk type, and the flagged
// students are assembled into the teacher-facing care-alerts roster.
package risk

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrAlertNotFound = errors.New("care alert not found")
)

// Severity classifies how urgent a flagged student is.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityCritical: 3,
	SeverityHigh:     2,
	SeverityMedium:   1,
}

// Rank orders severities: critical=3, high=2, medium=1.
func (s Severity) Rank() int {
	return severityRanks[s]
}

func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Type tells which dimension(s) flagged the student.
type Type string

const (
	TypeEmotional Type = "emotional"
	TypeAcademic  Type = "academic"
	// TypeCrossRisk marks students flagged on both dimensions at once;
	// always critical severity.
	TypeCrossRisk Type = "cross-risk"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEmotional, TypeAcademic, TypeCrossRisk:
		return true
	}
	return false
}

// Trend is the short-term direction of a student's sentiment.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

type (
	// EmotionalVerdict is the emotional analyzer's output for one student.
	EmotionalVerdict struct {
		PersistentLow     bool    `json:"persistent_low"`
		ProlongedNegative bool    `json:"prolonged_negative"`
		SuddenDrop        bool    `json:"sudden_drop"`
		HighVolatility    bool    `json:"high_volatility"`
		CurrentSentiment  float64 `json:"current_sentiment"`
		Trend             Trend   `json:"trend"`
		DaysAtRisk        int     `json:"days_at_risk"`
	}

	// AcademicVerdict is the academic analyzer's output for one student-class pair.
	AcademicVerdict struct {
		LowGrade           bool     `json:"low_grade"`
		MissingWork        bool     `json:"missing_work"`
		GradeDecline       bool     `json:"grade_decline"`
		LowParticipation   bool     `json:"low_participation"`
		CurrentGrade       float64  `json:"current_grade"`
		PreviousGrade      *float64 `json:"previous_grade,omitempty"`
		MissingAssignments int      `json:"missing_assignments"`
		ParticipationRate  float64  `json:"participation_rate"`
	}

	// EmotionalAssessment tags an EmotionalVerdict with whether the analyzer
	// actually ran, so "not assessed" is never conflated with "assessed and clean".
	EmotionalAssessment struct {
		Assessed bool
		Verdict  EmotionalVerdict
	}

	// AcademicAssessment is the academic counterpart of EmotionalAssessment.
	AcademicAssessment struct {
		Assessed bool
		Verdict  AcademicVerdict
	}

	// AtRiskStudent is one roster entry: a flagged student in one class.
	// Rebuilt from scratch on every roster build; never persisted by the engine.
	AtRiskStudent struct {
		UserID            string            `json:"user_id"`
		StudentName       string            `json:"student_name"`
		ClassID           string            `json:"class_id"`
		ClassName         string            `json:"class_name"`
		RiskType          Type              `json:"risk_type"`
		Severity          Severity          `json:"severity"`
		DaysAtRisk        int               `json:"days_at_risk"`
		EmotionalRisk     *EmotionalVerdict `json:"emotional_risk,omitempty"`
		AcademicRisk      *AcademicVerdict  `json:"academic_risk,omitempty"`
		AlertIDs          []string          `json:"alert_ids"`
		LastAlertDate     time.Time         `json:"last_alert_date"`
		LastPulseCheck    *time.Time        `json:"last_pulse_check,omitempty"`
		LastIntervention  *time.Time        `json:"last_intervention,omitempty"`
		InterventionCount int               `json:"intervention_count"`
	}

	// Counts summarizes a roster. Emotional and Academic each include
	// cross-risk entries: a cross-risk student counts toward both.
	Counts struct {
		Total     int `json:"total"`
		Critical  int `json:"critical"`
		High      int `json:"high"`
		Medium    int `json:"medium"`
		Emotional int `json:"emotional"`
		Academic  int `json:"academic"`
		CrossRisk int `json:"cross_risk"`
	}

	// Alert is a recorded care alert awaiting teacher acknowledgement.
	Alert struct {
		ID           string    `json:"id"`
		UserID       string    `json:"user_id"`
		ClassID      string    `json:"class_id"`
		Severity     Severity  `json:"severity"`
		RiskType     Type      `json:"risk_type"`
		AlertDate    time.Time `json:"alert_date"` // UTC
		Acknowledged bool      `json:"acknowledged"`
	}

	// Intervention is a logged teacher action taken in response to a risk flag.
	Intervention struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		ClassID   string    `json:"class_id"`
		TeacherID string    `json:"teacher_id"`
		Kind      string    `json:"kind"` // meeting, outreach, referral...
		Notes     string    `json:"notes"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// InterventionSummary aggregates a student's intervention history in a class.
	InterventionSummary struct {
		Count    int        `json:"count"`
		LastDate *time.Time `json:"last_date,omitempty"`
	}

	AlertRepository interface {
		// QueryOpenAlerts returns a student's unacknowledged alerts in a class
		// recorded at or after `since`, most-recent-first.
		QueryOpenAlerts(ctx context.Context, userID, classID string, since time.Time) ([]Alert, error)
		CreateAlert(ctx context.Context, alert Alert) (Alert, error)
		AcknowledgeAlert(ctx context.Context, alertID string) error
	}

	InterventionRepository interface {
		GetInterventionSummary(ctx context.Context, userID, classID string) (InterventionSummary, error)
		CreateIntervention(ctx context.Context, iv Intervention) (Intervention, error)
	}

	// DemoSource supplies the fixed illustrative roster substituted on total
	// data unavailability (core.DataFallbackDemo).
	DemoSource interface {
		DemoRoster(teacherID string) []AtRiskStudent
	}

	// Recorder observes roster builds for monitoring. See services/metrics.
	Recorder interface {
		RosterBuilt(teacherID string, size int, elapsed time.Duration)
		StudentFlagged(severity Severity)
	}
)

// HasRisk reports whether any emotional flag fired.
func (v EmotionalVerdict) HasRisk() bool {
	return v.PersistentLow || v.ProlongedNegative || v.SuddenDrop || v.HighVolatility
}

// HasRisk reports whether any academic flag fired.
func (v AcademicVerdict) HasRisk() bool {
	return v.LowGrade || v.MissingWork || v.GradeDecline || v.LowParticipation
}

// Risky reports whether the student was assessed and flagged emotionally.
func (a EmotionalAssessment) Risky() bool {
	return a.Assessed && a.Verdict.HasRisk()
}

// Risky reports whether the student was assessed and flagged academically.
func (a AcademicAssessment) Risky() bool {
	return a.Assessed && a.Verdict.HasRisk()
}

// NopRecorder discards all observations.
type NopRecorder struct{}

var _ Recorder = (*NopRecorder)(nil)

func (NopRecorder) RosterBuilt(string, int, time.Duration) {}
func (NopRecorder) StudentFlagged(Severity)                {}
