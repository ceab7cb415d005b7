package inmemdb

import (
	"time"

	"github.com/hapiedu/hapi/core/risk"
)

// demo fixture students surfaced when a teacher has no resolvable classes
// (core.DataFallbackDemo). IDs are stable so the UI can navigate them.
type demoSource struct{}

var _ risk.DemoSource = (*demoSource)(nil)

func NewDemoSource() *demoSource {
	return &demoSource{}
}

func (demoSource) DemoRoster(teacherID string) []risk.AtRiskStudent {
	now := time.Now().UTC()
	lastCheck := now.Add(-26 * time.Hour)
	lastIntervention := now.Add(-4 * 24 * time.Hour)
	prevGrade := 82.0

	return []risk.AtRiskStudent{
		{
			UserID:      "demo-student-1",
			StudentName: "Amani Njoroge",
			ClassID:     "demo-class-1",
			ClassName:   "Algebra I",
			RiskType:    risk.TypeCrossRisk,
			Severity:    risk.SeverityCritical,
			DaysAtRisk:  5,
			EmotionalRisk: &risk.EmotionalVerdict{
				PersistentLow:    true,
				CurrentSentiment: 1.0,
				Trend:            risk.TrendDeclining,
				DaysAtRisk:       5,
			},
			AcademicRisk: &risk.AcademicVerdict{
				LowGrade:           true,
				MissingWork:        true,
				CurrentGrade:       58,
				MissingAssignments: 4,
				ParticipationRate:  45,
				LowParticipation:   true,
			},
			AlertIDs:          []string{"demo-alert-1"},
			LastAlertDate:     now.Add(-20 * time.Hour),
			LastPulseCheck:    &lastCheck,
			LastIntervention:  &lastIntervention,
			InterventionCount: 2,
		},
		{
			UserID:      "demo-student-2",
			StudentName: "Leila Owuor",
			ClassID:     "demo-class-1",
			ClassName:   "Algebra I",
			RiskType:    risk.TypeEmotional,
			Severity:    risk.SeverityHigh,
			DaysAtRisk:  3,
			EmotionalRisk: &risk.EmotionalVerdict{
				SuddenDrop:       true,
				CurrentSentiment: 2.0,
				Trend:            risk.TrendDeclining,
				DaysAtRisk:       3,
			},
			AlertIDs:       []string{},
			LastPulseCheck: &lastCheck,
		},
		{
			UserID:      "demo-student-3",
			StudentName: "Baraka Mwangi",
			ClassID:     "demo-class-2",
			ClassName:   "World History",
			RiskType:    risk.TypeAcademic,
			Severity:    risk.SeverityMedium,
			DaysAtRisk:  0,
			AcademicRisk: &risk.AcademicVerdict{
				MissingWork:        true,
				CurrentGrade:       74,
				PreviousGrade:      &prevGrade,
				MissingAssignments: 3,
				ParticipationRate:  68,
			},
			AlertIDs: []string{},
		},
	}
}
