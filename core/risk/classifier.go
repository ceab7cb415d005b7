package risk

import "fmt"

// Classifier thresholds for single-dimension high severity.
const (
	criticalSentiment = 1.5
	failingGrade      = 60.0
	severeMissingWork = 5
)

// Classify combines the two assessments into a risk type and severity.
// Pure and deterministic. Calling it when neither assessment is risky is a
// caller bug and panics: the roster builder skips clean students entirely.
func Classify(em EmotionalAssessment, ac AcademicAssessment) (Type, Severity) {
	switch {
	case em.Risky() && ac.Risky():
		// the only path to critical
		return TypeCrossRisk, SeverityCritical

	case em.Risky():
		v := em.Verdict
		if v.PersistentLow || v.SuddenDrop || v.CurrentSentiment <= criticalSentiment {
			return TypeEmotional, SeverityHigh
		}
		return TypeEmotional, SeverityMedium

	case ac.Risky():
		v := ac.Verdict
		if v.CurrentGrade < failingGrade || v.MissingAssignments >= severeMissingWork || (v.LowGrade && v.GradeDecline) {
			return TypeAcademic, SeverityHigh
		}
		return TypeAcademic, SeverityMedium
	}
	panic(fmt.Sprintf("risk.Classify: neither assessment is risky (emotional assessed=%t, academic assessed=%t)", em.Assessed, ac.Assessed))
}
