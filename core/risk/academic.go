package risk

import "github.com/hapiedu/hapi/core/academic"

// Academic analyzer thresholds.
const (
	lowGradeThreshold      = 70.0
	missingWorkThreshold   = 3
	participationThreshold = 50.0
)

// AnalyzeAcademic derives an AcademicVerdict from a snapshot. A nil snapshot
// means no data is known: all flags false, neutral defaults.
func AnalyzeAcademic(snap *academic.Snapshot) AcademicVerdict {
	if snap == nil {
		return AcademicVerdict{
			CurrentGrade:      academic.DefaultGrade,
			ParticipationRate: academic.DefaultParticipation,
		}
	}

	verdict := AcademicVerdict{
		CurrentGrade:       snap.CurrentGrade,
		PreviousGrade:      snap.PreviousGrade,
		MissingAssignments: snap.MissingAssignments,
		ParticipationRate:  snap.ParticipationRate,
	}
	verdict.LowGrade = snap.CurrentGrade < lowGradeThreshold
	verdict.MissingWork = snap.MissingAssignments >= missingWorkThreshold
	verdict.LowParticipation = snap.ParticipationRate < participationThreshold

	// A decline only counts when it crosses a letter-grade band.
	if snap.PreviousGrade != nil {
		prev := academic.Letter(*snap.PreviousGrade)
		curr := academic.Letter(snap.CurrentGrade)
		verdict.GradeDecline = prev.Ordinal()-curr.Ordinal() >= 1
	}
	return verdict
}
