// Package academic holds per-student-per-class academic snapshots and the
// pluggable provider seam they are sourced from (fixture table or live LMS).
package academic

import (
	"context"
	"time"
)

// Neutral defaults used when a provider has no snapshot for a student.
const (
	DefaultGrade         = 85.0
	DefaultParticipation = 80.0
)

type (
	// Snapshot is a student's academic standing in one class at a point in time.
	// PreviousGrade is the single prior grade value, when one is known.
	Snapshot struct {
		UserID             string    `json:"user_id"`
		ClassID            string    `json:"class_id"`
		CurrentGrade       float64   `json:"current_grade"` // 0..100
		PreviousGrade      *float64  `json:"previous_grade,omitempty"`
		MissingAssignments int       `json:"missing_assignments"`
		LateAssignments    int       `json:"late_assignments"`
		ParticipationRate  float64   `json:"participation_rate"` // 0..100
		AsOf               time.Time `json:"as_of"`              // UTC
	}

	// Provider supplies academic snapshots. Implementations: the fixture table
	// (services/academic/mock) and the Canvas adapter (services/academic/canvas).
	// A nil snapshot with a nil error means no data is known for the pair.
	Provider interface {
		Snapshot(ctx context.Context, userID, classID string) (*Snapshot, error)
	}
)

// LetterGrade is a US letter grade band.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// Letter maps a 0..100 grade to its letter band.
func Letter(grade float64) LetterGrade {
	switch {
	case grade >= 90:
		return GradeA
	case grade >= 80:
		return GradeB
	case grade >= 70:
		return GradeC
	case grade >= 60:
		return GradeD
	default:
		return GradeF
	}
}

var ordinals = map[LetterGrade]int{
	GradeA: 4,
	GradeB: 3,
	GradeC: 2,
	GradeD: 1,
	GradeF: 0,
}

// Ordinal ranks letter grades: A=4 .. F=0.
func (g LetterGrade) Ordinal() int {
	return ordinals[g]
}
