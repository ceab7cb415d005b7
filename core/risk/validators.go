package risk

import (
	"github.com/go-playground/validator/v10"

	"github.com/hapiedu/hapi/core"
)

// NewInterventionInput is the teacher-submitted intervention log payload.
type NewInterventionInput struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=meeting outreach referral parent-contact other"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (in *NewInterventionInput) Validate(validate *validator.Validate) error {
	in.StudentID = core.CleanString(in.StudentID)
	in.ClassID = core.CleanString(in.ClassID)
	in.Kind = core.CleanString(in.Kind)
	in.Notes = core.CleanString(in.Notes)
	return validate.Struct(in)
}

// Intervention builds the record the teacher is logging.
func (in *NewInterventionInput) Intervention(teacherID string) Intervention {
	return Intervention{
		UserID:    in.StudentID,
		ClassID:   in.ClassID,
		TeacherID: teacherID,
		Kind:      in.Kind,
		Notes:     in.Notes,
	}
}
