package school

import (
	"errors"
	"time"
)

var (
	// errors
	ErrClassNotFound   = errors.New("class not found")
	ErrTeacherNotFound = errors.New("teacher not found")
)

type (
	// Class is a teacher-owned class roster.
	Class struct {
		ID        string    `json:"id"`
		TeacherID string    `json:"teacher_id"`
		Name      string    `json:"name"`
		Subject   string    `json:"subject"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Enrollment is an active student membership in a class.
	Enrollment struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
	}
)
