package school

import "context"

// Repository resolves teachers, classes and enrollments.
type Repository interface {
	// QueryClassesByTeacher returns the teacher's active classes.
	QueryClassesByTeacher(ctx context.Context, teacherID string) ([]Class, error)
	GetClassByID(ctx context.Context, classID string) (Class, error)
	// QueryActiveEnrollments returns the active student enrollments of a class.
	QueryActiveEnrollments(ctx context.Context, classID string) ([]Enrollment, error)
	// QueryTeacherIDs returns the IDs of all teachers with at least one active class.
	QueryTeacherIDs(ctx context.Context) ([]string, error)
}
