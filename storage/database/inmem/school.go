package inmemdb

import (
	"context"
	"sort"

	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/school"
)

type schoolRepository struct {
	classes     *classTable
	enrollments *enrollmentTable
	teachers    *teacherTable
}

var (
	_ school.Repository      = (*schoolRepository)(nil) // interface compliance check
	_ notification.Recipient = (*schoolRepository)(nil)
)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{
		classes:     db.classes,
		enrollments: db.enrollments,
		teachers:    db.teachers,
	}
}

func (repo *schoolRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	classes := make([]school.Class, 0)
	for _, cls := range repo.classes.table {
		if cls.TeacherID == teacherID && cls.IsActive {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, classID string) (school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	if cls, ok := repo.classes.table[classID]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) QueryActiveEnrollments(ctx context.Context, classID string) ([]school.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	enrs := repo.enrollments.table[classID]
	out := make([]school.Enrollment, len(enrs))
	copy(out, enrs)
	return out, nil
}

func (repo *schoolRepository) QueryTeacherIDs(ctx context.Context) ([]string, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, cls := range repo.classes.table {
		if !cls.IsActive {
			continue
		}
		if _, ok := seen[cls.TeacherID]; !ok {
			seen[cls.TeacherID] = struct{}{}
			ids = append(ids, cls.TeacherID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetRecipient implements notification.Recipient from the teachers table.
func (repo *schoolRepository) GetRecipient(ctx context.Context, userID string) (string, string, error) {
	repo.teachers.RLock()
	defer repo.teachers.RUnlock()

	if t, ok := repo.teachers.table[userID]; ok {
		return t.Name, t.Email, nil
	}
	return "", "", school.ErrTeacherNotFound
}

// Seeding helpers; used by fixtures, tests and the dev servers.

func (repo *schoolRepository) AddClass(cls school.Class) school.Class {
	repo.classes.Lock()
	defer repo.classes.Unlock()
	repo.classes.table[cls.ID] = &cls
	return cls
}

func (repo *schoolRepository) AddEnrollment(classID string, enr school.Enrollment) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()
	repo.enrollments.table[classID] = append(repo.enrollments.table[classID], enr)
}

func (repo *schoolRepository) AddTeacher(id, name, email string) {
	repo.teachers.Lock()
	defer repo.teachers.Unlock()
	repo.teachers.table[id] = &teacher{ID: id, Name: name, Email: email}
}
