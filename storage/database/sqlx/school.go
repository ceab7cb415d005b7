// Package sqlxrepos implements the core repositories on postgres via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var (
	_ school.Repository      = (*schoolRepository)(nil) // interface compliance check
	_ notification.Recipient = (*schoolRepository)(nil)
)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

type classRow struct {
	ID        string    `db:"id"`
	TeacherID string    `db:"teacher_id"`
	Name      string    `db:"name"`
	Subject   string    `db:"subject"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r classRow) toClass() school.Class {
	return school.Class{
		ID:        r.ID,
		TeacherID: r.TeacherID,
		Name:      r.Name,
		Subject:   r.Subject,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

func (repo *schoolRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]school.Class, error) {
	var rows []classRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, teacher_id, name, subject, is_active, created_at
		 FROM class WHERE teacher_id = $1 AND is_active ORDER BY name`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toClass())
	}
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, classID string) (school.Class, error) {
	var row classRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, teacher_id, name, subject, is_active, created_at FROM class WHERE id = $1`, classID)
	if err == sql.ErrNoRows {
		return school.Class{}, school.ErrClassNotFound
	}
	if err != nil {
		return school.Class{}, errors.Wrap(err, "getting class")
	}
	return row.toClass(), nil
}

func (repo *schoolRepository) QueryActiveEnrollments(ctx context.Context, classID string) ([]school.Enrollment, error) {
	var rows []struct {
		UserID      string `db:"user_id"`
		DisplayName string `db:"display_name"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT user_id, display_name FROM enrollment
		 WHERE class_id = $1 AND is_active ORDER BY display_name`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]school.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, school.Enrollment{UserID: r.UserID, DisplayName: r.DisplayName})
	}
	return enrs, nil
}

func (repo *schoolRepository) QueryTeacherIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT teacher_id FROM class WHERE is_active ORDER BY teacher_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher ids")
	}
	return ids, nil
}

func (repo *schoolRepository) GetRecipient(ctx context.Context, userID string) (string, string, error) {
	var row struct {
		Name  string `db:"name"`
		Email string `db:"email"`
	}
	err := repo.db.GetContext(ctx, &row, `SELECT name, email FROM teacher WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return "", "", school.ErrTeacherNotFound
	}
	if err != nil {
		return "", "", errors.Wrap(err, "getting teacher")
	}
	return row.Name, row.Email, nil
}
