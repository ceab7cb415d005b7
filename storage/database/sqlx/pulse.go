package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core/pulse"
)

type pulseRepository struct {
	db *sqlx.DB
}

var _ pulse.Repository = (*pulseRepository)(nil) // interface compliance check

func NewPulseRepository(db *sqlx.DB) *pulseRepository {
	return &pulseRepository{db: db}
}

type checkRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	SentimentValue int       `db:"sentiment_value"`
	EmotionLabel   string    `db:"emotion_label"`
	CheckedAt      time.Time `db:"checked_at"`
}

func (r checkRow) toCheck() pulse.Check {
	return pulse.Check{
		ID:             r.ID,
		UserID:         r.UserID,
		SentimentValue: r.SentimentValue,
		EmotionLabel:   r.EmotionLabel,
		CheckedAt:      r.CheckedAt,
	}
}

func (repo *pulseRepository) QueryChecksSince(ctx context.Context, userID string, since time.Time) ([]pulse.Check, error) {
	var rows []checkRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, sentiment_value, emotion_label, checked_at
		 FROM pulse_check WHERE user_id = $1 AND checked_at >= $2
		 ORDER BY checked_at DESC`, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, "querying pulse checks")
	}
	checks := make([]pulse.Check, 0, len(rows))
	for _, r := range rows {
		checks = append(checks, r.toCheck())
	}
	return checks, nil
}

func (repo *pulseRepository) GetLatestCheck(ctx context.Context, userID string) (pulse.Check, error) {
	var row checkRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, user_id, sentiment_value, emotion_label, checked_at
		 FROM pulse_check WHERE user_id = $1 ORDER BY checked_at DESC LIMIT 1`, userID)
	if err == sql.ErrNoRows {
		return pulse.Check{}, pulse.ErrNoChecks
	}
	if err != nil {
		return pulse.Check{}, errors.Wrap(err, "getting latest pulse check")
	}
	return row.toCheck(), nil
}
