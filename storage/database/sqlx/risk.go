package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core/risk"
)

type alertRepository struct {
	db *sqlx.DB
}

var _ risk.AlertRepository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *sqlx.DB) *alertRepository {
	return &alertRepository{db: db}
}

type alertRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ClassID      string    `db:"class_id"`
	Severity     string    `db:"severity"`
	RiskType     string    `db:"risk_type"`
	AlertDate    time.Time `db:"alert_date"`
	Acknowledged bool      `db:"acknowledged"`
}

func (r alertRow) toAlert() risk.Alert {
	return risk.Alert{
		ID:           r.ID,
		UserID:       r.UserID,
		ClassID:      r.ClassID,
		Severity:     risk.Severity(r.Severity),
		RiskType:     risk.Type(r.RiskType),
		AlertDate:    r.AlertDate,
		Acknowledged: r.Acknowledged,
	}
}

func (repo *alertRepository) QueryOpenAlerts(ctx context.Context, userID, classID string, since time.Time) ([]risk.Alert, error) {
	var rows []alertRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, class_id, severity, risk_type, alert_date, acknowledged
		 FROM care_alert
		 WHERE user_id = $1 AND class_id = $2 AND NOT acknowledged AND alert_date >= $3
		 ORDER BY alert_date DESC`, userID, classID, since)
	if err != nil {
		return nil, errors.Wrap(err, "querying open alerts")
	}
	alerts := make([]risk.Alert, 0, len(rows))
	for _, r := range rows {
		alerts = append(alerts, r.toAlert())
	}
	return alerts, nil
}

func (repo *alertRepository) CreateAlert(ctx context.Context, alert risk.Alert) (risk.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.AlertDate = alert.AlertDate.UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO care_alert (id, user_id, class_id, severity, risk_type, alert_date, acknowledged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		alert.ID, alert.UserID, alert.ClassID, alert.Severity, alert.RiskType, alert.AlertDate, alert.Acknowledged)
	if err != nil {
		return risk.Alert{}, errors.Wrap(err, "creating alert")
	}
	return alert, nil
}

func (repo *alertRepository) AcknowledgeAlert(ctx context.Context, alertID string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE care_alert SET acknowledged = TRUE WHERE id = $1`, alertID)
	if err != nil {
		return errors.Wrap(err, "acknowledging alert")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return risk.ErrAlertNotFound
	}
	return nil
}

type interventionRepository struct {
	db *sqlx.DB
}

var _ risk.InterventionRepository = (*interventionRepository)(nil) // interface compliance check

func NewInterventionRepository(db *sqlx.DB) *interventionRepository {
	return &interventionRepository{db: db}
}

func (repo *interventionRepository) GetInterventionSummary(ctx context.Context, userID, classID string) (risk.InterventionSummary, error) {
	var row struct {
		Count    int        `db:"count"`
		LastDate *time.Time `db:"last_date"`
	}
	err := repo.db.GetContext(ctx, &row,
		`SELECT count(*) AS count, max(created_at) AS last_date
		 FROM intervention WHERE user_id = $1 AND class_id = $2`, userID, classID)
	if err != nil {
		return risk.InterventionSummary{}, errors.Wrap(err, "summarizing interventions")
	}
	return risk.InterventionSummary{Count: row.Count, LastDate: row.LastDate}, nil
}

func (repo *interventionRepository) CreateIntervention(ctx context.Context, iv risk.Intervention) (risk.Intervention, error) {
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO intervention (id, user_id, class_id, teacher_id, kind, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		iv.ID, iv.UserID, iv.ClassID, iv.TeacherID, iv.Kind, iv.Notes, iv.CreatedAt)
	if err != nil {
		return risk.Intervention{}, errors.Wrap(err, "creating intervention")
	}
	return iv, nil
}
