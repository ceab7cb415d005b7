package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hapiedu/hapi/core/risk"
)

type alertRepository struct {
	alerts *alertTable
}

var _ risk.AlertRepository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{alerts: db.alerts}
}

func (repo *alertRepository) QueryOpenAlerts(ctx context.Context, userID, classID string, since time.Time) ([]risk.Alert, error) {
	repo.alerts.RLock()
	defer repo.alerts.RUnlock()

	out := make([]risk.Alert, 0)
	for _, a := range repo.alerts.table {
		if a.UserID == userID && a.ClassID == classID && !a.Acknowledged && !a.AlertDate.Before(since) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlertDate.After(out[j].AlertDate) })
	return out, nil
}

func (repo *alertRepository) CreateAlert(ctx context.Context, alert risk.Alert) (risk.Alert, error) {
	repo.alerts.Lock()
	defer repo.alerts.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	repo.alerts.table[alert.ID] = &alert
	return alert, nil
}

func (repo *alertRepository) AcknowledgeAlert(ctx context.Context, alertID string) error {
	repo.alerts.Lock()
	defer repo.alerts.Unlock()

	if a, ok := repo.alerts.table[alertID]; ok {
		a.Acknowledged = true
		return nil
	}
	return risk.ErrAlertNotFound
}

type interventionRepository struct {
	interventions *interventionTable
}

var _ risk.InterventionRepository = (*interventionRepository)(nil) // interface compliance check

func NewInterventionRepository(db *DB) *interventionRepository {
	return &interventionRepository{interventions: db.interventions}
}

func (repo *interventionRepository) GetInterventionSummary(ctx context.Context, userID, classID string) (risk.InterventionSummary, error) {
	repo.interventions.RLock()
	defer repo.interventions.RUnlock()

	ivs := repo.interventions.table[interventionKey(userID, classID)]
	summary := risk.InterventionSummary{Count: len(ivs)}
	for _, iv := range ivs {
		if summary.LastDate == nil || iv.CreatedAt.After(*summary.LastDate) {
			t := iv.CreatedAt
			summary.LastDate = &t
		}
	}
	return summary, nil
}

func (repo *interventionRepository) CreateIntervention(ctx context.Context, iv risk.Intervention) (risk.Intervention, error) {
	repo.interventions.Lock()
	defer repo.interventions.Unlock()

	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	key := interventionKey(iv.UserID, iv.ClassID)
	repo.interventions.table[key] = append(repo.interventions.table[key], iv)
	return iv, nil
}
