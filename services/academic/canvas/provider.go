// Package canvasacademic adapts the Canvas LMS REST API to academic.Provider.
//
// Grades come from the enrollments endpoint; missing/late work and
// participation come from the course analytics student summary. Participation
// rate is approximated as the student's share of on-time submissions, which is
// the closest signal Canvas exposes to the check-in UI's participation metric.
package canvasacademic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/academic"
)

type (
	provider struct {
		baseURL string
		token   string
		client  *http.Client
		logger  core.Logger
	}

	enrollment struct {
		UserID string `json:"user_id"`
		Grades struct {
			CurrentScore              *float64 `json:"current_score"`
			CurrentPeriodCurrentScore *float64 `json:"current_period_computed_current_score"`
		} `json:"grades"`
	}

	studentSummary struct {
		ID                  string `json:"id"`
		TardinessBreakdown struct {
			Missing float64 `json:"missing"`
			Late    float64 `json:"late"`
			OnTime  float64 `json:"on_time"`
			Total   float64 `json:"total"`
		} `json:"tardiness_breakdown"`
	}
)

var _ academic.Provider = (*provider)(nil)

func NewProvider(conf *core.Config, logger core.Logger) *provider {
	return &provider{
		baseURL: conf.Canvas.BaseURL,
		token:   conf.Canvas.Token,
		client:  &http.Client{Timeout: conf.Canvas.RequestTimeout},
		logger:  logger,
	}
}

func (p *provider) Snapshot(ctx context.Context, userID, classID string) (*academic.Snapshot, error) {
	enr, err := p.getEnrollment(ctx, userID, classID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching canvas enrollment")
	}
	if enr == nil || enr.Grades.CurrentScore == nil {
		return nil, nil // student unknown to Canvas: no data
	}

	snap := &academic.Snapshot{
		UserID:       userID,
		ClassID:      classID,
		CurrentGrade: *enr.Grades.CurrentScore,
		AsOf:         time.Now().UTC(),
	}
	// When a grading-period score exists, the course-wide score acts as the
	// single prior grade value.
	if enr.Grades.CurrentPeriodCurrentScore != nil && *enr.Grades.CurrentPeriodCurrentScore != *enr.Grades.CurrentScore {
		prev := *enr.Grades.CurrentScore
		snap.CurrentGrade = *enr.Grades.CurrentPeriodCurrentScore
		snap.PreviousGrade = &prev
	}

	summary, err := p.getStudentSummary(ctx, userID, classID)
	if err != nil {
		// grades alone are still a usable snapshot
		p.logger.Warn(fmt.Sprintf("canvas: fetching student summary for %s in %s: %v", userID, classID, err), err)
		snap.ParticipationRate = academic.DefaultParticipation
		return snap, nil
	}
	tb := summary.TardinessBreakdown
	snap.MissingAssignments = int(tb.Missing)
	snap.LateAssignments = int(tb.Late)
	if tb.Total > 0 {
		snap.ParticipationRate = tb.OnTime / tb.Total * 100
	} else {
		snap.ParticipationRate = academic.DefaultParticipation
	}
	return snap, nil
}

func (p *provider) getEnrollment(ctx context.Context, userID, classID string) (*enrollment, error) {
	q := make(url.Values)
	q.Set("user_id", userID)
	q.Set("type[]", "StudentEnrollment")

	var enrs []enrollment
	path := fmt.Sprintf("/api/v1/courses/%s/enrollments", url.PathEscape(classID))
	if err := p.get(ctx, path, q, &enrs); err != nil {
		return nil, err
	}
	for i := range enrs {
		if enrs[i].UserID == userID {
			return &enrs[i], nil
		}
	}
	return nil, nil
}

func (p *provider) getStudentSummary(ctx context.Context, userID, classID string) (*studentSummary, error) {
	q := make(url.Values)
	q.Set("student_id", userID)

	var summaries []studentSummary
	path := fmt.Sprintf("/api/v1/courses/%s/analytics/student_summaries", url.PathEscape(classID))
	if err := p.get(ctx, path, q, &summaries); err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].ID == userID {
			return &summaries[i], nil
		}
	}
	return nil, errors.Errorf("no summary for student %s", userID)
}

func (p *provider) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("canvas returned %s for %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
