package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
)

type sweeper struct {
	conf     *core.Config
	logger   core.Logger
	school   school.Repository
	riskSvc  *risk.Service
	notifSvc *notification.Service
}

// run sweeps every teacher once. Per-teacher failures are logged and the
// sweep moves on; only a failure to list teachers aborts.
func (s *sweeper) run() error {
	ctx := context.Background()

	teacherIDs, err := s.school.QueryTeacherIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "querying teacher ids")
	}
	s.logger.Info(fmt.Sprintf("nightly: sweeping %d teacher(s)", len(teacherIDs)))

	var alerts, digests int
	for _, tid := range teacherIDs {
		created, digested, err := s.sweepTeacher(ctx, tid)
		if err != nil {
			s.logger.Error(fmt.Sprintf("nightly: sweeping teacher %s: %v", tid, err), err)
			continue
		}
		alerts += created
		if digested {
			digests++
		}
	}

	s.logger.Info(fmt.Sprintf("nightly: done; %d new alert(s), %d digest(s) sent", alerts, digests))
	return nil
}

func (s *sweeper) sweepTeacher(ctx context.Context, teacherID string) (int, bool, error) {
	roster, err := s.riskSvc.DetectAtRiskStudents(ctx, teacherID, "")
	if err != nil {
		return 0, false, errors.Wrap(err, "building roster")
	}

	var created int
	for _, entry := range roster {
		alert, ok, err := s.riskSvc.RecordAlert(ctx, entry)
		if err != nil {
			s.logger.Error(fmt.Sprintf("nightly: recording alert for student %s: %v", entry.UserID, err), err)
			continue
		}
		if !ok { // student already has an open alert
			continue
		}
		created++

		s.notifSvc.Notify(ctx, notification.Notification{
			UserID:    teacherID,
			Severity:  alert.Severity,
			RiskType:  alert.RiskType,
			StudentID: entry.UserID,
			ClassID:   entry.ClassID,
			Message:   fmt.Sprintf("%s may need attention in %s", entry.StudentName, entry.ClassName),
		})
	}

	if len(roster) == 0 {
		return created, false, nil
	}
	// digests go out only on the run that hits the configured hour so the
	// command can be scheduled more often than daily
	if time.Now().Hour() != s.conf.Notification.DigestHour {
		return created, false, nil
	}
	digested := s.notifSvc.SendDigest(ctx, teacherID, notification.Digest{
		Date:     time.Now().UTC().Format("2006-01-02"),
		Counts:   risk.CountRoster(roster),
		Students: roster,
	})
	return created, digested, nil
}
