// Command nightly runs the care sweep: it rebuilds every teacher's at-risk
// roster, records new care alerts, emits gated notifications and sends daily
// digest emails. Safe to schedule hourly; digests only go out on the run
// matching notification.digestHour.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/academic"
	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
	canvasacademic "github.com/hapiedu/hapi/services/academic/canvas"
	mockacademic "github.com/hapiedu/hapi/services/academic/mock"
	emailsvc "github.com/hapiedu/hapi/services/email"
	logsvc "github.com/hapiedu/hapi/services/logger"
	"github.com/hapiedu/hapi/storage/database"
	inmemdb "github.com/hapiedu/hapi/storage/database/inmem"
	sqlxrepos "github.com/hapiedu/hapi/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "NIGHTLY : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	repos, cleanup, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer cleanup()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var provider academic.Provider
	switch conf.Care.AcademicProvider {
	case "canvas":
		provider = canvasacademic.NewProvider(conf, logger)
	default:
		provider = mockacademic.NewProvider()
	}

	core.ParseEmailTemplates(conf, logger)

	riskSvc := risk.NewService(conf, logger, risk.ServiceDeps{
		School:        repos.school,
		Pulse:         repos.pulse,
		Academic:      provider,
		Alerts:        repos.alerts,
		Interventions: repos.interventions,
		Demo:          inmemdb.NewDemoSource(),
	})
	notifSvc := notification.NewService(conf, logger, repos.notifications, mailSvc, repos.recipient)

	sweep := &sweeper{
		conf:     conf,
		logger:   logger,
		school:   repos.school,
		riskSvc:  riskSvc,
		notifSvc: notifSvc,
	}
	if err := sweep.run(); err != nil {
		logger.Fatal(fmt.Sprintf("nightly sweep: %v", err), err)
	}
}

// repoSet bundles the repository implementations picked by database.engine.
type repoSet struct {
	school        school.Repository
	pulse         pulse.Repository
	alerts        risk.AlertRepository
	interventions risk.InterventionRepository
	notifications notification.Repository
	recipient     notification.Recipient
}

func setUpStorage(conf *core.Config) (*repoSet, func(), error) {
	if conf.Database.Engine == "inmem" {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		schoolRepo := inmemdb.NewSchoolRepository(db)
		return &repoSet{
			school:        schoolRepo,
			pulse:         inmemdb.NewPulseRepository(db),
			alerts:        inmemdb.NewAlertRepository(db),
			interventions: inmemdb.NewInterventionRepository(db),
			notifications: inmemdb.NewNotificationRepository(db),
			recipient:     schoolRepo,
		}, func() {}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}

	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	return &repoSet{
		school:        schoolRepo,
		pulse:         sqlxrepos.NewPulseRepository(db),
		alerts:        sqlxrepos.NewAlertRepository(db),
		interventions: sqlxrepos.NewInterventionRepository(db),
		notifications: sqlxrepos.NewNotificationRepository(db),
		recipient:     schoolRepo,
	}, func() { _ = db.Close() }, nil
}
