package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/hapiedu/hapi/apps/api/echo"
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
	metricsvc "github.com/hapiedu/hapi/services/metrics"
	"github.com/hapiedu/hapi/storage/database"
	inmemdb "github.com/hapiedu/hapi/storage/database/inmem"
	sqlxrepos "github.com/hapiedu/hapi/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	repos, cleanup, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer cleanup()

	// set up services
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

	riskSvc := risk.NewService(conf, logger, risk.ServiceDeps{
		School:        repos.school,
		Pulse:         repos.pulse,
		Academic:      provider,
		Alerts:        repos.alerts,
		Interventions: repos.interventions,
		Demo:          repos.demo,
		Recorder:      metricsvc.NewPrometheusRecorder(),
	})
	notifSvc := notification.NewService(conf, logger, repos.notifications, mailSvc, repos.recipient)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	notification.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		RiskSvc:    riskSvc,
		NotifSvc:   notifSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
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
	demo          risk.DemoSource
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
			demo:          inmemdb.NewDemoSource(),
		}, func() {}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
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
		demo:          inmemdb.NewDemoSource(),
	}, func() { _ = db.Close() }, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
