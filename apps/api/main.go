package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/EsdrasCaleb/moodle-mod-msteams/apps/api/echo"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
	emailsvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/email"
	eventsvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/events"
	logsvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/logger"
	remindersvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/reminder"
	"github.com/EsdrasCaleb/moodle-mod-msteams/storage/database"
	sqlxrepos "github.com/EsdrasCaleb/moodle-mod-msteams/storage/database/sqlx"
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

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// set up repositories
	instRepo := sqlxrepos.NewInstanceRepository(dbx)
	courseRepo := sqlxrepos.NewCourseRepository(dbx)
	completionRepo := sqlxrepos.NewCompletionRepository(dbx)
	eventRepo := sqlxrepos.NewEventRepository(dbx)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	dispatcher := eventsvc.NewDispatcher(logger)
	dispatcher.Subscribe(core.EventCourseModuleViewed, func(ctx context.Context, evt core.Event) error {
		logger.Info(fmt.Sprintf("%s: %s/%s by user %s", evt.Name, evt.ObjectTable, evt.ObjectID, evt.UserID))
		return nil
	})

	instSvc := msteams.NewService(
		instRepo,
		courseRepo,
		course.NewTracker(completionRepo),
		calendar.NewScheduler(eventRepo),
		dispatcher,
		conf,
	)

	reminder := remindersvc.NewService(conf, logger, mailSvc, eventRepo, courseRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators()
	core.ParseEmailTemplates(logger)

	if err = reminder.Start(); err != nil {
		logger.Fatal(fmt.Sprintf("starting reminder service: %v", err), err)
	}
	defer reminder.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress(), http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			InstanceSvc: instSvc,
			CourseRepo:  courseRepo,
			EventRepo:   eventRepo,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
