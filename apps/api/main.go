package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/youbihi/attest/apps/api/echo"
	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/attendance"
	"github.com/youbihi/attest/core/schedule"
	"github.com/youbihi/attest/core/user"
	emailsvc "github.com/youbihi/attest/services/email"
	locksvc "github.com/youbihi/attest/services/lock"
	logsvc "github.com/youbihi/attest/services/logger"
	"github.com/youbihi/attest/storage/database"
	sqlxrepos "github.com/youbihi/attest/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

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

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var locker core.Locker = core.NoopLocker{}
	if redisLocker, err := locksvc.NewRedisLocker(conf); err != nil {
		logger.Warn(fmt.Sprintf("redis unavailable, session generation will not be coordinated: %v", err))
	} else {
		locker = redisLocker
		defer redisLocker.Close() //nolint:errcheck
	}

	academicRepo := sqlxrepos.NewAcademicRepository(db)
	scheduleRepo := sqlxrepos.NewScheduleRepository(db)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	acadSvc := academic.NewService(academicRepo)
	schedSvc := schedule.NewService(db, scheduleRepo, scheduleRepo, scheduleRepo, academicRepo, locker, logger)
	attSvc := attendance.NewService(
		db,
		sqlxrepos.NewAttendanceRepository(db),
		scheduleRepo,
		scheduleRepo,
		academicRepo,
		mailSvc,
		logger,
		conf.Attendance,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			AcademicSvc:   acadSvc,
			ScheduleSvc:   schedSvc,
			AttendanceSvc: attSvc,
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

func setUpDB(conf *core.Config) (*database.DB, error) {
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
