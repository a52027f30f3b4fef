package main

import (
	"log"
	"os"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/attendance"
	"github.com/youbihi/attest/core/schedule"
	emailsvc "github.com/youbihi/attest/services/email"
	locksvc "github.com/youbihi/attest/services/lock"
	logsvc "github.com/youbihi/attest/services/logger"
	"github.com/youbihi/attest/storage/database"
	sqlxrepos "github.com/youbihi/attest/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig()
	errAndDie(err)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	svcLogger := logsvc.NewStdLogger(logger)

	var locker core.Locker = core.NoopLocker{}
	if redisLocker, err := locksvc.NewRedisLocker(conf); err != nil {
		logger.Printf("redis unavailable, session generation will not be coordinated: %v", err)
	} else {
		locker = redisLocker
		defer redisLocker.Close() //nolint:errcheck
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	academicRepo := sqlxrepos.NewAcademicRepository(db)
	scheduleRepo := sqlxrepos.NewScheduleRepository(db)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		schedSvc: schedule.NewService(
			db, scheduleRepo, scheduleRepo, scheduleRepo, academicRepo, locker, svcLogger,
		),
		attSvc: attendance.NewService(
			db,
			sqlxrepos.NewAttendanceRepository(db),
			scheduleRepo,
			scheduleRepo,
			academicRepo,
			emailsvc.NewConsoleService(),
			svcLogger,
			conf.Attendance,
		),
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
