package schedule_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/schedule"
	logsvc "github.com/youbihi/attest/services/logger"
	inmemdb "github.com/youbihi/attest/storage/database/inmem"
)

type testEnv struct {
	db        *inmemdb.DB
	svc       *schedule.Service
	schedRepo interface {
		schedule.TimeTableRepository
		schedule.CalendarRepository
		schedule.SessionRepository
	}
	acadRepo academic.Repository
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T, locker ...core.Locker) testEnv {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	lck := core.Locker(core.NoopLocker{})
	if len(locker) > 0 {
		lck = locker[0]
	}
	schedRepo := inmemdb.NewScheduleRepository(db)
	acadRepo := inmemdb.NewAcademicRepository(db)
	svc := schedule.NewService(
		db, schedRepo, schedRepo, schedRepo, acadRepo, lck,
		logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
	)
	return testEnv{db: db, svc: svc, schedRepo: schedRepo, acadRepo: acadRepo}
}

func TestService_EnsureCalendarRange(t *testing.T) {
	ctx := context.Background()

	t.Run("start after end", func(t *testing.T) {
		env := setup(t)
		_, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 8), date(2026, 3, 2))
		assert.Equal(t, schedule.ErrInvalidRange, err)
	})

	t.Run("full week classified", func(t *testing.T) {
		env := setup(t)
		// 2026-03-02 is a Monday
		created, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 8))
		assert.NoError(t, err)
		assert.Equal(t, 7, created)

		mon, err := env.schedRepo.GetDayByDate(ctx, date(2026, 3, 2))
		assert.NoError(t, err)
		assert.Equal(t, schedule.DayTypeWorkday, mon.DayType)
		assert.Equal(t, time.Monday, mon.Weekday)

		sat, err := env.schedRepo.GetDayByDate(ctx, date(2026, 3, 7))
		assert.NoError(t, err)
		assert.Equal(t, schedule.DayTypeWeekend, sat.DayType)

		sun, err := env.schedRepo.GetDayByDate(ctx, date(2026, 3, 8))
		assert.NoError(t, err)
		assert.Equal(t, schedule.DayTypeWeekend, sun.DayType)
	})

	t.Run("single day", func(t *testing.T) {
		env := setup(t)
		created, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 2))
		assert.NoError(t, err)
		assert.Equal(t, 1, created)
	})

	t.Run("idempotent", func(t *testing.T) {
		env := setup(t)
		created, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 8))
		assert.NoError(t, err)
		assert.Equal(t, 7, created)

		created, err = env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 8))
		assert.NoError(t, err)
		assert.Equal(t, 0, created)
	})

	t.Run("existing holiday preserved", func(t *testing.T) {
		env := setup(t)
		_, err := env.schedRepo.CreateDay(ctx, schedule.CalendarDay{
			Date:        date(2026, 3, 4),
			Weekday:     time.Wednesday,
			DayType:     schedule.DayTypeHoliday,
			HolidayName: "Founders' Day",
		})
		assert.NoError(t, err)

		created, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 8))
		assert.NoError(t, err)
		assert.Equal(t, 6, created)

		day, err := env.schedRepo.GetDayByDate(ctx, date(2026, 3, 4))
		assert.NoError(t, err)
		assert.Equal(t, schedule.DayTypeHoliday, day.DayType)
		assert.Equal(t, "Founders' Day", day.HolidayName)
	})

	t.Run("overlapping ranges fill the gap", func(t *testing.T) {
		env := setup(t)
		created, err := env.svc.EnsureCalendarRange(ctx, date(2026, 3, 2), date(2026, 3, 4))
		assert.NoError(t, err)
		assert.Equal(t, 3, created)

		created, err = env.svc.EnsureCalendarRange(ctx, date(2026, 3, 3), date(2026, 3, 6))
		assert.NoError(t, err)
		assert.Equal(t, 2, created)
	})
}
