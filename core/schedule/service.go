package schedule

import (
	"context"
	"time"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrTimeTableNotFound = core.NotFoundErr("timetable not found")
	ErrSessionNotFound   = core.NotFoundErr("session not found")
	ErrDayNotFound       = core.NotFoundErr("calendar day not found")
	ErrInvalidRange      = core.InvalidInputErr("start date is after end date")
	ErrWeekdayUnset      = core.InvalidStateErr("timetable has no day of week set")
	ErrSemesterUnbounded = core.InvalidStateErr("semester start and end dates are not set")
	ErrGenerationRunning = core.ConflictErr("session generation already running for this timetable")
)

type (
	TimeTableRepository interface {
		CreateTimeTable(ctx context.Context, tt TimeTable, exec ...core.DBExecutor) (TimeTable, error)
		GetTimeTableByID(ctx context.Context, id string, exec ...core.DBExecutor) (TimeTable, error)
		FilterTimeTablesByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]TimeTable, error)
		UpdateTimeTable(ctx context.Context, tt TimeTable, exec ...core.DBExecutor) (TimeTable, error)
	}

	CalendarRepository interface {
		CreateDay(ctx context.Context, day CalendarDay, exec ...core.DBExecutor) (CalendarDay, error)
		GetDayByDate(ctx context.Context, date time.Time, exec ...core.DBExecutor) (CalendarDay, error)
		// FilterDaysInRange returns all days in [start, end] in ascending date order.
		FilterDaysInRange(ctx context.Context, start, end time.Time, exec ...core.DBExecutor) ([]CalendarDay, error)
	}

	SessionRepository interface {
		CreateSession(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
		GetSessionByID(ctx context.Context, id string, exec ...core.DBExecutor) (Session, error)
		// SessionExists is the generator's idempotence guard on the
		// (TimeTable, CalendarDay) pair; the storage layer backs it with a
		// unique constraint.
		SessionExists(ctx context.Context, timeTableID, calendarDayID string, exec ...core.DBExecutor) (bool, error)
		SaveSessionCode(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
	}

	// Service instantiates concrete sessions from recurring timetables and
	// a calendar of actual dates, and manages session codes.
	Service struct {
		db         core.DB
		timetables TimeTableRepository
		calendar   CalendarRepository
		sessions   SessionRepository
		academic   academic.Repository
		locker     core.Locker
		logger     core.Logger
	}
)

func NewService(
	db core.DB,
	timetables TimeTableRepository,
	calendar CalendarRepository,
	sessions SessionRepository,
	acad academic.Repository,
	locker core.Locker,
	logger core.Logger,
) *Service {
	if locker == nil {
		locker = core.NoopLocker{}
	}
	return &Service{
		db:         db,
		timetables: timetables,
		calendar:   calendar,
		sessions:   sessions,
		academic:   acad,
		locker:     locker,
		logger:     logger,
	}
}

func (svc *Service) CreateTimeTable(ctx context.Context, tt TimeTable) (TimeTable, error) {
	if err := tt.Validate(); err != nil {
		return TimeTable{}, err
	}
	now := nowFunc().UTC()
	tt.CreatedAt = now
	tt.UpdatedAt = now
	return svc.timetables.CreateTimeTable(ctx, tt)
}

func (svc *Service) UpdateTimeTable(ctx context.Context, tt TimeTable) (TimeTable, error) {
	if err := tt.Validate(); err != nil {
		return TimeTable{}, err
	}
	tt.UpdatedAt = nowFunc().UTC()
	return svc.timetables.UpdateTimeTable(ctx, tt)
}

func (svc *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return svc.sessions.GetSessionByID(ctx, id)
}
