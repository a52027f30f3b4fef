package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var (
	_ schedule.TimeTableRepository = (*scheduleRepository)(nil)
	_ schedule.CalendarRepository  = (*scheduleRepository)(nil)
	_ schedule.SessionRepository   = (*scheduleRepository)(nil)
)

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

// TimeTableRepository

func (repo *scheduleRepository) CreateTimeTable(_ context.Context, tt schedule.TimeTable, _ ...core.DBExecutor) (schedule.TimeTable, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tt.ID = uuid.New().String()
	repo.db.timetables[tt.ID] = &tt
	return tt, nil
}

func (repo *scheduleRepository) GetTimeTableByID(_ context.Context, id string, _ ...core.DBExecutor) (schedule.TimeTable, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tt, ok := repo.db.timetables[id]; ok {
		return *tt, nil
	}
	return schedule.TimeTable{}, schedule.ErrTimeTableNotFound
}

func (repo *scheduleRepository) FilterTimeTablesByAssignment(_ context.Context, assignmentID string, _ ...core.DBExecutor) ([]schedule.TimeTable, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var tts []schedule.TimeTable
	for _, tt := range repo.db.timetables {
		if tt.AssignmentID == assignmentID {
			tts = append(tts, *tt)
		}
	}
	return tts, nil
}

func (repo *scheduleRepository) UpdateTimeTable(_ context.Context, tt schedule.TimeTable, _ ...core.DBExecutor) (schedule.TimeTable, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.timetables[tt.ID]; !ok {
		return schedule.TimeTable{}, schedule.ErrTimeTableNotFound
	}
	repo.db.timetables[tt.ID] = &tt
	return tt, nil
}

// CalendarRepository

func (repo *scheduleRepository) CreateDay(_ context.Context, day schedule.CalendarDay, _ ...core.DBExecutor) (schedule.CalendarDay, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.days {
		if existing.Date.Equal(day.Date) {
			return schedule.CalendarDay{}, core.ConflictErr("calendar day already exists for this date")
		}
	}
	day.ID = uuid.New().String()
	repo.db.days[day.ID] = &day
	return day, nil
}

func (repo *scheduleRepository) GetDayByDate(_ context.Context, date time.Time, _ ...core.DBExecutor) (schedule.CalendarDay, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	date = schedule.DateOf(date)
	for _, day := range repo.db.days {
		if day.Date.Equal(date) {
			return *day, nil
		}
	}
	return schedule.CalendarDay{}, schedule.ErrDayNotFound
}

func (repo *scheduleRepository) FilterDaysInRange(_ context.Context, start, end time.Time, _ ...core.DBExecutor) ([]schedule.CalendarDay, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var days []schedule.CalendarDay
	for _, day := range repo.db.days {
		if !day.Date.Before(start) && !day.Date.After(end) {
			days = append(days, *day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

// SessionRepository

func (repo *scheduleRepository) CreateSession(_ context.Context, sess schedule.Session, _ ...core.DBExecutor) (schedule.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.sessions {
		if existing.TimeTableID == sess.TimeTableID && existing.CalendarDayID == sess.CalendarDayID {
			return schedule.Session{}, core.ConflictErr("session already exists for this timetable and day")
		}
	}
	sess.ID = uuid.New().String()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *scheduleRepository) GetSessionByID(_ context.Context, id string, _ ...core.DBExecutor) (schedule.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return schedule.Session{}, schedule.ErrSessionNotFound
}

func (repo *scheduleRepository) SessionExists(_ context.Context, timeTableID, calendarDayID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sess := range repo.db.sessions {
		if sess.TimeTableID == timeTableID && sess.CalendarDayID == calendarDayID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *scheduleRepository) SaveSessionCode(_ context.Context, sess schedule.Session, _ ...core.DBExecutor) (schedule.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.sessions[sess.ID]
	if !ok {
		return schedule.Session{}, schedule.ErrSessionNotFound
	}
	existing.Code = sess.Code
	existing.CodeIssuedAt = sess.CodeIssuedAt
	return *existing, nil
}
