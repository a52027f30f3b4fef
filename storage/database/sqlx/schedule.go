package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/schedule"
)

type (
	// timetable times are stored as minutes since midnight.
	timetableRow struct {
		ID           string    `db:"id"`
		AssignmentID string    `db:"assignment_id"`
		Weekday      null.Int  `db:"weekday"`
		StartMin     int       `db:"start_min"`
		EndMin       int       `db:"end_min"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	calendarDayRow struct {
		ID          string      `db:"id"`
		Date        time.Time   `db:"date"`
		Weekday     int         `db:"weekday"`
		DayType     string      `db:"day_type"`
		HolidayName null.String `db:"holiday_name"`
		CreatedAt   time.Time   `db:"created_at"`
	}

	sessionRow struct {
		ID            string         `db:"id"`
		TimeTableID   string         `db:"timetable_id"`
		CalendarDayID string         `db:"calendar_day_id"`
		Date          time.Time      `db:"date"`
		StartMin      int            `db:"start_min"`
		EndMin        int            `db:"end_min"`
		Type          string         `db:"type"`
		Code          null.String    `db:"code"`
		CodeIssuedAt  null.Time      `db:"code_issued_at"`
		SectionIDs    pq.StringArray `db:"section_ids"`
		CreatedAt     time.Time      `db:"created_at"`
	}
)

func timeOfDayMinutes(t schedule.TimeOfDay) int { return t.Minutes() }

func minutesTimeOfDay(min int) schedule.TimeOfDay {
	return schedule.TimeOfDay{Hour: min / 60, Minute: min % 60}
}

func (r timetableRow) unrow() schedule.TimeTable {
	tt := schedule.TimeTable{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StartTime:    minutesTimeOfDay(r.StartMin),
		EndTime:      minutesTimeOfDay(r.EndMin),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Weekday.Valid {
		wd := time.Weekday(r.Weekday.Int)
		tt.Weekday = &wd
	}
	return tt
}

func (r calendarDayRow) unrow() schedule.CalendarDay {
	return schedule.CalendarDay{
		ID:          r.ID,
		Date:        schedule.DateOf(r.Date),
		Weekday:     time.Weekday(r.Weekday),
		DayType:     schedule.DayType(r.DayType),
		HolidayName: r.HolidayName.String,
		CreatedAt:   r.CreatedAt,
	}
}

func (r sessionRow) unrow() schedule.Session {
	return schedule.Session{
		ID:            r.ID,
		TimeTableID:   r.TimeTableID,
		CalendarDayID: r.CalendarDayID,
		Date:          schedule.DateOf(r.Date),
		StartTime:     minutesTimeOfDay(r.StartMin),
		EndTime:       minutesTimeOfDay(r.EndMin),
		Type:          schedule.SessionType(r.Type),
		Code:          r.Code.String,
		CodeIssuedAt:  r.CodeIssuedAt.Time,
		SectionIDs:    r.SectionIDs,
		CreatedAt:     r.CreatedAt,
	}
}

type scheduleRepository struct {
	exec core.DBExecutor
}

var (
	_ schedule.TimeTableRepository = (*scheduleRepository)(nil) // interface compliance check
	_ schedule.CalendarRepository  = (*scheduleRepository)(nil)
	_ schedule.SessionRepository   = (*scheduleRepository)(nil)
)

func NewScheduleRepository(exec core.DBExecutor) *scheduleRepository {
	return &scheduleRepository{exec: exec}
}

func weekdayArg(wd *time.Weekday) null.Int {
	if wd == nil {
		return null.Int{}
	}
	return null.IntFrom(int(*wd))
}

func (repo scheduleRepository) CreateTimeTable(ctx context.Context, tt schedule.TimeTable, exec ...core.DBExecutor) (schedule.TimeTable, error) {
	tt.ID = uuid.New().String()
	q := `INSERT INTO timetable (id, assignment_id, weekday, start_min, end_min, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		tt.ID, tt.AssignmentID, weekdayArg(tt.Weekday),
		timeOfDayMinutes(tt.StartTime), timeOfDayMinutes(tt.EndTime),
		tt.CreatedAt.UTC(), tt.UpdatedAt.UTC())
	if err != nil {
		return schedule.TimeTable{}, errors.Wrap(err, "inserting timetable")
	}
	return tt, nil
}

func (repo scheduleRepository) GetTimeTableByID(ctx context.Context, id string, exec ...core.DBExecutor) (schedule.TimeTable, error) {
	var rows []timetableRow
	q := `SELECT * FROM timetable WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return schedule.TimeTable{}, errors.Wrap(err, "finding timetable")
	}
	if len(rows) == 0 {
		return schedule.TimeTable{}, schedule.ErrTimeTableNotFound
	}
	return rows[0].unrow(), nil
}

func (repo scheduleRepository) FilterTimeTablesByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]schedule.TimeTable, error) {
	var rows []timetableRow
	q := `SELECT * FROM timetable WHERE assignment_id = $1 ORDER BY weekday, start_min`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying timetables")
	}
	tts := make([]schedule.TimeTable, 0, len(rows))
	for _, r := range rows {
		tts = append(tts, r.unrow())
	}
	return tts, nil
}

func (repo scheduleRepository) UpdateTimeTable(ctx context.Context, tt schedule.TimeTable, exec ...core.DBExecutor) (schedule.TimeTable, error) {
	q := `UPDATE timetable SET
		assignment_id = $2,
		weekday       = $3,
		start_min     = $4,
		end_min       = $5,
		updated_at    = $6
		WHERE id = $1`
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		tt.ID, tt.AssignmentID, weekdayArg(tt.Weekday),
		timeOfDayMinutes(tt.StartTime), timeOfDayMinutes(tt.EndTime), tt.UpdatedAt.UTC())
	if err != nil {
		return schedule.TimeTable{}, errors.Wrap(err, "updating timetable")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.TimeTable{}, schedule.ErrTimeTableNotFound
	}
	return tt, nil
}

func (repo scheduleRepository) CreateDay(ctx context.Context, day schedule.CalendarDay, exec ...core.DBExecutor) (schedule.CalendarDay, error) {
	day.ID = uuid.New().String()
	q := `INSERT INTO calendar_day (id, date, weekday, day_type, holiday_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		day.ID, day.Date, int(day.Weekday), string(day.DayType),
		null.NewString(day.HolidayName, day.HolidayName != ""), day.CreatedAt.UTC())
	if err != nil {
		return schedule.CalendarDay{}, trapUniqueErr(err,
			core.ConflictErr("calendar day already exists for this date"),
			"inserting calendar day")
	}
	return day, nil
}

func (repo scheduleRepository) GetDayByDate(ctx context.Context, date time.Time, exec ...core.DBExecutor) (schedule.CalendarDay, error) {
	var rows []calendarDayRow
	q := `SELECT * FROM calendar_day WHERE date = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, schedule.DateOf(date)); err != nil {
		return schedule.CalendarDay{}, errors.Wrap(err, "finding calendar day")
	}
	if len(rows) == 0 {
		return schedule.CalendarDay{}, schedule.ErrDayNotFound
	}
	return rows[0].unrow(), nil
}

func (repo scheduleRepository) FilterDaysInRange(ctx context.Context, start, end time.Time, exec ...core.DBExecutor) ([]schedule.CalendarDay, error) {
	var rows []calendarDayRow
	q := `SELECT * FROM calendar_day WHERE date BETWEEN $1 AND $2 ORDER BY date`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, start, end); err != nil {
		return nil, errors.Wrap(err, "querying calendar days")
	}
	days := make([]schedule.CalendarDay, 0, len(rows))
	for _, r := range rows {
		days = append(days, r.unrow())
	}
	return days, nil
}

func (repo scheduleRepository) CreateSession(ctx context.Context, sess schedule.Session, exec ...core.DBExecutor) (schedule.Session, error) {
	sess.ID = uuid.New().String()
	q := `INSERT INTO session
		(id, timetable_id, calendar_day_id, date, start_min, end_min, type, code, code_issued_at, section_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		sess.ID, sess.TimeTableID, sess.CalendarDayID, sess.Date,
		timeOfDayMinutes(sess.StartTime), timeOfDayMinutes(sess.EndTime), string(sess.Type),
		null.NewString(sess.Code, sess.Code != ""),
		null.NewTime(sess.CodeIssuedAt.UTC(), !sess.CodeIssuedAt.IsZero()),
		pq.Array(sess.SectionIDs), sess.CreatedAt.UTC())
	if err != nil {
		return schedule.Session{}, trapUniqueErr(err,
			core.ConflictErr("session already exists for this timetable and day"),
			"inserting session")
	}
	return sess, nil
}

func (repo scheduleRepository) GetSessionByID(ctx context.Context, id string, exec ...core.DBExecutor) (schedule.Session, error) {
	var rows []sessionRow
	q := `SELECT * FROM session WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return schedule.Session{}, errors.Wrap(err, "finding session")
	}
	if len(rows) == 0 {
		return schedule.Session{}, schedule.ErrSessionNotFound
	}
	return rows[0].unrow(), nil
}

func (repo scheduleRepository) SessionExists(ctx context.Context, timeTableID, calendarDayID string, exec ...core.DBExecutor) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM session WHERE timetable_id = $1 AND calendar_day_id = $2)`
	exists, err := queryExists(ctx, getExec(repo.exec, exec), q, timeTableID, calendarDayID)
	if err != nil {
		return false, errors.Wrap(err, "checking session existence")
	}
	return exists, nil
}

func (repo scheduleRepository) SaveSessionCode(ctx context.Context, sess schedule.Session, exec ...core.DBExecutor) (schedule.Session, error) {
	q := `UPDATE session SET code = $2, code_issued_at = $3 WHERE id = $1`
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		sess.ID, null.NewString(sess.Code, sess.Code != ""),
		null.NewTime(sess.CodeIssuedAt.UTC(), !sess.CodeIssuedAt.IsZero()))
	if err != nil {
		return schedule.Session{}, errors.Wrap(err, "saving session code")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Session{}, schedule.ErrSessionNotFound
	}
	return sess, nil
}
