package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/schedule"
)

// fixture is the minimal academic chain a timetable hangs off:
// class -> sections, class -> semester -> assignment -> timetable.
type fixture struct {
	class      academic.Class
	sections   []academic.Section
	semester   academic.Semester
	assignment academic.Assignment
	timetable  schedule.TimeTable
}

func weekdayPtr(wd time.Weekday) *time.Weekday { return &wd }

func createFixture(t *testing.T, env testEnv, wd *time.Weekday, semStart, semEnd time.Time) fixture {
	t.Helper()
	ctx := context.Background()

	cls, err := env.acadRepo.CreateClass(ctx, academic.Class{Name: "CS-2"})
	assert.NoError(t, err)
	secA, err := env.acadRepo.CreateSection(ctx, academic.Section{ClassID: cls.ID, Name: "A"})
	assert.NoError(t, err)
	secB, err := env.acadRepo.CreateSection(ctx, academic.Section{ClassID: cls.ID, Name: "B"})
	assert.NoError(t, err)
	sem, err := env.acadRepo.CreateSemester(ctx, academic.Semester{
		ClassID: cls.ID, Name: "S1", StartDate: semStart, EndDate: semEnd,
	})
	assert.NoError(t, err)
	asg, err := env.acadRepo.CreateAssignment(ctx, academic.Assignment{SemesterID: sem.ID})
	assert.NoError(t, err)
	tt, err := env.schedRepo.CreateTimeTable(ctx, schedule.TimeTable{
		AssignmentID: asg.ID,
		Weekday:      wd,
		StartTime:    schedule.TimeOfDay{Hour: 8},
		EndTime:      schedule.TimeOfDay{Hour: 10},
	})
	assert.NoError(t, err)

	return fixture{
		class:      cls,
		sections:   []academic.Section{secA, secB},
		semester:   sem,
		assignment: asg,
		timetable:  tt,
	}
}

type deniedLocker struct{ core.NoopLocker }

func (deniedLocker) Lock(context.Context, string, time.Duration) (bool, error) { return false, nil }

func TestService_GenerateForTimeTable(t *testing.T) {
	ctx := context.Background()
	// 2026-03-02 and 2026-03-09 are Mondays
	start, end := date(2026, 3, 2), date(2026, 3, 15)

	t.Run("one session per matching workday", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

		created, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.NoError(t, err)
		assert.Len(t, created, 2)

		assert.Equal(t, date(2026, 3, 2), created[0].Date)
		assert.Equal(t, date(2026, 3, 9), created[1].Date)
		for _, sess := range created {
			assert.Equal(t, fix.timetable.ID, sess.TimeTableID)
			assert.Equal(t, schedule.SessionRegular, sess.Type)
			assert.Equal(t, schedule.TimeOfDay{Hour: 8}, sess.StartTime)
			assert.Equal(t, schedule.TimeOfDay{Hour: 10}, sess.EndTime)
			assert.ElementsMatch(t, []string{fix.sections[0].ID, fix.sections[1].ID}, sess.SectionIDs)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

		created, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.NoError(t, err)
		assert.Len(t, created, 2)

		created, err = env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("weekend weekday yields nothing", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Saturday), start, end)

		created, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("weekday unset", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, nil, start, end)

		_, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.Equal(t, schedule.ErrWeekdayUnset, err)
	})

	t.Run("unknown timetable", func(t *testing.T) {
		env := setup(t)
		_, err := env.svc.GenerateForTimeTable(ctx, "nope", start, end)
		assert.Equal(t, schedule.ErrTimeTableNotFound, err)
	})

	t.Run("generation already running", func(t *testing.T) {
		env := setup(t, deniedLocker{})
		fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

		_, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.Equal(t, schedule.ErrGenerationRunning, err)
	})

	t.Run("holiday excluded", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

		_, err := env.schedRepo.CreateDay(ctx, schedule.CalendarDay{
			Date:    date(2026, 3, 9),
			Weekday: time.Monday,
			DayType: schedule.DayTypeHoliday,
		})
		assert.NoError(t, err)

		created, err := env.svc.GenerateForTimeTable(ctx, fix.timetable.ID, start, end)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, date(2026, 3, 2), created[0].Date)
	})
}

func TestService_GenerateForAssignment(t *testing.T) {
	ctx := context.Background()
	start, end := date(2026, 3, 2), date(2026, 3, 8)

	env := setup(t)
	fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

	// second timetable on the same assignment
	_, err := env.schedRepo.CreateTimeTable(ctx, schedule.TimeTable{
		AssignmentID: fix.assignment.ID,
		Weekday:      weekdayPtr(time.Wednesday),
		StartTime:    schedule.TimeOfDay{Hour: 14},
		EndTime:      schedule.TimeOfDay{Hour: 16},
	})
	assert.NoError(t, err)

	created, err := env.svc.GenerateForAssignment(ctx, fix.assignment.ID, start, end)
	assert.NoError(t, err)
	assert.Len(t, created, 2)

	_, err = env.svc.GenerateForAssignment(ctx, "nope", start, end)
	assert.Equal(t, academic.ErrAssignmentNotFound, err)
}

func TestService_GenerateForSemester(t *testing.T) {
	ctx := context.Background()

	t.Run("range from semester bounds", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Monday), date(2026, 3, 2), date(2026, 3, 15))

		created, err := env.svc.GenerateForSemester(ctx, fix.semester.ID)
		assert.NoError(t, err)
		assert.Len(t, created, 2)
	})

	t.Run("unbounded semester", func(t *testing.T) {
		env := setup(t)
		fix := createFixture(t, env, weekdayPtr(time.Monday), time.Time{}, time.Time{})

		_, err := env.svc.GenerateForSemester(ctx, fix.semester.ID)
		assert.Equal(t, schedule.ErrSemesterUnbounded, err)
	})
}

func TestService_GenerateForClass(t *testing.T) {
	ctx := context.Background()
	start, end := date(2026, 3, 2), date(2026, 3, 8)

	env := setup(t)
	fix := createFixture(t, env, weekdayPtr(time.Monday), start, end)

	created, err := env.svc.GenerateForClass(ctx, fix.class.ID, start, end)
	assert.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestService_GenerateForInstitution(t *testing.T) {
	ctx := context.Background()
	start, end := date(2026, 3, 2), date(2026, 3, 8)

	env := setup(t)

	inst, err := env.acadRepo.CreateInstitution(ctx, academic.Institution{Name: "UniK"})
	assert.NoError(t, err)
	dep, err := env.acadRepo.CreateDepartment(ctx, academic.Department{InstitutionID: inst.ID, Name: "Sciences"})
	assert.NoError(t, err)
	mjr, err := env.acadRepo.CreateMajor(ctx, academic.Major{DepartmentID: dep.ID, Name: "CS"})
	assert.NoError(t, err)
	cls, err := env.acadRepo.CreateClass(ctx, academic.Class{MajorID: mjr.ID, Name: "CS-2"})
	assert.NoError(t, err)
	_, err = env.acadRepo.CreateSection(ctx, academic.Section{ClassID: cls.ID, Name: "A"})
	assert.NoError(t, err)
	sem, err := env.acadRepo.CreateSemester(ctx, academic.Semester{ClassID: cls.ID, Name: "S1"})
	assert.NoError(t, err)
	asg, err := env.acadRepo.CreateAssignment(ctx, academic.Assignment{SemesterID: sem.ID})
	assert.NoError(t, err)
	_, err = env.schedRepo.CreateTimeTable(ctx, schedule.TimeTable{
		AssignmentID: asg.ID,
		Weekday:      weekdayPtr(time.Monday),
		StartTime:    schedule.TimeOfDay{Hour: 8},
		EndTime:      schedule.TimeOfDay{Hour: 10},
	})
	assert.NoError(t, err)

	created, err := env.svc.GenerateForInstitution(ctx, inst.ID, start, end)
	assert.NoError(t, err)
	assert.Len(t, created, 1)

	_, err = env.svc.GenerateForInstitution(ctx, "nope", start, end)
	assert.Equal(t, academic.ErrInstitutionNotFound, err)
}
