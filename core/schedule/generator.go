package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
)

const generationLockTTL = time.Minute

// GenerateForTimeTable instantiates one session per WORKDAY calendar date in
// [start, end] matching the timetable's weekday, skipping pairs that already
// have a session. The roster is snapshotted from the sections of the academic
// class the owning semester belongs to. Newly created sessions are returned
// in ascending date order; pre-existing ones are never re-returned.
func (svc *Service) GenerateForTimeTable(ctx context.Context, timeTableID string, start, end time.Time) ([]Session, error) {
	tt, err := svc.timetables.GetTimeTableByID(ctx, timeTableID)
	if err != nil {
		return nil, err
	}
	if tt.Weekday == nil {
		return nil, ErrWeekdayUnset
	}

	if _, err = svc.EnsureCalendarRange(ctx, start, end); err != nil {
		return nil, err
	}

	sectionIDs, err := svc.resolveRoster(ctx, tt)
	if err != nil {
		return nil, err
	}

	ok, err := svc.locker.Lock(ctx, "sessiongen:"+timeTableID, generationLockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring generation lock")
	}
	if !ok {
		return nil, ErrGenerationRunning
	}
	defer func() { _ = svc.locker.Unlock(ctx, "sessiongen:"+timeTableID) }()

	var created []Session
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		days, err := svc.calendar.FilterDaysInRange(ctx, DateOf(start), DateOf(end), tx)
		if err != nil {
			return errors.Wrap(err, "listing calendar days")
		}
		for _, day := range days {
			if day.DayType != DayTypeWorkday || day.Weekday != *tt.Weekday {
				continue
			}
			exists, err := svc.sessions.SessionExists(ctx, tt.ID, day.ID, tx)
			if err != nil {
				return errors.Wrap(err, "checking session existence")
			}
			if exists {
				continue
			}
			sess := Session{
				TimeTableID:   tt.ID,
				CalendarDayID: day.ID,
				Date:          day.Date,
				StartTime:     tt.StartTime,
				EndTime:       tt.EndTime,
				Type:          SessionRegular,
				SectionIDs:    sectionIDs,
				CreatedAt:     nowFunc().UTC(),
			}
			sess, err = svc.sessions.CreateSession(ctx, sess, tx)
			if err != nil {
				return errors.Wrapf(err, "creating session on %s", day.Date.Format("2006-01-02"))
			}
			created = append(created, sess)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveRoster walks timetable -> assignment -> semester -> class and
// returns the IDs of all sections under that class.
func (svc *Service) resolveRoster(ctx context.Context, tt TimeTable) ([]string, error) {
	asg, err := svc.academic.GetAssignmentByID(ctx, tt.AssignmentID)
	if err != nil {
		return nil, err
	}
	sem, err := svc.academic.GetSemesterByID(ctx, asg.SemesterID)
	if err != nil {
		return nil, err
	}
	sections, err := svc.academic.FilterSectionsByClass(ctx, sem.ClassID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.ID)
	}
	return ids, nil
}

// GenerateForAssignment fans out to every timetable of the assignment.
func (svc *Service) GenerateForAssignment(ctx context.Context, assignmentID string, start, end time.Time) ([]Session, error) {
	if _, err := svc.academic.GetAssignmentByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	tts, err := svc.timetables.FilterTimeTablesByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	var all []Session
	for _, tt := range tts {
		created, err := svc.GenerateForTimeTable(ctx, tt.ID, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, created...)
	}
	return all, nil
}

// GenerateForSemester derives the range from the semester's own date bounds.
func (svc *Service) GenerateForSemester(ctx context.Context, semesterID string) ([]Session, error) {
	sem, err := svc.academic.GetSemesterByID(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	if sem.StartDate.IsZero() || sem.EndDate.IsZero() {
		return nil, ErrSemesterUnbounded
	}
	asgs, err := svc.academic.FilterAssignmentsBySemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	var all []Session
	for _, asg := range asgs {
		created, err := svc.GenerateForAssignment(ctx, asg.ID, sem.StartDate, sem.EndDate)
		if err != nil {
			return nil, err
		}
		all = append(all, created...)
	}
	return all, nil
}

// GenerateForClass fans out to every semester of the class over [start, end].
func (svc *Service) GenerateForClass(ctx context.Context, classID string, start, end time.Time) ([]Session, error) {
	sems, err := svc.academic.FilterSemestersByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	var all []Session
	for _, sem := range sems {
		asgs, err := svc.academic.FilterAssignmentsBySemester(ctx, sem.ID)
		if err != nil {
			return nil, err
		}
		for _, asg := range asgs {
			created, err := svc.GenerateForAssignment(ctx, asg.ID, start, end)
			if err != nil {
				return nil, err
			}
			all = append(all, created...)
		}
	}
	return all, nil
}

// GenerateForInstitution fans out to every class of the institution.
func (svc *Service) GenerateForInstitution(ctx context.Context, institutionID string, start, end time.Time) ([]Session, error) {
	if _, err := svc.academic.GetInstitutionByID(ctx, institutionID); err != nil {
		return nil, err
	}
	classes, err := svc.academic.FilterClassesByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	var all []Session
	for _, cls := range classes {
		created, err := svc.GenerateForClass(ctx, cls.ID, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, created...)
	}
	return all, nil
}
