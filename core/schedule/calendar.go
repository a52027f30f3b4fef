package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
)

// EnsureCalendarRange guarantees a calendar entry exists for every date in
// [start, end] inclusive: WEEKEND for Saturday/Sunday, WORKDAY otherwise.
// Existing entries (including administration-set holidays) are never
// overwritten. Returns the number of entries created; idempotent.
func (svc *Service) EnsureCalendarRange(ctx context.Context, start, end time.Time) (int, error) {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return 0, ErrInvalidRange
	}

	var created int
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		existing, err := svc.calendar.FilterDaysInRange(ctx, start, end, tx)
		if err != nil {
			return errors.Wrap(err, "listing calendar days")
		}
		have := make(map[time.Time]struct{}, len(existing))
		for _, day := range existing {
			have[day.Date] = struct{}{}
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if _, ok := have[d]; ok {
				continue
			}
			day := CalendarDay{
				Date:      d,
				Weekday:   d.Weekday(),
				DayType:   dayTypeFor(d.Weekday()),
				CreatedAt: nowFunc().UTC(),
			}
			if _, err := svc.calendar.CreateDay(ctx, day, tx); err != nil {
				return errors.Wrapf(err, "creating calendar day %s", d.Format("2006-01-02"))
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func dayTypeFor(wd time.Weekday) DayType {
	if wd == time.Saturday || wd == time.Sunday {
		return DayTypeWeekend
	}
	return DayTypeWorkday
}
