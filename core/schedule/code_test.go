package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youbihi/attest/core/schedule"
)

func createSession(t *testing.T, env testEnv) schedule.Session {
	t.Helper()
	ctx := context.Background()

	day, err := env.schedRepo.CreateDay(ctx, schedule.CalendarDay{
		Date:    date(2026, 3, 2),
		Weekday: time.Monday,
		DayType: schedule.DayTypeWorkday,
	})
	assert.NoError(t, err)

	sess, err := env.schedRepo.CreateSession(ctx, schedule.Session{
		TimeTableID:   "tt1",
		CalendarDayID: day.ID,
		Date:          day.Date,
		StartTime:     schedule.TimeOfDay{Hour: 8},
		EndTime:       schedule.TimeOfDay{Hour: 10},
		Type:          schedule.SessionRegular,
	})
	assert.NoError(t, err)
	return sess
}

func assertCodeFormat(t *testing.T, code string) {
	t.Helper()
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit %q", code, c)
	}
}

func TestService_IssueCode(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	sess := createSession(t, env)

	assert.False(t, sess.HasCode())

	issued, err := env.svc.IssueCode(ctx, sess.ID)
	assert.NoError(t, err)
	assertCodeFormat(t, issued.Code)
	assert.False(t, issued.CodeIssuedAt.IsZero())

	// issuing again is a no-op
	again, err := env.svc.IssueCode(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, issued.Code, again.Code)
	assert.Equal(t, issued.CodeIssuedAt, again.CodeIssuedAt)

	_, err = env.svc.IssueCode(ctx, "nope")
	assert.Equal(t, schedule.ErrSessionNotFound, err)
}

func TestService_RotateCode(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	sess := createSession(t, env)

	issued, err := env.svc.IssueCode(ctx, sess.ID)
	assert.NoError(t, err)

	rotated, err := env.svc.RotateCode(ctx, sess.ID)
	assert.NoError(t, err)
	assertCodeFormat(t, rotated.Code)
	assert.NotEqual(t, issued.Code, rotated.Code)

	stored, err := env.svc.GetSession(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, rotated.Code, stored.Code)

	_, err = env.svc.RotateCode(ctx, "nope")
	assert.Equal(t, schedule.ErrSessionNotFound, err)
}
