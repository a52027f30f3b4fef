package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
)

func TestService_SubmitJustification(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an absent record when none exists", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		att, err := e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "was at the hospital")
		assert.NoError(t, err)
		assert.Equal(t, StatusAbsent, att.Status)
		assert.Equal(t, JustificationPending, att.Justification.Status)
		assert.Equal(t, "was at the hospital", att.Justification.Text)
		assert.Equal(t, testBase, att.Justification.SubmittedAt)
	})

	t.Run("moves an existing absence to pending", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusLate,
			Justification: Justification{
				Status: JustificationNotSubmitted,
			},
		})
		assert.NoError(t, err)

		att, err := e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "bus broke down")
		assert.NoError(t, err)
		assert.Equal(t, StatusLate, att.Status)
		assert.Equal(t, JustificationPending, att.Justification.Status)
	})

	t.Run("resubmission replaces a rejected justification", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusAbsent,
			Justification: Justification{
				Text:   "first try",
				Status: JustificationRejected,
			},
		})
		assert.NoError(t, err)

		att, err := e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "second try")
		assert.NoError(t, err)
		assert.Equal(t, JustificationPending, att.Justification.Status)
		assert.Equal(t, "second try", att.Justification.Text)
	})

	t.Run("rejections", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "   ")
		assert.Equal(t, ErrBlankJustification, err)

		_, err = e.svc.SubmitJustification(ctx, "nope", testSessionID, "reason")
		assert.Equal(t, academic.ErrStudentNotFound, err)

		// present attendance cannot be justified
		_, err = e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusPresent,
		})
		assert.NoError(t, err)
		_, err = e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "reason")
		assert.Equal(t, ErrJustifyPresence, err)
	})

	t.Run("approved justification is final", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusExcused,
			Justification: Justification{
				Status: JustificationApproved,
			},
		})
		assert.NoError(t, err)

		_, err = e.svc.SubmitJustification(ctx, testStudentID, testSessionID, "more reasons")
		assert.Equal(t, ErrJustificationApproved, err)
	})
}

func submitPending(t *testing.T, e env) Attendance {
	t.Helper()
	att, err := e.svc.SubmitJustification(context.Background(), testStudentID, testSessionID, "was sick")
	assert.NoError(t, err)
	return att
}

func TestService_ReviewJustification(t *testing.T) {
	ctx := context.Background()

	t.Run("approve excuses the absence", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		att := submitPending(t, e)

		reviewed, err := e.svc.ReviewJustification(ctx, testProfessorID, att.ID, true, "")
		assert.NoError(t, err)
		assert.Equal(t, StatusExcused, reviewed.Status)
		assert.Equal(t, JustificationApproved, reviewed.Justification.Status)
		assert.Equal(t, testProfessorID, reviewed.Justification.ReviewedBy)
		assert.Equal(t, testBase, reviewed.Justification.ReviewedAt)
	})

	t.Run("reject keeps the absence and records the reason", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		att := submitPending(t, e)

		reviewed, err := e.svc.ReviewJustification(ctx, testProfessorID, att.ID, false, "no proof provided")
		assert.NoError(t, err)
		assert.Equal(t, StatusAbsent, reviewed.Status)
		assert.Equal(t, JustificationRejected, reviewed.Justification.Status)
		assert.Equal(t, "no proof provided", reviewed.Comment)
	})

	t.Run("reject appends to an existing comment", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		att := submitPending(t, e)

		att.Comment = "left early"
		_, err := e.repo.UpdateAttendance(ctx, att)
		assert.NoError(t, err)

		reviewed, err := e.svc.ReviewJustification(ctx, testProfessorID, att.ID, false, "no proof")
		assert.NoError(t, err)
		assert.Equal(t, "left early | no proof", reviewed.Comment)
	})

	t.Run("only pending justifications are reviewable", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		att := submitPending(t, e)

		_, err := e.svc.ReviewJustification(ctx, testProfessorID, att.ID, true, "")
		assert.NoError(t, err)

		_, err = e.svc.ReviewJustification(ctx, testProfessorID, att.ID, true, "")
		assert.Equal(t, ErrJustificationNotPending, err)
	})

	t.Run("reviewer must teach the session", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		att := submitPending(t, e)

		e.acad.professors["prof2"] = academic.Professor{ID: "prof2", Name: "Other Prof"}
		_, err := e.svc.ReviewJustification(ctx, "prof2", att.ID, true, "")
		assert.Equal(t, ErrNotSessionTeacher, err)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
	})

	t.Run("unknown references", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.svc.ReviewJustification(ctx, "nope", "att1", true, "")
		assert.Equal(t, academic.ErrProfessorNotFound, err)

		_, err = e.svc.ReviewJustification(ctx, testProfessorID, "nope", true, "")
		assert.Equal(t, ErrAttendanceNotFound, err)
	})
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("direct status overwrite", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		att, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusAbsent,
		})
		assert.NoError(t, err)

		updated, err := e.svc.SetStatus(ctx, testProfessorID, att.ID, StatusLate)
		assert.NoError(t, err)
		assert.Equal(t, StatusLate, updated.Status)
	})

	t.Run("excusing stamps the justification", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		att, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusAbsent,
		})
		assert.NoError(t, err)

		updated, err := e.svc.SetStatus(ctx, testProfessorID, att.ID, StatusExcused)
		assert.NoError(t, err)
		assert.Equal(t, StatusExcused, updated.Status)
		assert.Equal(t, JustificationApproved, updated.Justification.Status)
		assert.Equal(t, testProfessorID, updated.Justification.ReviewedBy)
	})

	t.Run("professor must teach the session", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		att, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusAbsent,
		})
		assert.NoError(t, err)

		e.acad.professors["prof2"] = academic.Professor{ID: "prof2"}
		_, err = e.svc.SetStatus(ctx, "prof2", att.ID, StatusPresent)
		assert.Equal(t, ErrNotSessionTeacher, err)
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"PRESENT", "ABSENT", "EXCUSED", "LATE"} {
		st, err := ParseStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}

	_, err := ParseStatus("present")
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
	_, err = ParseStatus("")
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
}
