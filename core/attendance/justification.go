package attendance

import (
	"context"

	"github.com/youbihi/attest/core"
)

var (
	ErrBlankJustification      = core.InvalidInputErr("justification text is required")
	ErrJustifyPresence         = core.InvalidStateErr("cannot justify an attendance marked present")
	ErrJustificationApproved   = core.InvalidStateErr("justification has already been approved")
	ErrJustificationNotPending = core.InvalidStateErr("justification is not pending review")
)

const commentSeparator = " | "

// SubmitJustification records a student's explanation for an absence and
// moves the justification to PENDING review. When no attendance row exists
// yet the student is recorded ABSENT first.
func (svc *Service) SubmitJustification(ctx context.Context, studentID, sessionID, text string) (Attendance, error) {
	text = core.CleanString(text)
	if text == "" {
		return Attendance{}, ErrBlankJustification
	}
	if _, err := svc.academic.GetStudentByID(ctx, studentID); err != nil {
		return Attendance{}, err
	}
	if _, err := svc.sessions.GetSessionByID(ctx, sessionID); err != nil {
		return Attendance{}, err
	}

	now := nowFunc().UTC()
	var att Attendance
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		var err error
		att, err = svc.repo.GetAttendanceForStudentSession(ctx, studentID, sessionID, tx)
		if err != nil {
			if core.KindOf(err) != core.KindNotFound {
				return err
			}
			att = Attendance{
				StudentID: studentID,
				SessionID: sessionID,
				Status:    StatusAbsent,
				Justification: Justification{
					Status: JustificationNotSubmitted,
				},
				CreatedAt: now,
				UpdatedAt: now,
			}
			att, err = svc.repo.CreateAttendance(ctx, att, tx)
			if err != nil {
				return err
			}
		}

		if att.Status == StatusPresent {
			return ErrJustifyPresence
		}
		if att.Justification.Status == JustificationApproved {
			return ErrJustificationApproved
		}

		att.Justification = Justification{
			Text:        text,
			SubmittedAt: now,
			Status:      JustificationPending,
		}
		att.UpdatedAt = now
		att, err = svc.repo.UpdateAttendance(ctx, att, tx)
		return err
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// ReviewJustification resolves a PENDING justification. Approval excuses the
// absence (status EXCUSED, justification APPROVED); rejection keeps ABSENT
// and appends the optional reason to the attendance comment. The reviewing
// professor must teach the session.
func (svc *Service) ReviewJustification(ctx context.Context, professorID, attendanceID string, approve bool, reason string) (Attendance, error) {
	if _, err := svc.academic.GetProfessorByID(ctx, professorID); err != nil {
		return Attendance{}, err
	}
	att, err := svc.repo.GetAttendanceByID(ctx, attendanceID)
	if err != nil {
		return Attendance{}, err
	}
	if err = svc.professorTeaches(ctx, professorID, att.SessionID); err != nil {
		return Attendance{}, err
	}

	now := nowFunc().UTC()
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		att, err = svc.repo.GetAttendanceByID(ctx, att.ID, tx)
		if err != nil {
			return err
		}
		if att.Justification.Status != JustificationPending {
			return ErrJustificationNotPending
		}

		if approve {
			att.Status = StatusExcused
			att.Justification.Status = JustificationApproved
		} else {
			att.Justification.Status = JustificationRejected
			if reason = core.CleanString(reason); reason != "" {
				if att.Comment != "" {
					att.Comment += commentSeparator
				}
				att.Comment += reason
			}
		}
		att.Justification.ReviewedAt = now
		att.Justification.ReviewedBy = professorID
		att.UpdatedAt = now

		att, err = svc.repo.UpdateAttendance(ctx, att, tx)
		return err
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// SetStatus lets a professor directly overwrite an attendance outcome, a
// manual shortcut parallel to the review path. Setting EXCUSED also stamps
// the justification APPROVED with the acting professor as reviewer.
func (svc *Service) SetStatus(ctx context.Context, professorID, attendanceID string, status Status) (Attendance, error) {
	if _, err := svc.academic.GetProfessorByID(ctx, professorID); err != nil {
		return Attendance{}, err
	}
	att, err := svc.repo.GetAttendanceByID(ctx, attendanceID)
	if err != nil {
		return Attendance{}, err
	}
	if err = svc.professorTeaches(ctx, professorID, att.SessionID); err != nil {
		return Attendance{}, err
	}

	now := nowFunc().UTC()
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		att, err = svc.repo.GetAttendanceByID(ctx, att.ID, tx)
		if err != nil {
			return err
		}
		att.Status = status
		if status == StatusExcused {
			att.Justification.Status = JustificationApproved
			att.Justification.ReviewedAt = now
			att.Justification.ReviewedBy = professorID
		}
		att.UpdatedAt = now
		att, err = svc.repo.UpdateAttendance(ctx, att, tx)
		return err
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}
