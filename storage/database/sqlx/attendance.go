package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/attendance"
)

type (
	attendanceRow struct {
		ID                       string      `db:"id"`
		StudentID                string      `db:"student_id"`
		SessionID                string      `db:"session_id"`
		Status                   string      `db:"status"`
		Comment                  null.String `db:"comment"`
		JustificationText        null.String `db:"justification_text"`
		JustificationSubmittedAt null.Time   `db:"justification_submitted_at"`
		JustificationStatus      string      `db:"justification_status"`
		JustificationReviewedAt  null.Time   `db:"justification_reviewed_at"`
		JustificationReviewedBy  null.String `db:"justification_reviewed_by"`
		CreatedAt                time.Time   `db:"created_at"`
		UpdatedAt                time.Time   `db:"updated_at"`
	}

	tokenRow struct {
		ID          string    `db:"id"`
		StudentID   string    `db:"student_id"`
		SessionID   string    `db:"session_id"`
		Token       string    `db:"token"`
		SessionCode string    `db:"session_code"`
		Latitude    float64   `db:"latitude"`
		Longitude   float64   `db:"longitude"`
		CreatedAt   time.Time `db:"created_at"`
		ExpiresAt   time.Time `db:"expires_at"`
		Used        bool      `db:"used"`
		UsedAt      null.Time `db:"used_at"`
	}
)

func (r attendanceRow) unrow() attendance.Attendance {
	return attendance.Attendance{
		ID:        r.ID,
		StudentID: r.StudentID,
		SessionID: r.SessionID,
		Status:    attendance.Status(r.Status),
		Comment:   r.Comment.String,
		Justification: attendance.Justification{
			Text:        r.JustificationText.String,
			SubmittedAt: r.JustificationSubmittedAt.Time,
			Status:      attendance.JustificationStatus(r.JustificationStatus),
			ReviewedAt:  r.JustificationReviewedAt.Time,
			ReviewedBy:  r.JustificationReviewedBy.String,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r tokenRow) unrow() attendance.Token {
	return attendance.Token{
		ID:          r.ID,
		StudentID:   r.StudentID,
		SessionID:   r.SessionID,
		Token:       r.Token,
		SessionCode: r.SessionCode,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		Used:        r.Used,
		UsedAt:      r.UsedAt.Time,
	}
}

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	q := `INSERT INTO attendance
		(id, student_id, session_id, status, comment,
		 justification_text, justification_submitted_at, justification_status,
		 justification_reviewed_at, justification_reviewed_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	jst := att.Justification
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		att.ID, att.StudentID, att.SessionID, string(att.Status),
		null.NewString(att.Comment, att.Comment != ""),
		null.NewString(jst.Text, jst.Text != ""),
		null.NewTime(jst.SubmittedAt.UTC(), !jst.SubmittedAt.IsZero()),
		string(jst.Status),
		null.NewTime(jst.ReviewedAt.UTC(), !jst.ReviewedAt.IsZero()),
		null.NewString(jst.ReviewedBy, jst.ReviewedBy != ""),
		att.CreatedAt.UTC(), att.UpdatedAt.UTC())
	if err != nil {
		return attendance.Attendance{}, trapUniqueErr(err,
			core.ConflictErr("attendance record already exists for this student and session"),
			"inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q := `UPDATE attendance SET
		status                     = $2,
		comment                    = $3,
		justification_text         = $4,
		justification_submitted_at = $5,
		justification_status       = $6,
		justification_reviewed_at  = $7,
		justification_reviewed_by  = $8,
		updated_at                 = $9
		WHERE id = $1`
	jst := att.Justification
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		att.ID, string(att.Status),
		null.NewString(att.Comment, att.Comment != ""),
		null.NewString(jst.Text, jst.Text != ""),
		null.NewTime(jst.SubmittedAt.UTC(), !jst.SubmittedAt.IsZero()),
		string(jst.Status),
		null.NewTime(jst.ReviewedAt.UTC(), !jst.ReviewedAt.IsZero()),
		null.NewString(jst.ReviewedBy, jst.ReviewedBy != ""),
		att.UpdatedAt.UTC())
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return att, nil
}

func (repo attendanceRepository) getOneAttendance(ctx context.Context, exe core.DBExecutor, q string, args ...interface{}) (attendance.Attendance, error) {
	var rows []attendanceRow
	if err := queryAll(ctx, exe, &rows, q, args...); err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "finding attendance")
	}
	if len(rows) == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return rows[0].unrow(), nil
}

func (repo attendanceRepository) GetAttendanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q := `SELECT * FROM attendance WHERE id = $1`
	return repo.getOneAttendance(ctx, getExec(repo.exec, exec), q, id)
}

func (repo attendanceRepository) GetAttendanceForStudentSession(ctx context.Context, studentID, sessionID string, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q := `SELECT * FROM attendance WHERE student_id = $1 AND session_id = $2`
	return repo.getOneAttendance(ctx, getExec(repo.exec, exec), q, studentID, sessionID)
}

var errTokenNotFound = core.NotFoundErr("token not found")

func (repo attendanceRepository) CreateToken(ctx context.Context, tok attendance.Token, exec ...core.DBExecutor) (attendance.Token, error) {
	tok.ID = uuid.New().String()
	q := `INSERT INTO attendance_token
		(id, student_id, session_id, token, session_code, latitude, longitude, created_at, expires_at, used, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		tok.ID, tok.StudentID, tok.SessionID, tok.Token, tok.SessionCode,
		tok.Latitude, tok.Longitude, tok.CreatedAt.UTC(), tok.ExpiresAt.UTC(),
		tok.Used, null.NewTime(tok.UsedAt.UTC(), !tok.UsedAt.IsZero()))
	if err != nil {
		return attendance.Token{}, trapUniqueErr(err, attendance.ErrTokenPending, "inserting token")
	}
	return tok, nil
}

func (repo attendanceRepository) DeleteExpiredTokens(ctx context.Context, studentID, sessionID string, now time.Time, exec ...core.DBExecutor) error {
	q := `DELETE FROM attendance_token
		WHERE student_id = $1 AND session_id = $2 AND NOT used AND expires_at <= $3`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, studentID, sessionID, now.UTC()); err != nil {
		return errors.Wrap(err, "deleting expired tokens")
	}
	return nil
}

func (repo attendanceRepository) UpdateToken(ctx context.Context, tok attendance.Token, exec ...core.DBExecutor) (attendance.Token, error) {
	q := `UPDATE attendance_token SET used = $2, used_at = $3 WHERE id = $1`
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		tok.ID, tok.Used, null.NewTime(tok.UsedAt.UTC(), !tok.UsedAt.IsZero()))
	if err != nil {
		return attendance.Token{}, errors.Wrap(err, "updating token")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Token{}, errTokenNotFound
	}
	return tok, nil
}

func (repo attendanceRepository) getOneToken(ctx context.Context, exe core.DBExecutor, q string, args ...interface{}) (attendance.Token, error) {
	var rows []tokenRow
	if err := queryAll(ctx, exe, &rows, q, args...); err != nil {
		return attendance.Token{}, errors.Wrap(err, "finding token")
	}
	if len(rows) == 0 {
		return attendance.Token{}, errTokenNotFound
	}
	return rows[0].unrow(), nil
}

func (repo attendanceRepository) GetUsableToken(ctx context.Context, studentID, sessionID string, now time.Time, exec ...core.DBExecutor) (attendance.Token, error) {
	q := `SELECT * FROM attendance_token
		WHERE student_id = $1 AND session_id = $2 AND NOT used AND expires_at > $3`
	return repo.getOneToken(ctx, getExec(repo.exec, exec), q, studentID, sessionID, now.UTC())
}

func (repo attendanceRepository) GetUsableTokenByString(ctx context.Context, token string, now time.Time, exec ...core.DBExecutor) (attendance.Token, error) {
	q := `SELECT * FROM attendance_token WHERE token = $1 AND NOT used AND expires_at > $2`
	return repo.getOneToken(ctx, getExec(repo.exec, exec), q, token, now.UTC())
}

func (repo attendanceRepository) TokenStringExists(ctx context.Context, token string, exec ...core.DBExecutor) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM attendance_token WHERE token = $1)`
	exists, err := queryExists(ctx, getExec(repo.exec, exec), q, token)
	if err != nil {
		return false, errors.Wrap(err, "checking token existence")
	}
	return exists, nil
}

func (repo attendanceRepository) DeleteStaleTokens(ctx context.Context, now, usedBefore time.Time, exec ...core.DBExecutor) (int, error) {
	q := `DELETE FROM attendance_token
		WHERE (NOT used AND expires_at < $1) OR (used AND used_at < $2)`
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, now.UTC(), usedBefore.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "deleting stale tokens")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting stale tokens")
	}
	return int(n), nil
}
