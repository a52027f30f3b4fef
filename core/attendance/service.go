package attendance

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/schedule"
)

const (
	defaultTokenExpiry        = 10 * time.Minute
	defaultWindowLead         = 5 * time.Minute
	defaultUsedTokenRetention = 7 * 24 * time.Hour

	tokenGenAttempts = 10
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrAttendanceNotFound = core.NotFoundErr("attendance record not found")
	ErrSessionCancelled   = core.InvalidStateErr("session is cancelled")
	ErrNotInRoster        = core.InvalidStateErr("student's section is not expected at this session")
	ErrNoSessionCode      = core.InvalidStateErr("no code has been issued for this session yet")
	ErrCodeMismatch       = core.InvalidStateErr("session code does not match")
	ErrOutsideWindow      = core.InvalidStateErr("outside the session's attendance window")
	ErrBlankCode          = core.InvalidInputErr("session code is required")
	ErrMissingCoordinates = core.InvalidInputErr("latitude and longitude are required")
	ErrBlankToken         = core.InvalidInputErr("token is required")
	ErrNoInstitution      = core.InvalidStateErr("student is not attached to an institution")
	ErrTokenPending       = core.ConflictErr("a valid token already exists for this session")
	ErrTokenInvalid       = core.InvalidStateErr("invalid or expired token")
	ErrTokenOwnership     = core.ForbiddenErr("token does not belong to this student")
	ErrNotSessionTeacher  = core.ForbiddenErr("professor does not teach this session")
	ErrTokenExhausted     = core.InternalErr("could not generate a unique token")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		GetAttendanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Attendance, error)
		// GetAttendanceForStudentSession enforces the one-row-per-(student,
		// session) invariant together with the storage-level unique constraint.
		GetAttendanceForStudentSession(ctx context.Context, studentID, sessionID string, exec ...core.DBExecutor) (Attendance, error)

		CreateToken(ctx context.Context, tok Token, exec ...core.DBExecutor) (Token, error)
		UpdateToken(ctx context.Context, tok Token, exec ...core.DBExecutor) (Token, error)
		// GetUsableToken returns the unused, unexpired token for (student,
		// session) as of now, if any.
		GetUsableToken(ctx context.Context, studentID, sessionID string, now time.Time, exec ...core.DBExecutor) (Token, error)
		GetUsableTokenByString(ctx context.Context, token string, now time.Time, exec ...core.DBExecutor) (Token, error)
		TokenStringExists(ctx context.Context, token string, exec ...core.DBExecutor) (bool, error)
		// DeleteExpiredTokens removes expired unused tokens for (student,
		// session); storage allows a single unused token per pair, so the
		// slot must be cleared before a reissue.
		DeleteExpiredTokens(ctx context.Context, studentID, sessionID string, now time.Time, exec ...core.DBExecutor) error
		// DeleteStaleTokens removes tokens expired as of now and used tokens
		// consumed before usedBefore; returns the number deleted.
		DeleteStaleTokens(ctx context.Context, now, usedBefore time.Time, exec ...core.DBExecutor) (int, error)
	}

	// Service implements the attendance verification protocol and the
	// attendance/justification state machine.
	Service struct {
		db         core.DB
		repo       Repository
		sessions   schedule.SessionRepository
		timetables schedule.TimeTableRepository
		academic   academic.Repository
		mail       core.EmailService
		logger     core.Logger

		tokenExpiry        time.Duration
		windowLead         time.Duration
		usedTokenRetention time.Duration
	}
)

func NewService(
	db core.DB,
	repo Repository,
	sessions schedule.SessionRepository,
	timetables schedule.TimeTableRepository,
	acad academic.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	conf core.AttendanceConfig,
) *Service {
	svc := &Service{
		db:                 db,
		repo:               repo,
		sessions:           sessions,
		timetables:         timetables,
		academic:           acad,
		mail:               mailSvc,
		logger:             logger,
		tokenExpiry:        conf.TokenExpiry,
		windowLead:         conf.WindowLead,
		usedTokenRetention: conf.UsedTokenRetention,
	}
	if svc.tokenExpiry <= 0 {
		svc.tokenExpiry = defaultTokenExpiry
	}
	if svc.windowLead <= 0 {
		svc.windowLead = defaultWindowLead
	}
	if svc.usedTokenRetention <= 0 {
		svc.usedTokenRetention = defaultUsedTokenRetention
	}
	return svc
}

// checkSessionOpen applies the validations shared by RequestToken and
// MarkDirect: session not cancelled, student's section in the roster, session
// code matching, and the current instant within [start - windowLead, end] on
// the session's own calendar date.
func (svc *Service) checkSessionOpen(std academic.Student, sess schedule.Session, sessionCode string, now time.Time) error {
	if sess.Type == schedule.SessionCancelled {
		return ErrSessionCancelled
	}
	if !sess.ExpectsSection(std.SectionID) {
		return ErrNotInRoster
	}
	if !sess.HasCode() {
		return ErrNoSessionCode
	}
	code := strings.TrimSpace(sessionCode)
	if code == "" {
		return ErrBlankCode
	}
	if code != sess.Code {
		return ErrCodeMismatch
	}
	windowStart := sess.StartsAt().Add(-svc.windowLead)
	windowEnd := sess.EndsAt()
	if now.Before(windowStart) || now.After(windowEnd) {
		return ErrOutsideWindow
	}
	return nil
}

// RequestToken validates a student's presence claim (section membership,
// session code, time window, geofence) and issues a single-use, time-limited
// token, dispatched out-of-band to the student's registered address.
func (svc *Service) RequestToken(ctx context.Context, studentID, sessionID, sessionCode string, lat, lon *float64) (Token, error) {
	std, err := svc.academic.GetStudentByID(ctx, studentID)
	if err != nil {
		return Token{}, err
	}
	sess, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Token{}, err
	}

	now := nowFunc().UTC()
	if err = svc.checkSessionOpen(std, sess, sessionCode, now); err != nil {
		return Token{}, err
	}

	if lat == nil || lon == nil {
		return Token{}, ErrMissingCoordinates
	}
	if std.InstitutionID == "" {
		return Token{}, ErrNoInstitution
	}
	inst, err := svc.academic.GetInstitutionByID(ctx, std.InstitutionID)
	if err != nil {
		return Token{}, err
	}
	dist := core.HaversineMeters(inst.Latitude, inst.Longitude, *lat, *lon)
	if dist > inst.RadiusMeters {
		return Token{}, &core.GeofenceError{DistanceMeters: dist, RadiusMeters: inst.RadiusMeters}
	}

	var tok Token
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if _, err := svc.repo.GetUsableToken(ctx, studentID, sessionID, now, tx); err == nil {
			return ErrTokenPending
		} else if core.KindOf(err) != core.KindNotFound {
			return err
		}
		// an expired token that was never used still occupies the pair's
		// unused-token slot
		if err := svc.repo.DeleteExpiredTokens(ctx, studentID, sessionID, now, tx); err != nil {
			return err
		}

		tokStr, err := svc.newTokenString(ctx, tx)
		if err != nil {
			return err
		}
		tok = Token{
			StudentID:   studentID,
			SessionID:   sessionID,
			Token:       tokStr,
			SessionCode: strings.TrimSpace(sessionCode),
			Latitude:    *lat,
			Longitude:   *lon,
			CreatedAt:   now,
			ExpiresAt:   now.Add(svc.tokenExpiry),
		}
		tok, err = svc.repo.CreateToken(ctx, tok, tx)
		return err
	})
	if err != nil {
		return Token{}, err
	}

	// dispatch is best-effort; the token stays valid even if the message
	// could not be sent.
	svc.dispatchToken(std, sess, tok)
	return tok, nil
}

// newTokenString generates a token string, retrying on the rare collision
// with an already-stored token.
func (svc *Service) newTokenString(ctx context.Context, exec core.DBExecutor) (string, error) {
	for i := 0; i < tokenGenAttempts; i++ {
		tokStr, err := makeTokenString()
		if err != nil {
			return "", err
		}
		exists, err := svc.repo.TokenStringExists(ctx, tokStr, exec)
		if err != nil {
			return "", err
		}
		if !exists {
			return tokStr, nil
		}
	}
	return "", ErrTokenExhausted
}

func (svc *Service) dispatchToken(std academic.Student, sess schedule.Session, tok Token) {
	if std.Email == "" {
		svc.logger.Warn(fmt.Sprintf("student %s has no email; attendance token not dispatched", std.ID))
		return
	}
	mins := int(time.Until(tok.ExpiresAt).Round(time.Minute) / time.Minute)
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject: "Your attendance confirmation token",
		TextContent: fmt.Sprintf(
			"Your attendance token for the %s - %s session on %s is:\r\n\r\n\t%s\r\n\r\nIt expires in %d minutes and can only be used once.",
			sess.StartTime, sess.EndTime, sess.Date.Format("Mon 02 Jan 2006"), tok.Token, mins,
		),
	}
	svc.mail.SendMessages(msg)
}

// ConfirmToken redeems an attendance token and flips the student's
// attendance for the bound session to PRESENT. Redemption is decoupled from
// the session window: an issued token is redeemable until its own expiry.
func (svc *Service) ConfirmToken(ctx context.Context, studentID, tokenString string) (Attendance, error) {
	tokenString = strings.ToUpper(core.CleanString(tokenString))
	if tokenString == "" {
		return Attendance{}, ErrBlankToken
	}

	now := nowFunc().UTC()
	var att Attendance
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		tok, err := svc.repo.GetUsableTokenByString(ctx, tokenString, now, tx)
		if err != nil {
			if core.KindOf(err) == core.KindNotFound {
				return ErrTokenInvalid
			}
			return err
		}
		if tok.StudentID != studentID {
			return ErrTokenOwnership
		}

		tok.Used = true
		tok.UsedAt = now
		if _, err = svc.repo.UpdateToken(ctx, tok, tx); err != nil {
			return errors.Wrap(err, "marking token used")
		}

		att, err = svc.upsertPresent(ctx, tok.StudentID, tok.SessionID, now, tx)
		return err
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// MarkDirect is the simpler non-geofenced flow: it applies the shared
// section/code/window validations and writes PRESENT directly, skipping
// geolocation and token issuance.
func (svc *Service) MarkDirect(ctx context.Context, studentID, sessionID, sessionCode string) (Attendance, error) {
	std, err := svc.academic.GetStudentByID(ctx, studentID)
	if err != nil {
		return Attendance{}, err
	}
	sess, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Attendance{}, err
	}

	now := nowFunc().UTC()
	if err = svc.checkSessionOpen(std, sess, sessionCode, now); err != nil {
		return Attendance{}, err
	}

	var att Attendance
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		att, err = svc.upsertPresent(ctx, studentID, sessionID, now, tx)
		return err
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// upsertPresent loads or creates the attendance row for (student, session)
// and sets its status to PRESENT.
func (svc *Service) upsertPresent(ctx context.Context, studentID, sessionID string, now time.Time, exec core.DBExecutor) (Attendance, error) {
	att, err := svc.repo.GetAttendanceForStudentSession(ctx, studentID, sessionID, exec)
	if err != nil {
		if core.KindOf(err) != core.KindNotFound {
			return Attendance{}, err
		}
		att = Attendance{
			StudentID: studentID,
			SessionID: sessionID,
			Status:    StatusPresent,
			Justification: Justification{
				Status: JustificationNotSubmitted,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return svc.repo.CreateAttendance(ctx, att, exec)
	}

	if att.Status == StatusPresent {
		return att, nil
	}
	att.Status = StatusPresent
	att.UpdatedAt = now
	return svc.repo.UpdateAttendance(ctx, att, exec)
}

// HasValidToken is a pure existence query with no side effects.
func (svc *Service) HasValidToken(ctx context.Context, studentID, sessionID string) (bool, error) {
	_, err := svc.repo.GetUsableToken(ctx, studentID, sessionID, nowFunc().UTC())
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CleanupExpiredTokens deletes all tokens past expiry and all used tokens
// older than the retention period. Idempotent; safe to run concurrently with
// issuance since it only touches rows no longer relevant to open flows.
func (svc *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	now := nowFunc().UTC()
	return svc.repo.DeleteStaleTokens(ctx, now, now.Add(-svc.usedTokenRetention))
}

// professorTeaches verifies the professor actually teaches the session,
// via the session's teaching-assignment chain.
func (svc *Service) professorTeaches(ctx context.Context, professorID, sessionID string) error {
	sess, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	tt, err := svc.timetables.GetTimeTableByID(ctx, sess.TimeTableID)
	if err != nil {
		return err
	}
	asg, err := svc.academic.GetAssignmentByID(ctx, tt.AssignmentID)
	if err != nil {
		return err
	}
	if asg.ProfessorID != professorID {
		return ErrNotSessionTeacher
	}
	return nil
}
