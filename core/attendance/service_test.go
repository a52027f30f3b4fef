package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/schedule"
	dummymail "github.com/youbihi/attest/services/email/dummy"
)

// testDB satisfies core.DB with no-op transactions; the fakes below apply
// writes immediately.
type testDB struct{ core.DB }

func (testDB) Begin() (core.DBTransactor, error) { return testTx{}, nil }
func (testDB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return testTx{}, nil
}

type testTx struct{ core.DBExecutor }

func (testTx) Commit() error   { return nil }
func (testTx) Rollback() error { return nil }

var errFakeTokenNotFound = core.NotFoundErr("token not found")

type fakeRepo struct {
	mu          sync.Mutex
	attendances map[string]Attendance
	tokens      map[string]Token
	seq         int
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		attendances: make(map[string]Attendance),
		tokens:      make(map[string]Token),
	}
}

func (r *fakeRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s%d", prefix, r.seq)
}

func (r *fakeRepo) CreateAttendance(_ context.Context, att Attendance, _ ...core.DBExecutor) (Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.attendances {
		if existing.StudentID == att.StudentID && existing.SessionID == att.SessionID {
			return Attendance{}, core.ConflictErr("attendance already recorded for this session")
		}
	}
	att.ID = r.nextID("att")
	r.attendances[att.ID] = att
	return att, nil
}

func (r *fakeRepo) UpdateAttendance(_ context.Context, att Attendance, _ ...core.DBExecutor) (Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.attendances[att.ID]; !ok {
		return Attendance{}, ErrAttendanceNotFound
	}
	r.attendances[att.ID] = att
	return att, nil
}

func (r *fakeRepo) GetAttendanceByID(_ context.Context, id string, _ ...core.DBExecutor) (Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if att, ok := r.attendances[id]; ok {
		return att, nil
	}
	return Attendance{}, ErrAttendanceNotFound
}

func (r *fakeRepo) GetAttendanceForStudentSession(_ context.Context, studentID, sessionID string, _ ...core.DBExecutor) (Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, att := range r.attendances {
		if att.StudentID == studentID && att.SessionID == sessionID {
			return att, nil
		}
	}
	return Attendance{}, ErrAttendanceNotFound
}

func (r *fakeRepo) CreateToken(_ context.Context, tok Token, _ ...core.DBExecutor) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// one unused token per (student, session), as the storage schema enforces
	for _, existing := range r.tokens {
		if existing.StudentID == tok.StudentID && existing.SessionID == tok.SessionID && !existing.Used {
			return Token{}, ErrTokenPending
		}
	}
	tok.ID = r.nextID("tok")
	r.tokens[tok.ID] = tok
	return tok, nil
}

func (r *fakeRepo) DeleteExpiredTokens(_ context.Context, studentID, sessionID string, now time.Time, _ ...core.DBExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, tok := range r.tokens {
		if tok.StudentID == studentID && tok.SessionID == sessionID && !tok.Used && !tok.ExpiresAt.After(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *fakeRepo) UpdateToken(_ context.Context, tok Token, _ ...core.DBExecutor) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[tok.ID]; !ok {
		return Token{}, errFakeTokenNotFound
	}
	r.tokens[tok.ID] = tok
	return tok, nil
}

func (r *fakeRepo) GetUsableToken(_ context.Context, studentID, sessionID string, now time.Time, _ ...core.DBExecutor) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tok := range r.tokens {
		if tok.StudentID == studentID && tok.SessionID == sessionID && tok.IsUsable(now) {
			return tok, nil
		}
	}
	return Token{}, errFakeTokenNotFound
}

func (r *fakeRepo) GetUsableTokenByString(_ context.Context, token string, now time.Time, _ ...core.DBExecutor) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tok := range r.tokens {
		if tok.Token == token && tok.IsUsable(now) {
			return tok, nil
		}
	}
	return Token{}, errFakeTokenNotFound
}

func (r *fakeRepo) TokenStringExists(_ context.Context, token string, _ ...core.DBExecutor) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tok := range r.tokens {
		if tok.Token == token {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) DeleteStaleTokens(_ context.Context, now, usedBefore time.Time, _ ...core.DBExecutor) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int
	for id, tok := range r.tokens {
		stale := (!tok.Used && now.After(tok.ExpiresAt)) || (tok.Used && tok.UsedAt.Before(usedBefore))
		if stale {
			delete(r.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeSessions struct {
	schedule.SessionRepository
	sessions map[string]schedule.Session
}

func (r *fakeSessions) GetSessionByID(_ context.Context, id string, _ ...core.DBExecutor) (schedule.Session, error) {
	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}
	return schedule.Session{}, schedule.ErrSessionNotFound
}

type fakeTimeTables struct {
	schedule.TimeTableRepository
	timetables map[string]schedule.TimeTable
}

func (r *fakeTimeTables) GetTimeTableByID(_ context.Context, id string, _ ...core.DBExecutor) (schedule.TimeTable, error) {
	if tt, ok := r.timetables[id]; ok {
		return tt, nil
	}
	return schedule.TimeTable{}, schedule.ErrTimeTableNotFound
}

type fakeAcademic struct {
	academic.Repository
	students     map[string]academic.Student
	institutions map[string]academic.Institution
	professors   map[string]academic.Professor
	assignments  map[string]academic.Assignment
}

func (r *fakeAcademic) GetStudentByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Student, error) {
	if std, ok := r.students[id]; ok {
		return std, nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (r *fakeAcademic) GetInstitutionByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Institution, error) {
	if inst, ok := r.institutions[id]; ok {
		return inst, nil
	}
	return academic.Institution{}, academic.ErrInstitutionNotFound
}

func (r *fakeAcademic) GetProfessorByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Professor, error) {
	if prof, ok := r.professors[id]; ok {
		return prof, nil
	}
	return academic.Professor{}, academic.ErrProfessorNotFound
}

func (r *fakeAcademic) GetAssignmentByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Assignment, error) {
	if asg, ok := r.assignments[id]; ok {
		return asg, nil
	}
	return academic.Assignment{}, academic.ErrAssignmentNotFound
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// testBase is the pinned instant every test reasons from: a Monday 08:00 UTC,
// the exact start of the fixture session.
var testBase = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type env struct {
	svc  *Service
	repo *fakeRepo
	mail *dummymail.Recorder
	acad *fakeAcademic
	sess *fakeSessions
}

const (
	testStudentID     = "std1"
	testSessionID     = "sess1"
	testSectionID     = "sec1"
	testProfessorID   = "prof1"
	testCode          = "123456"
	testInstitutionID = "inst1"
)

func newTestEnv(t *testing.T) env {
	t.Helper()

	repo := newFakeRepo()
	sessions := &fakeSessions{sessions: map[string]schedule.Session{
		testSessionID: {
			ID:          testSessionID,
			TimeTableID: "tt1",
			Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartTime:   schedule.TimeOfDay{Hour: 8},
			EndTime:     schedule.TimeOfDay{Hour: 10},
			Type:        schedule.SessionRegular,
			Code:        testCode,
			SectionIDs:  []string{testSectionID},
		},
	}}
	timetables := &fakeTimeTables{timetables: map[string]schedule.TimeTable{
		"tt1": {ID: "tt1", AssignmentID: "asg1"},
	}}
	acad := &fakeAcademic{
		students: map[string]academic.Student{
			testStudentID: {
				ID:            testStudentID,
				InstitutionID: testInstitutionID,
				SectionID:     testSectionID,
				Name:          "Awe Mbuta",
				Email:         "awe@test.cd",
			},
		},
		institutions: map[string]academic.Institution{
			testInstitutionID: {ID: testInstitutionID, Latitude: 0, Longitude: 0, RadiusMeters: 200},
		},
		professors: map[string]academic.Professor{
			testProfessorID: {ID: testProfessorID, Name: "Prof"},
		},
		assignments: map[string]academic.Assignment{
			"asg1": {ID: "asg1", ProfessorID: testProfessorID},
		},
	}
	mail := dummymail.NewService()

	svc := NewService(testDB{}, repo, sessions, timetables, acad, mail, nopLogger{}, core.AttendanceConfig{})
	return env{svc: svc, repo: repo, mail: mail, acad: acad, sess: sessions}
}

func setNow(t *testing.T, instant time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return instant }
	t.Cleanup(func() { nowFunc = time.Now })
}

func floatPtr(v float64) *float64 { return &v }

func TestService_RequestToken(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)
		assert.Len(t, tok.Token, tokenLength)
		assert.Equal(t, testBase.Add(defaultTokenExpiry), tok.ExpiresAt)
		assert.False(t, tok.Used)

		// token dispatched to the student's address
		sent := e.mail.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, "awe@test.cd", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, tok.Token)
	})

	t.Run("window edges", func(t *testing.T) {
		tests := []struct {
			name    string
			now     time.Time
			wantErr error
		}{
			{name: "6 minutes early", now: testBase.Add(-6 * time.Minute), wantErr: ErrOutsideWindow},
			{name: "exactly at lead", now: testBase.Add(-5 * time.Minute)},
			{name: "4 minutes early", now: testBase.Add(-4 * time.Minute)},
			{name: "mid-session", now: testBase.Add(time.Hour)},
			{name: "exactly at end", now: testBase.Add(2 * time.Hour)},
			{name: "one minute late", now: testBase.Add(2*time.Hour + time.Minute), wantErr: ErrOutsideWindow},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := newTestEnv(t)
				setNow(t, tt.now)

				_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
				if tt.wantErr != nil {
					assert.Equal(t, tt.wantErr, err)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		// session code
		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, "", floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrBlankCode, err)
		_, err = e.svc.RequestToken(ctx, testStudentID, testSessionID, "654321", floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrCodeMismatch, err)

		// coordinates
		lat := 0.0
		_, err = e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, &lat, nil)
		assert.Equal(t, ErrMissingCoordinates, err)
		_, err = e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, nil, nil)
		assert.Equal(t, ErrMissingCoordinates, err)

		// unknown references
		_, err = e.svc.RequestToken(ctx, "nope", testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, academic.ErrStudentNotFound, err)
		_, err = e.svc.RequestToken(ctx, testStudentID, "nope", testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, schedule.ErrSessionNotFound, err)
	})

	t.Run("cancelled session", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		sess := e.sess.sessions[testSessionID]
		sess.Type = schedule.SessionCancelled
		e.sess.sessions[testSessionID] = sess

		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrSessionCancelled, err)
	})

	t.Run("section not in roster", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		std := e.acad.students[testStudentID]
		std.SectionID = "other-section"
		e.acad.students[testStudentID] = std

		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrNotInRoster, err)
	})

	t.Run("no code issued yet", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		sess := e.sess.sessions[testSessionID]
		sess.Code = ""
		e.sess.sessions[testSessionID] = sess

		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrNoSessionCode, err)
	})

	t.Run("geofence", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		// ~111m north of the institution: inside the 200m radius
		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0.001), floatPtr(0))
		assert.NoError(t, err)

		// ~555m north: outside
		e2 := newTestEnv(t)
		_, err = e2.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0.005), floatPtr(0))
		gfErr, ok := err.(*core.GeofenceError)
		if assert.True(t, ok, "expected GeofenceError, got %v", err) {
			assert.Equal(t, float64(200), gfErr.RadiusMeters)
			assert.InDelta(t, 556, gfErr.DistanceMeters, 2)
			assert.Equal(t, core.KindOutOfRange, core.KindOf(err))
		}
	})

	t.Run("student without institution", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		std := e.acad.students[testStudentID]
		std.InstitutionID = ""
		e.acad.students[testStudentID] = std

		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrNoInstitution, err)
	})

	t.Run("second token conflicts while one is open", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		_, err = e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.Equal(t, ErrTokenPending, err)
		assert.Equal(t, core.KindConflict, core.KindOf(err))
	})

	t.Run("reissue succeeds once the first token expires", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		first, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		// past the first token's expiry, still inside the session window
		setNow(t, testBase.Add(defaultTokenExpiry+time.Minute))

		second, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		// the expired token was purged, not left around
		assert.Len(t, e.repo.tokens, 1)
		_, ok := e.repo.tokens[first.ID]
		assert.False(t, ok)
	})
}

func TestService_ConfirmToken(t *testing.T) {
	ctx := context.Background()

	t.Run("request then confirm marks present", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		att, err := e.svc.ConfirmToken(ctx, testStudentID, tok.Token)
		assert.NoError(t, err)
		assert.Equal(t, StatusPresent, att.Status)
		assert.Equal(t, testStudentID, att.StudentID)
		assert.Equal(t, testSessionID, att.SessionID)

		// the token is consumed
		_, err = e.svc.ConfirmToken(ctx, testStudentID, tok.Token)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("lowercase input accepted", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		att, err := e.svc.ConfirmToken(ctx, testStudentID, "  "+strings.ToLower(tok.Token)+" ")
		assert.NoError(t, err)
		assert.Equal(t, StatusPresent, att.Status)
	})

	t.Run("blank token", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.svc.ConfirmToken(ctx, testStudentID, "   ")
		assert.Equal(t, ErrBlankToken, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)
		_, err := e.svc.ConfirmToken(ctx, testStudentID, "NOPE1234")
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("expired token", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		setNow(t, testBase.Add(defaultTokenExpiry+time.Second))
		_, err = e.svc.ConfirmToken(ctx, testStudentID, tok.Token)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("token owned by someone else", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		_, err = e.svc.ConfirmToken(ctx, "std2", tok.Token)
		assert.Equal(t, ErrTokenOwnership, err)
		assert.Equal(t, core.KindForbidden, core.KindOf(err))
	})

	t.Run("redeemable after session end until token expiry", func(t *testing.T) {
		e := newTestEnv(t)
		// request at the very end of the session window
		setNow(t, testBase.Add(2*time.Hour))

		tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
		assert.NoError(t, err)

		// 5 minutes later the session is over but the token still works
		setNow(t, testBase.Add(2*time.Hour+5*time.Minute))
		att, err := e.svc.ConfirmToken(ctx, testStudentID, tok.Token)
		assert.NoError(t, err)
		assert.Equal(t, StatusPresent, att.Status)
	})
}

func TestService_MarkDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("marks present without coordinates", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		att, err := e.svc.MarkDirect(ctx, testStudentID, testSessionID, testCode)
		assert.NoError(t, err)
		assert.Equal(t, StatusPresent, att.Status)

		// repeat is a no-op on the same row
		again, err := e.svc.MarkDirect(ctx, testStudentID, testSessionID, testCode)
		assert.NoError(t, err)
		assert.Equal(t, att.ID, again.ID)
	})

	t.Run("outside window", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase.Add(-time.Hour))

		_, err := e.svc.MarkDirect(ctx, testStudentID, testSessionID, testCode)
		assert.Equal(t, ErrOutsideWindow, err)
	})

	t.Run("overwrites an absent record", func(t *testing.T) {
		e := newTestEnv(t)
		setNow(t, testBase)

		_, err := e.repo.CreateAttendance(ctx, Attendance{
			StudentID: testStudentID,
			SessionID: testSessionID,
			Status:    StatusAbsent,
		})
		assert.NoError(t, err)

		att, err := e.svc.MarkDirect(ctx, testStudentID, testSessionID, testCode)
		assert.NoError(t, err)
		assert.Equal(t, StatusPresent, att.Status)
	})
}

func TestService_HasValidToken(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	setNow(t, testBase)

	ok, err := e.svc.HasValidToken(ctx, testStudentID, testSessionID)
	assert.NoError(t, err)
	assert.False(t, ok)

	tok, err := e.svc.RequestToken(ctx, testStudentID, testSessionID, testCode, floatPtr(0), floatPtr(0))
	assert.NoError(t, err)

	ok, err = e.svc.HasValidToken(ctx, testStudentID, testSessionID)
	assert.NoError(t, err)
	assert.True(t, ok)

	// consumed tokens no longer count
	_, err = e.svc.ConfirmToken(ctx, testStudentID, tok.Token)
	assert.NoError(t, err)
	ok, err = e.svc.HasValidToken(ctx, testStudentID, testSessionID)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestService_CleanupExpiredTokens(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	setNow(t, testBase)

	// expired unused token
	_, err := e.repo.CreateToken(ctx, Token{
		StudentID: testStudentID, SessionID: "sessA", Token: "AAAAAAAA",
		ExpiresAt: testBase.Add(-time.Minute),
	})
	assert.NoError(t, err)
	// used token past retention
	_, err = e.repo.CreateToken(ctx, Token{
		StudentID: testStudentID, SessionID: "sessB", Token: "BBBBBBBB",
		ExpiresAt: testBase.Add(-time.Hour), Used: true,
		UsedAt: testBase.Add(-defaultUsedTokenRetention - time.Hour),
	})
	assert.NoError(t, err)
	// live token
	_, err = e.repo.CreateToken(ctx, Token{
		StudentID: testStudentID, SessionID: "sessC", Token: "CCCCCCCC",
		ExpiresAt: testBase.Add(time.Minute),
	})
	assert.NoError(t, err)
	// recently used token, kept for audit until retention lapses
	_, err = e.repo.CreateToken(ctx, Token{
		StudentID: testStudentID, SessionID: "sessD", Token: "DDDDDDDD",
		ExpiresAt: testBase.Add(-time.Hour), Used: true, UsedAt: testBase.Add(-time.Hour),
	})
	assert.NoError(t, err)

	deleted, err := e.svc.CleanupExpiredTokens(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// idempotent
	deleted, err = e.svc.CleanupExpiredTokens(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
