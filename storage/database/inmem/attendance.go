package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, att attendance.Attendance, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.attendances {
		if existing.StudentID == att.StudentID && existing.SessionID == att.SessionID {
			return attendance.Attendance{}, core.ConflictErr("attendance record already exists for this student and session")
		}
	}
	att.ID = uuid.New().String()
	repo.db.attendances[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att attendance.Attendance, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.attendances[att.ID]; !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	repo.db.attendances[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceByID(_ context.Context, id string, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if att, ok := repo.db.attendances[id]; ok {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (repo *attendanceRepository) GetAttendanceForStudentSession(_ context.Context, studentID, sessionID string, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, att := range repo.db.attendances {
		if att.StudentID == studentID && att.SessionID == sessionID {
			return *att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (repo *attendanceRepository) CreateToken(_ context.Context, tok attendance.Token, _ ...core.DBExecutor) (attendance.Token, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.tokens {
		if existing.StudentID == tok.StudentID && existing.SessionID == tok.SessionID && !existing.Used {
			return attendance.Token{}, attendance.ErrTokenPending
		}
	}
	tok.ID = uuid.New().String()
	repo.db.tokens[tok.ID] = &tok
	return tok, nil
}

func (repo *attendanceRepository) DeleteExpiredTokens(_ context.Context, studentID, sessionID string, now time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, tok := range repo.db.tokens {
		if tok.StudentID == studentID && tok.SessionID == sessionID && !tok.Used && !tok.ExpiresAt.After(now) {
			delete(repo.db.tokens, id)
		}
	}
	return nil
}

func (repo *attendanceRepository) UpdateToken(_ context.Context, tok attendance.Token, _ ...core.DBExecutor) (attendance.Token, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.tokens[tok.ID]; !ok {
		return attendance.Token{}, core.NotFoundErr("token not found")
	}
	repo.db.tokens[tok.ID] = &tok
	return tok, nil
}

func (repo *attendanceRepository) GetUsableToken(_ context.Context, studentID, sessionID string, now time.Time, _ ...core.DBExecutor) (attendance.Token, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, tok := range repo.db.tokens {
		if tok.StudentID == studentID && tok.SessionID == sessionID && tok.IsUsable(now) {
			return *tok, nil
		}
	}
	return attendance.Token{}, core.NotFoundErr("token not found")
}

func (repo *attendanceRepository) GetUsableTokenByString(_ context.Context, token string, now time.Time, _ ...core.DBExecutor) (attendance.Token, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, tok := range repo.db.tokens {
		if tok.Token == token && tok.IsUsable(now) {
			return *tok, nil
		}
	}
	return attendance.Token{}, core.NotFoundErr("token not found")
}

func (repo *attendanceRepository) TokenStringExists(_ context.Context, token string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, tok := range repo.db.tokens {
		if tok.Token == token {
			return true, nil
		}
	}
	return false, nil
}

func (repo *attendanceRepository) DeleteStaleTokens(_ context.Context, now, usedBefore time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var deleted int
	for id, tok := range repo.db.tokens {
		stale := (!tok.Used && now.After(tok.ExpiresAt)) ||
			(tok.Used && tok.UsedAt.Before(usedBefore))
		if stale {
			delete(repo.db.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}
