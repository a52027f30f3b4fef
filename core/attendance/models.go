package attendance

import (
	"fmt"
	"time"

	"github.com/youbihi/attest/core"
)

// Status is the closed attendance outcome taxonomy.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusExcused Status = "EXCUSED"
	StatusLate    Status = "LATE"
)

var allStatuses = []Status{StatusPresent, StatusAbsent, StatusExcused, StatusLate}

// ParseStatus validates a caller-supplied status value at the boundary.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", core.InvalidInputErr(fmt.Sprintf("unknown attendance status %q", s))
}

type JustificationStatus string

const (
	JustificationNotSubmitted JustificationStatus = "NOT_SUBMITTED"
	JustificationPending      JustificationStatus = "PENDING"
	JustificationApproved     JustificationStatus = "APPROVED"
	JustificationRejected     JustificationStatus = "REJECTED"
)

// Justification is the review sub-record of an absence.
type Justification struct {
	Text        string              `json:"text,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Status      JustificationStatus `json:"status"`
	ReviewedAt  time.Time           `json:"reviewed_at"`
	ReviewedBy  string              `json:"reviewed_by,omitempty"` // professor ID
}

// Attendance is the single row per (Student, Session).
type Attendance struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"student_id"`
	SessionID     string        `json:"session_id"`
	Status        Status        `json:"status"`
	Comment       string        `json:"comment,omitempty"`
	Justification Justification `json:"justification"`
	CreatedAt     time.Time     `json:"created_at"` // UTC
	UpdatedAt     time.Time     `json:"updated_at"` // UTC
}

// Token is the ephemeral single-use credential binding one student to one
// session. The session code and coordinates supplied at request time are
// recorded with it.
type Token struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	SessionID   string    `json:"session_id"`
	Token       string    `json:"token"`
	SessionCode string    `json:"-"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Used        bool      `json:"used"`
	UsedAt      time.Time `json:"used_at"`
}

// IsUsable reports whether the token is unused and unexpired as of now.
func (t Token) IsUsable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
