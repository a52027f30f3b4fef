package schedule

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const codeDigits = 6

var codeMax = big.NewInt(1000000) // 10^codeDigits

// makeSessionCode draws a fixed-length numeric code uniformly at random.
// Codes are scoped per session, so cross-session collisions are acceptable.
func makeSessionCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", errors.Wrap(err, "generating session code")
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// IssueCode assigns a session code if none exists yet; repeated calls before
// rotation are no-ops returning the session unchanged.
func (svc *Service) IssueCode(ctx context.Context, sessionID string) (Session, error) {
	sess, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.HasCode() {
		return sess, nil
	}
	return svc.setCode(ctx, sess)
}

// RotateCode unconditionally replaces the session code, invalidating the old
// one for future verification. Tokens already issued remain valid against the
// code captured at request time.
func (svc *Service) RotateCode(ctx context.Context, sessionID string) (Session, error) {
	sess, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	return svc.setCode(ctx, sess)
}

func (svc *Service) setCode(ctx context.Context, sess Session) (Session, error) {
	code, err := makeSessionCode()
	if err != nil {
		return Session{}, err
	}
	sess.Code = code
	sess.CodeIssuedAt = nowFunc().UTC()
	return svc.sessions.SaveSessionCode(ctx, sess)
}
