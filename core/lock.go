package core

import (
	"context"
	"time"
)

// Locker is a best-effort distributed lock used to serialize batch jobs
// (e.g. session generation for one timetable) across instances.
type Locker interface {
	// Lock attempts to acquire the named lock; it reports false without
	// blocking when the lock is already held.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// NoopLocker always grants the lock; used in tests and single-instance runs.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NoopLocker) Unlock(context.Context, string) error                      { return nil }
