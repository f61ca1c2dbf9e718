// Package locker provides the advisory locks that serialise booking writes
// touching the same calendar days.
package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNotAcquired is returned when a lock stays busy past the wait timeout.
var ErrNotAcquired = errors.New("lock not acquired")

// ErrNotOwner is returned when releasing a lock held under another token.
var ErrNotOwner = errors.New("lock not owned by this token")

// Locker is a keyed mutual-exclusion lock with expiry.
type Locker interface {
	// TryLock attempts to take key once. On success it returns the token
	// needed to release it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	// Unlock releases key if it is still held under token.
	Unlock(ctx context.Context, key, token string) error
}

// DayKeys returns the lock keys of the local calendar days touched by
// [start-gap, end+gap), in ascending order.
func DayKeys(start, end time.Time, gap time.Duration, loc *time.Location) []string {
	from := start.Add(-gap).In(loc)
	last := end.Add(gap).Add(-time.Nanosecond).In(loc)
	if last.Before(from) {
		last = from
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	var keys []string
	for d := day; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		keys = append(keys, "venue:day:"+d.Format("2006-01-02"))
	}
	return keys
}

// Acquirer takes several keys in order, waiting for busy ones.
type Acquirer struct {
	locker Locker
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	logger *zap.Logger
}

// NewAcquirer creates an acquirer. Each key is held for at most ttl and a
// busy key is retried for up to wait.
func NewAcquirer(l Locker, ttl, wait time.Duration, logger *zap.Logger) *Acquirer {
	return &Acquirer{locker: l, ttl: ttl, wait: wait, poll: 25 * time.Millisecond, logger: logger}
}

// Acquire takes every key in the given order. On failure the keys already
// held are released. The returned release func is safe to call once.
func (a *Acquirer) Acquire(ctx context.Context, keys []string) (func(context.Context), error) {
	type held struct{ key, token string }
	acquired := make([]held, 0, len(keys))

	release := func(ctx context.Context) {
		for i := len(acquired) - 1; i >= 0; i-- {
			if err := a.locker.Unlock(ctx, acquired[i].key, acquired[i].token); err != nil {
				a.logger.Warn("Acquirer.Acquire failed to release lock",
					zap.String("key", acquired[i].key),
					zap.Error(err),
				)
			}
		}
	}

	deadline := time.Now().Add(a.wait)
	for _, key := range keys {
		token, err := a.acquireOne(ctx, key, deadline)
		if err != nil {
			release(ctx)
			return func(context.Context) {}, err
		}
		acquired = append(acquired, held{key: key, token: token})
	}

	a.logger.Debug("Acquirer.Acquire acquired locks", zap.Strings("keys", keys))
	return release, nil
}

func (a *Acquirer) acquireOne(ctx context.Context, key string, deadline time.Time) (string, error) {
	for {
		ok, token, err := a.locker.TryLock(ctx, key, a.ttl)
		if err != nil {
			return "", fmt.Errorf("failed to lock %s: %w", key, err)
		}
		if ok {
			return token, nil
		}
		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}

		timer := time.NewTimer(a.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}
