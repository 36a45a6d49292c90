package lockout

import (
	"time"

	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

// Lockout policy per account: after MaxLoginAttempts consecutive password
// mismatches the account refuses all login attempts for LockDuration,
// regardless of password correctness.
const (
	MaxLoginAttempts = 3
	LockDuration     = 30 * time.Minute
)

// IsLocked reports whether the account is inside an active lock window.
func IsLocked(acc userTypes.Account, now time.Time) bool {
	return acc.HasActiveLock(now)
}

// RetryAfter returns how long the caller has to wait before the lock window
// ends. Zero when the account is not locked.
func RetryAfter(acc userTypes.Account, now time.Time) time.Duration {
	if !acc.HasActiveLock(now) {
		return 0
	}
	return time.Duration(acc.LockUntil-now.Unix()) * time.Second
}

// LockExpired reports whether a previously set lock has run out. The caller
// must reset the attempt counter before evaluating the new login attempt.
func LockExpired(acc userTypes.Account, now time.Time) bool {
	return acc.LockUntil > 0 && acc.LockUntil <= now.Unix()
}

// WouldLock reports whether one more failed attempt reaches the threshold.
func WouldLock(acc userTypes.Account) bool {
	return acc.LoginAttempts+1 >= MaxLoginAttempts
}

// LockDeadline returns the unix timestamp until which a lock set at now lasts.
func LockDeadline(now time.Time) int64 {
	return now.Add(LockDuration).Unix()
}
