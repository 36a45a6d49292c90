package lockout

import (
	"testing"
	"time"

	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

func TestIsLocked(t *testing.T) {
	now := time.Now()

	t.Run("without a lock", func(t *testing.T) {
		acc := userTypes.Account{}
		if IsLocked(acc, now) {
			t.Error("should not be locked")
		}
	})

	t.Run("with an active lock", func(t *testing.T) {
		acc := userTypes.Account{LockUntil: now.Add(10 * time.Minute).Unix()}
		if !IsLocked(acc, now) {
			t.Error("should be locked")
		}
	})

	t.Run("with an expired lock", func(t *testing.T) {
		acc := userTypes.Account{LockUntil: now.Add(-time.Minute).Unix()}
		if IsLocked(acc, now) {
			t.Error("should not be locked")
		}
		if !LockExpired(acc, now) {
			t.Error("lock should count as expired")
		}
	})
}

func TestRetryAfter(t *testing.T) {
	now := time.Now()

	t.Run("with active lock", func(t *testing.T) {
		acc := userTypes.Account{LockUntil: now.Add(10 * time.Minute).Unix()}
		ra := RetryAfter(acc, now)
		if ra <= 0 || ra > 10*time.Minute {
			t.Errorf("unexpected retry after: %v", ra)
		}
	})

	t.Run("without lock", func(t *testing.T) {
		acc := userTypes.Account{}
		if RetryAfter(acc, now) != 0 {
			t.Error("should be zero")
		}
	})
}

func TestWouldLock(t *testing.T) {
	t.Run("below threshold", func(t *testing.T) {
		acc := userTypes.Account{LoginAttempts: 1}
		if WouldLock(acc) {
			t.Error("should not lock yet")
		}
	})

	t.Run("reaching threshold", func(t *testing.T) {
		acc := userTypes.Account{LoginAttempts: MaxLoginAttempts - 1}
		if !WouldLock(acc) {
			t.Error("should lock")
		}
	})
}

func TestLockDeadline(t *testing.T) {
	now := time.Now()
	deadline := LockDeadline(now)
	if deadline != now.Add(LockDuration).Unix() {
		t.Errorf("unexpected deadline: %d", deadline)
	}
}
