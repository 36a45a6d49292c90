package types

import (
	"testing"
	"time"
)

func TestOutgoingEmailShouldStillSend(t *testing.T) {
	now := time.Now()
	maxAge := 24 * time.Hour

	t.Run("fresh email with recipient", func(t *testing.T) {
		email := OutgoingEmail{To: []string{"user@example.org"}, AddedAt: now.Unix()}
		if !email.ShouldStillSend(now, maxAge) {
			t.Error("expected email to be sendable")
		}
	})

	t.Run("no recipients", func(t *testing.T) {
		email := OutgoingEmail{AddedAt: now.Unix()}
		if email.ShouldStillSend(now, maxAge) {
			t.Error("expected email without recipients to be dropped")
		}
	})

	t.Run("empty recipient address", func(t *testing.T) {
		email := OutgoingEmail{To: []string{""}, AddedAt: now.Unix()}
		if email.ShouldStillSend(now, maxAge) {
			t.Error("expected email with empty recipient to be dropped")
		}
	})

	t.Run("older than max age", func(t *testing.T) {
		email := OutgoingEmail{To: []string{"user@example.org"}, AddedAt: now.Add(-25 * time.Hour).Unix()}
		if email.ShouldStillSend(now, maxAge) {
			t.Error("expected stale email to be dropped")
		}
	})

	t.Run("age check disabled", func(t *testing.T) {
		email := OutgoingEmail{To: []string{"user@example.org"}, AddedAt: now.Add(-25 * time.Hour).Unix()}
		if !email.ShouldStillSend(now, 0) {
			t.Error("expected email to be sendable when no max age is set")
		}
	})
}
