package main

import (
	"log/slog"
	"time"

	emailsending "github.com/nidrip/nidrip-backend/pkg/messaging/email-sending"
)

const (
	OUTGOING_EMAILS_BATCH_SIZE = 10

	MAX_FAILED_ATTEMPTS_BEFORE_STOP = 20
)

func main() {
	if messagingDBService == nil {
		slog.Error("Messaging DB connection not ready, exiting")
		return
	}

	slog.Info("Starting email retry job")
	start := time.Now()

	success, failed := handleOutgoingEmails()

	slog.Info("Email retry job completed",
		slog.String("duration", time.Since(start).String()),
		slog.Int("success", success),
		slog.Int("failed", failed))
}

func handleOutgoingEmails() (success int, failed int) {
	for {
		if failed > MAX_FAILED_ATTEMPTS_BEFORE_STOP {
			slog.Error("Too many failed attempts, stopping email retry job")
			break
		}

		outgoingEmails, err := messagingDBService.FetchOutgoingEmails(
			OUTGOING_EMAILS_BATCH_SIZE,
			time.Now().Add(-conf.Intervals.RetryLockDuration).Unix(),
		)
		if err != nil {
			slog.Error("Failed to fetch outgoing emails", slog.String("error", err.Error()))
			break
		}

		if len(outgoingEmails) == 0 {
			break
		}

		for _, email := range outgoingEmails {
			// stamp before sending so this email is not fetched again
			// within the retry lock window
			if err := messagingDBService.MarkOutgoingEmailSendAttempt(email.ID.Hex()); err != nil {
				slog.Error("Failed to mark send attempt", slog.String("messageType", email.MessageType), slog.String("error", err.Error()))
			}

			if !email.ShouldStillSend(time.Now(), conf.Intervals.MaxQueueAge) {
				failed++
				slog.Error("Dropping undeliverable outgoing email", slog.String("messageType", email.MessageType))
				if err := messagingDBService.DeleteOutgoingEmail(email.ID.Hex()); err != nil {
					slog.Error("Failed to delete outgoing email", slog.String("messageType", email.MessageType), slog.String("error", err.Error()))
				}
				continue
			}

			if err := emailsending.SendOutgoingEmail(&email); err != nil {
				failed++
				slog.Error("Failed to send email", slog.String("messageType", email.MessageType), slog.String("error", err.Error()))
				continue
			}

			if _, err := messagingDBService.AddToSentEmails(email); err != nil {
				failed++
				slog.Error("Failed to save sent email", slog.String("error", err.Error()))
				continue
			}
			if err := messagingDBService.DeleteOutgoingEmail(email.ID.Hex()); err != nil {
				slog.Error("Failed to delete outgoing email", slog.String("messageType", email.MessageType), slog.String("error", err.Error()))
			}
			success++
		}
	}
	return success, failed
}
