package emailsending

import (
	"strings"
	"testing"

	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
)

func TestRenderEmail(t *testing.T) {
	GlobalTemplateInfos = map[string]string{
		"shopName": "NiDrip",
		"baseURL":  "https://shop.example.com",
	}

	t.Run("with unknown message type", func(t *testing.T) {
		_, _, err := renderEmail("no-such-template", nil)
		if err == nil {
			t.Error("should return error")
		}
	})

	t.Run("password reset message", func(t *testing.T) {
		subject, content, err := renderEmail(messagingTypes.EMAIL_TYPE_PASSWORD_RESET, map[string]string{
			"name":       "Ada",
			"token":      "tok123",
			"validUntil": "1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if subject == "" {
			t.Error("subject should not be empty")
		}
		if !strings.Contains(content, "https://shop.example.com/password-reset/tok123") {
			t.Errorf("reset link missing from content: %s", content)
		}
	})

	t.Run("payload wins over global constants", func(t *testing.T) {
		_, content, err := renderEmail(messagingTypes.EMAIL_TYPE_WELCOME, map[string]string{
			"name":     "Ada",
			"shopName": "Other Shop",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(content, "Other Shop") {
			t.Errorf("payload override not applied: %s", content)
		}
	})
}
