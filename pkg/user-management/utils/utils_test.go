package utils

import (
	"testing"
)

func TestSanitizeEmail(t *testing.T) {
	t.Run("with different formats", func(t *testing.T) {
		email := SanitizeEmail("\nA@Shop.DE")
		if email != "a@shop.de" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("  \n a@shop.de \n\r")
		if email != "a@shop.de" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("a@shop.de")
		if email != "a@shop.de" {
			t.Errorf("unexpected email: %s", email)
		}
	})
}

func TestCheckEmailFormat(t *testing.T) {
	t.Run("with missing @", func(t *testing.T) {
		if CheckEmailFormat("t.t.com") {
			t.Error("should be false")
		}
	})

	t.Run("with wrong domain format", func(t *testing.T) {
		if CheckEmailFormat("t@t.") {
			t.Error("should be false")
		}
	})

	t.Run("with missing top level domain", func(t *testing.T) {
		if CheckEmailFormat("t@com") {
			t.Error("should be false")
		}
	})

	t.Run("with too many @", func(t *testing.T) {
		if CheckEmailFormat("t@@t.com") {
			t.Error("should be false")
		}
	})

	t.Run("with correct format", func(t *testing.T) {
		if !CheckEmailFormat("t@t.com") {
			t.Error("should be true")
		}
		if !CheckEmailFormat("t+1@t.com") {
			t.Error("should be true")
		}
	})
}

func TestCheckPasswordFormat(t *testing.T) {
	t.Run("with a too short password", func(t *testing.T) {
		if CheckPasswordFormat("Ab1!x2Y") {
			t.Error("should be false")
		}
	})

	t.Run("with missing character classes", func(t *testing.T) {
		if CheckPasswordFormat("abcdef1!") {
			t.Error("no uppercase, should be false")
		}
		if CheckPasswordFormat("ABCDEF1!") {
			t.Error("no lowercase, should be false")
		}
		if CheckPasswordFormat("Abcdefg!") {
			t.Error("no digit, should be false")
		}
		if CheckPasswordFormat("Abcdefg1") {
			t.Error("no symbol, should be false")
		}
	})

	t.Run("with good passwords", func(t *testing.T) {
		if !CheckPasswordFormat("Abcdef1!") {
			t.Error("should be true")
		}
		if !CheckPasswordFormat("Tt1,.Lo%4") {
			t.Error("should be true")
		}
	})
}

func TestGenerateSessionID(t *testing.T) {
	t.Run("generates unique values", func(t *testing.T) {
		s1, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s2, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s1) != 32 {
			t.Errorf("unexpected length: %d", len(s1))
		}
		if s1 == s2 {
			t.Error("session ids should differ")
		}
	})
}
