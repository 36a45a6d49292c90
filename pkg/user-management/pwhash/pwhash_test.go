package pwhash

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	t.Run("with empty password", func(t *testing.T) {
		_, err := HashPassword("")
		if err == nil {
			t.Error("should return error")
		}
	})

	t.Run("with a normal password", func(t *testing.T) {
		hash, err := HashPassword("Abcdef1!")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if hash == "" || hash == "Abcdef1!" {
			t.Errorf("unexpected hash: %s", hash)
		}
	})
}

func TestComparePasswordWithHash(t *testing.T) {
	hash, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("with matching password", func(t *testing.T) {
		match, err := ComparePasswordWithHash(hash, "Abcdef1!")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !match {
			t.Error("should match")
		}
	})

	t.Run("with wrong password", func(t *testing.T) {
		match, err := ComparePasswordWithHash(hash, "Abcdef1?")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if match {
			t.Error("should not match")
		}
	})

	t.Run("with malformed hash", func(t *testing.T) {
		match, _ := ComparePasswordWithHash("not-a-bcrypt-hash", "Abcdef1!")
		if match {
			t.Error("should not match")
		}
	})

	t.Run("with empty inputs", func(t *testing.T) {
		match, _ := ComparePasswordWithHash("", "")
		if match {
			t.Error("should not match")
		}
	})
}
