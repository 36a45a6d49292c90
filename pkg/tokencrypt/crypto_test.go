package tokencrypt

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	key := bytes.Repeat([]byte("k"), KeyLength)
	e, err := NewEngine(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("with wrong key length", func(t *testing.T) {
		_, err := NewEngine([]byte("too short"))
		if err == nil {
			t.Error("should return error")
		}
	})

	t.Run("with 32 byte key", func(t *testing.T) {
		_, err := NewEngine(bytes.Repeat([]byte("x"), KeyLength))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestEncryptDecrypt(t *testing.T) {
	e := testEngine(t)

	t.Run("roundtrip", func(t *testing.T) {
		env, err := e.Encrypt("signed.jwt.payload")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		plaintext, err := e.Decrypt(env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plaintext != "signed.jwt.payload" {
			t.Errorf("unexpected plaintext: %s", plaintext)
		}
	})

	t.Run("fresh iv per call", func(t *testing.T) {
		env1, _ := e.Encrypt("same input")
		env2, _ := e.Encrypt("same input")
		if env1.IV == env2.IV {
			t.Error("iv must not repeat")
		}
		if env1.Ciphertext == env2.Ciphertext {
			t.Error("ciphertext should differ with fresh iv")
		}
	})

	t.Run("wrong key fails", func(t *testing.T) {
		env, _ := e.Encrypt("secret")
		other, _ := NewEngine(bytes.Repeat([]byte("z"), KeyLength))
		_, err := other.Decrypt(env)
		if !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})
}

func TestDecryptDetectsTampering(t *testing.T) {
	e := testEngine(t)
	env, err := e.Encrypt("claims")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flipBit := func(hexStr string) string {
		raw, _ := hex.DecodeString(hexStr)
		raw[0] ^= 0x01
		return hex.EncodeToString(raw)
	}

	t.Run("flipped ciphertext bit", func(t *testing.T) {
		broken := env
		broken.Ciphertext = flipBit(env.Ciphertext)
		if _, err := e.Decrypt(broken); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})

	t.Run("flipped auth tag bit", func(t *testing.T) {
		broken := env
		broken.AuthTag = flipBit(env.AuthTag)
		if _, err := e.Decrypt(broken); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})

	t.Run("flipped iv bit", func(t *testing.T) {
		broken := env
		broken.IV = flipBit(env.IV)
		if _, err := e.Decrypt(broken); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})

	t.Run("non-hex envelope parts", func(t *testing.T) {
		broken := env
		broken.IV = "not hex"
		if _, err := e.Decrypt(broken); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})
}

func TestEnvelopeEncoding(t *testing.T) {
	e := testEngine(t)

	t.Run("roundtrip", func(t *testing.T) {
		env, _ := e.Encrypt("payload")
		encoded, err := EncodeEnvelope(env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decoded, err := DecodeEnvelope(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded != env {
			t.Error("envelope changed during encoding roundtrip")
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		if _, err := DecodeEnvelope("%%% not base64url %%%"); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
		if _, err := DecodeEnvelope("bm90LWpzb24"); !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered token error, got %v", err)
		}
	})
}
