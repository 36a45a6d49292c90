package tokencrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
)

const (
	KeyLength  = 32 // AES-256
	gcmTagSize = 16
)

// Envelope is the wire form of an encrypted token: all three parts hex
// encoded, the whole object JSON serialized and base64url encoded for
// transport.
type Envelope struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	AuthTag    string `json:"authTag"`
}

// Engine wraps authenticated symmetric encryption for token payloads. It is
// constructed once at startup; a key of the wrong length aborts process boot
// instead of surfacing as a per-request error.
type Engine struct {
	aead cipher.AEAD
}

func NewEngine(key []byte) (*Engine, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("token encryption key must be %d bytes, got %d", KeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Engine{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random IV. IVs are never reused
// under the same key.
func (e *Engine) Encrypt(plaintext string) (Envelope, error) {
	iv := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("generate iv: %w", err)
	}

	sealed := e.aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	authTag := sealed[len(sealed)-gcmTagSize:]

	return Envelope{
		IV:         hex.EncodeToString(iv),
		Ciphertext: hex.EncodeToString(ciphertext),
		AuthTag:    hex.EncodeToString(authTag),
	}, nil
}

// Decrypt opens the envelope. Any authentication failure (wrong key, flipped
// bit in iv, ciphertext or tag) reports a tampered token, checked before any
// claim inside is looked at.
func (e *Engine) Decrypt(env Envelope) (string, error) {
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", autherrors.ErrTamperedToken
	}
	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", autherrors.ErrTamperedToken
	}
	authTag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		return "", autherrors.ErrTamperedToken
	}
	if len(iv) != e.aead.NonceSize() || len(authTag) != gcmTagSize {
		return "", autherrors.ErrTamperedToken
	}

	plaintext, err := e.aead.Open(nil, iv, append(ciphertext, authTag...), nil)
	if err != nil {
		return "", autherrors.ErrTamperedToken
	}
	return string(plaintext), nil
}

// EncodeEnvelope serializes the envelope for transport.
func EncodeEnvelope(env Envelope) (string, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeEnvelope parses a transported token string back into an envelope.
func DecodeEnvelope(tokenString string) (Envelope, error) {
	data, err := base64.RawURLEncoding.DecodeString(tokenString)
	if err != nil {
		return Envelope{}, autherrors.ErrTamperedToken
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, autherrors.ErrTamperedToken
	}
	return env, nil
}
