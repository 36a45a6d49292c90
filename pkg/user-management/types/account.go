package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags, fixed at account creation.
const (
	ACCOUNT_ROLE_USER  = "USER"
	ACCOUNT_ROLE_ADMIN = "ADMIN"
)

// Account is a credential record for a shopper or an administrator. Both
// share the same shape; the role tag decides which collection stores them.
type Account struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name" json:"name"`
	Role  string             `bson:"role" json:"role"`

	// Never the plaintext.
	Password string `bson:"password" json:"-"`

	// SessionID is empty while no session is active. A token is only valid
	// while the session id inside its claims equals this value.
	SessionID string `bson:"sessionID" json:"-"`

	// Lockout state, mutated only through the account store helpers.
	LoginAttempts int64 `bson:"loginAttempts" json:"-"`
	LockUntil     int64 `bson:"lockUntil" json:"-"`

	Timestamps Timestamps `bson:"timestamps" json:"timestamps"`
}

type Timestamps struct {
	CreatedAt          int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt          int64 `bson:"updatedAt" json:"updatedAt"`
	LastLogin          int64 `bson:"lastLogin" json:"lastLogin"`
	LastPasswordChange int64 `bson:"lastPasswordChange" json:"lastPasswordChange"`
}

func ValidRole(role string) bool {
	return role == ACCOUNT_ROLE_USER || role == ACCOUNT_ROLE_ADMIN
}

// HasActiveLock reports whether the account refuses logins at time t.
func (a Account) HasActiveLock(t time.Time) bool {
	return a.LockUntil > 0 && a.LockUntil > t.Unix()
}
