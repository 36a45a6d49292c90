package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// message types
const (
	EMAIL_TYPE_WELCOME          = "welcome"
	EMAIL_TYPE_PASSWORD_RESET   = "password-reset"
	EMAIL_TYPE_PASSWORD_CHANGED = "password-changed"
)

type OutgoingEmail struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageType     string             `bson:"messageType" json:"messageType"`
	To              []string           `bson:"to" json:"to"`
	Subject         string             `bson:"subject" json:"subject"`
	HeaderOverrides *HeaderOverrides   `bson:"headerOverrides" json:"headerOverrides"`
	Content         string             `bson:"content" json:"content"`
	AddedAt         int64              `bson:"addedAt" json:"addedAt"`
	HighPrio        bool               `bson:"highPrio" json:"highPrio"`
	LastSendAttempt int64              `bson:"lastSendAttempt" json:"lastSendAttempt"`
}

// ShouldStillSend reports whether a queued email is still worth a delivery
// attempt at time t. maxAge <= 0 disables the age check.
func (e OutgoingEmail) ShouldStillSend(t time.Time, maxAge time.Duration) bool {
	if len(e.To) < 1 || len(e.To[0]) < 1 {
		return false
	}
	if maxAge > 0 && e.AddedAt > 0 && e.AddedAt < t.Add(-maxAge).Unix() {
		return false
	}
	return true
}

type HeaderOverrides struct {
	From      string   `bson:"from" json:"from"`
	Sender    string   `bson:"sender" json:"sender"`
	ReplyTo   []string `bson:"replyTo" json:"replyTo"`
	NoReplyTo bool     `bson:"noReplyTo" json:"noReplyTo"`
}
