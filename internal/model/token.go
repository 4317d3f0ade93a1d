package model

import "time"

const (
	TokenTypeRequest = "request"
	TokenTypeAccess  = "access"
)

// Token is a request or access token. UserID and Verifier are nil until the
// owner grants the token, and are always set together.
type Token struct {
	Key         string    `json:"key" db:"key"`
	Secret      string    `json:"-" db:"secret"`
	Type        string    `json:"token_type" db:"token_type"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	ConsumerKey string    `json:"consumer_key" db:"consumer_key"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	Verifier    *string   `json:"verifier,omitempty" db:"verifier"`
	Callback    *string   `json:"callback,omitempty" db:"callback"`
}

// Bound reports whether an owner has been attached to the token.
func (t *Token) Bound() bool {
	return t.UserID != nil
}

// OutOfBand reports whether the consumer supplied no callback URL.
func (t *Token) OutOfBand() bool {
	return t.Callback == nil || *t.Callback == ""
}
