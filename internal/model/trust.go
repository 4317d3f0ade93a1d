package model

import "time"

// TrustRecord marks that a user has granted a consumer access before.
// The (ConsumerKey, UserID) pair is unique.
type TrustRecord struct {
	ConsumerKey  string    `json:"consumer_key" db:"consumer_key"`
	UserID       int64     `json:"user_id" db:"user_id"`
	LastAccessAt time.Time `json:"last_access_at" db:"last_access_token"`
}
