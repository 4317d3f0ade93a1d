package model

import "time"

// Consumer is a registered third-party application.
type Consumer struct {
	Key       string    `json:"key" db:"key"`
	Secret    string    `json:"-" db:"secret"`
	Name      string    `json:"name" db:"name"`
	URL       *string   `json:"url,omitempty" db:"url"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"date_created"`
}
