package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/okapi/internal/model"
)

type PGConsumerDirectory struct {
	db DB
}

func NewPGConsumerDirectory(db DB) *PGConsumerDirectory {
	return &PGConsumerDirectory{db: db}
}

func (d *PGConsumerDirectory) GetConsumer(ctx context.Context, key string) (*model.Consumer, error) {
	var c model.Consumer
	err := d.db.QueryRow(ctx,
		`SELECT key, secret, name, url, email, date_created FROM okapi_consumers WHERE key = $1`, key,
	).Scan(&c.Key, &c.Secret, &c.Name, &c.URL, &c.Email, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConsumerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get consumer %s: %w", key, err)
	}
	return &c, nil
}
