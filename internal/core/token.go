package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/okapi/internal/model"
)

type PGTokenStore struct {
	db DB
}

func NewPGTokenStore(db DB) *PGTokenStore {
	return &PGTokenStore{db: db}
}

func (s *PGTokenStore) LookupRequestToken(ctx context.Context, key string) (*model.Token, error) {
	var t model.Token
	err := s.db.QueryRow(ctx,
		`SELECT key, secret, token_type, timestamp, consumer_key, user_id, verifier, callback
		 FROM okapi_tokens WHERE key = $1 AND token_type = 'request'`, key,
	).Scan(&t.Key, &t.Secret, &t.Type, &t.Timestamp, &t.ConsumerKey, &t.UserID, &t.Verifier, &t.Callback)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup request token %s: %w", key, err)
	}
	return &t, nil
}

func (s *PGTokenStore) BindOwner(ctx context.Context, key string, userID int64, verifier string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE okapi_tokens SET user_id = $2, verifier = $3
		 WHERE key = $1 AND token_type = 'request' AND user_id IS NULL`,
		key, userID, verifier,
	)
	if err != nil {
		return fmt.Errorf("bind owner to token %s: %w", key, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either someone else bound it first or it is gone.
	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM okapi_tokens WHERE key = $1 AND token_type = 'request')`, key,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check token %s: %w", key, err)
	}
	if !exists {
		return ErrTokenNotFound
	}
	return ErrTokenAlreadyBound
}
