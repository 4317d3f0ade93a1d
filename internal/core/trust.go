package core

import (
	"context"
	"fmt"
)

type PGTrustStore struct {
	db DB
}

func NewPGTrustStore(db DB) *PGTrustStore {
	return &PGTrustStore{db: db}
}

func (s *PGTrustStore) HasStandingGrant(ctx context.Context, consumerKey string, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM okapi_authorizations WHERE consumer_key = $1 AND user_id = $2)`,
		consumerKey, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check standing grant: %w", err)
	}
	return ok, nil
}

func (s *PGTrustStore) RecordGrant(ctx context.Context, consumerKey string, userID int64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO okapi_authorizations (consumer_key, user_id, last_access_token) VALUES ($1, $2, now())
		 ON CONFLICT (consumer_key, user_id) DO UPDATE SET last_access_token = EXCLUDED.last_access_token`,
		consumerKey, userID,
	)
	if err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

func (s *PGTrustStore) RevokeGrant(ctx context.Context, consumerKey string, userID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM okapi_authorizations WHERE consumer_key = $1 AND user_id = $2`,
		consumerKey, userID,
	)
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	return nil
}
