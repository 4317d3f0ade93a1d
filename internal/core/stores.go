package core

import (
	"context"

	"github.com/edvin/okapi/internal/model"
)

// TokenStore persists request tokens for the authorize step. Issuance and the
// request-to-access exchange live elsewhere.
type TokenStore interface {
	// LookupRequestToken returns the token whether or not it is bound.
	LookupRequestToken(ctx context.Context, key string) (*model.Token, error)

	// BindOwner sets the owner and verifier on a token that has neither, as a
	// single compare-and-set. It returns ErrTokenAlreadyBound without mutating
	// anything if the token is already bound.
	BindOwner(ctx context.Context, key string, userID int64, verifier string) error
}

// TrustStore records which users have granted which consumers.
type TrustStore interface {
	HasStandingGrant(ctx context.Context, consumerKey string, userID int64) (bool, error)

	// RecordGrant is an upsert keyed by (consumerKey, userID).
	RecordGrant(ctx context.Context, consumerKey string, userID int64) error

	// RevokeGrant removes the record. Revoking a pair with no record is not
	// an error.
	RevokeGrant(ctx context.Context, consumerKey string, userID int64) error
}

// ConsumerDirectory resolves consumer keys. It is read-only.
type ConsumerDirectory interface {
	GetConsumer(ctx context.Context, key string) (*model.Consumer, error)
}
