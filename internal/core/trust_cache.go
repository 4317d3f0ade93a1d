package core

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedTrustStore fronts a TrustStore with one Redis set per consumer holding
// the ids of users that granted it. Only positive answers are cached, so a
// cache miss always falls through to the backing store. RevokeGrant evicts the
// member; a record removed behind the cache's back is still reported as a
// standing grant until ttl passes, so ttl should stay short. Redis errors are
// logged and otherwise ignored.
type CachedTrustStore struct {
	next      TrustStore
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	logger    zerolog.Logger
}

func NewCachedTrustStore(next TrustStore, client redis.UniversalClient, keyPrefix string, ttl time.Duration, logger zerolog.Logger) *CachedTrustStore {
	return &CachedTrustStore{
		next:      next,
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger.With().Str("component", "trust-cache").Logger(),
	}
}

func (s *CachedTrustStore) key(consumerKey string) string {
	return s.keyPrefix + "trust:" + consumerKey
}

func (s *CachedTrustStore) HasStandingGrant(ctx context.Context, consumerKey string, userID int64) (bool, error) {
	member := strconv.FormatInt(userID, 10)
	hit, err := s.client.SIsMember(ctx, s.key(consumerKey), member).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("consumer_key", consumerKey).Msg("trust cache read failed")
	} else if hit {
		return true, nil
	}

	ok, err := s.next.HasStandingGrant(ctx, consumerKey, userID)
	if err != nil {
		return false, err
	}
	if ok {
		s.remember(ctx, consumerKey, member)
	}
	return ok, nil
}

func (s *CachedTrustStore) RecordGrant(ctx context.Context, consumerKey string, userID int64) error {
	if err := s.next.RecordGrant(ctx, consumerKey, userID); err != nil {
		return err
	}
	s.remember(ctx, consumerKey, strconv.FormatInt(userID, 10))
	return nil
}

// RevokeGrant deletes the record in the backing store and then evicts it from
// the cache.
func (s *CachedTrustStore) RevokeGrant(ctx context.Context, consumerKey string, userID int64) error {
	if err := s.next.RevokeGrant(ctx, consumerKey, userID); err != nil {
		return err
	}
	s.Forget(ctx, consumerKey, userID)
	return nil
}

// Forget evicts a cached grant without touching the backing store.
func (s *CachedTrustStore) Forget(ctx context.Context, consumerKey string, userID int64) {
	if err := s.client.SRem(ctx, s.key(consumerKey), strconv.FormatInt(userID, 10)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("consumer_key", consumerKey).Msg("trust cache evict failed")
	}
}

func (s *CachedTrustStore) remember(ctx context.Context, consumerKey, member string) {
	key := s.key(consumerKey)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, member)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Str("consumer_key", consumerKey).Msg("trust cache write failed")
	}
}
