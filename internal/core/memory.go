package core

import (
	"context"
	"sync"
	"time"

	"github.com/edvin/okapi/internal/model"
)

type trustKey struct {
	consumerKey string
	userID      int64
}

// MemoryStorage keeps consumers, tokens and trust records in process memory.
// It serves STORAGE_DRIVER=memory runs and tests. Values are copied in and out
// so callers never share pointers with the store.
type MemoryStorage struct {
	mu        sync.RWMutex
	consumers map[string]model.Consumer
	tokens    map[string]model.Token
	trust     map[trustKey]model.TrustRecord
	now       func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		consumers: make(map[string]model.Consumer),
		tokens:    make(map[string]model.Token),
		trust:     make(map[trustKey]model.TrustRecord),
		now:       time.Now,
	}
}

func (m *MemoryStorage) AddConsumer(c model.Consumer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumers[c.Key] = c
}

func (m *MemoryStorage) AddToken(t model.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.Key] = copyToken(t)
}

func (m *MemoryStorage) GetConsumer(_ context.Context, key string) (*model.Consumer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consumers[key]
	if !ok {
		return nil, ErrConsumerNotFound
	}
	return &c, nil
}

func (m *MemoryStorage) LookupRequestToken(_ context.Context, key string) (*model.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[key]
	if !ok || t.Type != model.TokenTypeRequest {
		return nil, ErrTokenNotFound
	}
	out := copyToken(t)
	return &out, nil
}

func (m *MemoryStorage) BindOwner(_ context.Context, key string, userID int64, verifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[key]
	if !ok || t.Type != model.TokenTypeRequest {
		return ErrTokenNotFound
	}
	if t.Bound() {
		return ErrTokenAlreadyBound
	}
	t.UserID = &userID
	t.Verifier = &verifier
	m.tokens[key] = t
	return nil
}

func (m *MemoryStorage) HasStandingGrant(_ context.Context, consumerKey string, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.trust[trustKey{consumerKey, userID}]
	return ok, nil
}

func (m *MemoryStorage) RecordGrant(_ context.Context, consumerKey string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trust[trustKey{consumerKey, userID}] = model.TrustRecord{
		ConsumerKey:  consumerKey,
		UserID:       userID,
		LastAccessAt: m.now(),
	}
	return nil
}

func (m *MemoryStorage) RevokeGrant(_ context.Context, consumerKey string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trust, trustKey{consumerKey, userID})
	return nil
}

// TrustRecord returns the stored record for the pair, if any.
func (m *MemoryStorage) TrustRecord(consumerKey string, userID int64) (model.TrustRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.trust[trustKey{consumerKey, userID}]
	return r, ok
}

func copyToken(t model.Token) model.Token {
	if t.UserID != nil {
		v := *t.UserID
		t.UserID = &v
	}
	if t.Verifier != nil {
		v := *t.Verifier
		t.Verifier = &v
	}
	if t.Callback != nil {
		v := *t.Callback
		t.Callback = &v
	}
	return t
}
