package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/edvin/okapi/internal/model"
	"github.com/edvin/okapi/internal/platform"
)

// State is a step of the authorize flow for one request token.
type State string

const (
	StateTokenNotFound      State = "TOKEN_NOT_FOUND"
	StateAwaitingOwnerLogin State = "AWAITING_OWNER_LOGIN"
	StateAwaitingConsent    State = "AWAITING_CONSENT"
	StateGranted            State = "GRANTED"
	StateDenied             State = "DENIED"
	StateFinalized          State = "FINALIZED"
)

// Terminal reports whether the flow stops at s for good.
func (s State) Terminal() bool {
	switch s {
	case StateTokenNotFound, StateDenied, StateFinalized:
		return true
	}
	return false
}

// DecisionGranted is the only decision value that grants access. Anything
// else submitted by the owner is a denial.
const DecisionGranted = "granted"

// Request carries everything one pass through the flow needs. Owner is nil
// when nobody is logged in, Decision is nil when the owner did not submit the
// consent form.
type Request struct {
	TokenKey string
	Owner    *int64
	Decision *string
}

// Outcome is where a request ended up. Token is set for every state except
// StateTokenNotFound. Consumer is only resolved for StateAwaitingConsent.
type Outcome struct {
	State       State
	Token       *model.Token
	Consumer    *model.Consumer
	Owner       int64
	AutoGranted bool
}

// Verifier returns the verifier of a finalized outcome.
func (o *Outcome) Verifier() string {
	if o.Token == nil || o.Token.Verifier == nil {
		return ""
	}
	return *o.Token.Verifier
}

type Flow struct {
	tokens      TokenStore
	trust       TrustStore
	consumers   ConsumerDirectory
	newVerifier func() (string, error)
}

func NewFlow(tokens TokenStore, trust TrustStore, consumers ConsumerDirectory) *Flow {
	return &Flow{
		tokens:      tokens,
		trust:       trust,
		consumers:   consumers,
		newVerifier: platform.NewVerifier,
	}
}

// Run evaluates a single authorize request. Unknown tokens, missing owners
// and denials are outcomes, not errors; an error means a store failed.
func (f *Flow) Run(ctx context.Context, req Request) (*Outcome, error) {
	tok, err := f.tokens.LookupRequestToken(ctx, req.TokenKey)
	if errors.Is(err, ErrTokenNotFound) {
		return &Outcome{State: StateTokenNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load request token: %w", err)
	}

	if req.Owner == nil {
		return &Outcome{State: StateAwaitingOwnerLogin, Token: tok}, nil
	}
	owner := *req.Owner

	trusted, err := f.trust.HasStandingGrant(ctx, tok.ConsumerKey, owner)
	if err != nil {
		return nil, fmt.Errorf("check standing grant: %w", err)
	}
	if trusted {
		return f.finalize(ctx, tok, owner, true)
	}

	if req.Decision == nil {
		consumer, err := f.consumers.GetConsumer(ctx, tok.ConsumerKey)
		if errors.Is(err, ErrConsumerNotFound) {
			return &Outcome{State: StateTokenNotFound}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve consumer: %w", err)
		}
		return &Outcome{State: StateAwaitingConsent, Token: tok, Consumer: consumer, Owner: owner}, nil
	}

	if *req.Decision != DecisionGranted {
		return &Outcome{State: StateDenied, Token: tok, Owner: owner}, nil
	}

	// Trust goes in before the bind so a failed bind is repaired by a retry
	// taking the standing-grant path.
	if err := f.trust.RecordGrant(ctx, tok.ConsumerKey, owner); err != nil {
		return nil, fmt.Errorf("record grant: %w", err)
	}
	return f.finalize(ctx, tok, owner, false)
}

func (f *Flow) finalize(ctx context.Context, tok *model.Token, owner int64, auto bool) (*Outcome, error) {
	verifier, err := f.newVerifier()
	if err != nil {
		return nil, err
	}

	err = f.tokens.BindOwner(ctx, tok.Key, owner, verifier)
	switch {
	case err == nil:
		bound := *tok
		bound.UserID = &owner
		bound.Verifier = &verifier
		return &Outcome{State: StateFinalized, Token: &bound, Owner: owner, AutoGranted: auto}, nil
	case errors.Is(err, ErrTokenAlreadyBound):
		return f.resolveBound(ctx, tok.Key, owner, auto)
	case errors.Is(err, ErrTokenNotFound):
		return &Outcome{State: StateTokenNotFound}, nil
	default:
		return nil, fmt.Errorf("bind owner: %w", err)
	}
}

// resolveBound handles a lost bind race. The winner's verifier is returned
// only to the same owner.
func (f *Flow) resolveBound(ctx context.Context, key string, owner int64, auto bool) (*Outcome, error) {
	tok, err := f.tokens.LookupRequestToken(ctx, key)
	if errors.Is(err, ErrTokenNotFound) {
		return &Outcome{State: StateTokenNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reload request token: %w", err)
	}
	if tok.UserID == nil || *tok.UserID != owner || tok.Verifier == nil {
		return &Outcome{State: StateTokenNotFound}, nil
	}
	return &Outcome{State: StateFinalized, Token: tok, Owner: owner, AutoGranted: auto}, nil
}
