package core

import "errors"

var (
	// ErrTokenNotFound is returned for unknown or already exchanged request
	// tokens. It is a normal outcome, not a failure.
	ErrTokenNotFound = errors.New("request token not found")

	// ErrTokenAlreadyBound is returned by BindOwner when the token already
	// has an owner. The token is left untouched.
	ErrTokenAlreadyBound = errors.New("request token already bound")

	ErrConsumerNotFound = errors.New("consumer not found")
)
