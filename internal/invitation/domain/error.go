package domain

import "errors"

var (
	// ErrDispatchFailed means the invite email could not be sent and the
	// freshly minted token was compensated away. Retryable by the caller.
	ErrDispatchFailed = errors.New("invite notification dispatch failed")
	ErrInvalidRequest = errors.New("invalid invite request")
)
