package domain

import "errors"

// ErrInvalidOrExpired is the uniform outcome for a lookup miss, an
// already-consumed token and a past-expiry token. Callers must not
// distinguish these to the end user.
var ErrInvalidOrExpired = errors.New("token invalid or expired")
