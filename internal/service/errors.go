package service

import "errors"

// ErrInvalidInput marks failures caused by a malformed or inconsistent
// request payload. Handlers map it to a 400 response with the wrapped detail.
var ErrInvalidInput = errors.New("invalid input")
