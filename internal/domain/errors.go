package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but is owned by another user.
// The two cases are deliberately indistinguishable. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. end date before start date, missing hotel name).
// Handlers map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when a bearer token is missing, malformed or
// expired, and when login credentials do not match. The message never says
// which credential was wrong. Handlers map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned when a unique constraint would be violated,
// e.g. registering an email that is already taken. Handlers map this to HTTP 400.
var ErrConflict = errors.New("conflict")
