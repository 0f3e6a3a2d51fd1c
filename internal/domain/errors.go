package domain

import "errors"

// Ledger errors. All are local and recoverable; none should crash the process.
var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrQuotaExceeded      = errors.New("daily analysis quota exceeded")
	ErrStaleSession       = errors.New("active session references a deleted account")
	ErrNotAuthenticated   = errors.New("no active session")
	ErrVipRequired        = errors.New("vip membership required")
)

// Analysis provider errors, classified from the raw Gemini failure.
var (
	ErrMissingCredential  = errors.New("analysis provider: missing api key")
	ErrInvalidCredential  = errors.New("analysis provider: invalid api key")
	ErrRateLimited        = errors.New("analysis provider: rate limit exceeded")
	ErrNetwork            = errors.New("analysis provider: network failure")
	ErrServiceUnavailable = errors.New("analysis provider: service unavailable")
	ErrEmptyResult        = errors.New("analysis provider: empty response")
	ErrProvider           = errors.New("analysis provider: request failed")
)
