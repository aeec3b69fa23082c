package domain

import "errors"

// ErrSessionNotFound is returned when a user has no session in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotProvisioned is returned when the history storage has not been created yet.
// The operator must provision it explicitly before serving traffic.
var ErrNotProvisioned = errors.New("history storage not provisioned")

// ErrDirectory marks failures of the external directory API (network, auth, rate limits).
var ErrDirectory = errors.New("directory request failed")

// ErrIncompleteCriteria is returned when a search is attempted before every criterion is collected.
var ErrIncompleteCriteria = errors.New("search criteria incomplete")
