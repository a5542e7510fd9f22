// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios with
// errors.Is instead of string matching.
package repository

import "errors"

// ErrSessionNotFound indicates the flight session does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrSessionNotFound = errors.New("flight session not found")

// ErrPassengerNotFound indicates the passenger does not exist or does
// not belong to the addressed session.
var ErrPassengerNotFound = errors.New("passenger not found")

// ErrWatchlistFull is returned when adding an entry would exceed the
// per-session watchlist capacity. Matching cost is linear in the list,
// so the bound is enforced at write time.
var ErrWatchlistFull = errors.New("watchlist full")

// ErrWatchlistEntryNotFound indicates the watchlist entry does not
// exist in the addressed session.
var ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")
