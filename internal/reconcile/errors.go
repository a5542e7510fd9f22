// Package reconcile turns parsed boarding-pass records into roster and
// seat-ledger mutations.  Every accepted scan is exactly one storage
// transaction: all reads before any write, all-or-nothing, retried on
// transient write conflicts from concurrent gate devices.
package reconcile

import (
    "errors"
    "fmt"
)

// ErrSeatRequired is returned when the input carries no seat.  Seat is
// the dedup key; the parser normally guarantees it, manual entry may not.
var ErrSeatRequired = errors.New("seat required")

// ErrDuplicateScan is returned when the same still-active passenger is
// submitted again for the seat they already hold.  No second record is
// created.
var ErrDuplicateScan = errors.New("duplicate scan")

// ErrTransactionConflict is returned once the bounded retry budget for
// transient store conflicts is exhausted.
var ErrTransactionConflict = errors.New("transaction conflict")

// ErrAlreadyOffloaded is returned when offloading a passenger who is
// not currently active.
var ErrAlreadyOffloaded = errors.New("passenger already offloaded")

// ErrPassengerNotFound is returned when the passenger does not exist in
// the session the caller addressed.
var ErrPassengerNotFound = errors.New("passenger not found")

// SeatDuplicateError reports a seat already claimed by a different
// non-exempt passenger.  It carries enough context for the operator to
// decide on an infant override.
type SeatDuplicateError struct {
    Seat         string
    OccupantID   uint64
    OccupantName string
}

func (e *SeatDuplicateError) Error() string {
    return fmt.Sprintf("seat %s already claimed by passenger %d (%s)", e.Seat, e.OccupantID, e.OccupantName)
}

// FlightMismatchError reports a scanned flight code that differs from
// the session flight after normalization.  Never auto-corrected.
type FlightMismatchError struct {
    Expected string
    Got      string
}

func (e *FlightMismatchError) Error() string {
    return fmt.Sprintf("flight mismatch: expected %s, got %s", e.Expected, e.Got)
}
