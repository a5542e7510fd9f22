package model

import "time"

// SeatClaim records exclusive occupancy of a seat within one flight
// session.  At most one unreleased non-exempt claim may exist per seat;
// an infant-exempt claim coexists with a non-exempt claim on the same
// seat.  Claims are released, never deleted, when the owning passenger
// is offloaded so the seat becomes available to a new claimant while
// the occupancy history survives.
//
// Fields:
//  ID           – primary key identifier.
//  SessionID    – flight session the claim belongs to.
//  Seat         – normalized seat designator.
//  PassengerID  – passenger occupying the seat.
//  InfantExempt – claim does not count against the one-per-seat rule.
//  ClaimedAt    – when the claim was accepted.
//  ReleasedAt   – set when the owning passenger was offloaded.
type SeatClaim struct {
    ID           uint64     // seat_claims.id
    SessionID    uint64     // seat_claims.session_id
    Seat         string     // seat_claims.seat
    PassengerID  uint64     // seat_claims.passenger_id
    InfantExempt bool       // seat_claims.infant_exempt
    ClaimedAt    time.Time  // seat_claims.claimed_at
    ReleasedAt   *time.Time // seat_claims.released_at (nullable)
}

// Active reports whether the claim still occupies its seat.
func (c SeatClaim) Active() bool {
    return c.ReleasedAt == nil
}
