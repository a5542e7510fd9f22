package model

import "time"

// FlightSession is one boarding session for one departure.  All scans,
// seat claims and watchlist entries are scoped to a session so multiple
// flights can board through the same deployment without cross-talk.
//
// Milestone timestamps are first-write-wins: FirstPaxAt and FinishedAt
// are set at most once.  LastPaxAt is the exception and moves forward
// on every accepted scan.
//
// Fields:
//  ID               – primary key identifier.
//  FlightCode       – normalized flight code (e.g. "BA679").
//  BookedPax        – number of passengers booked on the flight.
//  BoardingFinished – set when the gate declares boarding complete.
//  FirstPaxAt       – when the first passenger boarded.
//  LastPaxAt        – when the most recent passenger boarded.
//  FinishedAt       – when boarding was declared finished.
//  CreatedAt        – creation timestamp.
type FlightSession struct {
    ID               uint64     // flight_sessions.id
    FlightCode       string     // flight_sessions.flight_code
    BookedPax        int        // flight_sessions.booked_pax
    BoardingFinished bool       // flight_sessions.boarding_finished
    FirstPaxAt       *time.Time // flight_sessions.first_pax_at (nullable)
    LastPaxAt        *time.Time // flight_sessions.last_pax_at (nullable)
    FinishedAt       *time.Time // flight_sessions.finished_at (nullable)
    CreatedAt        time.Time  // flight_sessions.created_at
}
