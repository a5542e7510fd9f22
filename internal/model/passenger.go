package model

import "time"

// Tag marks a passenger for special handling at the gate.
// An empty tag means normal boarding.
type Tag string

const (
    TagNone Tag = ""    // regular passenger
    TagDFT  Tag = "DFT" // selected for secondary screening
    TagPre  Tag = "PRE" // pre-boarding (assistance, families)
)

// PassengerStatus is the lifecycle state of a passenger record.
// Records are never physically deleted; offloading is a status
// transition so the boarding history stays auditable.
type PassengerStatus string

const (
    StatusActive    PassengerStatus = "ACTIVE"
    StatusOffloaded PassengerStatus = "OFFLOADED"
)

// Passenger is one person admitted onto the flight roster.  A record is
// created on the first successful seat claim and mutated on offload or
// reinstatement.
//
// Fields:
//  ID             – primary key identifier.
//  SessionID      – flight session this passenger belongs to.
//  FullName       – normalized full name used for dedup and watchlist checks.
//  DisplayName    – name as it appeared on the boarding pass.
//  Seat           – normalized seat designator (e.g. "3A").
//  Infant         – true when admitted as an infant-exempt claim.
//  Tag            – DFT / PRE marker, empty for regular boarding.
//  Searched       – true once a DFT search has been completed.
//  WatchlistHit   – true when the name matched a watchlist entry at scan time.
//  Status         – ACTIVE or OFFLOADED.
//  LastEvent      – last lifecycle event (BOARDED, OFFLOADED, REINSTATED).
//  ScannedAt      – when the accepting scan was processed.
//  UpdatedAt      – last modification timestamp.
type Passenger struct {
    ID           uint64          // passengers.id
    SessionID    uint64          // passengers.session_id
    FullName     string          // passengers.full_name
    DisplayName  string          // passengers.display_name
    Seat         string          // passengers.seat
    Infant       bool            // passengers.infant
    Tag          Tag             // passengers.tag
    Searched     bool            // passengers.searched
    WatchlistHit bool            // passengers.watchlist_hit
    Status       PassengerStatus // passengers.status
    LastEvent    string          // passengers.last_event
    ScannedAt    time.Time       // passengers.scanned_at
    UpdatedAt    time.Time       // passengers.updated_at
}

// Lifecycle event markers stored in Passenger.LastEvent.
const (
    EventBoarded    = "BOARDED"
    EventOffloaded  = "OFFLOADED"
    EventReinstated = "REINSTATED"
)
