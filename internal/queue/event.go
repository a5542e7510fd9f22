// Package queue defines message payloads exchanged over the message broker.
package queue

// BoardingAcceptedEvent is published when a scan is accepted and the
// passenger is recorded on the flight. It carries enough information for
// downstream consumers to log, feed departure-control systems, or
// trigger analytics without querying the primary database.
type BoardingAcceptedEvent struct {
    SessionID    uint64 `json:"session_id"`
    PassengerID  uint64 `json:"passenger_id"`
    FlightCode   string `json:"flight_code"`
    Seat         string `json:"seat"`
    FullName     string `json:"full_name"`
    DisplayName  string `json:"display_name"`
    Tag          string `json:"tag,omitempty"`
    Infant       bool   `json:"infant,omitempty"`
    WatchlistHit bool   `json:"watchlist_hit,omitempty"`
    Reinstated   bool   `json:"reinstated,omitempty"`
    AcceptedAt   string `json:"accepted_at"`
}
