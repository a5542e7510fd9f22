package model

import "time"

// MaxWatchlistEntries bounds the per-session watchlist.  Matching is
// O(entries) per scan, so the list stays small by construction.
const MaxWatchlistEntries = 10

// WatchlistEntry is one name the gate must detect among arriving
// passengers.  The surname/first-token decomposition is derived from
// the normalized name once at insert time so per-scan matching does no
// string splitting.
//
// Fields:
//  ID         – primary key identifier.
//  SessionID  – flight session the entry belongs to.
//  FullName   – normalized full name.
//  Surname    – first token of the normalized name.
//  FirstToken – second token of the normalized name, empty if absent.
//  CreatedAt  – creation timestamp.
type WatchlistEntry struct {
    ID         uint64    // watchlist_entries.id
    SessionID  uint64    // watchlist_entries.session_id
    FullName   string    // watchlist_entries.full_name
    Surname    string    // watchlist_entries.surname
    FirstToken string    // watchlist_entries.first_token
    CreatedAt  time.Time // watchlist_entries.created_at
}
