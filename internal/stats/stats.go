// Package stats derives the live boarding counters shown on gate
// devices and exported for DFT compliance reporting.  Everything is
// recomputed from scratch on each call rather than maintained
// incrementally; with a roster of at most a few hundred passengers the
// recompute is cheap and cannot drift from the source data.
package stats

import (
    "math"
    "time"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/watchlist"
)

// Snapshot is one consistent view of the boarding counters.
type Snapshot struct {
    Booked           int        `json:"booked"`
    Active           int        `json:"active"`
    NotArrived       int        `json:"not_arrived"`
    Offloaded        int        `json:"offloaded"`
    WatchlistArrived int        `json:"watchlist_arrived"`
    WatchlistMissing int        `json:"watchlist_missing"`
    DFTSelected      int        `json:"dft_selected"`
    DFTSearched      int        `json:"dft_searched"`
    DFTRatioPct      float64    `json:"dft_ratio_pct"`
    BoardingFinished bool       `json:"boarding_finished"`
    FirstPaxAt       *time.Time `json:"first_pax_at,omitempty"`
    LastPaxAt        *time.Time `json:"last_pax_at,omitempty"`
    FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// Compute builds a Snapshot from the current passenger set, watchlist
// and session state.
//
// The DFT ratio denominator switches once boarding finishes: while
// boarding it is the booked count (how many could still be searched),
// afterwards it is the count of passengers actually on board.  A floor
// of one avoids division by zero on empty sessions.
func Compute(sess model.FlightSession, passengers []model.Passenger, entries []model.WatchlistEntry) Snapshot {
    snap := Snapshot{
        Booked:           sess.BookedPax,
        BoardingFinished: sess.BoardingFinished,
        FirstPaxAt:       sess.FirstPaxAt,
        LastPaxAt:        sess.LastPaxAt,
        FinishedAt:       sess.FinishedAt,
    }

    arrivedNames := make(map[string]struct{})
    for _, p := range passengers {
        if p.Status != model.StatusActive {
            snap.Offloaded++
            continue
        }
        snap.Active++
        if p.FullName != "" {
            arrivedNames[p.FullName] = struct{}{}
        }
        if p.Tag == model.TagDFT {
            snap.DFTSelected++
            if p.Searched {
                snap.DFTSearched++
            }
        }
    }

    snap.NotArrived = sess.BookedPax - snap.Active
    if snap.NotArrived < 0 {
        snap.NotArrived = 0
    }

    // Watchlist coverage: distinct arrived names that hit the list, and
    // entries no arrived passenger matches.
    for name := range arrivedNames {
        if watchlist.Match(name, entries) {
            snap.WatchlistArrived++
        }
    }
    for _, e := range entries {
        found := false
        for name := range arrivedNames {
            if watchlist.Match(name, []model.WatchlistEntry{e}) {
                found = true
                break
            }
        }
        if !found {
            snap.WatchlistMissing++
        }
    }

    denom := sess.BookedPax
    if sess.BoardingFinished {
        denom = snap.Active
    }
    if denom < 1 {
        denom = 1
    }
    snap.DFTRatioPct = math.Round(float64(snap.DFTSearched)/float64(denom)*1000) / 10

    return snap
}
