package stats

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/watchlist"
)

func pax(name string, tag model.Tag, searched bool) model.Passenger {
    return model.Passenger{
        FullName: name,
        Tag:      tag,
        Searched: searched,
        Status:   model.StatusActive,
    }
}

func entry(full string) model.WatchlistEntry {
    surname, first := watchlist.Decompose(full)
    return model.WatchlistEntry{FullName: full, Surname: surname, FirstToken: first}
}

// Worked example: booked=100, 40 active, 10 DFT-searched.  While
// boarding the ratio is 10/100; once boarding finishes it recomputes
// against the on-board count, 10/40.
func TestComputeDFTRatio(t *testing.T) {
    var passengers []model.Passenger
    for i := 0; i < 40; i++ {
        p := pax("", model.TagNone, false)
        if i < 10 {
            p.Tag = model.TagDFT
            p.Searched = true
        }
        passengers = append(passengers, p)
    }
    sess := model.FlightSession{BookedPax: 100}

    snap := Compute(sess, passengers, nil)
    assert.Equal(t, 40, snap.Active)
    assert.Equal(t, 60, snap.NotArrived)
    assert.Equal(t, 10, snap.DFTSelected)
    assert.Equal(t, 10, snap.DFTSearched)
    assert.InDelta(t, 10.0, snap.DFTRatioPct, 0.001)

    sess.BoardingFinished = true
    snap = Compute(sess, passengers, nil)
    assert.InDelta(t, 25.0, snap.DFTRatioPct, 0.001)
}

func TestComputeWatchlistCoverage(t *testing.T) {
    passengers := []model.Passenger{
        pax("JOHN SMITH", model.TagNone, false),
        pax("JANE DOE", model.TagNone, false),
        pax("DAVID BROWN", model.TagNone, false),
    }
    entries := []model.WatchlistEntry{
        entry("SMITH JOHN"), // arrived, order swapped
        entry("WHITE WALTER"),
    }

    snap := Compute(model.FlightSession{BookedPax: 3}, passengers, entries)
    assert.Equal(t, 1, snap.WatchlistArrived)
    assert.Equal(t, 1, snap.WatchlistMissing)
}

func TestComputeOffloadedExcluded(t *testing.T) {
    off := pax("JOHN SMITH", model.TagDFT, true)
    off.Status = model.StatusOffloaded
    passengers := []model.Passenger{off, pax("JANE DOE", model.TagNone, false)}

    snap := Compute(model.FlightSession{BookedPax: 5}, passengers, nil)
    assert.Equal(t, 1, snap.Active)
    assert.Equal(t, 1, snap.Offloaded)
    assert.Equal(t, 4, snap.NotArrived)
    assert.Zero(t, snap.DFTSelected)
    assert.Zero(t, snap.DFTSearched)
}

// More active passengers than booked must not go negative, and an
// empty session must not divide by zero.
func TestComputeEdges(t *testing.T) {
    snap := Compute(model.FlightSession{BookedPax: 1}, []model.Passenger{
        pax("A ONE", model.TagNone, false),
        pax("B TWO", model.TagNone, false),
    }, nil)
    assert.Zero(t, snap.NotArrived)

    snap = Compute(model.FlightSession{}, nil, nil)
    assert.Zero(t, snap.DFTRatioPct)
}

func TestComputeRounding(t *testing.T) {
    // 1 searched of 3 on board after finish: 33.333... -> 33.3
    passengers := []model.Passenger{
        pax("A ONE", model.TagDFT, true),
        pax("B TWO", model.TagNone, false),
        pax("C THREE", model.TagNone, false),
    }
    sess := model.FlightSession{BookedPax: 3, BoardingFinished: true}
    snap := Compute(sess, passengers, nil)
    assert.InDelta(t, 33.3, snap.DFTRatioPct, 0.001)
}
