package handler

// common.go holds the small helpers shared across boarding handlers:
// path-parameter parsing, JSON view construction and the translation of
// reconciliation errors into HTTP responses.

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/reconcile"
    "github.com/iliyamo/gate-boarding/internal/repository"
    "github.com/iliyamo/gate-boarding/internal/scan"
)

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid " + name)
    }
    return id, nil
}

func timePtrString(t *time.Time) any {
    if t == nil {
        return nil
    }
    return t.UTC().Format(time.RFC3339)
}

func sessionView(s model.FlightSession) echo.Map {
    return echo.Map{
        "id":                s.ID,
        "flight_code":       s.FlightCode,
        "booked_pax":        s.BookedPax,
        "boarding_finished": s.BoardingFinished,
        "first_pax_at":      timePtrString(s.FirstPaxAt),
        "last_pax_at":       timePtrString(s.LastPaxAt),
        "finished_at":       timePtrString(s.FinishedAt),
        "created_at":        s.CreatedAt.UTC().Format(time.RFC3339),
    }
}

func passengerView(p model.Passenger) echo.Map {
    return echo.Map{
        "id":            p.ID,
        "session_id":    p.SessionID,
        "full_name":     p.FullName,
        "display_name":  p.DisplayName,
        "seat":          p.Seat,
        "infant":        p.Infant,
        "tag":           string(p.Tag),
        "searched":      p.Searched,
        "watchlist_hit": p.WatchlistHit,
        "status":        string(p.Status),
        "last_event":    p.LastEvent,
        "scanned_at":    p.ScannedAt.UTC().Format(time.RFC3339),
    }
}

func passengerViews(ps []model.Passenger) []echo.Map {
    out := make([]echo.Map, 0, len(ps))
    for _, p := range ps {
        out = append(out, passengerView(p))
    }
    return out
}

func claimView(cl model.SeatClaim) echo.Map {
    return echo.Map{
        "id":            cl.ID,
        "seat":          cl.Seat,
        "passenger_id":  cl.PassengerID,
        "infant_exempt": cl.InfantExempt,
        "claimed_at":    cl.ClaimedAt.UTC().Format(time.RFC3339),
        "released_at":   timePtrString(cl.ReleasedAt),
    }
}

func watchlistView(e model.WatchlistEntry) echo.Map {
    return echo.Map{
        "id":          e.ID,
        "full_name":   e.FullName,
        "surname":     e.Surname,
        "first_token": e.FirstToken,
        "created_at":  e.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// reconcileErrResponse maps reconciliation and parsing failures onto
// HTTP responses.  A false return means the error was not recognized
// and the caller should fall back to a 500.
func reconcileErrResponse(c echo.Context, err error) (bool, error) {
    var dup *reconcile.SeatDuplicateError
    if errors.As(err, &dup) {
        return true, c.JSON(http.StatusConflict, echo.Map{
            "error":         "seat already occupied",
            "seat":          dup.Seat,
            "occupant_id":   dup.OccupantID,
            "occupant_name": dup.OccupantName,
        })
    }
    var mm *reconcile.FlightMismatchError
    if errors.As(err, &mm) {
        return true, c.JSON(http.StatusConflict, echo.Map{
            "error":    "flight mismatch",
            "expected": mm.Expected,
            "got":      mm.Got,
        })
    }
    switch {
    case errors.Is(err, reconcile.ErrDuplicateScan):
        return true, c.JSON(http.StatusConflict, echo.Map{"error": "duplicate scan"})
    case errors.Is(err, reconcile.ErrSeatRequired):
        return true, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no seat could be determined"})
    case errors.Is(err, scan.ErrUnrecoverable):
        return true, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unreadable boarding pass"})
    case errors.Is(err, reconcile.ErrTransactionConflict):
        return true, c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, retry the scan"})
    case errors.Is(err, reconcile.ErrAlreadyOffloaded):
        return true, c.JSON(http.StatusConflict, echo.Map{"error": "passenger already offloaded"})
    case errors.Is(err, reconcile.ErrPassengerNotFound), errors.Is(err, repository.ErrPassengerNotFound):
        return true, c.JSON(http.StatusNotFound, echo.Map{"error": "passenger not found"})
    case errors.Is(err, repository.ErrSessionNotFound):
        return true, c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
    }
    return false, nil
}
