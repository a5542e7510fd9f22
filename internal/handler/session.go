package handler

import (
    "net/http" // HTTP status codes
    "time"     // timestamps for session creation

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/normalize"
    "github.com/iliyamo/gate-boarding/internal/repository"
    "github.com/iliyamo/gate-boarding/internal/stats"
)

// SessionHandler groups the repositories needed to manage flight
// sessions and to assemble the derived read views (live stats and the
// export snapshot).
type SessionHandler struct {
    Sessions   *repository.SessionRepo   // session rows and milestones
    Passengers *repository.PassengerRepo // roster reads for stats/export
    Claims     *repository.SeatClaimRepo // occupancy history for export
    Watchlist  *repository.WatchlistRepo // entries for stats/export
}

// NewSessionHandler constructs a SessionHandler.  All dependencies must
// be non-nil.
func NewSessionHandler(sessions *repository.SessionRepo, passengers *repository.PassengerRepo, claims *repository.SeatClaimRepo, watchlist *repository.WatchlistRepo) *SessionHandler {
    if sessions == nil || passengers == nil || claims == nil || watchlist == nil {
        panic("nil repository passed to NewSessionHandler")
    }
    return &SessionHandler{Sessions: sessions, Passengers: passengers, Claims: claims, Watchlist: watchlist}
}

// Create handles POST /v1/sessions.  The flight code is normalized
// before storage; every subsequent scan is compared against the stored
// form.
func (h *SessionHandler) Create(c echo.Context) error {
    var body struct {
        FlightCode string `json:"flight_code"`
        BookedPax  int    `json:"booked_pax"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    code := normalize.FlightStrict(body.FlightCode)
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_code is required"})
    }
    if body.BookedPax < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booked_pax must not be negative"})
    }

    sess := model.FlightSession{
        FlightCode: code,
        BookedPax:  body.BookedPax,
        CreatedAt:  time.Now().UTC(),
    }
    if err := h.Sessions.Create(c.Request().Context(), &sess); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, sessionView(sess))
}

// Get handles GET /v1/sessions/:id and returns the session state with
// its boarding milestones.
func (h *SessionHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    sess, err := h.Sessions.GetByID(c.Request().Context(), id)
    if err == repository.ErrSessionNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, sessionView(sess))
}

// Finish handles POST /v1/sessions/:id/finish.  Declaring boarding
// finished is idempotent; the original finish time is kept on repeats.
func (h *SessionHandler) Finish(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    ctx := c.Request().Context()
    if err := h.Sessions.MarkFinished(ctx, id, time.Now().UTC()); err != nil {
        if err == repository.ErrSessionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    sess, err := h.Sessions.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, sessionView(sess))
}

// Stats handles GET /v1/sessions/:id/stats.  The snapshot is recomputed
// from the roster on every call; response caching is the router's
// concern.
func (h *SessionHandler) Stats(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    ctx := c.Request().Context()
    sess, err := h.Sessions.GetByID(ctx, id)
    if err == repository.ErrSessionNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    passengers, err := h.Passengers.ListBySession(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    entries, err := h.Watchlist.ListBySession(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, stats.Compute(sess, passengers, entries))
}

// Export handles GET /v1/sessions/:id/export and returns one flat
// snapshot of everything the session accumulated: state, roster, seat
// occupancy history and watchlist.
func (h *SessionHandler) Export(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    ctx := c.Request().Context()
    sess, err := h.Sessions.GetByID(ctx, id)
    if err == repository.ErrSessionNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    passengers, err := h.Passengers.ListBySession(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    claims, err := h.Claims.ListBySession(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    entries, err := h.Watchlist.ListBySession(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    claimViews := make([]echo.Map, 0, len(claims))
    for _, cl := range claims {
        claimViews = append(claimViews, claimView(cl))
    }
    entryViews := make([]echo.Map, 0, len(entries))
    for _, e := range entries {
        entryViews = append(entryViews, watchlistView(e))
    }

    return c.JSON(http.StatusOK, echo.Map{
        "session":     sessionView(sess),
        "passengers":  passengerViews(passengers),
        "seat_claims": claimViews,
        "watchlist":   entryViews,
        "stats":       stats.Compute(sess, passengers, entries),
        "exported_at": time.Now().UTC().Format(time.RFC3339),
    })
}
