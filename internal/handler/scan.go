package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/normalize"
    "github.com/iliyamo/gate-boarding/internal/queue"
    "github.com/iliyamo/gate-boarding/internal/reconcile"
    "github.com/iliyamo/gate-boarding/internal/repository"
    "github.com/iliyamo/gate-boarding/internal/scan"
    "github.com/iliyamo/gate-boarding/internal/watchlist"
    queuepublisher "github.com/iliyamo/gate-boarding/internal/service"
)

// Publisher sends a boarding-accepted event to the message broker.
// Failures are the publisher's problem; boarding never waits on the
// broker.
type Publisher func(ctx context.Context, event queue.BoardingAcceptedEvent) error

// ScanHandler processes boarding-pass scans and manual passenger
// entries.  Each accepted scan runs through the reconciliation engine
// as one atomic transaction; many devices may post concurrently.
type ScanHandler struct {
    Engine    *reconcile.Engine         // atomic scan reconciliation
    Watchlist *repository.WatchlistRepo // entries matched against each arrival
    Publish   Publisher                 // boarding.accepted events, may be nil in tests
}

// NewScanHandler constructs a ScanHandler.  Engine and watchlist must
// be non-nil; the publisher defaults to the RabbitMQ one when nil.
func NewScanHandler(engine *reconcile.Engine, wl *repository.WatchlistRepo, publish Publisher) *ScanHandler {
    if engine == nil || wl == nil {
        panic("nil dependency passed to NewScanHandler")
    }
    if publish == nil {
        publish = queuepublisher.PublishBoardingAccepted
    }
    return &ScanHandler{Engine: engine, Watchlist: wl, Publish: publish}
}

type scanRequest struct {
    Payload     string `json:"payload"`
    Tag         string `json:"tag"`          // "", "DFT" or "PRE"
    ForceInfant bool   `json:"force_infant"` // operator override: admit onto an occupied seat
}

type manualEntryRequest struct {
    FullName   string `json:"full_name"`
    Seat       string `json:"seat"`
    FlightCode string `json:"flight_code"` // optional, checked against the session when present
    Tag        string `json:"tag"`
    Infant     bool   `json:"infant"`
}

func parseTag(s string) (model.Tag, bool) {
    switch model.Tag(s) {
    case model.TagNone, model.TagDFT, model.TagPre:
        return model.Tag(s), true
    }
    return model.TagNone, false
}

// buildInput turns a parsed boarding pass into a reconciliation input,
// resolving the watchlist hit along the way.
func (h *ScanHandler) buildInput(ctx context.Context, sessionID uint64, bp *scan.BoardingPass, tag model.Tag, infant bool) (reconcile.Input, error) {
    in := reconcile.Input{
        SessionID:   sessionID,
        FlightCode:  bp.FlightCode,
        Seat:        bp.Seat,
        FullName:    bp.FullName,
        DisplayName: bp.DisplayName,
        Tag:         tag,
        Infant:      infant,
    }
    if in.FullName != "" {
        entries, err := h.Watchlist.ListBySession(ctx, sessionID)
        if err != nil {
            return reconcile.Input{}, err
        }
        in.WatchlistHit = watchlist.Match(in.FullName, entries)
    }
    return in, nil
}

// Submit handles POST /v1/sessions/:id/scans: parse the raw payload,
// normalize, match against the watchlist and commit the claim.
func (h *ScanHandler) Submit(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    var body scanRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Payload == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload is required"})
    }
    tag, ok := parseTag(body.Tag)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tag must be empty, DFT or PRE"})
    }

    bp, err := scan.Parse(body.Payload)
    if err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "parse failure"})
    }

    ctx := c.Request().Context()
    in, err := h.buildInput(ctx, sessionID, bp, tag, body.ForceInfant)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return h.commit(c, in, bp.Heuristic)
}

// Evaluate handles POST /v1/sessions/:id/scans/evaluate: the read-only
// probe a device runs before prompting the operator.  Nothing is
// written; a clean verdict can still lose the race at commit time.
func (h *ScanHandler) Evaluate(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    var body scanRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Payload == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload is required"})
    }
    tag, ok := parseTag(body.Tag)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tag must be empty, DFT or PRE"})
    }

    bp, err := scan.Parse(body.Payload)
    if err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "parse failure"})
    }

    ctx := c.Request().Context()
    in, err := h.buildInput(ctx, sessionID, bp, tag, body.ForceInfant)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    dec, err := h.Engine.Evaluate(ctx, in)
    if err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    view := echo.Map{
        "proceed":       dec.Proceed,
        "prior_offload": dec.PriorOffload,
        "watchlist_hit": in.WatchlistHit,
        "parsed": echo.Map{
            "flight_code":  bp.FlightCode,
            "seat":         bp.Seat,
            "full_name":    bp.FullName,
            "display_name": bp.DisplayName,
            "heuristic":    bp.Heuristic,
        },
    }
    if dec.SeatConflict != nil {
        view["seat_conflict"] = echo.Map{
            "seat":          dec.SeatConflict.Seat,
            "occupant_id":   dec.SeatConflict.OccupantID,
            "occupant_name": dec.SeatConflict.OccupantName,
        }
    }
    if dec.FlightMismatch != nil {
        view["flight_mismatch"] = echo.Map{
            "expected": dec.FlightMismatch.Expected,
            "got":      dec.FlightMismatch.Got,
        }
    }
    return c.JSON(http.StatusOK, view)
}

// ManualEntry handles POST /v1/sessions/:id/passengers: a gate agent
// types the details when no pass can be scanned.  The entry runs the
// same reconciliation path as a scan, minus the parser.
func (h *ScanHandler) ManualEntry(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    var body manualEntryRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    tag, ok := parseTag(body.Tag)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tag must be empty, DFT or PRE"})
    }
    seat := normalize.Seat(body.Seat)
    if seat == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is required"})
    }

    bp := &scan.BoardingPass{
        FlightCode:  normalize.FlightStrict(body.FlightCode),
        Seat:        seat,
        FullName:    normalize.Name(body.FullName),
        DisplayName: body.FullName,
    }
    ctx := c.Request().Context()
    in, err := h.buildInput(ctx, sessionID, bp, tag, body.Infant)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return h.commit(c, in, false)
}

// commit runs the engine, translates errors into HTTP responses and
// fires the boarding.accepted event on success.
func (h *ScanHandler) commit(c echo.Context, in reconcile.Input, heuristic bool) error {
    res, err := h.Engine.Commit(c.Request().Context(), in)
    if err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    p := res.Passenger
    ev := queue.BoardingAcceptedEvent{
        SessionID:    p.SessionID,
        PassengerID:  p.ID,
        FlightCode:   in.FlightCode,
        Seat:         p.Seat,
        FullName:     p.FullName,
        DisplayName:  p.DisplayName,
        Tag:          string(p.Tag),
        Infant:       p.Infant,
        WatchlistHit: p.WatchlistHit,
        Reinstated:   p.LastEvent == model.EventReinstated,
        AcceptedAt:   p.ScannedAt.UTC().Format(time.RFC3339),
    }
    // fire and forget; the request must not wait on the broker
    go func() { _ = h.Publish(context.Background(), ev) }()

    return c.JSON(http.StatusCreated, echo.Map{
        "passenger":             passengerView(p),
        "reinstatement_warning": res.ReinstatementWarning,
        "watchlist_hit":         p.WatchlistHit,
        "heuristic_parse":       heuristic,
    })
}
