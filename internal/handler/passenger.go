package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gate-boarding/internal/reconcile"
    "github.com/iliyamo/gate-boarding/internal/repository"
)

// PassengerHandler serves the roster views and the passenger lifecycle
// operations that happen after acceptance: offload and DFT search
// completion.
type PassengerHandler struct {
    Passengers *repository.PassengerRepo
    Engine     *reconcile.Engine // offload releases the seat atomically
}

// NewPassengerHandler constructs a PassengerHandler.  Both dependencies
// must be non-nil.
func NewPassengerHandler(passengers *repository.PassengerRepo, engine *reconcile.Engine) *PassengerHandler {
    if passengers == nil || engine == nil {
        panic("nil dependency passed to NewPassengerHandler")
    }
    return &PassengerHandler{Passengers: passengers, Engine: engine}
}

// List handles GET /v1/sessions/:id/passengers and returns the full
// roster, offloaded passengers included.
func (h *PassengerHandler) List(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    passengers, err := h.Passengers.ListBySession(c.Request().Context(), sessionID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "passengers": passengerViews(passengers),
        "count":      len(passengers),
    })
}

// Offload handles POST /v1/sessions/:id/passengers/:pid/offload.  The
// passenger's seat claims are released and the record flips to
// OFFLOADED; the seat becomes claimable by a later scan.
func (h *PassengerHandler) Offload(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    pid, err := pathID(c, "pid")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid passenger id"})
    }
    p, err := h.Engine.Offload(c.Request().Context(), sessionID, pid)
    if err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"passenger": passengerView(p)})
}

// MarkSearched handles POST /v1/sessions/:id/passengers/:pid/searched.
// It records that the secondary search for a DFT-selected passenger was
// completed; repeated calls are harmless.
func (h *PassengerHandler) MarkSearched(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    pid, err := pathID(c, "pid")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid passenger id"})
    }
    ctx := c.Request().Context()
    if err := h.Passengers.MarkSearched(ctx, sessionID, pid, time.Now().UTC()); err != nil {
        if handled, resp := reconcileErrResponse(c, err); handled {
            return resp
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    p, err := h.Passengers.GetForSession(ctx, sessionID, pid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"passenger": passengerView(p)})
}
