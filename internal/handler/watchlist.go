package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/normalize"
    "github.com/iliyamo/gate-boarding/internal/repository"
    "github.com/iliyamo/gate-boarding/internal/watchlist"
)

// WatchlistHandler manages the short per-session list of names every
// accepted passenger is matched against.
type WatchlistHandler struct {
    Watchlist *repository.WatchlistRepo
}

// NewWatchlistHandler constructs a WatchlistHandler.
func NewWatchlistHandler(wl *repository.WatchlistRepo) *WatchlistHandler {
    if wl == nil {
        panic("nil repository passed to NewWatchlistHandler")
    }
    return &WatchlistHandler{Watchlist: wl}
}

// Add handles POST /v1/sessions/:id/watchlist.  The name is normalized
// and decomposed once here so per-scan matching stays cheap.
func (h *WatchlistHandler) Add(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    var body struct {
        FullName string `json:"full_name"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    name := normalize.Name(body.FullName)
    if name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name is required"})
    }
    surname, firstToken := watchlist.Decompose(name)

    entry := model.WatchlistEntry{
        SessionID:  sessionID,
        FullName:   name,
        Surname:    surname,
        FirstToken: firstToken,
        CreatedAt:  time.Now().UTC(),
    }
    if err := h.Watchlist.Add(c.Request().Context(), &entry); err != nil {
        if err == repository.ErrWatchlistFull {
            return c.JSON(http.StatusConflict, echo.Map{
                "error": "watchlist full",
                "limit": model.MaxWatchlistEntries,
            })
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, watchlistView(entry))
}

// List handles GET /v1/sessions/:id/watchlist.
func (h *WatchlistHandler) List(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    entries, err := h.Watchlist.ListBySession(c.Request().Context(), sessionID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    views := make([]echo.Map, 0, len(entries))
    for _, e := range entries {
        views = append(views, watchlistView(e))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "entries": views,
        "limit":   model.MaxWatchlistEntries,
    })
}

// Remove handles DELETE /v1/sessions/:id/watchlist/:wid.
func (h *WatchlistHandler) Remove(c echo.Context) error {
    sessionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    wid, err := pathID(c, "wid")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid watchlist entry id"})
    }
    if err := h.Watchlist.Delete(c.Request().Context(), sessionID, wid); err != nil {
        if err == repository.ErrWatchlistEntryNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "watchlist entry not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}
