// This file manages the per-session watchlist: a short list of names
// every accepted passenger is matched against.  The list is capped at
// model.MaxWatchlistEntries; Add enforces the cap inside a transaction
// so two concurrent adds cannot both slip under it.
package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// WatchlistRepo manages persistence for watchlist entries.
type WatchlistRepo struct {
    db *sql.DB
}

// NewWatchlistRepo returns a WatchlistRepo bound to the provided database.
func NewWatchlistRepo(db *sql.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

// Add inserts a new entry if the session is still under capacity.
// Returns ErrWatchlistFull when the cap is reached.
func (r *WatchlistRepo) Add(ctx context.Context, e *model.WatchlistEntry) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the session's entries so the count cannot change under us.
    const countQ = `SELECT COUNT(*) FROM watchlist_entries WHERE session_id = ? FOR UPDATE`
    var count int
    if err := tx.QueryRowContext(ctx, countQ, e.SessionID).Scan(&count); err != nil {
        return err
    }
    if count >= model.MaxWatchlistEntries {
        return ErrWatchlistFull
    }

    const insQ = `INSERT INTO watchlist_entries (session_id, full_name, surname, first_token, created_at)
                  VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, insQ, e.SessionID, e.FullName, e.Surname, e.FirstToken, e.CreatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ListBySession returns the session's entries in insertion order.
func (r *WatchlistRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.WatchlistEntry, error) {
    const q = `SELECT id, session_id, full_name, surname, first_token, created_at
               FROM watchlist_entries WHERE session_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, sessionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var entries []model.WatchlistEntry
    for rows.Next() {
        var e model.WatchlistEntry
        if err := rows.Scan(&e.ID, &e.SessionID, &e.FullName, &e.Surname, &e.FirstToken, &e.CreatedAt); err != nil {
            return nil, err
        }
        entries = append(entries, e)
    }
    return entries, rows.Err()
}

// Delete removes one entry, scoped to the session so a device cannot
// delete across sessions by guessing IDs.
func (r *WatchlistRepo) Delete(ctx context.Context, sessionID, id uint64) error {
    const q = `DELETE FROM watchlist_entries WHERE id = ? AND session_id = ?`
    res, err := r.db.ExecContext(ctx, q, id, sessionID)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrWatchlistEntryNotFound
    }
    return nil
}
