package repository // repository for passenger roster persistence

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// passengerSelect is the shared column list so every reader scans the
// same shape.
const passengerSelect = `SELECT id, session_id, full_name, display_name, seat, infant, tag, searched,
                                watchlist_hit, status, last_event, scanned_at, updated_at
                         FROM passengers`

// rowScanner matches both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...any) error
}

func scanPassenger(row rowScanner) (model.Passenger, error) {
    var p model.Passenger
    var tag, status string
    err := row.Scan(
        &p.ID, &p.SessionID, &p.FullName, &p.DisplayName, &p.Seat, &p.Infant, &tag, &p.Searched,
        &p.WatchlistHit, &status, &p.LastEvent, &p.ScannedAt, &p.UpdatedAt,
    )
    if err != nil {
        return model.Passenger{}, err
    }
    p.Tag = model.Tag(tag)
    p.Status = model.PassengerStatus(status)
    return p, nil
}

func scanPassengers(rows *sql.Rows) ([]model.Passenger, error) {
    var out []model.Passenger
    for rows.Next() {
        p, err := scanPassenger(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// PassengerRepo provides the non-transactional roster reads and small
// updates used by handlers.  All reconciliation writes go through the
// Store so they stay inside the scan transaction.
type PassengerRepo struct {
    db *sql.DB
}

// NewPassengerRepo returns a PassengerRepo bound to the provided database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

// ListBySession returns the full roster for a session, offloaded
// passengers included, ordered by scan time.
func (r *PassengerRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Passenger, error) {
    const q = passengerSelect + ` WHERE session_id = ? ORDER BY scanned_at, id`
    rows, err := r.db.QueryContext(ctx, q, sessionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanPassengers(rows)
}

// GetForSession fetches one passenger and verifies session ownership.
func (r *PassengerRepo) GetForSession(ctx context.Context, sessionID, id uint64) (model.Passenger, error) {
    const q = passengerSelect + ` WHERE id = ? AND session_id = ?`
    p, err := scanPassenger(r.db.QueryRowContext(ctx, q, id, sessionID))
    if err == sql.ErrNoRows {
        return model.Passenger{}, ErrPassengerNotFound
    }
    return p, err
}

// MarkSearched records that a DFT search was completed for an active
// passenger.  Idempotent: repeating the call leaves the row unchanged.
func (r *PassengerRepo) MarkSearched(ctx context.Context, sessionID, id uint64, at time.Time) error {
    const q = `UPDATE passengers SET searched = TRUE, updated_at = ?
               WHERE id = ? AND session_id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, at, id, sessionID, string(model.StatusActive))
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // either missing or already searched; disambiguate with a read
        if _, getErr := r.GetForSession(ctx, sessionID, id); getErr != nil {
            return getErr
        }
    }
    return nil
}
