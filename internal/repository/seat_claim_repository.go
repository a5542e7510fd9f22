package repository // seat occupancy history reads

import (
    "context"
    "database/sql"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// SeatClaimRepo serves the read-only occupancy views used by the export
// snapshot.  All claim writes happen inside the reconciliation
// transaction through the Store.
type SeatClaimRepo struct {
    db *sql.DB
}

// NewSeatClaimRepo returns a SeatClaimRepo bound to the provided database.
func NewSeatClaimRepo(db *sql.DB) *SeatClaimRepo { return &SeatClaimRepo{db: db} }

// ListBySession returns every claim ever made in the session, released
// ones included, ordered by claim time.
func (r *SeatClaimRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.SeatClaim, error) {
    const q = `SELECT id, session_id, seat, passenger_id, infant_exempt, claimed_at, released_at
               FROM seat_claims WHERE session_id = ? ORDER BY claimed_at, id`
    rows, err := r.db.QueryContext(ctx, q, sessionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var claims []model.SeatClaim
    for rows.Next() {
        var c model.SeatClaim
        var released sql.NullTime
        if err := rows.Scan(&c.ID, &c.SessionID, &c.Seat, &c.PassengerID, &c.InfantExempt, &c.ClaimedAt, &released); err != nil {
            return nil, err
        }
        c.ReleasedAt = nullableTime(released)
        claims = append(claims, c)
    }
    return claims, rows.Err()
}
