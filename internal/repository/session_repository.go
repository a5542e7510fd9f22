// Package repository contains the MySQL data access layer. This file
// manages flight boarding sessions: one row per flight being boarded,
// carrying the expected flight code, the booked passenger count and the
// boarding milestone timestamps.
package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// SessionRepo manages persistence for flight sessions.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the provided database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a new session.  The caller normalizes the flight code
// before handing it over; what is stored is what every scan is compared
// against.
func (r *SessionRepo) Create(ctx context.Context, sess *model.FlightSession) error {
    const q = `INSERT INTO flight_sessions (flight_code, booked_pax, created_at) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, sess.FlightCode, sess.BookedPax, sess.CreatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    sess.ID = uint64(id)
    return nil
}

// GetByID fetches one session or ErrSessionNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.FlightSession, error) {
    const q = `SELECT id, flight_code, booked_pax, boarding_finished, first_pax_at, last_pax_at, finished_at, created_at
               FROM flight_sessions WHERE id = ?`
    var sess model.FlightSession
    var first, last, finished sql.NullTime
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &sess.ID, &sess.FlightCode, &sess.BookedPax, &sess.BoardingFinished,
        &first, &last, &finished, &sess.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return model.FlightSession{}, ErrSessionNotFound
    }
    if err != nil {
        return model.FlightSession{}, err
    }
    sess.FirstPaxAt = nullableTime(first)
    sess.LastPaxAt = nullableTime(last)
    sess.FinishedAt = nullableTime(finished)
    return sess, nil
}

// MarkFinished flips boarding to finished.  finished_at is
// first-write-wins so repeated calls keep the original close time.
func (r *SessionRepo) MarkFinished(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE flight_sessions
               SET boarding_finished = TRUE, finished_at = COALESCE(finished_at, ?)
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, at, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // zero affected rows is either "missing" or "already finished";
        // a read tells them apart
        if _, getErr := r.GetByID(ctx, id); getErr != nil {
            return getErr
        }
    }
    return nil
}
