package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// Store implements the transactional contract the reconciliation engine
// requires.  A transaction opened by WithTx travels in the context, so
// the same methods serve both transactional and standalone callers.
type Store struct {
    db *sql.DB
}

// NewStore constructs a Store bound to the provided database.
func NewStore(db *sql.DB) *Store {
    return &Store{db: db}
}

// DB exposes the underlying handle for callers that need to share the
// pool with the plain repositories.
func (s *Store) DB() *sql.DB {
    return s.db
}

type txKey struct{}

// querier is the subset of *sql.DB / *sql.Tx the store needs.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q(ctx context.Context) querier {
    if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
        return tx
    }
    return s.db
}

// WithTx runs fn inside one transaction.  Nested calls join the
// transaction already in the context.  On error the transaction is
// rolled back; nothing written inside fn survives.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
        return fn(ctx)
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
        _ = tx.Rollback()
        return err
    }
    return tx.Commit()
}

// MySQL error numbers for transient transaction failures.
const (
    mysqlErrLockDeadlock    = 1213
    mysqlErrLockWaitTimeout = 1205
)

// Retryable reports whether err is a transient conflict worth re-running
// the whole transaction for: a deadlock between concurrent claimants or
// a lock wait timeout.
func (s *Store) Retryable(err error) bool {
    var myErr *mysql.MySQLError
    if !errors.As(err, &myErr) {
        return false
    }
    return myErr.Number == mysqlErrLockDeadlock || myErr.Number == mysqlErrLockWaitTimeout
}

func (s *Store) SessionByID(ctx context.Context, id uint64) (model.FlightSession, error) {
    const q = `SELECT id, flight_code, booked_pax, boarding_finished, first_pax_at, last_pax_at, finished_at, created_at
               FROM flight_sessions WHERE id = ?`
    var sess model.FlightSession
    var first, last, finished sql.NullTime
    err := s.q(ctx).QueryRowContext(ctx, q, id).Scan(
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

// RecordArrival writes the session milestones for one accepted scan:
// first_pax_at is first-write-wins, last_pax_at always moves forward.
func (s *Store) RecordArrival(ctx context.Context, sessionID uint64, at time.Time) error {
    const q = `UPDATE flight_sessions
               SET first_pax_at = COALESCE(first_pax_at, ?), last_pax_at = ?
               WHERE id = ?`
    _, err := s.q(ctx).ExecContext(ctx, q, at, at, sessionID)
    return err
}

// ClaimsBySeat returns all claims ever made on a seat, released ones
// included.  With forUpdate the rows are locked, serializing concurrent
// claim transactions on this seat; the first transaction to acquire the
// lock wins the seat.
func (s *Store) ClaimsBySeat(ctx context.Context, sessionID uint64, seat string, forUpdate bool) ([]model.SeatClaim, error) {
    q := `SELECT id, session_id, seat, passenger_id, infant_exempt, claimed_at, released_at
          FROM seat_claims WHERE session_id = ? AND seat = ?`
    if forUpdate {
        q += " FOR UPDATE"
    }
    rows, err := s.q(ctx).QueryContext(ctx, q, sessionID, seat)
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

func (s *Store) CreateClaim(ctx context.Context, claim *model.SeatClaim) error {
    const q = `INSERT INTO seat_claims (session_id, seat, passenger_id, infant_exempt, claimed_at)
               VALUES (?, ?, ?, ?, ?)`
    res, err := s.q(ctx).ExecContext(ctx, q, claim.SessionID, claim.Seat, claim.PassengerID, claim.InfantExempt, claim.ClaimedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    claim.ID = uint64(id)
    return nil
}

// ReleaseClaimsByPassenger marks the passenger's unreleased claims as
// released.  Rows are never deleted; the occupancy history stays.
func (s *Store) ReleaseClaimsByPassenger(ctx context.Context, passengerID uint64, at time.Time) error {
    const q = `UPDATE seat_claims SET released_at = ? WHERE passenger_id = ? AND released_at IS NULL`
    _, err := s.q(ctx).ExecContext(ctx, q, at, passengerID)
    return err
}

func (s *Store) PassengerByID(ctx context.Context, id uint64) (model.Passenger, error) {
    const q = passengerSelect + ` WHERE id = ?`
    p, err := scanPassenger(s.q(ctx).QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Passenger{}, ErrPassengerNotFound
    }
    return p, err
}

func (s *Store) PassengersBySeat(ctx context.Context, sessionID uint64, seat string) ([]model.Passenger, error) {
    const q = passengerSelect + ` WHERE session_id = ? AND seat = ? ORDER BY id`
    rows, err := s.q(ctx).QueryContext(ctx, q, sessionID, seat)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanPassengers(rows)
}

func (s *Store) CreatePassenger(ctx context.Context, p *model.Passenger) error {
    const q = `INSERT INTO passengers
               (session_id, full_name, display_name, seat, infant, tag, searched, watchlist_hit, status, last_event, scanned_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := s.q(ctx).ExecContext(ctx, q,
        p.SessionID, p.FullName, p.DisplayName, p.Seat, p.Infant, string(p.Tag),
        p.Searched, p.WatchlistHit, string(p.Status), p.LastEvent, p.ScannedAt, p.UpdatedAt,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

func (s *Store) UpdatePassenger(ctx context.Context, p *model.Passenger) error {
    const q = `UPDATE passengers
               SET full_name = ?, display_name = ?, seat = ?, infant = ?, tag = ?,
                   searched = ?, watchlist_hit = ?, status = ?, last_event = ?, scanned_at = ?, updated_at = ?
               WHERE id = ?`
    // MySQL reports zero affected rows for a no-op update, so the count
    // cannot distinguish "missing" from "unchanged"; existence is read
    // earlier in the same transaction.
    _, err := s.q(ctx).ExecContext(ctx, q,
        p.FullName, p.DisplayName, p.Seat, p.Infant, string(p.Tag),
        p.Searched, p.WatchlistHit, string(p.Status), p.LastEvent, p.ScannedAt, p.UpdatedAt, p.ID,
    )
    return err
}

func nullableTime(t sql.NullTime) *time.Time {
    if !t.Valid {
        return nil
    }
    v := t.Time.UTC()
    return &v
}
