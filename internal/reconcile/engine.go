package reconcile

import (
    "context"
    "fmt"
    "time"

    "github.com/iliyamo/gate-boarding/internal/model"
    "github.com/iliyamo/gate-boarding/internal/normalize"
)

// Store is the transactional contract the engine requires from its
// storage collaborator.  Methods called inside the function passed to
// WithTx must participate in that transaction; ClaimsBySeat with
// forUpdate locks the seat's claim rows so concurrent claimants
// serialize on the store.  Retryable classifies transient conflicts
// (deadlock, lock wait) that warrant re-running the whole transaction.
type Store interface {
    WithTx(ctx context.Context, fn func(ctx context.Context) error) error
    Retryable(err error) bool

    SessionByID(ctx context.Context, id uint64) (model.FlightSession, error)
    RecordArrival(ctx context.Context, sessionID uint64, at time.Time) error

    ClaimsBySeat(ctx context.Context, sessionID uint64, seat string, forUpdate bool) ([]model.SeatClaim, error)
    CreateClaim(ctx context.Context, claim *model.SeatClaim) error
    ReleaseClaimsByPassenger(ctx context.Context, passengerID uint64, at time.Time) error

    PassengerByID(ctx context.Context, id uint64) (model.Passenger, error)
    PassengersBySeat(ctx context.Context, sessionID uint64, seat string) ([]model.Passenger, error)
    CreatePassenger(ctx context.Context, p *model.Passenger) error
    UpdatePassenger(ctx context.Context, p *model.Passenger) error
}

const defaultMaxAttempts = 3

// Engine is the reconciliation core: it owns the seat state machine and
// the passenger lifecycle and leaves serialization entirely to the
// store's transaction primitive, so any number of devices can call it
// concurrently.
type Engine struct {
    store       Store
    maxAttempts int
}

type Option func(*Engine)

// WithMaxAttempts overrides how often a conflicted transaction is
// retried before surfacing ErrTransactionConflict.
func WithMaxAttempts(n int) Option {
    return func(e *Engine) {
        if n > 0 {
            e.maxAttempts = n
        }
    }
}

func NewEngine(store Store, opts ...Option) *Engine {
    e := &Engine{store: store, maxAttempts: defaultMaxAttempts}
    for _, opt := range opts {
        opt(e)
    }
    return e
}

// Input is one reconciliation request: the normalized fields of a
// parsed scan or manual entry, plus the operator decisions that
// accompany it.
type Input struct {
    SessionID    uint64
    FlightCode   string // may be empty (manual entry, damaged payload)
    Seat         string // normalized, required
    FullName     string // normalized, may be empty
    DisplayName  string
    Tag          model.Tag
    Infant       bool // admit as infant-exempt claim (infant pax or operator override)
    WatchlistHit bool
}

// Result is the accepted outcome of a reconciliation.
type Result struct {
    Passenger model.Passenger
    // ReinstatementWarning is set when the claimed seat has offload
    // history, so the operator can confirm a previously offloaded
    // passenger is being re-admitted.
    ReinstatementWarning bool
}

// Decision is the read-only outcome of Evaluate, letting the UI prompt
// the operator before anything is written.
type Decision struct {
    Proceed        bool
    SeatConflict   *SeatDuplicateError
    FlightMismatch *FlightMismatchError
    PriorOffload   bool
}

// Evaluate probes the current state without mutating anything.  It runs
// outside any lock, so a Proceed answer can still lose the race at
// Commit time; callers must treat it as advisory.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
    if in.Seat == "" {
        return Decision{}, ErrSeatRequired
    }
    sess, err := e.store.SessionByID(ctx, in.SessionID)
    if err != nil {
        return Decision{}, err
    }
    if mm := flightMismatch(sess, in); mm != nil {
        return Decision{FlightMismatch: mm}, nil
    }

    claims, err := e.store.ClaimsBySeat(ctx, in.SessionID, in.Seat, false)
    if err != nil {
        return Decision{}, err
    }
    dec := Decision{Proceed: true}
    if blocking := activeNonExempt(claims); blocking != nil && !in.Infant {
        occ, err := e.store.PassengerByID(ctx, blocking.PassengerID)
        if err != nil {
            return Decision{}, err
        }
        if occ.Status == model.StatusActive {
            dec.Proceed = false
            dec.SeatConflict = &SeatDuplicateError{Seat: in.Seat, OccupantID: occ.ID, OccupantName: occ.DisplayName}
        }
    }

    history, err := e.store.PassengersBySeat(ctx, in.SessionID, in.Seat)
    if err != nil {
        return Decision{}, err
    }
    for _, h := range history {
        if h.Status == model.StatusOffloaded {
            dec.PriorOffload = true
            break
        }
    }
    return dec, nil
}

// Commit applies one scan as a single atomic reconciliation.  On
// transient store conflicts the whole transaction is re-run from its
// first read with the same input, up to the attempt budget.
func (e *Engine) Commit(ctx context.Context, in Input) (Result, error) {
    if in.Seat == "" {
        return Result{}, ErrSeatRequired
    }
    var res Result
    var err error
    for attempt := 0; attempt < e.maxAttempts; attempt++ {
        res, err = e.commitOnce(ctx, in)
        if err == nil || !e.store.Retryable(err) {
            return res, err
        }
    }
    return Result{}, fmt.Errorf("%w after %d attempts: %v", ErrTransactionConflict, e.maxAttempts, err)
}

func (e *Engine) commitOnce(ctx context.Context, in Input) (Result, error) {
    var res Result
    err := e.store.WithTx(ctx, func(ctx context.Context) error {
        sess, err := e.store.SessionByID(ctx, in.SessionID)
        if err != nil {
            return err
        }
        if mm := flightMismatch(sess, in); mm != nil {
            return mm
        }

        // Locking read: claims on this seat serialize concurrent
        // claimants here.  Exactly one of two racing transactions
        // commits first; the loser re-reads and sees the winner's claim.
        claims, err := e.store.ClaimsBySeat(ctx, in.SessionID, in.Seat, true)
        if err != nil {
            return err
        }
        history, err := e.store.PassengersBySeat(ctx, in.SessionID, in.Seat)
        if err != nil {
            return err
        }

        // The same still-active identity re-submitted for the seat it
        // already holds is a duplicate scan, infant-exempt claims
        // included; never a second record.
        for i := range history {
            if history[i].Status == model.StatusActive && in.FullName != "" && history[i].FullName == in.FullName {
                return ErrDuplicateScan
            }
        }

        if blocking := activeNonExempt(claims); blocking != nil {
            occ, err := e.store.PassengerByID(ctx, blocking.PassengerID)
            if err != nil {
                return err
            }
            if occ.Status == model.StatusActive && !in.Infant {
                return &SeatDuplicateError{Seat: in.Seat, OccupantID: occ.ID, OccupantName: occ.DisplayName}
            }
            // in.Infant: operator chose the infant override, the new
            // claim coexists as infant-exempt
        }

        var reinstated *model.Passenger
        for i := range history {
            if history[i].Status != model.StatusOffloaded {
                continue
            }
            res.ReinstatementWarning = true
            if in.FullName != "" && history[i].FullName == in.FullName {
                reinstated = &history[i]
            }
        }

        now := time.Now().UTC()
        var p model.Passenger
        if reinstated != nil {
            // Same identity returning to a seat it was offloaded from:
            // flip the existing record back instead of creating a twin.
            p = *reinstated
            p.Status = model.StatusActive
            p.Tag = in.Tag
            p.Infant = in.Infant
            p.WatchlistHit = in.WatchlistHit
            p.LastEvent = model.EventReinstated
            p.ScannedAt = now
            p.UpdatedAt = now
            if err := e.store.UpdatePassenger(ctx, &p); err != nil {
                return err
            }
        } else {
            p = model.Passenger{
                SessionID:    in.SessionID,
                FullName:     in.FullName,
                DisplayName:  in.DisplayName,
                Seat:         in.Seat,
                Infant:       in.Infant,
                Tag:          in.Tag,
                WatchlistHit: in.WatchlistHit,
                Status:       model.StatusActive,
                LastEvent:    model.EventBoarded,
                ScannedAt:    now,
                UpdatedAt:    now,
            }
            if err := e.store.CreatePassenger(ctx, &p); err != nil {
                return err
            }
        }

        claim := model.SeatClaim{
            SessionID:    in.SessionID,
            Seat:         in.Seat,
            PassengerID:  p.ID,
            InfantExempt: in.Infant,
            ClaimedAt:    now,
        }
        if err := e.store.CreateClaim(ctx, &claim); err != nil {
            return err
        }

        // first-pax is first-write-wins, last-pax moves on every
        // accepted scan; both inside the same transaction.
        if err := e.store.RecordArrival(ctx, in.SessionID, now); err != nil {
            return err
        }

        res.Passenger = p
        return nil
    })
    if err != nil {
        return Result{}, err
    }
    return res, nil
}

// Offload releases the passenger's seat claims and transitions the
// record to OFFLOADED.  The record is retained for audit; a later scan
// of the same seat produces a reinstatement warning.
func (e *Engine) Offload(ctx context.Context, sessionID, passengerID uint64) (model.Passenger, error) {
    var out model.Passenger
    var err error
    for attempt := 0; attempt < e.maxAttempts; attempt++ {
        out, err = e.offloadOnce(ctx, sessionID, passengerID)
        if err == nil || !e.store.Retryable(err) {
            return out, err
        }
    }
    return model.Passenger{}, fmt.Errorf("%w after %d attempts: %v", ErrTransactionConflict, e.maxAttempts, err)
}

func (e *Engine) offloadOnce(ctx context.Context, sessionID, passengerID uint64) (model.Passenger, error) {
    var out model.Passenger
    err := e.store.WithTx(ctx, func(ctx context.Context) error {
        p, err := e.store.PassengerByID(ctx, passengerID)
        if err != nil {
            return err
        }
        if p.SessionID != sessionID {
            return ErrPassengerNotFound
        }
        if p.Status != model.StatusActive {
            return ErrAlreadyOffloaded
        }
        now := time.Now().UTC()
        if err := e.store.ReleaseClaimsByPassenger(ctx, p.ID, now); err != nil {
            return err
        }
        p.Status = model.StatusOffloaded
        p.LastEvent = model.EventOffloaded
        p.UpdatedAt = now
        if err := e.store.UpdatePassenger(ctx, &p); err != nil {
            return err
        }
        out = p
        return nil
    })
    if err != nil {
        return model.Passenger{}, err
    }
    return out, nil
}

// flightMismatch applies the flight gate: both sides present and
// different after strict normalization aborts the scan.
func flightMismatch(sess model.FlightSession, in Input) *FlightMismatchError {
    if in.FlightCode == "" || sess.FlightCode == "" {
        return nil
    }
    got := normalize.FlightStrict(in.FlightCode)
    expected := normalize.FlightStrict(sess.FlightCode)
    if got != expected {
        return &FlightMismatchError{Expected: expected, Got: got}
    }
    return nil
}

// activeNonExempt returns the unreleased non-exempt claim on a seat, if
// any.  Infant-exempt claims never block and are never blocked.
func activeNonExempt(claims []model.SeatClaim) *model.SeatClaim {
    for i := range claims {
        if claims[i].Active() && !claims[i].InfantExempt {
            return &claims[i]
        }
    }
    return nil
}
