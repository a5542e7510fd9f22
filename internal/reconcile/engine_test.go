package reconcile

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/gate-boarding/internal/model"
)

var errInjectedConflict = errors.New("injected write conflict")

// memStore is an in-memory Store for engine tests.  Rejection paths in
// the engine perform all reads before any write, so the fake does not
// need rollback fidelity to verify the zero-mutation guarantees.
type memStore struct {
    mu          sync.Mutex
    txMu        sync.Mutex // held across a whole transaction, like the row locks would
    sessions    map[uint64]model.FlightSession
    passengers  map[uint64]model.Passenger
    claims      map[uint64]model.SeatClaim
    nextPax     uint64
    nextClaim   uint64
    txFailures  int // WithTx calls to fail with errInjectedConflict first
}

func newMemStore(sess model.FlightSession) *memStore {
    return &memStore{
        sessions:   map[uint64]model.FlightSession{sess.ID: sess},
        passengers: map[uint64]model.Passenger{},
        claims:     map[uint64]model.SeatClaim{},
    }
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    s.mu.Lock()
    if s.txFailures > 0 {
        s.txFailures--
        s.mu.Unlock()
        return errInjectedConflict
    }
    s.mu.Unlock()
    s.txMu.Lock()
    defer s.txMu.Unlock()
    return fn(ctx)
}

func (s *memStore) Retryable(err error) bool {
    return errors.Is(err, errInjectedConflict)
}

func (s *memStore) SessionByID(_ context.Context, id uint64) (model.FlightSession, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, ok := s.sessions[id]
    if !ok {
        return model.FlightSession{}, errors.New("session not found")
    }
    return sess, nil
}

func (s *memStore) RecordArrival(_ context.Context, sessionID uint64, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess := s.sessions[sessionID]
    if sess.FirstPaxAt == nil {
        first := at
        sess.FirstPaxAt = &first
    }
    last := at
    sess.LastPaxAt = &last
    s.sessions[sessionID] = sess
    return nil
}

func (s *memStore) ClaimsBySeat(_ context.Context, sessionID uint64, seat string, _ bool) ([]model.SeatClaim, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.SeatClaim
    for _, c := range s.claims {
        if c.SessionID == sessionID && c.Seat == seat {
            out = append(out, c)
        }
    }
    return out, nil
}

func (s *memStore) CreateClaim(_ context.Context, claim *model.SeatClaim) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextClaim++
    claim.ID = s.nextClaim
    s.claims[claim.ID] = *claim
    return nil
}

func (s *memStore) ReleaseClaimsByPassenger(_ context.Context, passengerID uint64, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for id, c := range s.claims {
        if c.PassengerID == passengerID && c.ReleasedAt == nil {
            released := at
            c.ReleasedAt = &released
            s.claims[id] = c
        }
    }
    return nil
}

func (s *memStore) PassengerByID(_ context.Context, id uint64) (model.Passenger, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.passengers[id]
    if !ok {
        return model.Passenger{}, ErrPassengerNotFound
    }
    return p, nil
}

func (s *memStore) PassengersBySeat(_ context.Context, sessionID uint64, seat string) ([]model.Passenger, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Passenger
    for _, p := range s.passengers {
        if p.SessionID == sessionID && p.Seat == seat {
            out = append(out, p)
        }
    }
    return out, nil
}

func (s *memStore) CreatePassenger(_ context.Context, p *model.Passenger) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextPax++
    p.ID = s.nextPax
    s.passengers[p.ID] = *p
    return nil
}

func (s *memStore) UpdatePassenger(_ context.Context, p *model.Passenger) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.passengers[p.ID]; !ok {
        return ErrPassengerNotFound
    }
    s.passengers[p.ID] = *p
    return nil
}

func testSession() model.FlightSession {
    return model.FlightSession{ID: 1, FlightCode: "BA679", BookedPax: 100}
}

func input(seat, name string) Input {
    return Input{
        SessionID:   1,
        FlightCode:  "BA679",
        Seat:        seat,
        FullName:    name,
        DisplayName: name,
    }
}

func TestCommitAcceptsFirstClaim(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)

    res, err := eng.Commit(context.Background(), input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    assert.False(t, res.ReinstatementWarning)
    assert.Equal(t, model.StatusActive, res.Passenger.Status)
    assert.Equal(t, "3A", res.Passenger.Seat)
    assert.Equal(t, model.EventBoarded, res.Passenger.LastEvent)
    assert.Equal(t, res.Passenger.ScannedAt, res.Passenger.UpdatedAt)

    sess := store.sessions[1]
    require.NotNil(t, sess.FirstPaxAt)
    require.NotNil(t, sess.LastPaxAt)
}

func TestCommitSeatDuplicate(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    first, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)

    _, err = eng.Commit(ctx, input("3A", "JANE DOE"))
    var dup *SeatDuplicateError
    require.ErrorAs(t, err, &dup)
    assert.Equal(t, "3A", dup.Seat)
    assert.Equal(t, first.Passenger.ID, dup.OccupantID)

    // rejection must leave no trace
    assert.Len(t, store.passengers, 1)
    assert.Len(t, store.claims, 1)
}

func TestCommitDuplicateScanSamePassenger(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    _, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)

    _, err = eng.Commit(ctx, input("3A", "JOHN SMITH"))
    assert.ErrorIs(t, err, ErrDuplicateScan)
    assert.Len(t, store.passengers, 1)
}

func TestCommitDuplicateScanInfant(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    lap := input("9D", "BABY SMITH")
    lap.Infant = true
    _, err := eng.Commit(ctx, lap)
    require.NoError(t, err)

    // the exact same infant again: rejected, no twin record or claim
    _, err = eng.Commit(ctx, lap)
    assert.ErrorIs(t, err, ErrDuplicateScan)
    assert.Len(t, store.passengers, 1)
    assert.Len(t, store.claims, 1)
}

func TestCommitDuplicateScanInfantRescannedNonInfant(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    lap := input("9D", "BABY SMITH")
    lap.Infant = true
    _, err := eng.Commit(ctx, lap)
    require.NoError(t, err)

    // same identity resubmitted without the infant flag is still the
    // same still-active passenger
    _, err = eng.Commit(ctx, input("9D", "BABY SMITH"))
    assert.ErrorIs(t, err, ErrDuplicateScan)
    assert.Len(t, store.passengers, 1)
    assert.Len(t, store.claims, 1)
}

func TestCommitConcurrentClaimsSingleWinner(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    const devices = 8
    errs := make([]error, devices)
    var wg sync.WaitGroup
    for i := 0; i < devices; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = eng.Commit(ctx, input("12F", fmt.Sprintf("PAX %d", i)))
        }(i)
    }
    wg.Wait()

    wins, conflicts := 0, 0
    for _, err := range errs {
        if err == nil {
            wins++
            continue
        }
        var dup *SeatDuplicateError
        require.ErrorAs(t, err, &dup)
        assert.Equal(t, "12F", dup.Seat)
        conflicts++
    }
    assert.Equal(t, 1, wins)
    assert.Equal(t, devices-1, conflicts)
    assert.Len(t, store.passengers, 1)
    assert.Len(t, store.claims, 1)
}

func TestCommitInfantOverrideCoexists(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    _, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)

    lap := input("3A", "BABY SMITH")
    lap.Infant = true
    res, err := eng.Commit(ctx, lap)
    require.NoError(t, err)
    assert.True(t, res.Passenger.Infant)

    claims, err := store.ClaimsBySeat(ctx, 1, "3A", false)
    require.NoError(t, err)
    assert.Len(t, claims, 2)
}

func TestCommitInfantClaimNeverBlocks(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    lap := input("5B", "BABY JONES")
    lap.Infant = true
    _, err := eng.Commit(ctx, lap)
    require.NoError(t, err)

    // a later non-exempt claim on the same seat goes through
    _, err = eng.Commit(ctx, input("5B", "MARY JONES"))
    require.NoError(t, err)
}

func TestCommitFlightMismatch(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)

    in := input("7C", "JANE DOE")
    in.FlightCode = "LH123"
    _, err := eng.Commit(context.Background(), in)

    var mm *FlightMismatchError
    require.ErrorAs(t, err, &mm)
    assert.Equal(t, "BA679", mm.Expected)
    assert.Equal(t, "LH123", mm.Got)
    assert.Empty(t, store.passengers)
    assert.Empty(t, store.claims)
}

func TestCommitFlightNormalizedBeforeCompare(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)

    in := input("7C", "JANE DOE")
    in.FlightCode = "ba 0679"
    _, err := eng.Commit(context.Background(), in)
    require.NoError(t, err)
}

func TestOffloadThenReclaim(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    res, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)

    off, err := eng.Offload(ctx, 1, res.Passenger.ID)
    require.NoError(t, err)
    assert.Equal(t, model.StatusOffloaded, off.Status)
    assert.Equal(t, model.EventOffloaded, off.LastEvent)
    assert.False(t, off.UpdatedAt.IsZero())
    for _, c := range store.claims {
        assert.NotNil(t, c.ReleasedAt)
    }

    // a different passenger claims the vacated seat: accepted, flagged
    res2, err := eng.Commit(ctx, input("3A", "JANE DOE"))
    require.NoError(t, err)
    assert.True(t, res2.ReinstatementWarning)
    assert.NotEqual(t, res.Passenger.ID, res2.Passenger.ID)
}

func TestOffloadThenReinstateSameIdentity(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    res, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    _, err = eng.Offload(ctx, 1, res.Passenger.ID)
    require.NoError(t, err)

    back, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    assert.True(t, back.ReinstatementWarning)
    assert.Equal(t, res.Passenger.ID, back.Passenger.ID, "same identity reuses the record")
    assert.Equal(t, model.EventReinstated, back.Passenger.LastEvent)
    assert.Equal(t, model.StatusActive, back.Passenger.Status)
    assert.Len(t, store.passengers, 1)
}

func TestOffloadAlreadyOffloaded(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    res, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    _, err = eng.Offload(ctx, 1, res.Passenger.ID)
    require.NoError(t, err)

    _, err = eng.Offload(ctx, 1, res.Passenger.ID)
    assert.ErrorIs(t, err, ErrAlreadyOffloaded)
}

func TestCommitRetriesTransientConflict(t *testing.T) {
    store := newMemStore(testSession())
    store.txFailures = 2
    eng := NewEngine(store) // default budget of 3 attempts

    _, err := eng.Commit(context.Background(), input("3A", "JOHN SMITH"))
    require.NoError(t, err)
}

func TestCommitSurfacesExhaustedConflict(t *testing.T) {
    store := newMemStore(testSession())
    store.txFailures = 5
    eng := NewEngine(store, WithMaxAttempts(3))

    _, err := eng.Commit(context.Background(), input("3A", "JOHN SMITH"))
    assert.ErrorIs(t, err, ErrTransactionConflict)
}

func TestCommitSeatRequired(t *testing.T) {
    eng := NewEngine(newMemStore(testSession()))
    _, err := eng.Commit(context.Background(), input("", "JOHN SMITH"))
    assert.ErrorIs(t, err, ErrSeatRequired)
}

func TestEvaluate(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    dec, err := eng.Evaluate(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    assert.True(t, dec.Proceed)

    res, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)

    dec, err = eng.Evaluate(ctx, input("3A", "JANE DOE"))
    require.NoError(t, err)
    assert.False(t, dec.Proceed)
    require.NotNil(t, dec.SeatConflict)
    assert.Equal(t, res.Passenger.ID, dec.SeatConflict.OccupantID)

    in := input("3A", "JANE DOE")
    in.FlightCode = "LH123"
    dec, err = eng.Evaluate(ctx, in)
    require.NoError(t, err)
    assert.NotNil(t, dec.FlightMismatch)

    // evaluating never mutates
    assert.Len(t, store.passengers, 1)
    assert.Len(t, store.claims, 1)
}

func TestEvaluatePriorOffload(t *testing.T) {
    store := newMemStore(testSession())
    eng := NewEngine(store)
    ctx := context.Background()

    res, err := eng.Commit(ctx, input("3A", "JOHN SMITH"))
    require.NoError(t, err)
    _, err = eng.Offload(ctx, 1, res.Passenger.ID)
    require.NoError(t, err)

    dec, err := eng.Evaluate(ctx, input("3A", "JANE DOE"))
    require.NoError(t, err)
    assert.True(t, dec.Proceed)
    assert.True(t, dec.PriorOffload)
}
