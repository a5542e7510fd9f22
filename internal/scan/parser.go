// Package scan converts raw boarding-pass payloads into structured
// candidate records.  Payloads arrive from camera decoders and manual
// entry and are frequently damaged, so parsing works through a chain of
// strategies: the pipe-delimited mock format used by gate test rigs,
// the fixed-offset IATA BCBP layout, and finally a best-effort regex
// sweep over the whole string.  The first strategy that succeeds wins.
package scan

import (
    "errors"
    "regexp"
    "strings"

    "github.com/iliyamo/gate-boarding/internal/normalize"
)

// ErrUnrecoverable means no strategy could recover a seat from the
// payload.  Seat is the dedup key, so without it the scan cannot be
// reconciled and the operator must hand-enter the passenger.
var ErrUnrecoverable = errors.New("unrecoverable payload: no seat found")

// BoardingPass is the parser's output record.  It is consumed once by
// the reconciliation operation and discarded, never persisted.
type BoardingPass struct {
    FlightCode  string // normalized carrier+number, may be empty
    Seat        string // normalized seat designator, never empty
    Surname     string // normalized surname, may be empty
    GivenName   string // normalized given name(s), may be empty
    FullName    string // normalized "GIVEN SURNAME", may be empty
    DisplayName string // name as printed on the pass, for the roster
    Heuristic   bool   // true when recovered by the regex fallback
}

// BCBP mandatory-item offsets.  The unique mandatory section plus the
// first repeated section is 60 characters; anything shorter is not
// trusted as structured data.
const (
    bcbpSentinel = 'M'
    bcbpMinLen   = 60

    bcbpNameStart    = 2
    bcbpNameEnd      = 22
    bcbpCarrierStart = 36
    bcbpCarrierEnd   = 39
    bcbpFlightStart  = 39
    bcbpFlightEnd    = 44
    bcbpSeatStart    = 48
    bcbpSeatEnd      = 52
)

var (
    heurFlightRe = regexp.MustCompile(`[A-Z0-9]{2,3}[0-9]{3,5}`)
    heurSeatRe   = regexp.MustCompile(`(?:^|[^0-9A-Z])(0*[0-9]{1,3}[A-Z])(?:[^A-Z]|$)`)
    heurNameRe   = regexp.MustCompile(`([A-Z]{2,})/([A-Z]+(?: [A-Z]+)*)`)
)

// Parse runs the strategy chain over a raw payload.  A successful parse
// may carry a blank name; only a missing seat is fatal.
func Parse(raw string) (*BoardingPass, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil, ErrUnrecoverable
    }
    if bp := parseDelimited(raw); bp != nil {
        return bp, nil
    }
    if bp := parseBCBP(raw); bp != nil {
        return bp, nil
    }
    if bp := parseHeuristic(raw); bp != nil {
        return bp, nil
    }
    return nil, ErrUnrecoverable
}

// parseDelimited handles the mock format FLIGHT|SURNAME/GIVEN|SEAT.
// Extra trailing fields are tolerated and ignored.
func parseDelimited(raw string) *BoardingPass {
    if !strings.Contains(raw, "|") {
        return nil
    }
    fields := strings.Split(raw, "|")
    if len(fields) < 3 {
        return nil
    }
    seat := normalize.Seat(fields[2])
    if !seatShaped(seat) {
        return nil
    }
    bp := &BoardingPass{
        FlightCode:  normalize.FlightStrict(fields[0]),
        Seat:        seat,
        DisplayName: strings.TrimSpace(fields[1]),
    }
    fillName(bp, fields[1])
    return bp
}

// parseBCBP extracts the mandatory fields of an IATA bar-coded boarding
// pass.  Every extracted field is validated for non-emptiness; any
// violation falls through to the next strategy instead of erroring, on
// the theory that a damaged scan may still yield to the regex sweep.
func parseBCBP(raw string) *BoardingPass {
    if len(raw) < bcbpMinLen || raw[0] != bcbpSentinel {
        return nil
    }
    name := strings.TrimSpace(raw[bcbpNameStart:bcbpNameEnd])
    carrier := strings.TrimSpace(raw[bcbpCarrierStart:bcbpCarrierEnd])
    number := strings.TrimSpace(raw[bcbpFlightStart:bcbpFlightEnd])
    seatField := strings.TrimSpace(raw[bcbpSeatStart:bcbpSeatEnd])
    if name == "" || carrier == "" || number == "" || seatField == "" {
        return nil
    }
    seat := normalize.Seat(seatField)
    if !seatShaped(seat) {
        return nil
    }
    bp := &BoardingPass{
        FlightCode:  normalize.FlightStrict(carrier + number),
        Seat:        seat,
        DisplayName: name,
    }
    fillName(bp, name)
    return bp
}

// parseHeuristic sweeps the payload for flight-shaped and seat-shaped
// tokens.  The flight match is cut out of the string before the seat
// search so its digits cannot be misread as a row number.
func parseHeuristic(raw string) *BoardingPass {
    upper := strings.ToUpper(raw)

    var flight string
    rest := upper
    if loc := heurFlightRe.FindStringIndex(upper); loc != nil {
        flight = upper[loc[0]:loc[1]]
        rest = upper[:loc[0]] + " " + upper[loc[1]:]
    }

    m := heurSeatRe.FindStringSubmatch(rest)
    if m == nil {
        return nil
    }
    bp := &BoardingPass{
        FlightCode: normalize.FlightStrict(flight),
        Seat:       normalize.Seat(m[1]),
        Heuristic:  true,
    }
    if nm := heurNameRe.FindString(upper); nm != "" {
        bp.DisplayName = nm
        fillName(bp, nm)
    }
    return bp
}

// fillName splits a SURNAME/GIVEN shaped field and derives the
// normalized name parts.  FullName is assembled given-first so roster
// entries read naturally.
func fillName(bp *BoardingPass, field string) {
    surname, given := field, ""
    if i := strings.Index(field, "/"); i >= 0 {
        surname, given = field[:i], field[i+1:]
    }
    bp.Surname = normalize.Name(surname)
    bp.GivenName = normalize.Name(given)
    bp.FullName = normalize.Name(strings.TrimSpace(given + " " + surname))
    if bp.DisplayName == "" {
        bp.DisplayName = strings.TrimSpace(field)
    }
}

// seatShaped reports whether s already looks like row+letter, used to
// reject BCBP seat fields that survived trimming but are garbage.
func seatShaped(s string) bool {
    if len(s) < 2 {
        return false
    }
    last := s[len(s)-1]
    if last < 'A' || last > 'Z' {
        return false
    }
    for _, r := range s[:len(s)-1] {
        if r < '0' || r > '9' {
            return false
        }
    }
    return true
}
