package scan

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// buildBCBP assembles a minimal valid M-type payload: mandatory unique
// section plus the first repeated section (60 characters).
func buildBCBP(name, carrier, number, seat string) string {
    pad := func(s string, n int) string {
        for len(s) < n {
            s += " "
        }
        return s[:n]
    }
    return "M1" + // format code + leg count
        pad(name, 20) + // passenger name
        "E" + // e-ticket indicator
        pad("ABC123", 7) + // PNR
        "LHR" + "JFK" + // from / to
        pad(carrier, 3) + // operating carrier
        pad(number, 5) + // flight number
        "227" + // julian date
        "Y" + // compartment
        pad(seat, 4) + // seat
        pad("0042", 5) + // check-in sequence
        "1" + // passenger status
        "00" // conditional field size
}

func TestParseDelimited(t *testing.T) {
    bp, err := Parse("BA679|SMITH/JOHN MR|003A")
    require.NoError(t, err)
    assert.Equal(t, "BA679", bp.FlightCode)
    assert.Equal(t, "3A", bp.Seat)
    assert.Equal(t, "SMITH", bp.Surname)
    assert.Equal(t, "JOHN", bp.GivenName)
    assert.Equal(t, "JOHN SMITH", bp.FullName)
    assert.Equal(t, "SMITH/JOHN MR", bp.DisplayName)
    assert.False(t, bp.Heuristic)
}

func TestParseDelimitedExtraFields(t *testing.T) {
    bp, err := Parse("LH123|DOE/JANE|7C|GATE4|EXTRA")
    require.NoError(t, err)
    assert.Equal(t, "LH123", bp.FlightCode)
    assert.Equal(t, "7C", bp.Seat)
    assert.Equal(t, "JANE DOE", bp.FullName)
}

func TestParseBCBP(t *testing.T) {
    raw := buildBCBP("SMITH/JOHN", "BA", "0679", "003A")
    bp, err := Parse(raw)
    require.NoError(t, err)
    assert.Equal(t, "BA679", bp.FlightCode)
    assert.Equal(t, "3A", bp.Seat)
    assert.Equal(t, "JOHN SMITH", bp.FullName)
    assert.False(t, bp.Heuristic)
}

func TestParseBCBPViolationFallsThrough(t *testing.T) {
    // A structured payload with a blank seat field must not error out
    // of the chain: the regex fallback still gets its turn and the
    // result is marked as heuristically recovered.
    raw := buildBCBP("SMITH/JOHN", "BA", "0679", "    ")
    bp, err := Parse(raw)
    require.NoError(t, err)
    assert.True(t, bp.Heuristic)
    assert.NotEmpty(t, bp.Seat)
}

func TestParseHeuristic(t *testing.T) {
    bp, err := Parse("boarding BA0679 seat 12C pax SMITH/JOHN")
    require.NoError(t, err)
    assert.True(t, bp.Heuristic)
    assert.Equal(t, "BA679", bp.FlightCode)
    assert.Equal(t, "12C", bp.Seat)
    assert.Equal(t, "JOHN SMITH", bp.FullName)
}

func TestParseHeuristicSeatOnly(t *testing.T) {
    // Name and flight may be absent; only the seat is mandatory.
    bp, err := Parse("??? 04B ***")
    require.NoError(t, err)
    assert.True(t, bp.Heuristic)
    assert.Equal(t, "4B", bp.Seat)
    assert.Empty(t, bp.FullName)
}

func TestParseUnrecoverable(t *testing.T) {
    for _, raw := range []string{"", "   ", "no seat here", "SMITH/JOHN"} {
        _, err := Parse(raw)
        assert.ErrorIs(t, err, ErrUnrecoverable, "payload %q", raw)
    }
}
