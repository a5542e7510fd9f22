package normalize

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
    cases := []struct {
        name string
        in   string
        want string
    }{
        {"plain", "John Smith", "JOHN SMITH"},
        {"slash separator", "SMITH/JOHN", "SMITH JOHN"},
        {"honorific stripped", "SMITH/JOHN MR", "SMITH JOHN"},
        {"honorific with punctuation", "Dr. Jane Doe", "JANE DOE"},
        {"infant marker", "DOE/BABY INF", "DOE BABY"},
        {"accents folded", "Müller/José", "MULLER JOSE"},
        {"punctuation dropped", "O'Brien-Smith, Pat", "OBRIENSMITH PAT"},
        {"whitespace collapsed", "  SMITH   JOHN  ", "SMITH JOHN"},
        {"embedded honorific kept", "MRSMITH JOHN", "MRSMITH JOHN"},
        {"empty", "", ""},
        {"degenerate", "///...", ""},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, Name(tc.in))
        })
    }
}

func TestFlightStrict(t *testing.T) {
    cases := []struct {
        in   string
        want string
    }{
        {"BA 0679", "BA679"},
        {"BA679", "BA679"},
        {"ba0679", "BA679"},
        {"LH123", "LH123"},
        {"U20042", "U242"},
        {"3U8633", "3U8633"},
        {"", ""},
        {"GATE", "GATE"}, // no carrier+number shape, degrade to loose form
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, FlightStrict(tc.in), "input %q", tc.in)
    }
}

func TestSeat(t *testing.T) {
    cases := []struct {
        in   string
        want string
    }{
        {"003A", "3A"},
        {"3A", "3A"},
        {" 12 c ", "12C"},
        {"7C", "7C"},
        {"JUMP", "JUMP"}, // best-effort passthrough
        {"", ""},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, Seat(tc.in), "input %q", tc.in)
    }
}

// All three normalizers must be idempotent: applying them twice yields
// the same result as applying them once.
func TestIdempotence(t *testing.T) {
    inputs := []string{
        "SMITH/JOHN MR", "Müller José", "BA 0679", "ba0679", "003A",
        "12c", "", "///", "GATE", "  mixed 07b  ",
    }
    for _, in := range inputs {
        assert.Equal(t, Name(in), Name(Name(in)), "Name not idempotent for %q", in)
        assert.Equal(t, FlightStrict(in), FlightStrict(FlightStrict(in)), "FlightStrict not idempotent for %q", in)
        assert.Equal(t, Seat(in), Seat(Seat(in)), "Seat not idempotent for %q", in)
    }
}
