package normalize

import (
    "regexp"
    "strings"
)

var (
    // row digits then cabin letter, leading zeros tolerated ("003A").
    seatRe = regexp.MustCompile(`^0*([0-9]{1,3})([A-Z])$`)
    // carrier then flight number with optional zero padding ("BA0679").
    flightRe = regexp.MustCompile(`^([A-Z0-9]{2,3}?)0*([0-9]{1,5})$`)
)

// Flight upper-cases a flight code and removes embedded spaces.  It is
// the loose form used for display; FlightStrict is used for equality.
func Flight(raw string) string {
    return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "")
}

// FlightStrict reduces a flight code to carrier plus number with zero
// padding removed, so "BA 0679", "BA679" and "ba0679" compare equal.
// Input that does not decompose into carrier+number is returned in the
// loose Flight form; normalization degrades, it never fails.
func FlightStrict(raw string) string {
    s := Flight(raw)
    m := flightRe.FindStringSubmatch(s)
    if m == nil {
        return s
    }
    carrier, number := m[1], m[2]
    if carrier == "" {
        return s
    }
    return carrier + number
}

// Seat reduces a seat designator to row number (leading zeros stripped)
// plus letter, e.g. "003A" -> "3A".  When no row/letter pattern is
// found the upper-cased trimmed input is returned unchanged.
func Seat(raw string) string {
    s := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "")
    m := seatRe.FindStringSubmatch(s)
    if m == nil {
        return s
    }
    return m[1] + m[2]
}
