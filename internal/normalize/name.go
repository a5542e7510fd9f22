// Package normalize canonicalizes the free-text fields that arrive on
// boarding-pass payloads: passenger names, flight codes and seat
// designators.  Every function here is pure, total and idempotent so
// callers may re-normalize already-normalized values without harm.
package normalize

import (
    "strings"
    "unicode"

    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
)

// honorifics are stripped from names when they appear as whole tokens.
// CHD and INF show up on passes for child and infant passengers.
var honorifics = map[string]struct{}{
    "MR": {}, "MRS": {}, "MS": {}, "MISS": {}, "MSTR": {},
    "DR": {}, "PROF": {}, "SIR": {}, "MADAM": {}, "CHD": {}, "INF": {},
}

// accentFolder decomposes accented letters and drops the combining
// marks, so "MÜLLER" and "MULLER" normalize identically.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes a raw passenger name into a comparable token
// string.  Malformed input degrades to an empty string rather than
// failing: there are no error conditions.
func Name(raw string) string {
    s := strings.ToUpper(raw)
    if folded, _, err := transform.String(accentFolder, s); err == nil {
        s = folded
    }
    // Slash is the surname/given separator on passes; treat it as a
    // token boundary before filtering so "SMITH/JOHN MR" tokenizes.
    s = strings.ReplaceAll(s, "/", " ")

    var b strings.Builder
    b.Grow(len(s))
    for _, r := range s {
        switch {
        case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
            b.WriteRune(r)
        case r == ' ':
            b.WriteByte(' ')
        }
        // anything else is dropped outright
    }

    tokens := strings.Fields(b.String())
    kept := tokens[:0]
    for _, t := range tokens {
        if _, skip := honorifics[t]; !skip {
            kept = append(kept, t)
        }
    }
    return strings.Join(kept, " ")
}
