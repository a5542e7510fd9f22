// Package watchlist decides whether a scanned passenger name matches
// any entry on the session watchlist.  Matching is a boolean gate, not
// a ranked search: one structural or exact hit is enough.  The list is
// bounded to a handful of entries, so a linear pass per scan is fine.
package watchlist

import (
    "strings"

    "github.com/iliyamo/gate-boarding/internal/model"
)

// Decompose splits a normalized name into the {surname, firstToken}
// pair stored on watchlist entries.  Tokens beyond the second (middle
// names, suffixes) are ignored for matching.
func Decompose(normalized string) (surname, firstToken string) {
    tokens := strings.Fields(normalized)
    if len(tokens) > 0 {
        surname = tokens[0]
    }
    if len(tokens) > 1 {
        firstToken = tokens[1]
    }
    return surname, firstToken
}

// Match reports whether the normalized candidate name matches any of
// the entries.  The checks run cheapest-first:
//
//  1. exact containment against the full normalized entry names;
//  2. for candidates with at least two tokens, structural comparison of
//     {surname, firstToken} in both orders, tolerating the
//     surname/given swap that mispunched payloads produce;
//  3. for degenerate candidates, a rotate-left of the token list and a
//     second containment check.
func Match(candidate string, entries []model.WatchlistEntry) bool {
    if candidate == "" || len(entries) == 0 {
        return false
    }
    for _, e := range entries {
        if candidate == e.FullName {
            return true
        }
    }

    tokens := strings.Fields(candidate)
    if len(tokens) >= 2 {
        a, b := tokens[0], tokens[1]
        for _, e := range entries {
            if e.Surname == "" {
                continue
            }
            if a == e.Surname && b == e.FirstToken {
                return true
            }
            if a == e.FirstToken && b == e.Surname {
                return true
            }
        }
        return false
    }

    // Fewer than two tokens: rotate and re-check containment.  This
    // covers payloads whose single compound token has the name order
    // flipped around a separator the normalizer already flattened.
    rotated := strings.Join(rotateLeft(tokens), " ")
    for _, e := range entries {
        if rotated == e.FullName {
            return true
        }
    }
    return false
}

func rotateLeft(tokens []string) []string {
    if len(tokens) < 2 {
        return tokens
    }
    out := make([]string, 0, len(tokens))
    out = append(out, tokens[1:]...)
    return append(out, tokens[0])
}
